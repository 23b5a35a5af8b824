package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/tienda-empleados-api/internal/domain"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
)

func TestMapError_Transitorios(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03", "57014"} {
		err := mapError("lock account", &pgconn.PgError{Code: code})
		assert.ErrorIs(t, err, domain.ErrTransient, code)
		assert.True(t, domain.IsRetryable(err), code)
	}

	err := mapError("lock account", fmt.Errorf("wrap: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestMapError_NoTransitorios(t *testing.T) {
	assert.NoError(t, mapError("x", nil))

	err := mapError("insert order", &pgconn.PgError{Code: "23503"})
	assert.NotErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))

	// los errores de dominio pasan intactos
	wrapped := fmt.Errorf("producto p1: %w", domain.ErrProductNotFound)
	assert.Same(t, wrapped, mapError("tx", wrapped))

	quota := &domain.QuotaExceededError{Quota: decimal.NewFromInt(10)}
	var target *domain.QuotaExceededError
	assert.True(t, errors.As(mapError("tx", quota), &target))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueViolation(errors.New("ERROR: duplicate key (SQLSTATE 23505)")))
}

func TestBuildOrderFilter_Vacio(t *testing.T) {
	where, args := buildOrderFilter(entity.OrderFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildOrderFilter_Completo(t *testing.T) {
	from := time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC)
	to := from.Add(7 * 24 * time.Hour)
	minAmount := decimal.NewFromInt(1000)
	maxAmount := decimal.NewFromInt(5000)

	where, args := buildOrderFilter(entity.OrderFilter{
		InvoiceNumber: "FAC-00000001",
		EmployeeCode:  "E-001",
		Status:        entity.StatusRequested,
		From:          &from,
		To:            &to,
		MinAmount:     &minAmount,
		MaxAmount:     &maxAmount,
	})

	assert.Equal(t, "WHERE b.invoice_number = $1 AND a.employee_code = $2 AND o.status = $3"+
		" AND o.created_at >= $4 AND o.created_at < $5 AND o.total >= $6 AND o.total <= $7", where)
	assert.Equal(t, []any{"FAC-00000001", "E-001", "REQUESTED", from, to, minAmount, maxAmount}, args)
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, []string{"REQUESTED", "PROCESSING"},
		statusStrings([]entity.OrderStatus{entity.StatusRequested, entity.StatusProcessing}))
}
