package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-empleados-api/internal/domain"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
)

var _ repository.BillingRepository = (*BillingRepo)(nil)

// BillingRepo registros de facturación (usable con pool o tx).
type BillingRepo struct {
	q Querier
}

// NewBillingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBillingRepository(q Querier) *BillingRepo {
	return &BillingRepo{q: q}
}

// Create toma el consecutivo de invoice_number_seq y persiste el registro.
func (r *BillingRepo) Create(ctx context.Context, b *entity.BillingRecord) error {
	var seq int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&seq); err != nil {
		return mapError("next invoice number", err)
	}
	b.InvoiceNumber = fmt.Sprintf("FAC-%08d", seq)
	_, err := r.q.Exec(ctx, `
		INSERT INTO billing_records (id, invoice_number, order_id, transaction_id, total, billed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.InvoiceNumber, b.OrderID, b.TransactionID, b.Total, b.BilledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert billing record: %w", domain.ErrConflict)
		}
		return mapError("insert billing record", err)
	}
	return nil
}

// GetByOrderID devuelve el registro con el estado vigente del pedido.
func (r *BillingRepo) GetByOrderID(ctx context.Context, orderID string) (*entity.BillingRecord, error) {
	var b entity.BillingRecord
	err := r.q.QueryRow(ctx, `
		SELECT b.id, b.invoice_number, b.order_id, b.transaction_id, b.total, o.status, b.billed_at
		FROM billing_records b
		JOIN orders o ON o.id = b.order_id
		WHERE b.order_id = $1`, orderID,
	).Scan(&b.ID, &b.InvoiceNumber, &b.OrderID, &b.TransactionID, &b.Total, &b.Status, &b.BilledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get billing record", err)
	}
	return &b, nil
}
