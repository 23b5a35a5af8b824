package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
)

var _ repository.IdempotencyRepository = (*CheckoutRequestRepo)(nil)

// CheckoutRequestRepo llaves de idempotencia del checkout (usable con pool o tx).
type CheckoutRequestRepo struct {
	q Querier
}

// NewCheckoutRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCheckoutRequestRepository(q Querier) *CheckoutRequestRepo {
	return &CheckoutRequestRepo{q: q}
}

func (r *CheckoutRequestRepo) Find(ctx context.Context, accountID, key string) (*entity.CheckoutRequest, error) {
	var c entity.CheckoutRequest
	err := r.q.QueryRow(ctx, `
		SELECT account_id, idempotency_key, order_id, created_at
		FROM checkout_requests WHERE account_id = $1 AND idempotency_key = $2`, accountID, key,
	).Scan(&c.AccountID, &c.IdempotencyKey, &c.OrderID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("find checkout request", err)
	}
	return &c, nil
}

// Save reemplaza la llave si ya existía (solo pasa cuando la anterior venció).
func (r *CheckoutRequestRepo) Save(ctx context.Context, c *entity.CheckoutRequest) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO checkout_requests (account_id, idempotency_key, order_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, idempotency_key)
		DO UPDATE SET order_id = EXCLUDED.order_id, created_at = EXCLUDED.created_at`,
		c.AccountID, c.IdempotencyKey, c.OrderID, c.CreatedAt)
	return mapError("save checkout request", err)
}
