package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
)

var _ repository.CartRepository = (*CartRepo)(nil)

// CartRepo carrito por cuenta (usable con pool o tx).
type CartRepo struct {
	q Querier
}

// NewCartRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCartRepository(q Querier) *CartRepo {
	return &CartRepo{q: q}
}

func (r *CartRepo) ListByAccount(ctx context.Context, accountID string) ([]*entity.CartItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT account_id, product_id, quantity, updated_at
		FROM cart_items WHERE account_id = $1 ORDER BY product_id`, accountID)
	if err != nil {
		return nil, mapError("list cart", err)
	}
	defer rows.Close()
	var list []*entity.CartItem
	for rows.Next() {
		var it entity.CartItem
		if err := rows.Scan(&it.AccountID, &it.ProductID, &it.Quantity, &it.UpdatedAt); err != nil {
			return nil, mapError("scan cart item", err)
		}
		list = append(list, &it)
	}
	return list, mapError("list cart", rows.Err())
}

func (r *CartRepo) Get(ctx context.Context, accountID, productID string) (*entity.CartItem, error) {
	var it entity.CartItem
	err := r.q.QueryRow(ctx, `
		SELECT account_id, product_id, quantity, updated_at
		FROM cart_items WHERE account_id = $1 AND product_id = $2`, accountID, productID,
	).Scan(&it.AccountID, &it.ProductID, &it.Quantity, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get cart item", err)
	}
	return &it, nil
}

// Upsert fija la cantidad de la línea (la crea si no existe).
func (r *CartRepo) Upsert(ctx context.Context, item *entity.CartItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cart_items (account_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
		item.AccountID, item.ProductID, item.Quantity, item.UpdatedAt)
	return mapError("upsert cart item", err)
}

func (r *CartRepo) Delete(ctx context.Context, accountID, productID string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`DELETE FROM cart_items WHERE account_id = $1 AND product_id = $2`, accountID, productID)
	if err != nil {
		return false, mapError("delete cart item", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *CartRepo) Clear(ctx context.Context, accountID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE account_id = $1`, accountID)
	return mapError("clear cart", err)
}
