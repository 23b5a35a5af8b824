package repository

import (
	"context"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
)

// CartRepository define el puerto de persistencia del carrito.
type CartRepository interface {
	ListByAccount(ctx context.Context, accountID string) ([]*entity.CartItem, error)
	Get(ctx context.Context, accountID, productID string) (*entity.CartItem, error)
	Upsert(ctx context.Context, item *entity.CartItem) error
	// Delete devuelve false si la línea no existía.
	Delete(ctx context.Context, accountID, productID string) (bool, error)
	Clear(ctx context.Context, accountID string) error
}
