package repository

import (
	"context"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
)

// IdempotencyRepository llaves de checkout ya confirmadas, por cuenta.
type IdempotencyRepository interface {
	Find(ctx context.Context, accountID, key string) (*entity.CheckoutRequest, error)
	// Save inserta o reemplaza la llave (una llave vencida se reutiliza).
	Save(ctx context.Context, r *entity.CheckoutRequest) error
}
