package repository

import (
	"context"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
)

// AccountRepository lectura de cuentas. Las cuentas las administra el proveedor de identidad.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByEmployeeCode(ctx context.Context, code string) (*entity.Account, error)
	// LockByID bloquea la fila de la cuenta hasta el fin de la transacción (SELECT ... FOR UPDATE).
	// Serializa checkout y carrito por cuenta.
	LockByID(ctx context.Context, id string) (*entity.Account, error)
}
