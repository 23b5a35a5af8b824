package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia de pedidos y sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	CreateLineItems(ctx context.Context, items []*entity.LineItem) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByTransactionID(ctx context.Context, txID string) (*entity.Order, error)
	// LockByID y LockByTransactionID leen el estado vigente con bloqueo de fila.
	LockByID(ctx context.Context, id string) (*entity.Order, error)
	LockByTransactionID(ctx context.Context, txID string) (*entity.Order, error)
	// UpdateStatus cambia el estado solo si sigue siendo from. Devuelve domain.ErrConflict si no.
	UpdateStatus(ctx context.Context, id string, from, to entity.OrderStatus, at time.Time) error
	// SumTotals suma los totales de la cuenta con created_at >= since y estado en statuses.
	SumTotals(ctx context.Context, accountID string, since time.Time, statuses []entity.OrderStatus) (decimal.Decimal, error)
	CountByStatus(ctx context.Context, accountID string, since time.Time, statuses []entity.OrderStatus) (int, error)
	ListLineItems(ctx context.Context, orderID string) ([]entity.LineItemDetail, error)
	List(ctx context.Context, f entity.OrderFilter) ([]*entity.OrderDetail, error)
	// ListHistory pedidos de la cuenta con total > 0 y al menos una línea, más recientes primero.
	ListHistory(ctx context.Context, accountID string) ([]*entity.OrderDetail, error)
	// LockByStatus bloquea y devuelve todos los pedidos en el estado dado, más antiguos primero.
	LockByStatus(ctx context.Context, status entity.OrderStatus) ([]*entity.Order, error)
	// ListUnprojected pedidos sin fila de despacho, con líneas, cuenta y factura ("" si no hay), más antiguos primero.
	ListUnprojected(ctx context.Context) ([]*entity.OrderDetail, error)
}
