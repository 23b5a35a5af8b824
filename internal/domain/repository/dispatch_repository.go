package repository

import (
	"context"
	"time"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
)

// DispatchRepository proyección de despacho y exportaciones al ERP.
type DispatchRepository interface {
	// Insert no duplica: devuelve false si el pedido ya estaba proyectado.
	Insert(ctx context.Context, e *entity.DispatchEntry) (bool, error)
	// Count pedidos que ya tienen proyección.
	Count(ctx context.Context) (int, error)
	UpdateStatus(ctx context.Context, orderID string, status entity.OrderStatus, at time.Time) error
	UpdateEmailStatus(ctx context.Context, orderID, emailStatus string, at time.Time) error
	List(ctx context.Context, status entity.OrderStatus, limit, offset int) ([]*entity.DispatchEntry, error)
	CreateExportRows(ctx context.Context, rows []*entity.DispatchExportRow) error
}
