package repository

import (
	"context"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
)

// BillingRepository registros de facturación. Status se completa desde la cabecera del pedido.
type BillingRepository interface {
	// Create asigna InvoiceNumber desde un consecutivo.
	Create(ctx context.Context, b *entity.BillingRecord) error
	GetByOrderID(ctx context.Context, orderID string) (*entity.BillingRecord, error)
}
