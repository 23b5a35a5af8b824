package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/order"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
)

// SpendLedger calcula el gasto de una cuenta dentro de la ventana vigente a partir del historial.
// Solo lectura.
type SpendLedger struct{}

// Spend suma los totales de los pedidos de la cuenta desde since. Los cancelados no consumen
// cuota; los entregados sí.
func (SpendLedger) Spend(ctx context.Context, orders repository.OrderRepository, accountID string, since time.Time) (decimal.Decimal, error) {
	return orders.SumTotals(ctx, accountID, since, order.SpendStatuses)
}
