package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreated se emite después del commit del checkout. Lo consumen recibo y notificación.
type OrderCreated struct {
	OrderID       string
	TransactionID string
	AccountID     string
	Total         decimal.Decimal
	CreatedAt     time.Time
}

// ProductLabel formatea una línea para la proyección de despacho ("Café molido x2").
func ProductLabel(name string, qty int) string {
	return fmt.Sprintf("%s x%d", name, qty)
}
