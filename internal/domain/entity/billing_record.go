package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingRecord guarda los hechos financieros inmutables del pedido.
// Status no se persiste: se lee de la cabecera del pedido (join), por eso siempre coincide.
type BillingRecord struct {
	ID            string
	InvoiceNumber string // FAC-00000001
	OrderID       string
	TransactionID string
	Total         decimal.Decimal
	Status        OrderStatus
	BilledAt      time.Time
}
