package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del envío del comprobante por correo.
const (
	EmailPending = "PENDING"
	EmailSent    = "SENT"
	EmailFailed  = "FAILED"
)

// DispatchEntry es la fila desnormalizada que usa el despacho (proyección de pedido + líneas).
type DispatchEntry struct {
	ID            string
	OrderID       string
	AccountID     string
	EmployeeCode  string
	AccountName   string
	TransactionID string
	Products      string // "Nombre xN, Otro xM"
	Amount        decimal.Decimal
	Status        OrderStatus
	EmailStatus   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Estados de una fila exportada al ERP.
const (
	ExportPending = "pending"
)

// DispatchExportRow es una línea de pedido exportada a la lista de alisto del ERP.
type DispatchExportRow struct {
	ID           string
	OrderID      string
	EmployeeCode string
	ProductCode  string
	Quantity     int
	OrderedAt    time.Time
	ExportedAt   time.Time
	State        string
}
