package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus es el estado de un pedido en el flujo de despacho.
type OrderStatus string

// Estados del pedido (valor persistido).
const (
	StatusRequested      OrderStatus = "REQUESTED"
	StatusProcessing     OrderStatus = "PROCESSING"
	StatusReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

// AllStatuses en el orden del flujo.
var AllStatuses = []OrderStatus{
	StatusRequested, StatusProcessing, StatusReadyForPickup, StatusDelivered, StatusCancelled,
}

var statusLabels = map[OrderStatus]string{
	StatusRequested:      "Pedido realizado",
	StatusProcessing:     "En proceso",
	StatusReadyForPickup: "Listo para recoger",
	StatusDelivered:      "Entregado",
	StatusCancelled:      "Cancelado",
}

// Label devuelve el nombre que ven empleados y despachadores.
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid indica si el estado es uno de los conocidos.
func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// ParseStatus acepta el código (READY_FOR_PICKUP), el nombre en camel case (ReadyForPickup)
// o la etiqueta en español (Listo para recoger).
func ParseStatus(s string) (OrderStatus, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(norm)
	for _, st := range AllStatuses {
		code := strings.ReplaceAll(string(st), "_", "")
		label := strings.ToUpper(strings.ReplaceAll(statusLabels[st], " ", ""))
		if norm == code || norm == label {
			return st, true
		}
	}
	return "", false
}

// Orígenes del pedido.
const (
	DeviceDispatcher = "Despachador"
	DeviceUnknown    = "Desconocido"
	LocationStore    = "En tienda"
	LocationOnline   = "Online"
)

// Order es la cabecera del pedido. Status es la única fuente de verdad del estado.
type Order struct {
	ID            string
	AccountID     string
	TransactionID string // opaco y único, se genera en cada intento (INV-...)
	Status        OrderStatus
	Total         decimal.Decimal
	Device        string
	Location      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LineItem es una línea inmutable del pedido. UnitPrice es el precio de catálogo al momento de comprar.
type LineItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal devuelve cantidad x precio unitario.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineItemDetail es una línea con los datos del producto resueltos (recibos, proyección, historial).
type LineItemDetail struct {
	LineItem
	ProductCode string
	ProductName string
}

// OrderDetail agrupa cabecera, cuenta y líneas para las vistas de lectura.
type OrderDetail struct {
	Order
	EmployeeCode  string
	AccountName   string
	InvoiceNumber string
	Items         []LineItemDetail
}

// OrderFilter filtros de listOrders. Campos vacíos no filtran.
type OrderFilter struct {
	InvoiceNumber string
	AccountID     string
	EmployeeCode  string
	TransactionID string
	Status        OrderStatus
	From          *time.Time
	To            *time.Time
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
	Limit         int
	Offset        int
}
