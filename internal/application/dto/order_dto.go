package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
)

// CheckoutRequest checkout del propio carrito. La llave también puede ir en X-Idempotency-Key.
type CheckoutRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
}

// CheckoutItem línea explícita del checkout de despachador.
type CheckoutItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// StaffCheckoutRequest pedido del despachador a nombre de un empleado.
type StaffCheckoutRequest struct {
	EmployeeCode   string         `json:"employee_code"`
	IdempotencyKey string         `json:"idempotency_key"`
	Items          []CheckoutItem `json:"items"`
}

// CancelOrderRequest cancelación por transaction id.
type CancelOrderRequest struct {
	TransactionID string `json:"transaction_id"`
}

// ChangeStatusRequest estado destino (código, camel case o etiqueta).
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// LineItemResponse línea de un pedido.
type LineItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderResponse cabecera del pedido con sus líneas.
type OrderResponse struct {
	ID            string             `json:"id"`
	TransactionID string             `json:"transaction_id"`
	InvoiceNumber string             `json:"invoice_number,omitempty"`
	AccountID     string             `json:"account_id"`
	EmployeeCode  string             `json:"employee_code,omitempty"`
	AccountName   string             `json:"account_name,omitempty"`
	Status        entity.OrderStatus `json:"status"`
	StatusLabel   string             `json:"status_label"`
	Total         decimal.Decimal    `json:"total"`
	Device        string             `json:"device,omitempty"`
	Location      string             `json:"location,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Items         []LineItemResponse `json:"items,omitempty"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// DispatchEntryResponse fila de la proyección de despacho.
type DispatchEntryResponse struct {
	ID            string             `json:"id"`
	OrderID       string             `json:"order_id"`
	AccountID     string             `json:"account_id"`
	EmployeeCode  string             `json:"employee_code"`
	AccountName   string             `json:"account_name"`
	TransactionID string             `json:"transaction_id"`
	Products      string             `json:"products"`
	Amount        decimal.Decimal    `json:"amount"`
	Status        entity.OrderStatus `json:"status"`
	StatusLabel   string             `json:"status_label"`
	EmailStatus   string             `json:"email_status"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// DispatchListResponse lista paginada de la proyección.
type DispatchListResponse struct {
	Items []DispatchEntryResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// ExportRowResponse fila exportada a la lista de alisto.
type ExportRowResponse struct {
	OrderID      string    `json:"order_id"`
	EmployeeCode string    `json:"employee_code"`
	ProductCode  string    `json:"product_code"`
	Quantity     int       `json:"quantity"`
	OrderedAt    time.Time `json:"ordered_at"`
	ExportedAt   time.Time `json:"exported_at"`
	State        string    `json:"state"`
}

// ExportResponse resultado de la exportación.
type ExportResponse struct {
	Rows []ExportRowResponse `json:"rows"`
}

// OrderFromEntity convierte una cabecera sin líneas.
func OrderFromEntity(o *entity.Order) OrderResponse {
	return OrderResponse{
		ID:            o.ID,
		TransactionID: o.TransactionID,
		AccountID:     o.AccountID,
		Status:        o.Status,
		StatusLabel:   o.Status.Label(),
		Total:         o.Total,
		Device:        o.Device,
		Location:      o.Location,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// OrderFromDetail convierte la vista de lectura con cuenta y líneas.
func OrderFromDetail(d *entity.OrderDetail) OrderResponse {
	out := OrderFromEntity(&d.Order)
	out.InvoiceNumber = d.InvoiceNumber
	out.EmployeeCode = d.EmployeeCode
	out.AccountName = d.AccountName
	out.Items = make([]LineItemResponse, 0, len(d.Items))
	for _, it := range d.Items {
		out.Items = append(out.Items, LineItemResponse{
			ProductID:   it.ProductID,
			ProductCode: it.ProductCode,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal(),
		})
	}
	return out
}

// OrdersFromDetails convierte una lista.
func OrdersFromDetails(list []*entity.OrderDetail) []OrderResponse {
	out := make([]OrderResponse, 0, len(list))
	for _, d := range list {
		out = append(out, OrderFromDetail(d))
	}
	return out
}

// DispatchFromEntities convierte filas de la proyección.
func DispatchFromEntities(list []*entity.DispatchEntry) []DispatchEntryResponse {
	out := make([]DispatchEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, DispatchEntryResponse{
			ID:            e.ID,
			OrderID:       e.OrderID,
			AccountID:     e.AccountID,
			EmployeeCode:  e.EmployeeCode,
			AccountName:   e.AccountName,
			TransactionID: e.TransactionID,
			Products:      e.Products,
			Amount:        e.Amount,
			Status:        e.Status,
			StatusLabel:   e.Status.Label(),
			EmailStatus:   e.EmailStatus,
			CreatedAt:     e.CreatedAt,
			UpdatedAt:     e.UpdatedAt,
		})
	}
	return out
}

// ExportRowsFromEntities convierte las filas exportadas.
func ExportRowsFromEntities(rows []*entity.DispatchExportRow) []ExportRowResponse {
	out := make([]ExportRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ExportRowResponse{
			OrderID:      r.OrderID,
			EmployeeCode: r.EmployeeCode,
			ProductCode:  r.ProductCode,
			Quantity:     r.Quantity,
			OrderedAt:    r.OrderedAt,
			ExportedAt:   r.ExportedAt,
			State:        r.State,
		})
	}
	return out
}
