package receipt

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
)

// Line línea resuelta del comprobante.
type Line struct {
	Code      string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Data todo lo que necesita el generador del comprobante de compra.
type Data struct {
	TransactionID string
	InvoiceNumber string
	AccountID     string
	Status        entity.OrderStatus
	AccountName   string
	EmployeeCode  string
	NationalID    string
	Email         string
	Device        string
	Location      string
	CreatedAt     time.Time
	Lines         []Line
	Total         decimal.Decimal
}

// Generator produce el documento (bytes opacos, PDF en producción).
type Generator interface {
	Generate(ctx context.Context, d Data) ([]byte, error)
}

// FileName nombre del adjunto para el transaction id.
func FileName(transactionID string) string {
	return "Factura_" + transactionID + ".pdf"
}

// FromOrder arma los datos del comprobante a partir del pedido, la cuenta y la facturación.
// account y bill pueden ser nil (pedidos históricos).
func FromOrder(o *entity.Order, items []entity.LineItemDetail, account *entity.Account, bill *entity.BillingRecord) Data {
	d := Data{
		TransactionID: o.TransactionID,
		AccountID:     o.AccountID,
		Status:        o.Status,
		Device:        o.Device,
		Location:      o.Location,
		CreatedAt:     o.CreatedAt,
		Total:         o.Total,
		Lines:         make([]Line, 0, len(items)),
	}
	for _, it := range items {
		d.Lines = append(d.Lines, Line{
			Code:      it.ProductCode,
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal(),
		})
	}
	if account != nil {
		d.AccountName = account.Name
		d.EmployeeCode = account.EmployeeCode
		d.NationalID = account.NationalID
		d.Email = account.Email
	}
	if bill != nil {
		d.InvoiceNumber = bill.InvoiceNumber
	}
	return d
}

// Load resuelve líneas, cuenta y facturación del pedido con los repos dados.
func Load(ctx context.Context, repos repository.TxRepos, o *entity.Order) (Data, error) {
	items, err := repos.Orders.ListLineItems(ctx, o.ID)
	if err != nil {
		return Data{}, err
	}
	acc, err := repos.Accounts.GetByID(ctx, o.AccountID)
	if err != nil {
		return Data{}, err
	}
	bill, err := repos.Billing.GetByOrderID(ctx, o.ID)
	if err != nil {
		return Data{}, err
	}
	return FromOrder(o, items, acc, bill), nil
}
