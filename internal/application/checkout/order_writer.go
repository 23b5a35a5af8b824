package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-empleados-api/internal/domain"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/order"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
)

// PricedLine es una línea del carrito con el producto de catálogo ya resuelto.
type PricedLine struct {
	Product  *entity.Product
	Quantity int
}

// WriteInput datos ya admitidos para persistir el pedido.
type WriteInput struct {
	Account  *entity.Account
	Lines    []PricedLine
	Total    decimal.Decimal
	Device   string
	Location string
	Now      time.Time
}

// OrderWriter persiste cabecera, líneas, registro de facturación y proyección de despacho, y
// vacía el carrito. Todo con los repos de la transacción del llamador: si algo falla, el rollback
// deja el carrito intacto.
type OrderWriter struct {
	// NewTransactionID genera el identificador opaco del pedido; nil = INV-<12 hex>.
	NewTransactionID func() string
}

// NewTransactionID genera un identificador nuevo por intento (INV-3F2A9C01B7DE).
func NewTransactionID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "INV-" + strings.ToUpper(hex[:12])
}

// CreateOrder escribe el pedido completo. Solo debe llamarse dentro de TxRunner.Run.
func (w OrderWriter) CreateOrder(ctx context.Context, repos repository.TxRepos, in WriteInput) (*entity.Order, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	genTx := w.NewTransactionID
	if genTx == nil {
		genTx = NewTransactionID
	}

	// a) Cabecera
	o := &entity.Order{
		ID:            uuid.New().String(),
		AccountID:     in.Account.ID,
		TransactionID: genTx(),
		Status:        entity.StatusRequested,
		Total:         in.Total,
		Device:        in.Device,
		Location:      in.Location,
		CreatedAt:     in.Now,
		UpdatedAt:     in.Now,
	}
	if err := repos.Orders.Create(ctx, o); err != nil {
		return nil, err
	}

	// b) Líneas con el precio usado para el total
	items := make([]*entity.LineItem, 0, len(in.Lines))
	names := make([]string, 0, len(in.Lines))
	for _, l := range in.Lines {
		items = append(items, &entity.LineItem{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			UnitPrice: l.Product.Price,
		})
		names = append(names, order.ProductLabel(l.Product.Name, l.Quantity))
	}
	if err := repos.Orders.CreateLineItems(ctx, items); err != nil {
		return nil, err
	}

	// c) Registro de facturación
	if err := repos.Billing.Create(ctx, &entity.BillingRecord{
		ID:            uuid.New().String(),
		OrderID:       o.ID,
		TransactionID: o.TransactionID,
		Total:         o.Total,
		Status:        o.Status,
		BilledAt:      in.Now,
	}); err != nil {
		return nil, err
	}

	// Proyección de despacho en la misma transacción
	if _, err := repos.Dispatch.Insert(ctx, &entity.DispatchEntry{
		ID:            uuid.New().String(),
		OrderID:       o.ID,
		AccountID:     in.Account.ID,
		EmployeeCode:  in.Account.EmployeeCode,
		AccountName:   in.Account.Name,
		TransactionID: o.TransactionID,
		Products:      strings.Join(names, ", "),
		Amount:        o.Total,
		Status:        o.Status,
		EmailStatus:   entity.EmailPending,
		CreatedAt:     in.Now,
		UpdatedAt:     in.Now,
	}); err != nil {
		return nil, err
	}

	// d) Vaciar carrito
	if err := repos.Carts.Clear(ctx, in.Account.ID); err != nil {
		return nil, err
	}
	return o, nil
}
