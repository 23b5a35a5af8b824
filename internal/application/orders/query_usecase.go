package orders

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-empleados-api/internal/application/checkout"
	"github.com/jhoicas/tienda-empleados-api/internal/application/receipt"
	"github.com/jhoicas/tienda-empleados-api/internal/domain"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/order"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
)

// Viewer ejecuta lecturas sobre el estado confirmado.
type Viewer interface {
	View(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// WeeklySummary gasto de la ventana vigente.
type WeeklySummary struct {
	Spend       decimal.Decimal `json:"spend"`
	Quota       decimal.Decimal `json:"quota"`
	Remaining   decimal.Decimal `json:"remaining"`
	WindowStart time.Time       `json:"window_start"`
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

// QueryUseCase vistas de lectura para el despacho y para el empleado. No modifica nada.
type QueryUseCase struct {
	viewer    Viewer
	ledger    checkout.SpendLedger
	quota     decimal.Decimal
	calendar  order.Calendar
	generator receipt.Generator
	now       func() time.Time
}

// NewQueryUseCase construye el caso de uso. generator puede ser nil si no se sirven recibos.
func NewQueryUseCase(viewer Viewer, quota decimal.Decimal, calendar order.Calendar, generator receipt.Generator, now func() time.Time) *QueryUseCase {
	if now == nil {
		now = time.Now
	}
	return &QueryUseCase{viewer: viewer, quota: quota, calendar: calendar, generator: generator, now: now}
}

// ListOrders filtra por factura, cuenta o código de empleado, transaction id, estado, fechas y montos.
func (uc *QueryUseCase) ListOrders(ctx context.Context, f entity.OrderFilter) ([]*entity.OrderDetail, error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domain.ErrInvalidInput
	}
	if f.MinAmount != nil && f.MaxAmount != nil && f.MaxAmount.LessThan(*f.MinAmount) {
		return nil, domain.ErrInvalidInput
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	f.Limit = clampLimit(f.Limit)
	if f.Offset < 0 {
		f.Offset = 0
	}
	var out []*entity.OrderDetail
	err := uc.viewer.View(ctx, func(repos repository.TxRepos) error {
		var err error
		out, err = repos.Orders.List(ctx, f)
		return err
	})
	return out, err
}

// AccountHistory pedidos de la cuenta con total > 0 y al menos una línea.
func (uc *QueryUseCase) AccountHistory(ctx context.Context, accountID string) ([]*entity.OrderDetail, error) {
	if accountID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out []*entity.OrderDetail
	err := uc.viewer.View(ctx, func(repos repository.TxRepos) error {
		var err error
		out, err = repos.Orders.ListHistory(ctx, accountID)
		return err
	})
	return out, err
}

// WeeklySummary {spend, quota, windowStart} de la cuenta.
func (uc *QueryUseCase) WeeklySummary(ctx context.Context, accountID string) (*WeeklySummary, error) {
	if accountID == "" {
		return nil, domain.ErrInvalidInput
	}
	start := uc.calendar.WindowStart(uc.now())
	var spent decimal.Decimal
	err := uc.viewer.View(ctx, func(repos repository.TxRepos) error {
		var err error
		spent, err = uc.ledger.Spend(ctx, repos.Orders, accountID, start)
		return err
	})
	if err != nil {
		return nil, err
	}
	remaining := uc.quota.Sub(spent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return &WeeklySummary{Spend: spent, Quota: uc.quota, Remaining: remaining, WindowStart: start}, nil
}

// ListDispatch filas de la proyección de despacho, más recientes primero.
func (uc *QueryUseCase) ListDispatch(ctx context.Context, status entity.OrderStatus, limit, offset int) ([]*entity.DispatchEntry, error) {
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if offset < 0 {
		offset = 0
	}
	var out []*entity.DispatchEntry
	err := uc.viewer.View(ctx, func(repos repository.TxRepos) error {
		var err error
		out, err = repos.Dispatch.List(ctx, status, clampLimit(limit), offset)
		return err
	})
	return out, err
}

// ReceiptData datos del comprobante. Un empleado solo ve los suyos; para él un pedido ajeno no existe.
func (uc *QueryUseCase) ReceiptData(ctx context.Context, transactionID, actorID, role string) (*receipt.Data, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, domain.ErrInvalidInput
	}
	var data receipt.Data
	err := uc.viewer.View(ctx, func(repos repository.TxRepos) error {
		o, err := repos.Orders.GetByTransactionID(ctx, transactionID)
		if err != nil {
			return err
		}
		if o == nil || (!entity.IsStaff(role) && o.AccountID != actorID) {
			return domain.ErrOrderNotFound
		}
		data, err = receipt.Load(ctx, repos, o)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// Receipt genera el PDF del comprobante bajo demanda.
func (uc *QueryUseCase) Receipt(ctx context.Context, transactionID, actorID, role string) ([]byte, string, error) {
	if uc.generator == nil {
		return nil, "", domain.ErrNotFound
	}
	data, err := uc.ReceiptData(ctx, transactionID, actorID, role)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.Generate(ctx, *data)
	if err != nil {
		return nil, "", err
	}
	return pdf, receipt.FileName(data.TransactionID), nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultLimit
	case limit > maxLimit:
		return maxLimit
	}
	return limit
}
