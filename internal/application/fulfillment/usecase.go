package fulfillment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-empleados-api/internal/domain"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/order"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
	"github.com/jhoicas/tienda-empleados-api/pkg/logger"
)

// TxRunner ejecuta una función dentro de una transacción de BD con repositorios atados a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// Actor quien ejecuta la operación (lo garantiza el proveedor de sesión).
type Actor struct {
	AccountID string
	Role      string
}

// ChangeStatusInput cambio de estado pedido por el despacho.
type ChangeStatusInput struct {
	OrderID string
	Target  entity.OrderStatus
	Actor   Actor
}

// CancelInput cancelación por transaction id. Un empleado solo cancela sus propios pedidos.
type CancelInput struct {
	TransactionID string
	Actor         Actor
}

// ResyncReport resultado de reconstruir la proyección de despacho.
type ResyncReport struct {
	Inserted         int `json:"inserted"`
	SkippedProjected int `json:"skipped_projected"`
	SkippedNoBilling int `json:"skipped_no_billing"`
}

// UseCase máquina de estados del despacho. Cabecera y proyección cambian en la misma transacción.
type UseCase struct {
	runner TxRunner
	now    func() time.Time
	log    *logger.Logger
}

// NewUseCase construye el caso de uso. now nil = time.Now.
func NewUseCase(runner TxRunner, now func() time.Time, log *logger.Logger) *UseCase {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{runner: runner, now: now, log: log.Named("fulfillment")}
}

// ChangeStatus aplica una arista permitida de la tabla de transiciones. El estado se relee con
// bloqueo de fila, así el segundo de dos cambios concurrentes valida contra el estado fresco.
func (uc *UseCase) ChangeStatus(ctx context.Context, in ChangeStatusInput) (*entity.Order, error) {
	if !in.Target.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	var out *entity.Order
	err := uc.runner.Run(ctx, func(repos repository.TxRepos) error {
		o, err := repos.Orders.LockByID(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrOrderNotFound
		}
		if !order.CanTransition(o.Status, in.Target) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.Status.Label(), in.Target.Label())
		}
		if err := uc.apply(ctx, repos, o, in.Target); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("order_id", out.ID).
		Str("transaction_id", out.TransactionID).
		Str("status", string(out.Status)).
		Str("actor", in.Actor.AccountID).
		Msg("estado de pedido actualizado")
	return out, nil
}

// CancelOrder cancela desde cualquier estado salvo Delivered (AlreadyDelivered). Cancelar un
// pedido ya cancelado no hace nada.
func (uc *UseCase) CancelOrder(ctx context.Context, in CancelInput) (*entity.Order, error) {
	txID := strings.TrimSpace(in.TransactionID)
	if txID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Order
	err := uc.runner.Run(ctx, func(repos repository.TxRepos) error {
		o, err := repos.Orders.LockByTransactionID(ctx, txID)
		if err != nil {
			return err
		}
		// Para un empleado, un pedido ajeno no existe.
		if o == nil || (!entity.IsStaff(in.Actor.Role) && o.AccountID != in.Actor.AccountID) {
			return domain.ErrOrderNotFound
		}
		switch {
		case o.Status == entity.StatusCancelled:
			out = o
			return nil
		case o.Status == entity.StatusDelivered:
			return domain.ErrAlreadyDelivered
		case !order.CanCancel(o.Status):
			return domain.ErrInvalidTransition
		}
		if err := uc.apply(ctx, repos, o, entity.StatusCancelled); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("order_id", out.ID).
		Str("transaction_id", out.TransactionID).
		Str("actor", in.Actor.AccountID).
		Msg("pedido cancelado")
	return out, nil
}

// apply escribe el nuevo estado en cabecera y proyección. Modifica o en sitio.
func (uc *UseCase) apply(ctx context.Context, repos repository.TxRepos, o *entity.Order, to entity.OrderStatus) error {
	now := uc.now()
	if err := repos.Orders.UpdateStatus(ctx, o.ID, o.Status, to, now); err != nil {
		return err
	}
	if err := repos.Dispatch.UpdateStatus(ctx, o.ID, to, now); err != nil {
		return err
	}
	o.Status = to
	o.UpdatedAt = now
	return nil
}

// ResyncDispatch reconstruye la proyección de despacho desde pedidos, líneas y facturación.
// Idempotente: los pedidos ya proyectados o sin registro de facturación se omiten.
func (uc *UseCase) ResyncDispatch(ctx context.Context) (*ResyncReport, error) {
	report := &ResyncReport{}
	err := uc.runner.Run(ctx, func(repos repository.TxRepos) error {
		*report = ResyncReport{}
		projected, err := repos.Dispatch.Count(ctx)
		if err != nil {
			return err
		}
		report.SkippedProjected = projected

		pending, err := repos.Orders.ListUnprojected(ctx)
		if err != nil {
			return err
		}
		for _, d := range pending {
			if d.InvoiceNumber == "" {
				report.SkippedNoBilling++
				continue
			}
			inserted, err := repos.Dispatch.Insert(ctx, uc.projection(d))
			if err != nil {
				return err
			}
			if inserted {
				report.Inserted++
			} else {
				report.SkippedProjected++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Int("inserted", report.Inserted).
		Int("skipped_projected", report.SkippedProjected).
		Int("skipped_no_billing", report.SkippedNoBilling).
		Msg("proyección de despacho sincronizada")
	return report, nil
}

func (uc *UseCase) projection(d *entity.OrderDetail) *entity.DispatchEntry {
	names := make([]string, 0, len(d.Items))
	for _, it := range d.Items {
		names = append(names, order.ProductLabel(it.ProductName, it.Quantity))
	}
	return &entity.DispatchEntry{
		ID:            uuid.New().String(),
		OrderID:       d.ID,
		AccountID:     d.AccountID,
		EmployeeCode:  d.EmployeeCode,
		AccountName:   d.AccountName,
		TransactionID: d.TransactionID,
		Products:      strings.Join(names, ", "),
		Amount:        d.Total,
		Status:        d.Status,
		// pedidos históricos: el correo ya no se reenvía
		EmailStatus: entity.EmailSent,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   uc.now(),
	}
}

// ExportRequested exporta todos los pedidos Requested a la lista de alisto del ERP (una fila por
// línea) y los pasa a Processing en la misma transacción.
func (uc *UseCase) ExportRequested(ctx context.Context, actor Actor) ([]*entity.DispatchExportRow, error) {
	var rows []*entity.DispatchExportRow
	var exported int
	err := uc.runner.Run(ctx, func(repos repository.TxRepos) error {
		rows = nil
		exported = 0
		orders, err := repos.Orders.LockByStatus(ctx, entity.StatusRequested)
		if err != nil {
			return err
		}
		now := uc.now()
		codes := map[string]string{}
		for _, o := range orders {
			code, ok := codes[o.AccountID]
			if !ok {
				acc, err := repos.Accounts.GetByID(ctx, o.AccountID)
				if err != nil {
					return err
				}
				if acc != nil {
					code = acc.EmployeeCode
				}
				codes[o.AccountID] = code
			}
			items, err := repos.Orders.ListLineItems(ctx, o.ID)
			if err != nil {
				return err
			}
			for _, it := range items {
				rows = append(rows, &entity.DispatchExportRow{
					ID:           uuid.New().String(),
					OrderID:      o.ID,
					EmployeeCode: code,
					ProductCode:  it.ProductCode,
					Quantity:     it.Quantity,
					OrderedAt:    o.CreatedAt,
					ExportedAt:   now,
					State:        entity.ExportPending,
				})
			}
			if !order.CanTransition(o.Status, entity.StatusProcessing) {
				return domain.ErrInvalidTransition
			}
			if err := uc.apply(ctx, repos, o, entity.StatusProcessing); err != nil {
				return err
			}
			exported++
		}
		if len(rows) == 0 {
			return nil
		}
		return repos.Dispatch.CreateExportRows(ctx, rows)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int("orders", exported).Int("rows", len(rows)).Str("actor", actor.AccountID).Msg("pedidos exportados al ERP")
	return rows, nil
}
