package checkout

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-empleados-api/internal/domain"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/order"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
	"github.com/jhoicas/tienda-empleados-api/pkg/logger"
)

// Config parámetros de negocio del checkout.
type Config struct {
	Quota             decimal.Decimal
	Calendar          order.Calendar
	IdempotencyWindow time.Duration
	Now               func() time.Time // nil = time.Now
}

// Item una línea explícita (checkout de despachador).
type Item struct {
	ProductID string
	Quantity  int
}

// Input intento de checkout. Si FromCart es true el snapshot se lee del carrito dentro de la
// transacción; si no, se usan Items. EmployeeCode identifica la cuenta en el flujo de despachador.
type Input struct {
	AccountID      string
	EmployeeCode   string
	IdempotencyKey string
	FromCart       bool
	Items          []Item
	Device         string
	Location       string
}

// Result pedido creado (o el ya existente si la llave se repite).
type Result struct {
	OrderID       string             `json:"order_id"`
	AccountID     string             `json:"account_id"`
	TransactionID string             `json:"transaction_id"`
	Total         decimal.Decimal    `json:"total"`
	Status        entity.OrderStatus `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	Replayed      bool               `json:"replayed"`
}

// UseCase controlador de admisión: día bloqueado, carrito vacío, pedido pendiente y cuota, y
// escritura del pedido, todo en una sola transacción serializada por cuenta.
type UseCase struct {
	runner    TxRunner
	ledger    SpendLedger
	writer    OrderWriter
	cache     ReplayCache    // opcional
	publisher EventPublisher // opcional
	cfg       Config
	log       *logger.Logger
}

// NewUseCase construye el caso de uso. cache y publisher pueden ser nil.
func NewUseCase(runner TxRunner, writer OrderWriter, cache ReplayCache, publisher EventPublisher, cfg Config, log *logger.Logger) *UseCase {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		runner:    runner,
		writer:    writer,
		cache:     cache,
		publisher: publisher,
		cfg:       cfg,
		log:       log.Named("checkout"),
	}
}

// AttemptCheckout admite y persiste un pedido o devuelve el error de admisión.
// No reintenta: ante un error transitorio el llamador reintenta con la misma llave.
func (uc *UseCase) AttemptCheckout(ctx context.Context, in Input) (*Result, error) {
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
	if in.IdempotencyKey == "" {
		return nil, domain.ErrMissingIdempotencyKey
	}
	if in.AccountID == "" && in.EmployeeCode == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.FromCart {
		if err := validateItems(in.Items); err != nil {
			return nil, err
		}
	}

	scope := cacheScope(in)
	if res := uc.cachedReplay(ctx, scope, in.IdempotencyKey); res != nil {
		return res, nil
	}

	now := uc.cfg.Now()
	windowStart := uc.cfg.Calendar.WindowStart(now)

	var res *Result
	err := uc.runner.Run(ctx, func(repos repository.TxRepos) error {
		// Bloqueo de la cuenta: serializa checkouts y cambios de carrito de la misma cuenta.
		acc, err := uc.lockAccount(ctx, repos.Accounts, in)
		if err != nil {
			return err
		}

		if prev, err := uc.findReplay(ctx, repos, acc.ID, in.IdempotencyKey, now); err != nil || prev != nil {
			res = prev
			return err
		}

		if uc.cfg.Calendar.IsBlackout(now) {
			return domain.ErrBlackoutDay
		}

		snapshot, err := uc.snapshot(ctx, repos.Carts, acc.ID, in)
		if err != nil {
			return err
		}
		if len(snapshot) == 0 {
			return domain.ErrEmptyCart
		}

		pending, err := repos.Orders.CountByStatus(ctx, acc.ID, windowStart, order.PendingStatuses)
		if err != nil {
			return err
		}
		if pending > 0 {
			return domain.ErrPendingOrderExists
		}

		lines, total, err := priceLines(ctx, repos.Products, snapshot)
		if err != nil {
			return err
		}

		spent, err := uc.ledger.Spend(ctx, repos.Orders, acc.ID, windowStart)
		if err != nil {
			return err
		}
		if spent.Add(total).GreaterThan(uc.cfg.Quota) {
			return &domain.QuotaExceededError{Spent: spent, Quota: uc.cfg.Quota, Attempted: total}
		}

		o, err := uc.writer.CreateOrder(ctx, repos, WriteInput{
			Account:  acc,
			Lines:    lines,
			Total:    total,
			Device:   in.Device,
			Location: in.Location,
			Now:      now,
		})
		if err != nil {
			return err
		}
		if err := repos.Checkouts.Save(ctx, &entity.CheckoutRequest{
			AccountID:      acc.ID,
			IdempotencyKey: in.IdempotencyKey,
			OrderID:        o.ID,
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		res = resultFrom(o, false)
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).
			Str("account_id", in.AccountID).
			Str("employee_code", in.EmployeeCode).
			Str("kind", string(domain.KindOf(err))).
			Msg("checkout rechazado")
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, scope, in.IdempotencyKey, *res); err != nil {
			uc.log.Warn().Err(err).Str("transaction_id", res.TransactionID).Msg("no se pudo guardar la respuesta en caché")
		}
	}
	if res.Replayed {
		uc.log.Info().Str("transaction_id", res.TransactionID).Str("account_id", res.AccountID).Msg("checkout repetido, se devuelve el pedido existente")
		return res, nil
	}

	uc.log.Info().
		Str("transaction_id", res.TransactionID).
		Str("order_id", res.OrderID).
		Str("account_id", res.AccountID).
		Str("total", res.Total.StringFixed(2)).
		Msg("pedido creado")
	if uc.publisher != nil {
		uc.publisher.Publish(order.OrderCreated{
			OrderID:       res.OrderID,
			TransactionID: res.TransactionID,
			AccountID:     res.AccountID,
			Total:         res.Total,
			CreatedAt:     res.CreatedAt,
		})
	}
	return res, nil
}

func (uc *UseCase) lockAccount(ctx context.Context, accounts repository.AccountRepository, in Input) (*entity.Account, error) {
	id := in.AccountID
	if id == "" {
		acc, err := accounts.GetByEmployeeCode(ctx, in.EmployeeCode)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			return nil, domain.ErrAccountNotFound
		}
		id = acc.ID
	}
	acc, err := accounts.LockByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domain.ErrAccountNotFound
	}
	if !acc.IsActive() {
		return nil, domain.ErrAccountInactive
	}
	return acc, nil
}

// findReplay devuelve el pedido ya creado con la misma llave dentro de la ventana de idempotencia.
func (uc *UseCase) findReplay(ctx context.Context, repos repository.TxRepos, accountID, key string, now time.Time) (*Result, error) {
	prev, err := repos.Checkouts.Find(ctx, accountID, key)
	if err != nil || prev == nil {
		return nil, err
	}
	if now.Sub(prev.CreatedAt) > uc.cfg.IdempotencyWindow {
		return nil, nil // vencida: se sobrescribe al guardar
	}
	o, err := repos.Orders.GetByID(ctx, prev.OrderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("checkout request %s apunta a un pedido inexistente", key)
	}
	return resultFrom(o, true), nil
}

func (uc *UseCase) snapshot(ctx context.Context, carts repository.CartRepository, accountID string, in Input) ([]Item, error) {
	items := in.Items
	if in.FromCart {
		rows, err := carts.ListByAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}
		items = make([]Item, 0, len(rows))
		for _, r := range rows {
			items = append(items, Item{ProductID: r.ProductID, Quantity: r.Quantity})
		}
		if err := validateItems(items); err != nil {
			return nil, err
		}
	}
	return mergeItems(items)
}

func (uc *UseCase) cachedReplay(ctx context.Context, scope, key string) *Result {
	if uc.cache == nil {
		return nil
	}
	res, err := uc.cache.Get(ctx, scope, key)
	if err != nil {
		uc.log.Warn().Err(err).Msg("caché de idempotencia no disponible")
		return nil
	}
	if res == nil {
		return nil
	}
	res.Replayed = true
	return res
}

// priceLines resuelve precio vigente desde el catálogo. Nunca se usa un total enviado por el cliente.
func priceLines(ctx context.Context, products repository.ProductRepository, items []Item) ([]PricedLine, decimal.Decimal, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	catalog, err := products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}
	total := decimal.Zero
	lines := make([]PricedLine, 0, len(items))
	for _, it := range items {
		p, ok := catalog[it.ProductID]
		if !ok || p == nil || !p.Active {
			return nil, decimal.Zero, fmt.Errorf("producto %s: %w", it.ProductID, domain.ErrProductNotFound)
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		lines = append(lines, PricedLine{Product: p, Quantity: it.Quantity})
	}
	return lines, total, nil
}

func validateItems(items []Item) error {
	for _, it := range items {
		if strings.TrimSpace(it.ProductID) == "" {
			return domain.ErrInvalidInput
		}
		if !entity.ValidQuantity(it.Quantity) {
			return domain.ErrInvalidQuantity
		}
	}
	return nil
}

// mergeItems suma cantidades de productos repetidos; una línea por producto.
// La suma también respeta entity.MaxQuantity.
func mergeItems(items []Item) ([]Item, error) {
	qty := make(map[string]int, len(items))
	for _, it := range items {
		qty[it.ProductID] += it.Quantity
		if !entity.ValidQuantity(qty[it.ProductID]) {
			return nil, fmt.Errorf("producto %s: %w", it.ProductID, domain.ErrInvalidQuantity)
		}
	}
	out := make([]Item, 0, len(qty))
	for id, q := range qty {
		out = append(out, Item{ProductID: id, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func cacheScope(in Input) string {
	if in.AccountID != "" {
		return in.AccountID
	}
	return "employee:" + in.EmployeeCode
}

func resultFrom(o *entity.Order, replayed bool) *Result {
	return &Result{
		OrderID:       o.ID,
		AccountID:     o.AccountID,
		TransactionID: o.TransactionID,
		Total:         o.Total,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		Replayed:      replayed,
	}
}
