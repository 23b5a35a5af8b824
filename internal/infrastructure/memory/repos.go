package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-empleados-api/internal/domain"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
)

var (
	_ repository.AccountRepository     = (*AccountRepo)(nil)
	_ repository.ProductRepository     = (*ProductRepo)(nil)
	_ repository.CartRepository        = (*CartRepo)(nil)
	_ repository.OrderRepository       = (*OrderRepo)(nil)
	_ repository.BillingRepository     = (*BillingRepo)(nil)
	_ repository.DispatchRepository    = (*DispatchRepo)(nil)
	_ repository.IdempotencyRepository = (*CheckoutRepo)(nil)
)

// AccountRepo cuentas en memoria. LockByID no bloquea: la transacción ya es exclusiva.
type AccountRepo struct{ st *state }

func (r *AccountRepo) GetByID(_ context.Context, id string) (*entity.Account, error) {
	if a, ok := r.st.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *AccountRepo) GetByEmployeeCode(_ context.Context, code string) (*entity.Account, error) {
	for _, a := range r.st.accounts {
		if a.EmployeeCode == code {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *AccountRepo) LockByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.GetByID(ctx, id)
}

// ProductRepo catálogo en memoria.
type ProductRepo struct{ st *state }

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	if p, ok := r.st.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *ProductRepo) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.st.products[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

// CartRepo carritos en memoria.
type CartRepo struct{ st *state }

func (r *CartRepo) ListByAccount(_ context.Context, accountID string) ([]*entity.CartItem, error) {
	items := r.st.carts[accountID]
	out := make([]*entity.CartItem, 0, len(items))
	for _, it := range items {
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *CartRepo) Get(_ context.Context, accountID, productID string) (*entity.CartItem, error) {
	if it, ok := r.st.carts[accountID][productID]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (r *CartRepo) Upsert(_ context.Context, item *entity.CartItem) error {
	m, ok := r.st.carts[item.AccountID]
	if !ok {
		m = map[string]*entity.CartItem{}
		r.st.carts[item.AccountID] = m
	}
	cp := *item
	m[item.ProductID] = &cp
	return nil
}

func (r *CartRepo) Delete(_ context.Context, accountID, productID string) (bool, error) {
	m := r.st.carts[accountID]
	if _, ok := m[productID]; !ok {
		return false, nil
	}
	delete(m, productID)
	return true, nil
}

func (r *CartRepo) Clear(_ context.Context, accountID string) error {
	delete(r.st.carts, accountID)
	return nil
}

// OrderRepo pedidos y líneas en memoria.
type OrderRepo struct{ st *state }

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	for _, existing := range r.st.orders {
		if existing.TransactionID == o.TransactionID {
			return domain.ErrConflict
		}
	}
	cp := *o
	r.st.orders[o.ID] = &cp
	return nil
}

func (r *OrderRepo) CreateLineItems(_ context.Context, items []*entity.LineItem) error {
	for _, it := range items {
		if !entity.ValidQuantity(it.Quantity) {
			return domain.ErrInvalidQuantity
		}
		cp := *it
		r.st.lineItems[it.OrderID] = append(r.st.lineItems[it.OrderID], &cp)
	}
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	if o, ok := r.st.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (r *OrderRepo) GetByTransactionID(_ context.Context, txID string) (*entity.Order, error) {
	for _, o := range r.st.orders {
		if o.TransactionID == txID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *OrderRepo) LockByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) LockByTransactionID(ctx context.Context, txID string) (*entity.Order, error) {
	return r.GetByTransactionID(ctx, txID)
}

func (r *OrderRepo) UpdateStatus(_ context.Context, id string, from, to entity.OrderStatus, at time.Time) error {
	o, ok := r.st.orders[id]
	if !ok || o.Status != from {
		return domain.ErrConflict
	}
	o.Status = to
	o.UpdatedAt = at
	return nil
}

func (r *OrderRepo) SumTotals(_ context.Context, accountID string, since time.Time, statuses []entity.OrderStatus) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, o := range r.st.orders {
		if o.AccountID == accountID && !o.CreatedAt.Before(since) && hasStatus(statuses, o.Status) {
			sum = sum.Add(o.Total)
		}
	}
	return sum, nil
}

func (r *OrderRepo) CountByStatus(_ context.Context, accountID string, since time.Time, statuses []entity.OrderStatus) (int, error) {
	n := 0
	for _, o := range r.st.orders {
		if o.AccountID == accountID && !o.CreatedAt.Before(since) && hasStatus(statuses, o.Status) {
			n++
		}
	}
	return n, nil
}

func (r *OrderRepo) ListLineItems(_ context.Context, orderID string) ([]entity.LineItemDetail, error) {
	return r.details(orderID), nil
}

func (r *OrderRepo) details(orderID string) []entity.LineItemDetail {
	items := r.st.lineItems[orderID]
	out := make([]entity.LineItemDetail, 0, len(items))
	for _, it := range items {
		d := entity.LineItemDetail{LineItem: *it}
		if p, ok := r.st.products[it.ProductID]; ok {
			d.ProductCode = p.Code
			d.ProductName = p.Name
		}
		out = append(out, d)
	}
	return out
}

func (r *OrderRepo) detail(o *entity.Order) *entity.OrderDetail {
	d := &entity.OrderDetail{Order: *o, Items: r.details(o.ID)}
	if a, ok := r.st.accounts[o.AccountID]; ok {
		d.EmployeeCode = a.EmployeeCode
		d.AccountName = a.Name
	}
	if b, ok := r.st.billing[o.ID]; ok {
		d.InvoiceNumber = b.InvoiceNumber
	}
	return d
}

func (r *OrderRepo) List(_ context.Context, f entity.OrderFilter) ([]*entity.OrderDetail, error) {
	out := make([]*entity.OrderDetail, 0)
	for _, o := range r.st.orders {
		d := r.detail(o)
		if matches(d, f) {
			out = append(out, d)
		}
	}
	sortNewestFirst(out)
	return paginate(out, f.Limit, f.Offset), nil
}

func (r *OrderRepo) ListHistory(_ context.Context, accountID string) ([]*entity.OrderDetail, error) {
	out := make([]*entity.OrderDetail, 0)
	for _, o := range r.st.orders {
		if o.AccountID != accountID || !o.Total.IsPositive() || len(r.st.lineItems[o.ID]) == 0 {
			continue
		}
		out = append(out, r.detail(o))
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *OrderRepo) LockByStatus(_ context.Context, status entity.OrderStatus) ([]*entity.Order, error) {
	out := make([]*entity.Order, 0)
	for _, o := range r.st.orders {
		if o.Status == status {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *OrderRepo) ListUnprojected(_ context.Context) ([]*entity.OrderDetail, error) {
	out := make([]*entity.OrderDetail, 0)
	for _, o := range r.st.orders {
		if _, ok := r.st.dispatch[o.ID]; !ok {
			out = append(out, r.detail(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// BillingRepo registros de facturación en memoria; Status se toma del pedido.
type BillingRepo struct{ st *state }

func (r *BillingRepo) Create(_ context.Context, b *entity.BillingRecord) error {
	if _, ok := r.st.billing[b.OrderID]; ok {
		return domain.ErrConflict
	}
	r.st.invoiceSeq++
	b.InvoiceNumber = invoiceNumber(r.st.invoiceSeq)
	cp := *b
	r.st.billing[b.OrderID] = &cp
	return nil
}

func (r *BillingRepo) GetByOrderID(_ context.Context, orderID string) (*entity.BillingRecord, error) {
	b, ok := r.st.billing[orderID]
	if !ok {
		return nil, nil
	}
	cp := *b
	if o, ok := r.st.orders[orderID]; ok {
		cp.Status = o.Status
	}
	return &cp, nil
}

// DispatchRepo proyección de despacho en memoria.
type DispatchRepo struct{ st *state }

func (r *DispatchRepo) Insert(_ context.Context, e *entity.DispatchEntry) (bool, error) {
	if _, ok := r.st.dispatch[e.OrderID]; ok {
		return false, nil
	}
	cp := *e
	r.st.dispatch[e.OrderID] = &cp
	return true, nil
}

func (r *DispatchRepo) Count(_ context.Context) (int, error) {
	return len(r.st.dispatch), nil
}

func (r *DispatchRepo) UpdateStatus(_ context.Context, orderID string, status entity.OrderStatus, at time.Time) error {
	if e, ok := r.st.dispatch[orderID]; ok {
		e.Status = status
		e.UpdatedAt = at
	}
	return nil
}

func (r *DispatchRepo) UpdateEmailStatus(_ context.Context, orderID, emailStatus string, at time.Time) error {
	if e, ok := r.st.dispatch[orderID]; ok {
		e.EmailStatus = emailStatus
		e.UpdatedAt = at
	}
	return nil
}

func (r *DispatchRepo) List(_ context.Context, status entity.OrderStatus, limit, offset int) ([]*entity.DispatchEntry, error) {
	out := make([]*entity.DispatchEntry, 0, len(r.st.dispatch))
	for _, e := range r.st.dispatch {
		if status != "" && e.Status != status {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func (r *DispatchRepo) CreateExportRows(_ context.Context, rows []*entity.DispatchExportRow) error {
	for _, row := range rows {
		cp := *row
		r.st.exports = append(r.st.exports, &cp)
	}
	return nil
}

// CheckoutRepo llaves de idempotencia en memoria.
type CheckoutRepo struct{ st *state }

func (r *CheckoutRepo) Find(_ context.Context, accountID, key string) (*entity.CheckoutRequest, error) {
	if c, ok := r.st.checkouts[accountID+"|"+key]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *CheckoutRepo) Save(_ context.Context, c *entity.CheckoutRequest) error {
	cp := *c
	r.st.checkouts[c.AccountID+"|"+c.IdempotencyKey] = &cp
	return nil
}

func hasStatus(statuses []entity.OrderStatus, s entity.OrderStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

func matches(d *entity.OrderDetail, f entity.OrderFilter) bool {
	switch {
	case f.InvoiceNumber != "" && d.InvoiceNumber != f.InvoiceNumber:
		return false
	case f.AccountID != "" && d.AccountID != f.AccountID:
		return false
	case f.EmployeeCode != "" && d.EmployeeCode != f.EmployeeCode:
		return false
	case f.TransactionID != "" && d.TransactionID != f.TransactionID:
		return false
	case f.Status != "" && d.Status != f.Status:
		return false
	case f.From != nil && d.CreatedAt.Before(*f.From):
		return false
	case f.To != nil && !d.CreatedAt.Before(*f.To):
		return false
	case f.MinAmount != nil && d.Total.LessThan(*f.MinAmount):
		return false
	case f.MaxAmount != nil && d.Total.GreaterThan(*f.MaxAmount):
		return false
	}
	return true
}

func sortNewestFirst(out []*entity.OrderDetail) {
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > len(items) {
		return items[:0]
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
