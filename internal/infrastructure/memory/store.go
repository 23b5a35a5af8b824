package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/tienda-empleados-api/internal/domain"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
)

// state es una copia completa de las tablas. Cada transacción trabaja sobre un clon y solo lo
// publica al confirmar, así un error deja el estado intacto.
type state struct {
	accounts   map[string]*entity.Account
	products   map[string]*entity.Product
	carts      map[string]map[string]*entity.CartItem // account -> product
	orders     map[string]*entity.Order
	lineItems  map[string][]*entity.LineItem // order -> líneas
	billing    map[string]*entity.BillingRecord
	dispatch   map[string]*entity.DispatchEntry // order -> entrada
	exports    []*entity.DispatchExportRow
	checkouts  map[string]*entity.CheckoutRequest // account|key
	invoiceSeq int64
}

func newState() *state {
	return &state{
		accounts:  map[string]*entity.Account{},
		products:  map[string]*entity.Product{},
		carts:     map[string]map[string]*entity.CartItem{},
		orders:    map[string]*entity.Order{},
		lineItems: map[string][]*entity.LineItem{},
		billing:   map[string]*entity.BillingRecord{},
		dispatch:  map[string]*entity.DispatchEntry{},
		checkouts: map[string]*entity.CheckoutRequest{},
	}
}

func (s *state) clone() *state {
	c := newState()
	c.invoiceSeq = s.invoiceSeq
	for k, v := range s.accounts {
		a := *v
		c.accounts[k] = &a
	}
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	for acc, items := range s.carts {
		m := make(map[string]*entity.CartItem, len(items))
		for k, v := range items {
			it := *v
			m[k] = &it
		}
		c.carts[acc] = m
	}
	for k, v := range s.orders {
		o := *v
		c.orders[k] = &o
	}
	for k, v := range s.lineItems {
		items := make([]*entity.LineItem, len(v))
		for i, li := range v {
			cp := *li
			items[i] = &cp
		}
		c.lineItems[k] = items
	}
	for k, v := range s.billing {
		b := *v
		c.billing[k] = &b
	}
	for k, v := range s.dispatch {
		d := *v
		c.dispatch[k] = &d
	}
	c.exports = make([]*entity.DispatchExportRow, len(s.exports))
	for i, v := range s.exports {
		r := *v
		c.exports[i] = &r
	}
	for k, v := range s.checkouts {
		r := *v
		c.checkouts[k] = &r
	}
	return c
}

// Store almacenamiento en memoria con la misma semántica transaccional que PostgreSQL para este
// dominio: un único escritor a la vez (equivale a serializar todas las transacciones) y rollback
// completo ante error.
type Store struct {
	mu     sync.RWMutex
	writer chan struct{}
	st     *state
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{writer: make(chan struct{}, 1), st: newState()}
}

// Run ejecuta fn como transacción de escritura. Esperar el turno respeta el deadline de ctx.
func (s *Store) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("begin transaction: %w: %v", domain.ErrTransient, ctx.Err())
	}
	defer func() { <-s.writer }()

	s.mu.RLock()
	work := s.st.clone()
	s.mu.RUnlock()

	if err := fn(reposFor(work)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w: %v", domain.ErrTransient, err)
	}

	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

// View ejecuta fn sobre el estado confirmado (solo lectura).
func (s *Store) View(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin read: %w: %v", domain.ErrTransient, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(reposFor(s.st))
}

func reposFor(st *state) repository.TxRepos {
	return repository.TxRepos{
		Accounts:  &AccountRepo{st: st},
		Products:  &ProductRepo{st: st},
		Carts:     &CartRepo{st: st},
		Orders:    &OrderRepo{st: st},
		Billing:   &BillingRepo{st: st},
		Dispatch:  &DispatchRepo{st: st},
		Checkouts: &CheckoutRepo{st: st},
	}
}

// PutAccount da de alta o reemplaza una cuenta (carga inicial y tests).
func (s *Store) PutAccount(a entity.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.accounts[a.ID] = &a
}

// PutProduct da de alta o reemplaza un producto del catálogo.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = &p
}

// PutOrder carga un pedido histórico con sus líneas. billed indica si tiene registro de facturación.
func (s *Store) PutOrder(o entity.Order, items []entity.LineItem, billed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.orders[o.ID] = &o
	for i := range items {
		li := items[i]
		li.OrderID = o.ID
		s.st.lineItems[o.ID] = append(s.st.lineItems[o.ID], &li)
	}
	if billed {
		s.st.invoiceSeq++
		s.st.billing[o.ID] = &entity.BillingRecord{
			ID:            "bill-" + o.ID,
			InvoiceNumber: invoiceNumber(s.st.invoiceSeq),
			OrderID:       o.ID,
			TransactionID: o.TransactionID,
			Total:         o.Total,
			BilledAt:      o.CreatedAt,
		}
	}
}

// Orders devuelve una copia de todos los pedidos confirmados.
func (s *Store) Orders() []entity.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Order, 0, len(s.st.orders))
	for _, o := range s.st.orders {
		out = append(out, *o)
	}
	return out
}

// DispatchEntries devuelve una copia de la proyección de despacho.
func (s *Store) DispatchEntries() []entity.DispatchEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.DispatchEntry, 0, len(s.st.dispatch))
	for _, d := range s.st.dispatch {
		out = append(out, *d)
	}
	return out
}

// ExportRows devuelve una copia de las filas exportadas al ERP.
func (s *Store) ExportRows() []entity.DispatchExportRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.DispatchExportRow, 0, len(s.st.exports))
	for _, r := range s.st.exports {
		out = append(out, *r)
	}
	return out
}

// CartSize devuelve cuántas líneas tiene el carrito de la cuenta.
func (s *Store) CartSize(accountID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.st.carts[accountID])
}

func invoiceNumber(seq int64) string {
	return fmt.Sprintf("FAC-%08d", seq)
}
