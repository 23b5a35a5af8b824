package cart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-empleados-api/internal/domain"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
)

// TxRunner transacciones de escritura y de lectura.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
	View(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// Line línea del carrito con el precio vigente (solo para mostrar; no se guarda).
type Line struct {
	ProductID string          `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Available bool            `json:"available"`
}

// View carrito resuelto contra el catálogo.
type View struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// UseCase carrito por cuenta. Cada cambio bloquea la fila de la cuenta, así nunca se intercala
// con un checkout en curso de la misma cuenta.
type UseCase struct {
	runner TxRunner
	now    func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(runner TxRunner, now func() time.Time) *UseCase {
	if now == nil {
		now = time.Now
	}
	return &UseCase{runner: runner, now: now}
}

// List devuelve el carrito con precios vigentes.
func (uc *UseCase) List(ctx context.Context, accountID string) (*View, error) {
	var view *View
	err := uc.runner.View(ctx, func(repos repository.TxRepos) error {
		items, err := repos.Carts.ListByAccount(ctx, accountID)
		if err != nil {
			return err
		}
		view, err = resolve(ctx, repos.Products, items)
		return err
	})
	return view, err
}

// Add suma qty a la cantidad existente (o crea la línea).
func (uc *UseCase) Add(ctx context.Context, accountID, productID string, qty int) (*View, error) {
	if !entity.ValidQuantity(qty) {
		return nil, domain.ErrInvalidQuantity
	}
	return uc.mutate(ctx, accountID, func(repos repository.TxRepos) error {
		if err := requireProduct(ctx, repos.Products, productID); err != nil {
			return err
		}
		current, err := repos.Carts.Get(ctx, accountID, productID)
		if err != nil {
			return err
		}
		if current != nil {
			qty += current.Quantity
		}
		if !entity.ValidQuantity(qty) {
			return fmt.Errorf("producto %s: %w", productID, domain.ErrInvalidQuantity)
		}
		return repos.Carts.Upsert(ctx, &entity.CartItem{AccountID: accountID, ProductID: productID, Quantity: qty, UpdatedAt: uc.now()})
	})
}

// Update fija la cantidad de una línea existente.
func (uc *UseCase) Update(ctx context.Context, accountID, productID string, qty int) (*View, error) {
	if !entity.ValidQuantity(qty) {
		return nil, domain.ErrInvalidQuantity
	}
	return uc.mutate(ctx, accountID, func(repos repository.TxRepos) error {
		current, err := repos.Carts.Get(ctx, accountID, productID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrCartItemNotFound
		}
		current.Quantity = qty
		current.UpdatedAt = uc.now()
		return repos.Carts.Upsert(ctx, current)
	})
}

// Remove quita un producto del carrito.
func (uc *UseCase) Remove(ctx context.Context, accountID, productID string) (*View, error) {
	return uc.mutate(ctx, accountID, func(repos repository.TxRepos) error {
		removed, err := repos.Carts.Delete(ctx, accountID, productID)
		if err != nil {
			return err
		}
		if !removed {
			return domain.ErrCartItemNotFound
		}
		return nil
	})
}

// Clear vacía el carrito.
func (uc *UseCase) Clear(ctx context.Context, accountID string) (*View, error) {
	return uc.mutate(ctx, accountID, func(repos repository.TxRepos) error {
		return repos.Carts.Clear(ctx, accountID)
	})
}

func (uc *UseCase) mutate(ctx context.Context, accountID string, fn func(repos repository.TxRepos) error) (*View, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, domain.ErrInvalidInput
	}
	var view *View
	err := uc.runner.Run(ctx, func(repos repository.TxRepos) error {
		acc, err := repos.Accounts.LockByID(ctx, accountID)
		if err != nil {
			return err
		}
		if acc == nil {
			return domain.ErrAccountNotFound
		}
		if err := fn(repos); err != nil {
			return err
		}
		items, err := repos.Carts.ListByAccount(ctx, accountID)
		if err != nil {
			return err
		}
		view, err = resolve(ctx, repos.Products, items)
		return err
	})
	return view, err
}

func requireProduct(ctx context.Context, products repository.ProductRepository, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return domain.ErrInvalidInput
	}
	p, err := products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil || !p.Active {
		return fmt.Errorf("producto %s: %w", productID, domain.ErrProductNotFound)
	}
	return nil
}

func resolve(ctx context.Context, products repository.ProductRepository, items []*entity.CartItem) (*View, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	catalog, err := products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	view := &View{Lines: make([]Line, 0, len(items)), Total: decimal.Zero}
	for _, it := range items {
		line := Line{ProductID: it.ProductID, Quantity: it.Quantity}
		if p, ok := catalog[it.ProductID]; ok {
			line.Code = p.Code
			line.Name = p.Name
			line.UnitPrice = p.Price
			line.Available = p.Active
			line.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			if p.Active {
				view.Total = view.Total.Add(line.Subtotal)
			}
		}
		view.Lines = append(view.Lines, line)
	}
	return view, nil
}
