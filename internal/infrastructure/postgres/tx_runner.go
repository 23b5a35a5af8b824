package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/tienda-empleados-api/internal/application/cart"
	"github.com/jhoicas/tienda-empleados-api/internal/application/checkout"
	"github.com/jhoicas/tienda-empleados-api/internal/application/fulfillment"
	"github.com/jhoicas/tienda-empleados-api/internal/application/notification"
	"github.com/jhoicas/tienda-empleados-api/internal/application/orders"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
)

var (
	_ checkout.TxRunner     = (*TxRunner)(nil)
	_ fulfillment.TxRunner  = (*TxRunner)(nil)
	_ cart.TxRunner         = (*TxRunner)(nil)
	_ notification.TxRunner = (*TxRunner)(nil)
	_ orders.Viewer         = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
//
// Las transacciones de escritura usan READ COMMITTED; la serialización por cuenta la da el
// SELECT ... FOR UPDATE sobre accounts, y la de pedidos el bloqueo de su fila.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción de escritura, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	return r.run(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// View igual que Run pero en una transacción de solo lectura.
func (r *TxRunner) View(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	return r.run(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadOnly}, fn)
}

func (r *TxRunner) run(ctx context.Context, opts pgx.TxOptions, fn func(repos repository.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewTxRepos(tx)); err != nil {
		return mapError("transaction", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

// NewTxRepos arma los repositorios sobre un mismo Querier (pool o tx).
func NewTxRepos(q Querier) repository.TxRepos {
	return repository.TxRepos{
		Accounts:  NewAccountRepository(q),
		Products:  NewProductRepository(q),
		Carts:     NewCartRepository(q),
		Orders:    NewOrderRepository(q),
		Billing:   NewBillingRepository(q),
		Dispatch:  NewDispatchRepository(q),
		Checkouts: NewCheckoutRequestRepository(q),
	}
}
