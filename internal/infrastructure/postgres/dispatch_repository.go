package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
)

var _ repository.DispatchRepository = (*DispatchRepo)(nil)

// DispatchRepo proyección de despacho y exportación al ERP (usable con pool o tx).
type DispatchRepo struct {
	q Querier
}

// NewDispatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDispatchRepository(q Querier) *DispatchRepo {
	return &DispatchRepo{q: q}
}

// Insert no duplica la proyección de un pedido (ON CONFLICT DO NOTHING).
func (r *DispatchRepo) Insert(ctx context.Context, e *entity.DispatchEntry) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO dispatch_entries (id, order_id, account_id, transaction_id, products, amount, status, email_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (order_id) DO NOTHING`,
		e.ID, e.OrderID, e.AccountID, e.TransactionID, e.Products, e.Amount,
		string(e.Status), e.EmailStatus, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return false, mapError("insert dispatch entry", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *DispatchRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM dispatch_entries`).Scan(&n); err != nil {
		return 0, mapError("count dispatch entries", err)
	}
	return n, nil
}

func (r *DispatchRepo) UpdateStatus(ctx context.Context, orderID string, status entity.OrderStatus, at time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE dispatch_entries SET status = $2, updated_at = $3 WHERE order_id = $1`,
		orderID, string(status), at)
	return mapError("update dispatch status", err)
}

func (r *DispatchRepo) UpdateEmailStatus(ctx context.Context, orderID, emailStatus string, at time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE dispatch_entries SET email_status = $2, updated_at = $3 WHERE order_id = $1`,
		orderID, emailStatus, at)
	return mapError("update dispatch email status", err)
}

// List más recientes primero. status vacío no filtra; limit 0 no limita.
func (r *DispatchRepo) List(ctx context.Context, status entity.OrderStatus, limit, offset int) ([]*entity.DispatchEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT d.id, d.order_id, d.account_id, a.employee_code, a.name, d.transaction_id,
		       d.products, d.amount, d.status, d.email_status, d.created_at, d.updated_at
		FROM dispatch_entries d
		JOIN accounts a ON a.id = d.account_id
		WHERE ($1 = '' OR d.status = $1)
		ORDER BY d.created_at DESC
		LIMIT NULLIF($2, 0) OFFSET $3`,
		string(status), limit, offset)
	if err != nil {
		return nil, mapError("list dispatch entries", err)
	}
	defer rows.Close()
	list := make([]*entity.DispatchEntry, 0)
	for rows.Next() {
		var e entity.DispatchEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.AccountID, &e.EmployeeCode, &e.AccountName, &e.TransactionID,
			&e.Products, &e.Amount, &e.Status, &e.EmailStatus, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, mapError("scan dispatch entry", err)
		}
		list = append(list, &e)
	}
	return list, mapError("list dispatch entries", rows.Err())
}

// CreateExportRows inserta las filas de alisto en un solo batch.
func (r *DispatchRepo) CreateExportRows(ctx context.Context, rows []*entity.DispatchExportRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO dispatch_exports (id, order_id, employee_code, product_code, quantity, ordered_at, exported_at, state)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			row.ID, row.OrderID, row.EmployeeCode, row.ProductCode, row.Quantity, row.OrderedAt, row.ExportedAt, row.State)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range rows {
		if _, err := br.Exec(); err != nil {
			return mapError("insert dispatch export", err)
		}
	}
	return nil
}
