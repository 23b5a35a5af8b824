package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-empleados-api/internal/domain"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo pedidos y líneas sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `o.id, o.account_id, o.transaction_id, o.status, o.total, o.device, o.location, o.created_at, o.updated_at`

// Create persiste la cabecera. Un transaction_id repetido se reporta como conflicto.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO orders (id, account_id, transaction_id, status, total, device, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.AccountID, o.TransactionID, string(o.Status), o.Total,
		nullIfEmpty(o.Device), nullIfEmpty(o.Location), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert order: %w", domain.ErrConflict)
		}
		return mapError("insert order", err)
	}
	return nil
}

// CreateLineItems inserta todas las líneas en un solo round-trip (batch).
func (r *OrderRepo) CreateLineItems(ctx context.Context, items []*entity.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, it := range items {
		if !entity.ValidQuantity(it.Quantity) {
			return domain.ErrInvalidQuantity
		}
		batch.Queue(`
			INSERT INTO line_items (id, order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			it.ID, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range items {
		if _, err := br.Exec(); err != nil {
			return mapError("insert line item", err)
		}
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.getOne(ctx, "get order", `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id)
}

func (r *OrderRepo) GetByTransactionID(ctx context.Context, txID string) (*entity.Order, error) {
	return r.getOne(ctx, "get order by transaction", `SELECT `+orderColumns+` FROM orders o WHERE o.transaction_id = $1`, txID)
}

func (r *OrderRepo) LockByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.getOne(ctx, "lock order", `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1 FOR UPDATE`, id)
}

func (r *OrderRepo) LockByTransactionID(ctx context.Context, txID string) (*entity.Order, error) {
	return r.getOne(ctx, "lock order by transaction", `SELECT `+orderColumns+` FROM orders o WHERE o.transaction_id = $1 FOR UPDATE`, txID)
}

// UpdateStatus es un compare-and-set sobre el estado.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to entity.OrderStatus, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		id, string(from), string(to), at)
	if err != nil {
		return mapError("update order status", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("pedido %s ya no está en %s: %w", id, from, domain.ErrConflict)
	}
	return nil
}

func (r *OrderRepo) SumTotals(ctx context.Context, accountID string, since time.Time, statuses []entity.OrderStatus) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0) FROM orders
		WHERE account_id = $1 AND created_at >= $2 AND status = ANY($3)`,
		accountID, since, statusStrings(statuses),
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, mapError("sum order totals", err)
	}
	return sum, nil
}

func (r *OrderRepo) CountByStatus(ctx context.Context, accountID string, since time.Time, statuses []entity.OrderStatus) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE account_id = $1 AND created_at >= $2 AND status = ANY($3)`,
		accountID, since, statusStrings(statuses),
	).Scan(&n)
	if err != nil {
		return 0, mapError("count orders", err)
	}
	return n, nil
}

func (r *OrderRepo) ListLineItems(ctx context.Context, orderID string) ([]entity.LineItemDetail, error) {
	byOrder, err := r.lineItemsFor(ctx, []string{orderID})
	if err != nil {
		return nil, err
	}
	return byOrder[orderID], nil
}

// List aplica el filtro de consulta del staff. To es exclusivo.
func (r *OrderRepo) List(ctx context.Context, f entity.OrderFilter) ([]*entity.OrderDetail, error) {
	where, args := buildOrderFilter(f)
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`%s %s ORDER BY o.created_at DESC LIMIT NULLIF($%d, 0) OFFSET $%d`,
		orderDetailSelect, where, len(args)-1, len(args))
	return r.listDetails(ctx, "list orders", query, args...)
}

// ListHistory omite pedidos importados sin líneas o con total cero.
func (r *OrderRepo) ListHistory(ctx context.Context, accountID string) ([]*entity.OrderDetail, error) {
	query := orderDetailSelect + `
		WHERE o.account_id = $1 AND o.total > 0
		  AND EXISTS (SELECT 1 FROM line_items li WHERE li.order_id = o.id)
		ORDER BY o.created_at DESC`
	return r.listDetails(ctx, "list history", query, accountID)
}

func (r *OrderRepo) LockByStatus(ctx context.Context, status entity.OrderStatus) ([]*entity.Order, error) {
	return r.list(ctx, "lock orders by status",
		`SELECT `+orderColumns+` FROM orders o WHERE o.status = $1 ORDER BY o.created_at FOR UPDATE`, string(status))
}

// ListUnprojected hace el anti-join contra dispatch_entries; las líneas llegan en una sola consulta.
func (r *OrderRepo) ListUnprojected(ctx context.Context) ([]*entity.OrderDetail, error) {
	query := orderDetailSelect + `
		WHERE NOT EXISTS (SELECT 1 FROM dispatch_entries d WHERE d.order_id = o.id)
		ORDER BY o.created_at`
	return r.listDetails(ctx, "list unprojected orders", query)
}

const orderDetailSelect = `
	SELECT ` + orderColumns + `, a.employee_code, a.name, COALESCE(b.invoice_number, '')
	FROM orders o
	JOIN accounts a ON a.id = o.account_id
	LEFT JOIN billing_records b ON b.order_id = o.id`

// buildOrderFilter arma el WHERE con placeholders numerados. Campos vacíos no filtran.
func buildOrderFilter(f entity.OrderFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.InvoiceNumber != "" {
		add("b.invoice_number = $%d", f.InvoiceNumber)
	}
	if f.AccountID != "" {
		add("o.account_id = $%d", f.AccountID)
	}
	if f.EmployeeCode != "" {
		add("a.employee_code = $%d", f.EmployeeCode)
	}
	if f.TransactionID != "" {
		add("o.transaction_id = $%d", f.TransactionID)
	}
	if f.Status != "" {
		add("o.status = $%d", string(f.Status))
	}
	if f.From != nil {
		add("o.created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("o.created_at < $%d", *f.To)
	}
	if f.MinAmount != nil {
		add("o.total >= $%d", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		add("o.total <= $%d", *f.MaxAmount)
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *OrderRepo) getOne(ctx context.Context, op, query string, arg string) (*entity.Order, error) {
	var o entity.Order
	if err := scanOrder(r.q.QueryRow(ctx, query, arg), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return &o, nil
}

func (r *OrderRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	list := make([]*entity.Order, 0)
	for rows.Next() {
		var o entity.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, mapError(op, err)
		}
		list = append(list, &o)
	}
	return list, mapError(op, rows.Err())
}

func (r *OrderRepo) listDetails(ctx context.Context, op, query string, args ...any) ([]*entity.OrderDetail, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	list := make([]*entity.OrderDetail, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var d entity.OrderDetail
		var device, location *string
		if err := rows.Scan(
			&d.ID, &d.AccountID, &d.TransactionID, &d.Status, &d.Total, &device, &location,
			&d.CreatedAt, &d.UpdatedAt, &d.EmployeeCode, &d.AccountName, &d.InvoiceNumber,
		); err != nil {
			rows.Close()
			return nil, mapError(op, err)
		}
		d.Device = derefStr(device)
		d.Location = derefStr(location)
		list = append(list, &d)
		ids = append(ids, d.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}

	items, err := r.lineItemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, d := range list {
		d.Items = items[d.ID]
		if d.Items == nil {
			d.Items = []entity.LineItemDetail{}
		}
	}
	return list, nil
}

func (r *OrderRepo) lineItemsFor(ctx context.Context, orderIDs []string) (map[string][]entity.LineItemDetail, error) {
	out := make(map[string][]entity.LineItemDetail, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT li.id, li.order_id, li.product_id, li.quantity, li.unit_price,
		       COALESCE(p.code, ''), COALESCE(p.name, '')
		FROM line_items li
		LEFT JOIN products p ON p.id = li.product_id
		WHERE li.order_id = ANY($1)
		ORDER BY li.order_id, li.id`, orderIDs)
	if err != nil {
		return nil, mapError("list line items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d entity.LineItemDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.Quantity, &d.UnitPrice, &d.ProductCode, &d.ProductName); err != nil {
			return nil, mapError("scan line item", err)
		}
		out[d.OrderID] = append(out[d.OrderID], d)
	}
	return out, mapError("list line items", rows.Err())
}

func scanOrder(row pgx.Row, o *entity.Order) error {
	var device, location *string
	if err := row.Scan(
		&o.ID, &o.AccountID, &o.TransactionID, &o.Status, &o.Total, &device, &location, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return err
	}
	o.Device = derefStr(device)
	o.Location = derefStr(location)
	return nil
}
