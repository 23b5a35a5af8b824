package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

// AccountRepo lectura de cuentas (usable con pool o tx).
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

const accountColumns = `id, employee_code, national_id, name, email, status, role, created_at`

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.get(ctx, "get account", `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *AccountRepo) GetByEmployeeCode(ctx context.Context, code string) (*entity.Account, error) {
	return r.get(ctx, "get account by code", `SELECT `+accountColumns+` FROM accounts WHERE employee_code = $1`, code)
}

// LockByID toma el lock de fila que serializa checkout y carrito de la cuenta.
func (r *AccountRepo) LockByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.get(ctx, "lock account", `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
}

func (r *AccountRepo) get(ctx context.Context, op, query string, arg string) (*entity.Account, error) {
	var a entity.Account
	var nationalID, email *string
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&a.ID, &a.EmployeeCode, &nationalID, &a.Name, &email, &a.Status, &a.Role, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	a.NationalID = derefStr(nationalID)
	a.Email = derefStr(email)
	return &a, nil
}
