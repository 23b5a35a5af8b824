package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
)

// ImportResult filas escritas por ImportCatalog.
type ImportResult struct {
	Products int
	Accounts int
}

// ImportCatalog hace upsert del catálogo y de las cuentas exportadas del ERP en una sola transacción.
// La llave natural es el código (producto) o el código de empleado (cuenta); los IDs existentes se conservan.
func ImportCatalog(ctx context.Context, pool *pgxpool.Pool, products []entity.Product, accounts []entity.Account) (ImportResult, error) {
	var res ImportResult
	err := pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range products {
			id := p.ID
			if id == "" {
				id = uuid.NewString()
			}
			batch.Queue(`
				INSERT INTO products (id, code, name, price, active, updated_at)
				VALUES ($1, $2, $3, $4, $5, now())
				ON CONFLICT (code) DO UPDATE
				SET name = EXCLUDED.name, price = EXCLUDED.price, active = EXCLUDED.active, updated_at = now()`,
				id, p.Code, p.Name, p.Price, p.Active)
		}
		for _, a := range accounts {
			id := a.ID
			if id == "" {
				id = uuid.NewString()
			}
			batch.Queue(`
				INSERT INTO accounts (id, employee_code, national_id, name, email, status, role)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (employee_code) DO UPDATE
				SET national_id = EXCLUDED.national_id, name = EXCLUDED.name, email = EXCLUDED.email,
				    status = EXCLUDED.status, role = EXCLUDED.role`,
				id, a.EmployeeCode, nullIfEmpty(a.NationalID), a.Name, nullIfEmpty(a.Email), a.Status, a.Role)
		}
		if batch.Len() == 0 {
			return nil
		}

		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return mapError(fmt.Sprintf("import row %d", i+1), err)
			}
		}
		if err := br.Close(); err != nil {
			return mapError("import catalog", err)
		}
		res = ImportResult{Products: len(products), Accounts: len(accounts)}
		return nil
	})
	return res, err
}
