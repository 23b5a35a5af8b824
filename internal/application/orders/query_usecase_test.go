package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-empleados-api/internal/application/orders"
	"github.com/jhoicas/tienda-empleados-api/internal/application/receipt"
	"github.com/jhoicas/tienda-empleados-api/internal/domain"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/order"
	"github.com/jhoicas/tienda-empleados-api/internal/infrastructure/memory"
)

// lunes 2024-05-20; la ventana empieza el jueves 16
var now = time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)

type fakeGenerator struct{ got receipt.Data }

func (g *fakeGenerator) Generate(_ context.Context, d receipt.Data) ([]byte, error) {
	g.got = d
	return []byte("%PDF-fake"), nil
}

func seed(t *testing.T) (*memory.Store, *orders.QueryUseCase, *fakeGenerator) {
	t.Helper()
	store := memory.NewStore()
	store.PutAccount(entity.Account{ID: "acc-1", EmployeeCode: "E-001", Name: "Ana Mora", Email: "ana@example.com", Status: entity.AccountActive})
	store.PutAccount(entity.Account{ID: "acc-2", EmployeeCode: "E-002", Name: "Luis Solano", Status: entity.AccountActive})
	store.PutProduct(entity.Product{ID: "p-cafe", Code: "1001", Name: "Café molido", Price: decimal.NewFromInt(2500), Active: true})

	line := func(id string, qty int) []entity.LineItem {
		return []entity.LineItem{{ID: id, ProductID: "p-cafe", Quantity: qty, UnitPrice: decimal.NewFromInt(2500)}}
	}
	// o1: semana vigente, entregado
	store.PutOrder(entity.Order{ID: "o1", AccountID: "acc-1", TransactionID: "INV-1", Status: entity.StatusDelivered,
		Total: decimal.NewFromInt(5000), CreatedAt: now.Add(-72 * time.Hour)}, line("l1", 2), true)
	// o2: semana vigente, cancelado
	store.PutOrder(entity.Order{ID: "o2", AccountID: "acc-1", TransactionID: "INV-2", Status: entity.StatusCancelled,
		Total: decimal.NewFromInt(2500), CreatedAt: now.Add(-48 * time.Hour)}, line("l2", 1), true)
	// o3: semana anterior
	store.PutOrder(entity.Order{ID: "o3", AccountID: "acc-1", TransactionID: "INV-3", Status: entity.StatusDelivered,
		Total: decimal.NewFromInt(7500), CreatedAt: now.Add(-8 * 24 * time.Hour)}, line("l3", 3), true)
	// o4: importación parcial sin líneas
	store.PutOrder(entity.Order{ID: "o4", AccountID: "acc-1", TransactionID: "INV-4", Status: entity.StatusRequested,
		Total: decimal.NewFromInt(1000), CreatedAt: now.Add(-time.Hour)}, nil, false)
	// o5: otra cuenta
	store.PutOrder(entity.Order{ID: "o5", AccountID: "acc-2", TransactionID: "INV-5", Status: entity.StatusRequested,
		Total: decimal.NewFromInt(2500), CreatedAt: now.Add(-time.Hour)}, line("l5", 1), true)

	gen := &fakeGenerator{}
	cal := order.Calendar{Location: time.UTC, WeekStart: time.Thursday, Blackout: time.Wednesday}
	uc := orders.NewQueryUseCase(store, decimal.NewFromInt(12000), cal, gen, func() time.Time { return now })
	return store, uc, gen
}

func TestWeeklySummary(t *testing.T) {
	_, uc, _ := seed(t)

	sum, err := uc.WeeklySummary(context.Background(), "acc-1")
	require.NoError(t, err)
	// o1 (5000) + o4 (1000); o2 cancelado y o3 de la semana anterior no cuentan
	assert.True(t, sum.Spend.Equal(decimal.NewFromInt(6000)), sum.Spend.String())
	assert.True(t, sum.Remaining.Equal(decimal.NewFromInt(6000)))
	assert.Equal(t, time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC), sum.WindowStart)

	_, err = uc.WeeklySummary(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAccountHistory_ExcluyePedidosSinLineas(t *testing.T) {
	_, uc, _ := seed(t)

	hist, err := uc.AccountHistory(context.Background(), "acc-1")
	require.NoError(t, err)
	ids := make([]string, 0, len(hist))
	for _, o := range hist {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"o2", "o1", "o3"}, ids)
	assert.Equal(t, "Café molido", hist[0].Items[0].ProductName)
}

func TestListOrders_Filtros(t *testing.T) {
	_, uc, _ := seed(t)
	ctx := context.Background()

	all, err := uc.ListOrders(ctx, entity.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	byCode, err := uc.ListOrders(ctx, entity.OrderFilter{EmployeeCode: "E-002"})
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, "o5", byCode[0].ID)

	byTx, err := uc.ListOrders(ctx, entity.OrderFilter{TransactionID: "INV-3"})
	require.NoError(t, err)
	require.Len(t, byTx, 1)
	assert.Equal(t, "FAC-00000003", byTx[0].InvoiceNumber)

	byInvoice, err := uc.ListOrders(ctx, entity.OrderFilter{InvoiceNumber: byTx[0].InvoiceNumber})
	require.NoError(t, err)
	require.Len(t, byInvoice, 1)

	from := now.Add(-4 * 24 * time.Hour)
	minAmount := decimal.NewFromInt(2000)
	maxAmount := decimal.NewFromInt(5000)
	ranged, err := uc.ListOrders(ctx, entity.OrderFilter{AccountID: "acc-1", From: &from, MinAmount: &minAmount, MaxAmount: &maxAmount})
	require.NoError(t, err)
	assert.Len(t, ranged, 2) // o1 y o2

	paged, err := uc.ListOrders(ctx, entity.OrderFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, paged, 1)
}

func TestListOrders_FiltrosInvalidos(t *testing.T) {
	_, uc, _ := seed(t)
	from, to := now, now.Add(-time.Hour)

	_, err := uc.ListOrders(context.Background(), entity.OrderFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.ListOrders(context.Background(), entity.OrderFilter{Status: "PERDIDO"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestReceipt_PropietarioYStaff(t *testing.T) {
	_, uc, gen := seed(t)
	ctx := context.Background()

	pdf, name, err := uc.Receipt(ctx, "INV-1", "acc-1", entity.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
	assert.Equal(t, "Factura_INV-1.pdf", name)
	assert.Equal(t, "Ana Mora", gen.got.AccountName)
	require.Len(t, gen.got.Lines, 1)
	assert.True(t, gen.got.Lines[0].Subtotal.Equal(decimal.NewFromInt(5000)))

	_, _, err = uc.Receipt(ctx, "INV-1", "acc-2", entity.RoleEmployee)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, _, err = uc.Receipt(ctx, "INV-1", "staff", entity.RoleAdmin)
	assert.NoError(t, err)
}
