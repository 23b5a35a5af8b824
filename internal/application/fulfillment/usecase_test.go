package fulfillment_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-empleados-api/internal/application/fulfillment"
	"github.com/jhoicas/tienda-empleados-api/internal/domain"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
	"github.com/jhoicas/tienda-empleados-api/internal/infrastructure/memory"
)

var (
	now        = time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	dispatcher = fulfillment.Actor{AccountID: "staff-1", Role: entity.RoleDispatcher}
)

func seed(t *testing.T) (*memory.Store, *fulfillment.UseCase) {
	t.Helper()
	store := memory.NewStore()
	store.PutAccount(entity.Account{ID: "acc-1", EmployeeCode: "E-001", Name: "Ana Mora", Status: entity.AccountActive, Role: entity.RoleEmployee})
	store.PutAccount(entity.Account{ID: "acc-2", EmployeeCode: "E-002", Name: "Luis Solano", Status: entity.AccountActive, Role: entity.RoleEmployee})
	store.PutProduct(entity.Product{ID: "p-cafe", Code: "1001", Name: "Café molido", Price: decimal.NewFromInt(2500), Active: true})
	store.PutProduct(entity.Product{ID: "p-arroz", Code: "1002", Name: "Arroz", Price: decimal.NewFromInt(1000), Active: true})
	return store, fulfillment.NewUseCase(store, func() time.Time { return now }, nil)
}

func putOrder(store *memory.Store, id, accountID string, status entity.OrderStatus, billed bool) {
	store.PutOrder(entity.Order{
		ID: id, AccountID: accountID, TransactionID: "INV-" + id, Status: status,
		Total: decimal.NewFromInt(3500), CreatedAt: now.Add(-time.Hour),
	}, []entity.LineItem{
		{ID: id + "-1", ProductID: "p-cafe", Quantity: 1, UnitPrice: decimal.NewFromInt(2500)},
		{ID: id + "-2", ProductID: "p-arroz", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
	}, billed)
}

func statusOf(t *testing.T, store *memory.Store, orderID string) (entity.OrderStatus, entity.OrderStatus) {
	t.Helper()
	var header, billing entity.OrderStatus
	require.NoError(t, store.View(context.Background(), func(r repository.TxRepos) error {
		o, err := r.Orders.GetByID(context.Background(), orderID)
		require.NoError(t, err)
		b, err := r.Billing.GetByOrderID(context.Background(), orderID)
		require.NoError(t, err)
		header, billing = o.Status, b.Status
		return nil
	}))
	return header, billing
}

func TestChangeStatus_FlujoCompleto(t *testing.T) {
	store, uc := seed(t)
	putOrder(store, "o1", "acc-1", entity.StatusRequested, true)
	_, err := uc.ResyncDispatch(context.Background())
	require.NoError(t, err)

	for _, target := range []entity.OrderStatus{entity.StatusProcessing, entity.StatusReadyForPickup, entity.StatusDelivered} {
		o, err := uc.ChangeStatus(context.Background(), fulfillment.ChangeStatusInput{OrderID: "o1", Target: target, Actor: dispatcher})
		require.NoError(t, err)
		assert.Equal(t, target, o.Status)

		header, billing := statusOf(t, store, "o1")
		assert.Equal(t, target, header)
		assert.Equal(t, header, billing)
	}
	entries := store.DispatchEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, entity.StatusDelivered, entries[0].Status)
}

func TestChangeStatus_TransicionesInvalidas(t *testing.T) {
	store, uc := seed(t)
	putOrder(store, "o-ready", "acc-1", entity.StatusReadyForPickup, true)
	putOrder(store, "o-done", "acc-1", entity.StatusDelivered, true)

	cases := []struct {
		id     string
		target entity.OrderStatus
	}{
		{"o-ready", entity.StatusRequested},
		{"o-ready", entity.StatusCancelled},
		{"o-done", entity.StatusCancelled},
		{"o-done", entity.StatusProcessing},
	}
	for _, tc := range cases {
		before, _ := statusOf(t, store, tc.id)
		_, err := uc.ChangeStatus(context.Background(), fulfillment.ChangeStatusInput{OrderID: tc.id, Target: tc.target, Actor: dispatcher})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "%s -> %s", tc.id, tc.target)
		after, _ := statusOf(t, store, tc.id)
		assert.Equal(t, before, after)
	}
}

func TestChangeStatus_NoEncontradoYEstadoInvalido(t *testing.T) {
	_, uc := seed(t)

	_, err := uc.ChangeStatus(context.Background(), fulfillment.ChangeStatusInput{OrderID: "nada", Target: entity.StatusProcessing})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = uc.ChangeStatus(context.Background(), fulfillment.ChangeStatusInput{OrderID: "nada", Target: "PERDIDO"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestChangeStatus_CambiosConcurrentes(t *testing.T) {
	store, uc := seed(t)
	putOrder(store, "o1", "acc-1", entity.StatusRequested, true)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	targets := []entity.OrderStatus{entity.StatusProcessing, entity.StatusCancelled}
	for i := range targets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.ChangeStatus(context.Background(), fulfillment.ChangeStatusInput{OrderID: "o1", Target: targets[i], Actor: dispatcher})
		}(i)
	}
	wg.Wait()

	// Processing -> Cancelled también es válida, así que ambos pueden aplicarse en ese orden.
	header, billing := statusOf(t, store, "o1")
	assert.Equal(t, header, billing)
	if errs[0] == nil && errs[1] == nil {
		assert.Equal(t, entity.StatusCancelled, header)
	} else {
		failed := errs[0]
		if failed == nil {
			failed = errs[1]
		}
		assert.ErrorIs(t, failed, domain.ErrInvalidTransition)
	}
}

// Escenario E: entregado y luego cancelación rechazada.
func TestCancelOrder_EscenarioE_YaEntregado(t *testing.T) {
	store, uc := seed(t)
	putOrder(store, "o1", "acc-1", entity.StatusReadyForPickup, true)

	_, err := uc.ChangeStatus(context.Background(), fulfillment.ChangeStatusInput{OrderID: "o1", Target: entity.StatusDelivered, Actor: dispatcher})
	require.NoError(t, err)

	_, err = uc.CancelOrder(context.Background(), fulfillment.CancelInput{TransactionID: "INV-o1", Actor: fulfillment.Actor{AccountID: "acc-1", Role: entity.RoleEmployee}})
	assert.ErrorIs(t, err, domain.ErrAlreadyDelivered)

	header, billing := statusOf(t, store, "o1")
	assert.Equal(t, entity.StatusDelivered, header)
	assert.Equal(t, entity.StatusDelivered, billing)
}

func TestCancelOrder_PropioYAjeno(t *testing.T) {
	store, uc := seed(t)
	putOrder(store, "o1", "acc-1", entity.StatusProcessing, true)
	owner := fulfillment.Actor{AccountID: "acc-1", Role: entity.RoleEmployee}
	other := fulfillment.Actor{AccountID: "acc-2", Role: entity.RoleEmployee}

	_, err := uc.CancelOrder(context.Background(), fulfillment.CancelInput{TransactionID: "INV-o1", Actor: other})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	o, err := uc.CancelOrder(context.Background(), fulfillment.CancelInput{TransactionID: "INV-o1", Actor: owner})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, o.Status)

	// repetir no falla
	o, err = uc.CancelOrder(context.Background(), fulfillment.CancelInput{TransactionID: "INV-o1", Actor: owner})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, o.Status)

	_, err = uc.CancelOrder(context.Background(), fulfillment.CancelInput{TransactionID: "INV-nada", Actor: dispatcher})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestCancelOrder_StaffCancelaListoParaRecoger(t *testing.T) {
	store, uc := seed(t)
	putOrder(store, "o1", "acc-2", entity.StatusReadyForPickup, true)

	o, err := uc.CancelOrder(context.Background(), fulfillment.CancelInput{TransactionID: "INV-o1", Actor: dispatcher})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, o.Status)
}

func TestResyncDispatch_Idempotente(t *testing.T) {
	store, uc := seed(t)
	putOrder(store, "o1", "acc-1", entity.StatusRequested, true)
	putOrder(store, "o2", "acc-2", entity.StatusDelivered, true)
	putOrder(store, "o3", "acc-2", entity.StatusProcessing, false) // sin facturación

	first, err := uc.ResyncDispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fulfillment.ResyncReport{Inserted: 2, SkippedProjected: 0, SkippedNoBilling: 1}, *first)
	snapshot := store.DispatchEntries()

	second, err := uc.ResyncDispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fulfillment.ResyncReport{Inserted: 0, SkippedProjected: 2, SkippedNoBilling: 1}, *second)
	assert.ElementsMatch(t, snapshot, store.DispatchEntries())

	for _, e := range snapshot {
		if e.OrderID == "o1" {
			assert.Equal(t, "Café molido x1, Arroz x1", e.Products)
			assert.Equal(t, "E-001", e.EmployeeCode)
		}
	}
}

func TestResyncDispatch_SoloPedidosSinProyeccion(t *testing.T) {
	store, uc := seed(t)
	putOrder(store, "o1", "acc-1", entity.StatusRequested, true)
	_, err := uc.ResyncDispatch(context.Background())
	require.NoError(t, err)

	_, err = uc.ChangeStatus(context.Background(), fulfillment.ChangeStatusInput{OrderID: "o1", Target: entity.StatusProcessing, Actor: dispatcher})
	require.NoError(t, err)
	putOrder(store, "o2", "acc-2", entity.StatusReadyForPickup, true)

	report, err := uc.ResyncDispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fulfillment.ResyncReport{Inserted: 1, SkippedProjected: 1, SkippedNoBilling: 0}, *report)

	byOrder := map[string]entity.DispatchEntry{}
	for _, e := range store.DispatchEntries() {
		byOrder[e.OrderID] = e
	}
	require.Len(t, byOrder, 2)
	assert.Equal(t, entity.StatusProcessing, byOrder["o1"].Status, "la fila existente no se reescribe")
	assert.Equal(t, entity.StatusReadyForPickup, byOrder["o2"].Status)
	assert.Equal(t, "Luis Solano", byOrder["o2"].AccountName)
}

func TestExportRequested(t *testing.T) {
	store, uc := seed(t)
	putOrder(store, "o1", "acc-1", entity.StatusRequested, true)
	putOrder(store, "o2", "acc-2", entity.StatusRequested, true)
	putOrder(store, "o3", "acc-2", entity.StatusReadyForPickup, true)

	rows, err := uc.ExportRequested(context.Background(), dispatcher)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Len(t, store.ExportRows(), 4)

	for _, id := range []string{"o1", "o2"} {
		header, billing := statusOf(t, store, id)
		assert.Equal(t, entity.StatusProcessing, header)
		assert.Equal(t, header, billing)
	}
	header, _ := statusOf(t, store, "o3")
	assert.Equal(t, entity.StatusReadyForPickup, header)

	codes := map[string]bool{}
	for _, r := range rows {
		codes[r.EmployeeCode+"/"+r.ProductCode] = true
		assert.Equal(t, entity.ExportPending, r.State)
	}
	assert.True(t, codes["E-001/1001"])
	assert.True(t, codes["E-002/1002"])

	// una segunda exportación no encuentra pedidos
	rows, err = uc.ExportRequested(context.Background(), dispatcher)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Len(t, store.ExportRows(), 4)
}

func TestCancelOrder_ContextoCancelado(t *testing.T) {
	store, uc := seed(t)
	putOrder(store, "o1", "acc-1", entity.StatusRequested, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := uc.CancelOrder(ctx, fulfillment.CancelInput{TransactionID: "INV-o1", Actor: dispatcher})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransient))

	header, _ := statusOf(t, store, "o1")
	assert.Equal(t, entity.StatusRequested, header)
}
