package notification_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-empleados-api/internal/application/checkout"
	"github.com/jhoicas/tienda-empleados-api/internal/application/notification"
	"github.com/jhoicas/tienda-empleados-api/internal/application/receipt"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/order"
	"github.com/jhoicas/tienda-empleados-api/internal/infrastructure/memory"
)

type stubGenerator struct{ err error }

func (g stubGenerator) Generate(_ context.Context, d receipt.Data) ([]byte, error) {
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF " + d.TransactionID), nil
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []notification.Message
	err  error
}

func (n *stubNotifier) Send(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

// placeOrder crea un pedido real con el checkout para que exista la fila de despacho.
func placeOrder(t *testing.T, store *memory.Store, publisher checkout.EventPublisher) *checkout.Result {
	t.Helper()
	store.PutAccount(entity.Account{ID: "acc-1", EmployeeCode: "E-001", Name: "Ana Mora", Email: "ana@example.com", Status: entity.AccountActive})
	store.PutProduct(entity.Product{ID: "p-cafe", Code: "1001", Name: "Café molido", Price: decimal.NewFromInt(2500), Active: true})

	monday := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	uc := checkout.NewUseCase(store, checkout.OrderWriter{}, nil, publisher, checkout.Config{
		Quota:             decimal.NewFromInt(12000),
		Calendar:          order.Calendar{Location: time.UTC, WeekStart: time.Thursday, Blackout: time.Wednesday},
		IdempotencyWindow: time.Hour,
		Now:               func() time.Time { return monday },
	}, nil)
	res, err := uc.AttemptCheckout(context.Background(), checkout.Input{
		AccountID: "acc-1", IdempotencyKey: "k", Items: []checkout.Item{{ProductID: "p-cafe", Quantity: 2}},
	})
	require.NoError(t, err)
	return res
}

func emailStatus(store *memory.Store, orderID string) string {
	for _, e := range store.DispatchEntries() {
		if e.OrderID == orderID {
			return e.EmailStatus
		}
	}
	return ""
}

func TestDispatcher_EnviaComprobanteDespuesDelCheckout(t *testing.T) {
	store := memory.NewStore()
	notifier := &stubNotifier{}
	d := notification.NewDispatcher(store, stubGenerator{}, notifier, time.Second, nil)

	res := placeOrder(t, store, d)
	d.Wait()

	require.Len(t, notifier.sent, 1)
	msg := notifier.sent[0]
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Ana Mora", msg.Name)
	assert.Equal(t, res.TransactionID, msg.TransactionID)
	assert.Equal(t, "Factura_"+res.TransactionID+".pdf", msg.AttachmentName)
	assert.Equal(t, "%PDF "+res.TransactionID, string(msg.Attachment))
	assert.True(t, msg.Total.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, entity.EmailSent, emailStatus(store, res.OrderID))
}

func TestDispatcher_FalloDeCorreoNoAfectaElPedido(t *testing.T) {
	store := memory.NewStore()
	notifier := &stubNotifier{err: errors.New("smtp caído")}
	d := notification.NewDispatcher(store, stubGenerator{}, notifier, time.Second, nil)

	res := placeOrder(t, store, d)
	d.Wait()

	assert.Equal(t, entity.EmailFailed, emailStatus(store, res.OrderID))
	orders := store.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, entity.StatusRequested, orders[0].Status)
}

func TestDispatcher_FalloDelGenerador(t *testing.T) {
	store := memory.NewStore()
	d := notification.NewDispatcher(store, stubGenerator{err: errors.New("sin fuentes")}, &stubNotifier{}, time.Second, nil)

	res := placeOrder(t, store, nil)
	err := d.Deliver(context.Background(), order.OrderCreated{OrderID: res.OrderID, TransactionID: res.TransactionID, AccountID: "acc-1"})
	assert.Error(t, err)
	assert.Equal(t, entity.EmailFailed, emailStatus(store, res.OrderID))
}

func TestDispatcher_PedidoInexistente(t *testing.T) {
	store := memory.NewStore()
	d := notification.NewDispatcher(store, stubGenerator{}, &stubNotifier{}, time.Second, nil)

	err := d.Deliver(context.Background(), order.OrderCreated{OrderID: "nada", TransactionID: "INV-X"})
	assert.Error(t, err)
}
