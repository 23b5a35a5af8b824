package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-empleados-api/internal/application/receipt"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/order"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
	"github.com/jhoicas/tienda-empleados-api/pkg/logger"
)

// TxRunner acceso al almacenamiento (lectura del pedido y escritura del estado del correo).
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
	View(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// Message correo con el comprobante adjunto.
type Message struct {
	To             string
	Name           string
	TransactionID  string
	Total          decimal.Decimal
	Attachment     []byte
	AttachmentName string
}

// Notifier entrega best-effort. Los errores se registran, nunca llegan al checkout.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher consume OrderCreated después del commit: genera el recibo, envía el correo y deja
// constancia en dispatch_entries.email_status.
//
// Cada evento corre en su propia goroutine con context.Background() + timeout, desacoplado
// del ciclo HTTP. Wait drena las entregas en curso al apagar.
type Dispatcher struct {
	runner    TxRunner
	generator receipt.Generator
	notifier  Notifier
	timeout   time.Duration
	now       func() time.Time
	log       *logger.Logger
	wg        sync.WaitGroup
}

// NewDispatcher construye el despachador. timeout <= 0 usa 30s.
func NewDispatcher(runner TxRunner, generator receipt.Generator, notifier Notifier, timeout time.Duration, log *logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		runner:    runner,
		generator: generator,
		notifier:  notifier,
		timeout:   timeout,
		now:       time.Now,
		log:       log.Named("notification"),
	}
}

// Publish dispara la entrega en segundo plano.
func (d *Dispatcher) Publish(evt order.OrderCreated) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error().Interface("panic", r).Str("transaction_id", evt.TransactionID).Msg("pánico enviando comprobante")
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		_ = d.Deliver(ctx, evt)
	}()
}

// Wait bloquea hasta que terminen las entregas en curso.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Deliver es el núcleo síncrono. Siempre intenta dejar email_status en SENT o FAILED.
func (d *Dispatcher) Deliver(ctx context.Context, evt order.OrderCreated) error {
	err := d.deliver(ctx, evt)
	status := entity.EmailSent
	if err != nil {
		status = entity.EmailFailed
		d.log.Error().Err(err).
			Str("transaction_id", evt.TransactionID).
			Str("order_id", evt.OrderID).
			Msg("no se pudo enviar el comprobante")
	} else {
		d.log.Info().Str("transaction_id", evt.TransactionID).Msg("comprobante enviado")
	}

	if uerr := d.runner.Run(ctx, func(repos repository.TxRepos) error {
		return repos.Dispatch.UpdateEmailStatus(ctx, evt.OrderID, status, d.now())
	}); uerr != nil {
		d.log.Warn().Err(uerr).Str("transaction_id", evt.TransactionID).Msg("no se pudo registrar el estado del correo")
	}
	return err
}

func (d *Dispatcher) deliver(ctx context.Context, evt order.OrderCreated) error {
	// Re-leer datos confirmados; el evento solo trae identificadores y total.
	var data receipt.Data
	err := d.runner.View(ctx, func(repos repository.TxRepos) error {
		o, err := repos.Orders.GetByID(ctx, evt.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("pedido %s no encontrado", evt.OrderID)
		}
		data, err = receipt.Load(ctx, repos, o)
		return err
	})
	if err != nil {
		return fmt.Errorf("cargar pedido: %w", err)
	}
	if data.Email == "" {
		return fmt.Errorf("la cuenta %s no tiene correo", evt.AccountID)
	}

	pdf, err := d.generator.Generate(ctx, data)
	if err != nil {
		return fmt.Errorf("generar comprobante: %w", err)
	}
	if err := d.notifier.Send(ctx, Message{
		To:             data.Email,
		Name:           data.AccountName,
		TransactionID:  data.TransactionID,
		Total:          data.Total,
		Attachment:     pdf,
		AttachmentName: receipt.FileName(data.TransactionID),
	}); err != nil {
		return fmt.Errorf("enviar correo: %w", err)
	}
	return nil
}

// LogNotifier registra el mensaje en lugar de enviarlo (SMTP no configurado).
type LogNotifier struct {
	Log *logger.Logger
}

// Send implementa Notifier.
func (n LogNotifier) Send(_ context.Context, msg Message) error {
	n.Log.Info().
		Str("to", msg.To).
		Str("transaction_id", msg.TransactionID).
		Str("total", msg.Total.StringFixed(2)).
		Int("attachment_bytes", len(msg.Attachment)).
		Msg("SMTP no configurado, comprobante no enviado")
	return nil
}
