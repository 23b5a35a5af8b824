// Package mail envía el comprobante de compra por SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/tienda-empleados-api/internal/application/notification"
	"github.com/jhoicas/tienda-empleados-api/pkg/config"
	"github.com/jhoicas/tienda-empleados-api/pkg/money"
)

var _ notification.Notifier = (*SMTPNotifier)(nil)

// Sender abstrae gomail.Dialer para poder probar sin servidor.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier implementa notification.Notifier con gomail.
type SMTPNotifier struct {
	sender Sender
	from   string
}

// NewSMTPNotifier construye el notificador con la configuración SMTP.
func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return NewSMTPNotifierWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg.From)
}

// NewSMTPNotifierWithSender usa un Sender propio.
func NewSMTPNotifierWithSender(sender Sender, from string) *SMTPNotifier {
	return &SMTPNotifier{sender: sender, from: from}
}

// Send arma el mensaje y lo entrega. gomail no acepta context: se revisa antes de enviar.
func (n *SMTPNotifier) Send(ctx context.Context, msg notification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := n.build(msg)
	if err != nil {
		return err
	}
	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

var bodyTmpl = template.Must(template.New("body").Parse(`<p>Hola {{.Name}},</p>
<p>Recibimos su pedido <strong>{{.TransactionID}}</strong> por un total de <strong>{{.Total}}</strong>.</p>
<p>Adjuntamos el comprobante. Le avisaremos cuando esté listo para recoger.</p>
<p>Tienda de Empleados</p>`))

func (n *SMTPNotifier) build(msg notification.Message) (*gomail.Message, error) {
	if msg.To == "" {
		return nil, fmt.Errorf("mensaje sin destinatario")
	}
	var body bytes.Buffer
	if err := bodyTmpl.Execute(&body, struct {
		Name, TransactionID, Total string
	}{msg.Name, msg.TransactionID, money.Format(msg.Total)}); err != nil {
		return nil, fmt.Errorf("armar cuerpo: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetAddressHeader("To", msg.To, msg.Name)
	m.SetHeader("Subject", "Comprobante de compra "+msg.TransactionID)
	m.SetBody("text/html", body.String())
	if len(msg.Attachment) > 0 {
		attachment := msg.Attachment
		m.Attach(msg.AttachmentName,
			gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(attachment)
				return err
			}),
		)
	}
	return m, nil
}
