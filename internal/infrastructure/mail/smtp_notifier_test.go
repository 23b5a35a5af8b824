package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/tienda-empleados-api/internal/application/notification"
)

type captureSender struct {
	msgs []*gomail.Message
	err  error
}

func (s *captureSender) DialAndSend(m ...*gomail.Message) error {
	s.msgs = append(s.msgs, m...)
	return s.err
}

func sample() notification.Message {
	return notification.Message{
		To:             "ana@example.com",
		Name:           "Ana Mora",
		TransactionID:  "INV-ABC",
		Total:          decimal.NewFromInt(25000),
		Attachment:     []byte("%PDF-1.3 fake"),
		AttachmentName: "Factura_INV-ABC.pdf",
	}
}

func TestSend_ArmaMensajeConAdjunto(t *testing.T) {
	sender := &captureSender{}
	n := NewSMTPNotifierWithSender(sender, "tienda@example.com")

	require.NoError(t, n.Send(context.Background(), sample()))
	require.Len(t, sender.msgs, 1)

	m := sender.msgs[0]
	assert.Equal(t, []string{"tienda@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"Comprobante de compra INV-ABC"}, m.GetHeader("Subject"))

	var raw bytes.Buffer
	_, err := m.WriteTo(&raw)
	require.NoError(t, err)
	out := raw.String()
	assert.Contains(t, out, "ana@example.com")
	assert.Contains(t, out, "Factura_INV-ABC.pdf")
	assert.Contains(t, out, "application/pdf")
}

func TestSend_Errores(t *testing.T) {
	sender := &captureSender{err: errors.New("conexión rechazada")}
	n := NewSMTPNotifierWithSender(sender, "tienda@example.com")

	err := n.Send(context.Background(), sample())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp")

	msg := sample()
	msg.To = ""
	assert.Error(t, n.Send(context.Background(), msg))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Send(ctx, sample()), context.Canceled)
}
