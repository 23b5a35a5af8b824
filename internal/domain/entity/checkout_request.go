package entity

import "time"

// CheckoutRequest registra la llave de idempotencia de un checkout ya confirmado.
type CheckoutRequest struct {
	AccountID      string
	IdempotencyKey string
	OrderID        string
	CreatedAt      time.Time
}
