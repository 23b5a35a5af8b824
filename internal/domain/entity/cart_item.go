package entity

import "time"

// MaxQuantity tope de unidades por producto en un carrito o pedido.
const MaxQuantity = 999

// ValidQuantity indica si q está en [1, MaxQuantity].
func ValidQuantity(q int) bool { return q >= 1 && q <= MaxQuantity }

// CartItem es una fila del carrito. Nunca guarda precios; se resuelven al comprar.
type CartItem struct {
	AccountID string
	ProductID string
	Quantity  int
	UpdatedAt time.Time
}
