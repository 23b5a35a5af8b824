package order

import "github.com/jhoicas/tienda-empleados-api/internal/domain/entity"

// transitions aristas permitidas: hacia adelante más una rama de cancelación.
// Delivered y Cancelled son terminales.
var transitions = map[entity.OrderStatus][]entity.OrderStatus{
	entity.StatusRequested:      {entity.StatusProcessing, entity.StatusCancelled},
	entity.StatusProcessing:     {entity.StatusReadyForPickup, entity.StatusCancelled},
	entity.StatusReadyForPickup: {entity.StatusDelivered},
}

// CanTransition indica si from -> to es una arista permitida.
func CanTransition(from, to entity.OrderStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Next devuelve los estados alcanzables desde s.
func Next(s entity.OrderStatus) []entity.OrderStatus {
	out := make([]entity.OrderStatus, len(transitions[s]))
	copy(out, transitions[s])
	return out
}

// IsTerminal indica si el estado ya no admite cambios.
func IsTerminal(s entity.OrderStatus) bool {
	return len(transitions[s]) == 0
}

// IsPending indica si el pedido cuenta para la regla de un pedido pendiente por semana.
func IsPending(s entity.OrderStatus) bool {
	return s == entity.StatusRequested || s == entity.StatusProcessing
}

// CountsTowardSpend indica si el total del pedido consume cuota. Solo los cancelados liberan cuota.
func CountsTowardSpend(s entity.OrderStatus) bool {
	return s != entity.StatusCancelled
}

// CanCancel indica si cancelOrder puede pasar el pedido a Cancelled.
// Es más amplio que la tabla de transiciones: también cancela pedidos listos para recoger.
func CanCancel(s entity.OrderStatus) bool {
	switch s {
	case entity.StatusRequested, entity.StatusProcessing, entity.StatusReadyForPickup:
		return true
	}
	return false
}

// PendingStatuses estados que bloquean un segundo pedido en la ventana.
var PendingStatuses = []entity.OrderStatus{entity.StatusRequested, entity.StatusProcessing}

// SpendStatuses estados cuyo total consume cuota.
var SpendStatuses = []entity.OrderStatus{
	entity.StatusRequested, entity.StatusProcessing, entity.StatusReadyForPickup, entity.StatusDelivered,
}
