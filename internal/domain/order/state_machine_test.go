package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/order"
)

func TestCanTransition_TablaCompleta(t *testing.T) {
	allowed := map[[2]entity.OrderStatus]bool{
		{entity.StatusRequested, entity.StatusProcessing}:      true,
		{entity.StatusRequested, entity.StatusCancelled}:       true,
		{entity.StatusProcessing, entity.StatusReadyForPickup}: true,
		{entity.StatusProcessing, entity.StatusCancelled}:      true,
		{entity.StatusReadyForPickup, entity.StatusDelivered}:  true,
	}
	for _, from := range entity.AllStatuses {
		for _, to := range entity.AllStatuses {
			assert.Equal(t, allowed[[2]entity.OrderStatus{from, to}], order.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, order.IsTerminal(entity.StatusDelivered))
	assert.True(t, order.IsTerminal(entity.StatusCancelled))
	assert.False(t, order.IsTerminal(entity.StatusReadyForPickup))
}

func TestCanCancel(t *testing.T) {
	assert.True(t, order.CanCancel(entity.StatusRequested))
	assert.True(t, order.CanCancel(entity.StatusReadyForPickup))
	assert.False(t, order.CanCancel(entity.StatusDelivered))
	assert.False(t, order.CanCancel(entity.StatusCancelled))
}

func TestSpendAndPending(t *testing.T) {
	assert.True(t, order.CountsTowardSpend(entity.StatusDelivered))
	assert.False(t, order.CountsTowardSpend(entity.StatusCancelled))
	assert.True(t, order.IsPending(entity.StatusProcessing))
	assert.False(t, order.IsPending(entity.StatusReadyForPickup))
}

func TestParseStatus(t *testing.T) {
	cases := map[string]entity.OrderStatus{
		"READY_FOR_PICKUP":   entity.StatusReadyForPickup,
		"ReadyForPickup":     entity.StatusReadyForPickup,
		"Listo para recoger": entity.StatusReadyForPickup,
		"entregado":          entity.StatusDelivered,
		" Pedido realizado ": entity.StatusRequested,
		"cancelled":          entity.StatusCancelled,
	}
	for in, want := range cases {
		got, ok := entity.ParseStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := entity.ParseStatus("perdido")
	assert.False(t, ok)
}
