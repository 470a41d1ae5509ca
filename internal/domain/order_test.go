package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidOrderStatus(t *testing.T) {
	for _, s := range ValidOrderStatuses() {
		assert.True(t, IsValidOrderStatus(s), s)
	}
	assert.True(t, IsValidOrderStatus("COMPLETED"))
	assert.True(t, IsValidOrderStatus("Ready_For_Pickup"))
	assert.False(t, IsValidOrderStatus("shipped"))
	assert.False(t, IsValidOrderStatus(""))
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(OrderStatusCompleted))
	assert.True(t, IsTerminalStatus(OrderStatusCancelled))
	assert.False(t, IsTerminalStatus(OrderStatusPending))
	assert.False(t, IsTerminalStatus(OrderStatusReadyForPickup))
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from   string
		to     string
		expect bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusReadyForPickup, true},
		{OrderStatusReadyForPickup, OrderStatusCompleted, true},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tc := range tests {
		o := &Order{Status: tc.from}
		assert.Equal(t, tc.expect, o.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanTransitionTo_CaseInsensitive(t *testing.T) {
	o := &Order{Status: "Pending"}
	assert.True(t, o.CanTransitionTo("CONFIRMED"))
}
