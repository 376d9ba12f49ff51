package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusShipped, OrderStatusConfirmed, false},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCustomerCancellable(t *testing.T) {
	assert.True(t, OrderStatusPending.CustomerCancellable())
	assert.True(t, OrderStatusConfirmed.CustomerCancellable())
	assert.False(t, OrderStatusProcessing.CustomerCancellable())
	assert.False(t, OrderStatusCancelled.CustomerCancellable())
}
