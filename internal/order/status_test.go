package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cloud-kitchen/internal/order"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		current order.OrderStatus
		next    order.OrderStatus
		wantErr error
	}{
		{name: "pending_to_preparing", current: order.StatusPending, next: order.StatusPreparing},
		{name: "preparing_to_ready", current: order.StatusPreparing, next: order.StatusReady},
		{name: "ready_to_delivered", current: order.StatusReady, next: order.StatusDelivered},
		{name: "pending_to_cancelled", current: order.StatusPending, next: order.StatusCancelled},
		{name: "preparing_to_cancelled", current: order.StatusPreparing, next: order.StatusCancelled},
		{name: "ready_to_cancelled", current: order.StatusReady, next: order.StatusCancelled},
		{name: "same_status_is_noop", current: order.StatusPreparing, next: order.StatusPreparing},
		{name: "pending_cannot_skip_to_ready", current: order.StatusPending, next: order.StatusReady, wantErr: order.ErrInvalidStatusTransition},
		{name: "pending_cannot_skip_to_delivered", current: order.StatusPending, next: order.StatusDelivered, wantErr: order.ErrInvalidStatusTransition},
		{name: "delivered_is_terminal", current: order.StatusDelivered, next: order.StatusPreparing, wantErr: order.ErrInvalidStatusTransition},
		{name: "cancelled_is_terminal", current: order.StatusCancelled, next: order.StatusPending, wantErr: order.ErrInvalidStatusTransition},
		{name: "cancelled_cannot_be_delivered", current: order.StatusCancelled, next: order.StatusDelivered, wantErr: order.ErrInvalidStatusTransition},
		{name: "no_backwards_move", current: order.StatusReady, next: order.StatusPreparing, wantErr: order.ErrInvalidStatusTransition},
		{name: "unknown_current_status", current: order.OrderStatus("Lost"), next: order.StatusReady, wantErr: order.ErrUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := order.ValidateTransition(tt.current, tt.next)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateItemTransition(t *testing.T) {
	tests := []struct {
		name    string
		current order.ItemStatus
		next    order.ItemStatus
		wantErr error
	}{
		{name: "pending_to_cooking", current: order.ItemPending, next: order.ItemCooking},
		{name: "pending_to_ready", current: order.ItemPending, next: order.ItemReady},
		{name: "cooking_to_ready", current: order.ItemCooking, next: order.ItemReady},
		{name: "same_status_is_noop", current: order.ItemCooking, next: order.ItemCooking},
		{name: "ready_is_terminal", current: order.ItemReady, next: order.ItemCooking, wantErr: order.ErrInvalidItemTransition},
		{name: "no_backwards_move", current: order.ItemCooking, next: order.ItemPending, wantErr: order.ErrInvalidItemTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := order.ValidateItemTransition(tt.current, tt.next)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func itemsWith(statuses ...order.ItemStatus) []order.OrderItem {
	items := make([]order.OrderItem, 0, len(statuses))
	for _, s := range statuses {
		items = append(items, order.OrderItem{Status: s})
	}
	return items
}

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		name     string
		items    []order.OrderItem
		fallback order.OrderStatus
		expected order.OrderStatus
	}{
		{
			name:     "all_ready",
			items:    itemsWith(order.ItemReady, order.ItemReady),
			fallback: order.StatusPreparing,
			expected: order.StatusReady,
		},
		{
			name:     "any_cooking_wins_over_ready",
			items:    itemsWith(order.ItemReady, order.ItemCooking),
			fallback: order.StatusPending,
			expected: order.StatusPreparing,
		},
		{
			name:     "pending_and_ready_is_pending",
			items:    itemsWith(order.ItemPending, order.ItemReady),
			fallback: order.StatusPreparing,
			expected: order.StatusPending,
		},
		{
			name:     "cooking_beats_pending",
			items:    itemsWith(order.ItemPending, order.ItemCooking, order.ItemReady),
			fallback: order.StatusPending,
			expected: order.StatusPreparing,
		},
		{
			name:     "single_pending",
			items:    itemsWith(order.ItemPending),
			fallback: order.StatusReady,
			expected: order.StatusPending,
		},
		{
			name:     "empty_items_keep_fallback",
			items:    nil,
			fallback: order.StatusPreparing,
			expected: order.StatusPreparing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := order.DeriveOrderStatus(tt.items, tt.fallback)
			assert.Equal(t, tt.expected, got)

			// Deriving again without mutation must not change the result.
			again := order.DeriveOrderStatus(tt.items, got)
			assert.Equal(t, got, again)
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, order.IsTerminal(order.StatusDelivered))
	assert.True(t, order.IsTerminal(order.StatusCancelled))
	assert.False(t, order.IsTerminal(order.StatusPending))
	assert.False(t, order.IsTerminal(order.StatusPreparing))
	assert.False(t, order.IsTerminal(order.StatusReady))
}
