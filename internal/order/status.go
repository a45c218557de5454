package order

import "errors"

var (
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrInvalidItemTransition   = errors.New("invalid order item status transition")
	ErrUnknownStatus           = errors.New("unknown status value")
)

var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusPreparing: true,
		StatusCancelled: true,
	},
	StatusPreparing: {
		StatusReady:     true,
		StatusCancelled: true,
	},
	StatusReady: {
		StatusDelivered: true,
		StatusCancelled: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

var allowedItemTransitions = map[ItemStatus]map[ItemStatus]bool{
	ItemPending: {
		ItemCooking: true,
		ItemReady:   true,
	},
	ItemCooking: {
		ItemReady: true,
	},
	ItemReady: {},
}

// ValidateTransition reports whether an order may move from current to next.
// Setting the same status again is allowed and treated as a no-op upstream.
func ValidateTransition(current, next OrderStatus) error {
	if current == next {
		return nil
	}
	transitions, ok := allowedTransitions[current]
	if !ok {
		return ErrUnknownStatus
	}
	if !transitions[next] {
		return ErrInvalidStatusTransition
	}
	return nil
}

func ValidateItemTransition(current, next ItemStatus) error {
	if current == next {
		return nil
	}
	transitions, ok := allowedItemTransitions[current]
	if !ok {
		return ErrUnknownStatus
	}
	if !transitions[next] {
		return ErrInvalidItemTransition
	}
	return nil
}

// IsTerminal reports whether an order status admits no further transitions.
func IsTerminal(status OrderStatus) bool {
	return status == StatusDelivered || status == StatusCancelled
}

// DeriveOrderStatus rolls item statuses up into an order status. Precedence,
// first match wins: all items Ready, any item Cooking, any item Pending.
// An empty item set keeps the fallback (orders never persist without items).
func DeriveOrderStatus(items []OrderItem, fallback OrderStatus) OrderStatus {
	if len(items) == 0 {
		return fallback
	}

	allReady := true
	anyCooking := false
	anyPending := false
	for _, item := range items {
		switch item.Status {
		case ItemReady:
		case ItemCooking:
			allReady = false
			anyCooking = true
		default:
			allReady = false
			anyPending = true
		}
	}

	switch {
	case allReady:
		return StatusReady
	case anyCooking:
		return StatusPreparing
	case anyPending:
		return StatusPending
	}
	return fallback
}
