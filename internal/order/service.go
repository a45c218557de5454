package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var (
	ErrNoItems       = errors.New("order must contain at least one item")
	ErrNoCustomer    = errors.New("customer id or customer name is required")
	ErrInvalidItem   = errors.New("invalid order item")
	ErrInvalidStatus = errors.New("invalid status value")
)

// Notifier receives order lifecycle events after they are committed.
// Implementations must not fail the request; errors are logged here.
type Notifier interface {
	OrderCreated(ctx context.Context, orderID int64, orderNumber string)
	OrderStatusChanged(ctx context.Context, orderID int64, newStatus OrderStatus)
}

type Service interface {
	CreateOrder(ctx context.Context, input *CreateOrderInput) (*CreatedOrder, error)
	GetOrderByID(ctx context.Context, id int64) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, newStatus OrderStatus) error
	UpdateItemStatus(ctx context.Context, orderID, itemID int64, newStatus ItemStatus) (OrderStatus, error)
}

type service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) Service {
	return &service{repo: repo, notifier: notifier}
}

// CreateOrder validates the payload, fills the documented defaults and runs
// the creation transaction. Validation failures leave storage untouched.
func (s *service) CreateOrder(ctx context.Context, input *CreateOrderInput) (*CreatedOrder, error) {
	if len(input.Items) == 0 {
		log.Warn().Msg("service: attempt to create order with no items")
		return nil, ErrNoItems
	}
	if input.CustomerID == nil && input.CustomerName == "" {
		return nil, ErrNoCustomer
	}

	for i := range input.Items {
		item := &input.Items[i]
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for menu item %d must be greater than zero", ErrInvalidItem, item.MenuItemID)
		}
		if item.Price < 0 {
			return nil, fmt.Errorf("%w: price for menu item %d cannot be negative", ErrInvalidItem, item.MenuItemID)
		}
		if item.Status == "" {
			item.Status = ItemPending
		} else if !item.Status.Valid() {
			return nil, fmt.Errorf("%w: %q is not an item status", ErrInvalidStatus, item.Status)
		}
	}
	// A new order may not enter the machine at a terminal state; that
	// would sidestep the transition checks entirely.
	if input.Status == "" {
		input.Status = StatusPending
	} else if !input.Status.Valid() || IsTerminal(input.Status) {
		return nil, fmt.Errorf("%w: %q is not a valid status for a new order", ErrInvalidStatus, input.Status)
	}
	if input.PaymentStatus == "" {
		input.PaymentStatus = PaymentPending
	}

	created, err := s.repo.CreateOrder(ctx, input)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Int64("order_id", created.ID).Str("order_number", created.OrderNumber).Msg("service: order created")
	s.notifier.OrderCreated(ctx, created.ID, created.OrderNumber)

	return created, nil
}

func (s *service) GetOrderByID(ctx context.Context, id int64) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Int64("order_id", id).Msg("service: failed to fetch order by id")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus writes the new status through the repository's
// locked check-and-set, so a terminal order can never be resumed even
// under concurrent updates. Illegal moves surface as
// ErrInvalidStatusTransition and leave storage untouched.
func (s *service) UpdateOrderStatus(ctx context.Context, orderID int64, newStatus OrderStatus) error {
	if !newStatus.Valid() {
		log.Warn().Int64("order_id", orderID).Str("new_status", string(newStatus)).Msg("service: unknown status value submitted")
		return ErrUnknownStatus
	}

	previous, err := s.repo.UpdateOrderStatus(ctx, orderID, newStatus)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			log.Warn().Int64("order_id", orderID).Str("new_status", string(newStatus)).Msg("service: order not found, cannot update status")
			return ErrOrderNotFound
		case errors.Is(err, ErrInvalidStatusTransition), errors.Is(err, ErrUnknownStatus):
			log.Warn().
				Int64("order_id", orderID).
				Str("new_status", string(newStatus)).
				Msg("service: invalid status transition attempt")
			return err
		}
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	if previous == newStatus {
		log.Info().Int64("order_id", orderID).Str("status", string(newStatus)).Msg("service: order status already set, no update needed")
		return nil
	}

	log.Info().Int64("order_id", orderID).Str("old_status", string(previous)).Str("new_status", string(newStatus)).Msg("service: order status updated")
	s.notifier.OrderStatusChanged(ctx, orderID, newStatus)
	return nil
}

func (s *service) UpdateItemStatus(ctx context.Context, orderID, itemID int64, newStatus ItemStatus) (OrderStatus, error) {
	if !newStatus.Valid() {
		log.Warn().Int64("order_id", orderID).Int64("item_id", itemID).Str("new_status", string(newStatus)).Msg("service: unknown item status value submitted")
		return "", ErrUnknownStatus
	}

	aggregate, err := s.repo.UpdateItemStatus(ctx, orderID, itemID, newStatus)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrOrderItemNotFound),
			errors.Is(err, ErrInvalidItemTransition):
			return "", err
		}
		log.Error().Err(err).Int64("order_id", orderID).Int64("item_id", itemID).Msg("service: failed to update item status")
		return "", fmt.Errorf("service: failed to update item status: %w", err)
	}

	log.Info().Int64("order_id", orderID).Int64("item_id", itemID).Str("item_status", string(newStatus)).Str("order_status", string(aggregate)).Msg("service: order item status updated")
	s.notifier.OrderStatusChanged(ctx, orderID, aggregate)
	return aggregate, nil
}
