package order

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusPreparing OrderStatus = "Preparing"
	StatusReady     OrderStatus = "Ready"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

func (os OrderStatus) String() string {
	return string(os)
}

// Valid reports whether the value is one of the known order statuses.
// Anything a client submits goes through this before touching storage.
func (os OrderStatus) Valid() bool {
	switch os {
	case StatusPending, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type ItemStatus string

const (
	ItemPending ItemStatus = "Pending"
	ItemCooking ItemStatus = "Cooking"
	ItemReady   ItemStatus = "Ready"
)

func (is ItemStatus) String() string {
	return string(is)
}

func (is ItemStatus) Valid() bool {
	switch is {
	case ItemPending, ItemCooking, ItemReady:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentFailed  PaymentStatus = "Failed"
)

type OrderItem struct {
	ID                  int64      `json:"id"`
	OrderID             int64      `json:"order_id"`
	MenuItemID          int64      `json:"menu_item_id"`
	Quantity            int        `json:"quantity"`
	Price               float64    `json:"price"`
	Status              ItemStatus `json:"status"`
	SpecialInstructions string     `json:"special_instructions"`
	// Denormalized from menu_items for listing.
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

type Order struct {
	ID              int64         `json:"id"`
	OrderNumber     string        `json:"order_number"`
	CustomerID      *int64        `json:"customer_id,omitempty"`
	TotalAmount     float64       `json:"total_amount"`
	Status          OrderStatus   `json:"status"`
	DeliveryAddress string        `json:"delivery_address"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PaymentMethod   string        `json:"payment_method"`
	OrderDate       time.Time     `json:"order_date"`
	Items           []OrderItem   `json:"items"`
	// Denormalized from customers for listing.
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
}

// CreateOrderInput is what the boundary hands to the service. CustomerName
// satisfies the "customer identifier or name" precondition when no
// CustomerID is known yet; only CustomerID is persisted on the order row.
type CreateOrderInput struct {
	CustomerID      *int64
	CustomerName    string
	TotalAmount     float64
	Status          OrderStatus
	DeliveryAddress string
	PaymentStatus   PaymentStatus
	PaymentMethod   string
	Items           []CreateOrderItemInput
}

type CreateOrderItemInput struct {
	MenuItemID          int64
	Quantity            int
	Price               float64
	Status              ItemStatus
	SpecialInstructions string
}

// CreatedOrder carries the identifiers generated inside the creation
// transaction back to the caller.
type CreatedOrder struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"order_number"`
}
