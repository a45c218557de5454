package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"cloud-kitchen/internal/order"
)

type CreateOrderRequest struct {
	CustomerID      *int64                   `json:"customer_id"`
	CustomerName    string                   `json:"customer_name"`
	TotalAmount     float64                  `json:"total_amount" validate:"gte=0"`
	Status          string                   `json:"status"`
	DeliveryAddress string                   `json:"delivery_address"`
	PaymentStatus   string                   `json:"payment_status"`
	PaymentMethod   string                   `json:"payment_method"`
	Items           []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CreateOrderItemRequest struct {
	MenuItemID          int64   `json:"menu_item_id" validate:"required"`
	Quantity            int     `json:"quantity" validate:"required,gt=0"`
	Price               float64 `json:"price" validate:"gte=0"`
	Status              string  `json:"status"`
	SpecialInstructions string  `json:"special_instructions"`
}

type UpdateOrderStatusRequest struct {
	ID     int64  `json:"id" validate:"required"`
	Status string `json:"status" validate:"required"`
}

type UpdateOrderItemStatusRequest struct {
	OrderID int64  `json:"order_id" validate:"required"`
	ItemID  int64  `json:"item_id" validate:"required"`
	Status  string `json:"status" validate:"required"`
}

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	svc      order.Service
	validate *validator.Validate
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc, validate: validator.New()}
}

// ListOrders handles GET /orders.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list orders")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

// GetOrderByID handles GET /orders/{id}.
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	o, err := h.svc.GetOrderByID(r.Context(), id)
	if err != nil {
		code := mapErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Int64("order_id", id).Msg("handler: failed to get order")
		}
		respondWithError(w, code, publicErrorMessage(err, "Failed to fetch order"))
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

// CreateOrder handles POST /orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Customer name and at least one item are required")
		return
	}
	if req.CustomerID == nil && req.CustomerName == "" {
		respondWithError(w, http.StatusBadRequest, "Customer name and at least one item are required")
		return
	}

	input := &order.CreateOrderInput{
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		TotalAmount:     req.TotalAmount,
		Status:          order.OrderStatus(req.Status),
		DeliveryAddress: req.DeliveryAddress,
		PaymentStatus:   order.PaymentStatus(req.PaymentStatus),
		PaymentMethod:   req.PaymentMethod,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, order.CreateOrderItemInput{
			MenuItemID:          item.MenuItemID,
			Quantity:            item.Quantity,
			Price:               item.Price,
			Status:              order.ItemStatus(item.Status),
			SpecialInstructions: item.SpecialInstructions,
		})
	}

	created, err := h.svc.CreateOrder(r.Context(), input)
	if err != nil {
		code := mapErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Msg("handler: failed to create order")
		}
		respondWithError(w, code, publicErrorMessage(err, "Failed to create order"))
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"id":           created.ID,
		"order_number": created.OrderNumber,
		"status":       string(input.Status),
		"total_amount": input.TotalAmount,
	})
}

// UpdateOrderStatus handles PUT /orders.
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Order ID and status are required")
		return
	}

	err := h.svc.UpdateOrderStatus(r.Context(), req.ID, order.OrderStatus(req.Status))
	if err != nil {
		code := mapErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Int64("order_id", req.ID).Msg("handler: failed to update order status")
		}
		respondWithError(w, code, publicErrorMessage(err, "Failed to update order status"))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UpdateItemStatus handles PUT /orders/items.
func (h *OrderHandler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderItemStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Order ID, item ID and status are required")
		return
	}

	aggregate, err := h.svc.UpdateItemStatus(r.Context(), req.OrderID, req.ItemID, order.ItemStatus(req.Status))
	if err != nil {
		code := mapErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Int64("order_id", req.OrderID).Int64("item_id", req.ItemID).Msg("handler: failed to update item status")
		}
		respondWithError(w, code, publicErrorMessage(err, "Failed to update item status"))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"order_status": string(aggregate),
	})
}
