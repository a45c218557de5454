package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"cloud-kitchen/internal/auth"
	"cloud-kitchen/internal/handler"
	"cloud-kitchen/internal/inventory"
	"cloud-kitchen/internal/menu"
	"cloud-kitchen/internal/order"
)

// NewRouter wires repositories, services and handlers onto one chi mux.
// The timeout middleware cancels the request context on expiry, which rolls
// back any transaction still in flight.
func NewRouter(pool *pgxpool.Pool, notifier order.Notifier, verifier auth.Verifier, requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	orderRepo := order.NewRepository(pool)
	orderSvc := order.NewService(orderRepo, notifier)
	orderHandler := handler.NewOrderHandler(orderSvc)

	r.Get("/orders", orderHandler.ListOrders)
	r.Get("/orders/{id}", orderHandler.GetOrderByID)
	r.Post("/orders", orderHandler.CreateOrder)
	r.Put("/orders", orderHandler.UpdateOrderStatus)
	r.Put("/orders/items", orderHandler.UpdateItemStatus)

	menuHandler := handler.NewMenuHandler(menu.NewRepository(pool))
	r.Get("/menu", menuHandler.ListMenuItems)
	r.Post("/menu", menuHandler.CreateMenuItem)
	r.Put("/menu", menuHandler.UpdateMenuItem)
	r.Delete("/menu", menuHandler.DeleteMenuItem)

	inventoryHandler := handler.NewInventoryHandler(inventory.NewRepository(pool))
	r.Get("/inventory", inventoryHandler.ListInventoryItems)
	r.Put("/inventory", inventoryHandler.UpdateInventoryItem)

	authHandler := handler.NewAuthHandler(verifier)
	r.Post("/login", authHandler.Login)

	return r
}
