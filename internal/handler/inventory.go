package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"cloud-kitchen/internal/inventory"
)

type InventoryItemRequest struct {
	ID              int64      `json:"id" validate:"required"`
	Name            string     `json:"name" validate:"required"`
	Category        string     `json:"category" validate:"required"`
	Quantity        *float64   `json:"quantity" validate:"required,gte=0"`
	Unit            string     `json:"unit"`
	MinLevel        float64    `json:"min_level"`
	PricePerUnit    float64    `json:"price_per_unit"`
	SupplierID      *int64     `json:"supplier_id"`
	ExpiryDate      *time.Time `json:"expiry_date"`
	StorageLocation string     `json:"storage_location"`
}

type InventoryHandler struct {
	repo     inventory.Repository
	validate *validator.Validate
}

func NewInventoryHandler(repo inventory.Repository) *InventoryHandler {
	return &InventoryHandler{repo: repo, validate: validator.New()}
}

// ListInventoryItems handles GET /inventory.
func (h *InventoryHandler) ListInventoryItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list inventory items")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch inventory items")
		return
	}

	respondWithJSON(w, http.StatusOK, items)
}

// UpdateInventoryItem handles PUT /inventory.
func (h *InventoryHandler) UpdateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var req InventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "ID, name, category, and quantity are required")
		return
	}

	item := &inventory.InventoryItem{
		ID:              req.ID,
		Name:            req.Name,
		Category:        req.Category,
		Quantity:        *req.Quantity,
		Unit:            req.Unit,
		MinLevel:        req.MinLevel,
		PricePerUnit:    req.PricePerUnit,
		SupplierID:      req.SupplierID,
		ExpiryDate:      req.ExpiryDate,
		StorageLocation: req.StorageLocation,
	}

	if err := h.repo.Update(r.Context(), item); err != nil {
		code := mapErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Int64("inventory_item_id", req.ID).Msg("handler: failed to update inventory item")
		}
		respondWithError(w, code, publicErrorMessage(err, "Failed to update inventory item"))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
