package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"cloud-kitchen/internal/menu"
)

type MenuItemRequest struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name" validate:"required"`
	Category        string  `json:"category" validate:"required"`
	Price           float64 `json:"price" validate:"required,gt=0"`
	Description     string  `json:"description"`
	IsVegetarian    bool    `json:"is_vegetarian"`
	PreparationTime int     `json:"preparation_time"`
}

type MenuHandler struct {
	repo     menu.Repository
	validate *validator.Validate
}

func NewMenuHandler(repo menu.Repository) *MenuHandler {
	return &MenuHandler{repo: repo, validate: validator.New()}
}

// ListMenuItems handles GET /menu.
func (h *MenuHandler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list menu items")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch menu items")
		return
	}

	respondWithJSON(w, http.StatusOK, items)
}

// CreateMenuItem handles POST /menu.
func (h *MenuHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req MenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Name, category, and price are required")
		return
	}

	item := menuItemFromRequest(&req)
	id, err := h.repo.Create(r.Context(), item)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to create menu item")
		respondWithError(w, http.StatusInternalServerError, "Failed to create menu item")
		return
	}

	item.ID = id
	respondWithJSON(w, http.StatusCreated, item)
}

// UpdateMenuItem handles PUT /menu.
func (h *MenuHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req MenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == 0 {
		respondWithError(w, http.StatusBadRequest, "ID, name, category, and price are required")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "ID, name, category, and price are required")
		return
	}

	if err := h.repo.Update(r.Context(), menuItemFromRequest(&req)); err != nil {
		code := mapErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Int64("menu_item_id", req.ID).Msg("handler: failed to update menu item")
		}
		respondWithError(w, code, publicErrorMessage(err, "Failed to update menu item"))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteMenuItem handles DELETE /menu?id=N.
func (h *MenuHandler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	rawID := r.URL.Query().Get("id")
	if rawID == "" {
		respondWithError(w, http.StatusBadRequest, "ID is required")
		return
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "ID must be an integer")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		code := mapErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Int64("menu_item_id", id).Msg("handler: failed to delete menu item")
		}
		respondWithError(w, code, publicErrorMessage(err, "Failed to delete menu item"))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func menuItemFromRequest(req *MenuItemRequest) *menu.MenuItem {
	return &menu.MenuItem{
		ID:              req.ID,
		Name:            req.Name,
		Category:        req.Category,
		Price:           req.Price,
		Description:     req.Description,
		IsVegetarian:    req.IsVegetarian,
		PreparationTime: req.PreparationTime,
	}
}
