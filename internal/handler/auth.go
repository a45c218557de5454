package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"cloud-kitchen/internal/auth"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthHandler struct {
	verifier auth.Verifier
	validate *validator.Validate
}

func NewAuthHandler(verifier auth.Verifier) *AuthHandler {
	return &AuthHandler{verifier: verifier, validate: validator.New()}
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	if err := h.verifier.Verify(r.Context(), req.Username, req.Password); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), publicErrorMessage(err, "Login failed"))
		return
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to issue session token")
		respondWithError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}
