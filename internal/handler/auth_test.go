package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-kitchen/internal/auth"
)

func TestAuthHandler_Login(t *testing.T) {
	hash, err := auth.HashPassword("kitchen-secret")
	require.NoError(t, err)
	verifier := auth.NewStaticVerifier(map[string]string{"admin": hash})
	h := NewAuthHandler(verifier)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{name: "success", body: `{"username": "admin", "password": "kitchen-secret"}`, expectedStatus: http.StatusOK},
		{name: "wrong_password", body: `{"username": "admin", "password": "guess"}`, expectedStatus: http.StatusUnauthorized},
		{name: "unknown_user", body: `{"username": "chef", "password": "kitchen-secret"}`, expectedStatus: http.StatusUnauthorized},
		{name: "missing_password", body: `{"username": "admin"}`, expectedStatus: http.StatusBadRequest},
		{name: "invalid_json", body: `{`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.Login(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var payload map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
			if tt.expectedStatus == http.StatusOK {
				assert.NotEmpty(t, payload["token"])
			} else {
				assert.NotEmpty(t, payload["error"])
			}
		})
	}
}
