package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qr-admin-service/internal/auth"
	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/models"
)

func TestMeEchoesVerifiedClaims(t *testing.T) {
	log := logger.NewLogger()
	t.Cleanup(log.Close)
	handler := &auth.Handler{Logger: log}

	claims := &models.Claims{
		Sub:   "user-1",
		Email: "admin@example.com",
		UserMetadata: models.UserMetadata{
			Admin:  true,
			Member: true,
		},
	}

	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	req = req.WithContext(auth.WithClaims(req.Context(), claims))
	rec := httptest.NewRecorder()

	handler.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got models.Claims
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "user-1", got.Sub)
	assert.Equal(t, "admin@example.com", got.Email)
	assert.True(t, got.UserMetadata.Admin)
	assert.False(t, got.UserMetadata.Superadmin)
}

func TestMeWithoutClaimsIsUnauthorized(t *testing.T) {
	log := logger.NewLogger()
	t.Cleanup(log.Close)
	handler := &auth.Handler{Logger: log}

	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	rec := httptest.NewRecorder()

	handler.Me(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
