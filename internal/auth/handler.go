package auth

import (
	"encoding/json"
	"fmt"
	"net/http"

	"qr-admin-service/internal/logger"
)

type Handler struct {
	Logger *logger.Logger
}

// Me echoes the caller's verified claims so the frontend can render the
// right portal without decoding the token itself.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(claims); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Me: failed to encode response: %v", err))
	}
}
