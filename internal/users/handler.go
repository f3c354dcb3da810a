package users

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"qr-admin-service/internal/auth"
	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/models"
)

// Handler proxies superadmin user management to the identity provider's
// admin API. Role flags live in user_metadata; nothing is stored locally.
type Handler struct {
	Provider *auth.ProviderClient
	Logger   *logger.Logger
}

func NewHandler(provider *auth.ProviderClient, log *logger.Logger) *Handler {
	return &Handler{Provider: provider, Logger: log}
}

// CreateUser provisions a portal account.
// Expected POST body: {"email", "password", "user_metadata": {"admin": true}}
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.Provider.CreateUser(req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateUser: %v", err))
		http.Error(w, "Failed to create user: "+err.Error(), http.StatusBadGateway)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateUser: %s created by %s", user.Email, auth.UserID(r.Context())))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(user); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateUser: failed to encode response: %v", err))
	}
}

// UpdateUser changes an account's email, password or role flags.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.Provider.UpdateUser(userID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateUser: %v", err))
		http.Error(w, "Failed to update user: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(user); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateUser: failed to encode response: %v", err))
	}
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	// A superadmin cannot delete their own account.
	if userID == auth.UserID(r.Context()) {
		http.Error(w, "cannot delete your own account", http.StatusForbidden)
		return
	}

	if err := h.Provider.DeleteUser(userID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteUser: %v", err))
		http.Error(w, "Failed to delete user: "+err.Error(), http.StatusBadGateway)
		return
	}
	h.Logger.LogSecurity("API", fmt.Sprintf("User %s deleted by %s", userID, auth.UserID(r.Context())))

	w.WriteHeader(http.StatusNoContent)
}
