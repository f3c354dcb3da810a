package fields

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/models"
)

type Handler struct {
	DB     *DB
	Logger *logger.Logger
}

func NewHandler(db *DB, log *logger.Logger) *Handler {
	return &Handler{DB: db, Logger: log}
}

func (h *Handler) ListBindings(w http.ResponseWriter, r *http.Request) {
	bindings, err := h.DB.ListBindings(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListBindings: %v", err))
		http.Error(w, "Failed to list bindings: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if bindings == nil {
		bindings = []models.FieldBinding{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(bindings); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListBindings: failed to encode response: %v", err))
	}
}

// CreateBinding binds a product to a contact custom field. Creating an
// active binding atomically deactivates the product's previous one.
func (h *Handler) CreateBinding(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"product_id"`
		FieldID   string `json:"field_id"`
		FieldName string `json:"field_name"`
		Status    string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.ProductID == "" || body.FieldID == "" {
		http.Error(w, "product_id and field_id are required", http.StatusBadRequest)
		return
	}
	if body.Status == "" {
		body.Status = models.BindingStatusActive
	}
	if body.Status != models.BindingStatusActive && body.Status != models.BindingStatusInactive {
		http.Error(w, "status must be active or inactive", http.StatusBadRequest)
		return
	}

	binding := models.FieldBinding{
		ID:        uuid.NewString(),
		ProductID: body.ProductID,
		FieldID:   body.FieldID,
		FieldName: body.FieldName,
		Status:    body.Status,
		CreatedAt: time.Now(),
	}

	if err := h.DB.CreateBinding(r.Context(), binding); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateBinding: %v", err))
		http.Error(w, "Failed to create binding: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateBinding: product %s bound to field %s", body.ProductID, body.FieldID))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(binding); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateBinding: failed to encode response: %v", err))
	}
}

// UpdateBindingStatus activates or deactivates a binding.
// Expected PUT body: {"status": "active"}
func (h *Handler) UpdateBindingStatus(w http.ResponseWriter, r *http.Request) {
	bindingID := chi.URLParam(r, "id")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.Status != models.BindingStatusActive && body.Status != models.BindingStatusInactive {
		http.Error(w, "status must be active or inactive", http.StatusBadRequest)
		return
	}

	binding, err := h.DB.SetBindingStatus(r.Context(), bindingID, body.Status)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateBindingStatus: %v", err))
		http.Error(w, "Failed to update binding: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(binding); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateBindingStatus: failed to encode response: %v", err))
	}
}
