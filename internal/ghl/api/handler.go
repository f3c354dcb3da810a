package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"qr-admin-service/internal/ghl"
	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/models"
)

// Handler exposes the commerce platform's price catalog and contact
// updates to the admin portal.
type Handler struct {
	GHL    *ghl.Client
	Types  *ghl.TypeCache
	Logger *logger.Logger
}

func NewHandler(ghlClient *ghl.Client, types *ghl.TypeCache, log *logger.Logger) *Handler {
	return &Handler{GHL: ghlClient, Types: types, Logger: log}
}

// ListTicketTypes returns the cached price tiers of a product.
// Expected query: ?product_id=...  Add &refresh=true to bypass the cache.
func (h *Handler) ListTicketTypes(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		http.Error(w, "product_id query parameter is required", http.StatusBadRequest)
		return
	}

	var (
		types []models.TicketType
		err   error
	)
	if r.URL.Query().Get("refresh") == "true" {
		types, err = h.Types.Refresh(r.Context(), productID)
	} else {
		types, err = h.Types.GetTicketTypes(r.Context(), productID)
	}
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListTicketTypes: %v", err))
		http.Error(w, "Failed to load ticket types: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(types); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListTicketTypes: failed to encode response: %v", err))
	}
}

// GetPrice fetches one price tier straight from the platform.
// Expected query: ?product_id=...
func (h *Handler) GetPrice(w http.ResponseWriter, r *http.Request) {
	priceID := chi.URLParam(r, "id")
	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		http.Error(w, "product_id query parameter is required", http.StatusBadRequest)
		return
	}

	price, err := h.GHL.GetPrice(r.Context(), productID, priceID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetPrice: %v", err))
		http.Error(w, "Failed to fetch price: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(price); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetPrice: failed to encode response: %v", err))
	}
}

// UpdateContactField writes one custom field value onto a CRM contact.
// Expected PUT body: {"field_id": "...", "value": "..."}
func (h *Handler) UpdateContactField(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "id")

	var body struct {
		FieldID string `json:"field_id"`
		Value   string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.FieldID == "" {
		http.Error(w, "field_id is required", http.StatusBadRequest)
		return
	}

	if err := h.GHL.UpdateContactCustomField(r.Context(), contactID, body.FieldID, body.Value); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateContactField: %v", err))
		http.Error(w, "Failed to update contact: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "contact updated"})
}
