package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/tickets"
)

type Handler struct {
	TicketService *tickets.TicketService
	Logger        *logger.Logger
}

func NewHandler(ticketService *tickets.TicketService, log *logger.Logger) *Handler {
	return &Handler{TicketService: ticketService, Logger: log}
}

func (h *Handler) ListTicketsByOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	h.Logger.Info("API", fmt.Sprintf("ListTicketsByOrder: orderId=%s", orderID))

	ticketList, err := h.TicketService.GetTicketsByOrder(r.Context(), orderID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListTicketsByOrder: %v", err))
		http.Error(w, "Failed to fetch tickets: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ticketList); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListTicketsByOrder: failed to encode response: %v", err))
	}
}

// UpdateTicketStatus toggles one ticket between live and validated.
// Expected PUT body: {"status": "validated"}
func (h *Handler) UpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "id")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	ticket, err := h.TicketService.SetStatus(r.Context(), ticketID, body.Status)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateTicketStatus: %v", err))
		http.Error(w, "Failed to update ticket: "+err.Error(), http.StatusBadRequest)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("UpdateTicketStatus: ticket %s is now %s", ticketID, ticket.Status))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ticket); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateTicketStatus: failed to encode response: %v", err))
	}
}

// ValidateScanned validates a ticket from a scanned QR payload.
// Expected POST body: {"encrypted_qr": "..."}
func (h *Handler) ValidateScanned(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EncryptedQR string `json:"encrypted_qr"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.EncryptedQR == "" {
		http.Error(w, "encrypted_qr is required", http.StatusBadRequest)
		return
	}

	ticket, err := h.TicketService.ValidateScanned(r.Context(), body.EncryptedQR)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ValidateScanned: %v", err))
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ticket); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ValidateScanned: failed to encode response: %v", err))
	}
}
