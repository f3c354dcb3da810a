package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"

	"qr-admin-service/internal/fields"
	"qr-admin-service/internal/ghl"
	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/models"
	syncjob "qr-admin-service/internal/sync"
	ticketdb "qr-admin-service/internal/tickets/db"
	"qr-admin-service/internal/tickets/qr"
)

// Handler receives order webhooks from the commerce platform. On a paid
// order it syncs that one order immediately and writes the generated QR
// payload back into the CRM contact custom field bound to the product.
type Handler struct {
	Job     *syncjob.Job
	Fields  *fields.DB
	Tickets *ticketdb.DB
	GHL     *ghl.Client
	QR      *qr.QRGenerator
	Secret  string
	Logger  *logger.Logger
}

func NewHandler(job *syncjob.Job, fieldsDB *fields.DB, ticketsDB *ticketdb.DB, ghlClient *ghl.Client, qrGen *qr.QRGenerator, secret string, log *logger.Logger) *Handler {
	return &Handler{
		Job:     job,
		Fields:  fieldsDB,
		Tickets: ticketsDB,
		GHL:     ghlClient,
		QR:      qrGen,
		Secret:  secret,
		Logger:  log,
	}
}

// HandleOrderWebhook processes POST /api/ghl/webhook-qr.
func (h *Handler) HandleOrderWebhook(w http.ResponseWriter, r *http.Request) {
	if !h.verifySecret(r) {
		h.Logger.LogSecurity("WEBHOOK", "Rejected webhook with bad or missing secret")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var event models.GHLWebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Invalid webhook payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if event.OrderID == "" {
		http.Error(w, "orderId is required", http.StatusBadRequest)
		return
	}

	h.Logger.Info("WEBHOOK", fmt.Sprintf("Received %s webhook for order %s", event.Type, event.OrderID))

	inserted, err := h.Job.SyncOne(r.Context(), event.OrderID)
	if err != nil {
		h.Logger.Error("WEBHOOK", fmt.Sprintf("Failed to sync order %s: %v", event.OrderID, err))
		http.Error(w, "Failed to sync order: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// QR write-back is best effort; the tickets are already in the store.
	if err := h.writeBackQR(r.Context(), event); err != nil {
		h.Logger.Warn("WEBHOOK", fmt.Sprintf("QR write-back for order %s skipped: %v", event.OrderID, err))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"order_id":         event.OrderID,
		"tickets_inserted": inserted,
	})
}

// writeBackQR stores the order's first live ticket payload in the contact
// custom field bound to the product.
func (h *Handler) writeBackQR(ctx context.Context, event models.GHLWebhookEvent) error {
	if event.ContactID == "" || event.ProductID == "" {
		return fmt.Errorf("webhook carries no contact/product to write back to")
	}

	binding, err := h.Fields.GetActiveBinding(ctx, event.ProductID)
	if err != nil {
		return fmt.Errorf("no active field binding for product %s: %w", event.ProductID, err)
	}

	tickets, err := h.Tickets.GetTicketsByOrder(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load tickets: %w", err)
	}
	if len(tickets) == 0 {
		return fmt.Errorf("order %s has no tickets", event.OrderID)
	}

	ticket := tickets[0]
	payload, err := h.QR.EncryptPayload(models.QRPayload{
		TicketID:   ticket.TicketID,
		OrderID:    ticket.OrderID,
		TicketType: ticket.TicketType,
	})
	if err != nil {
		return fmt.Errorf("failed to encrypt QR payload: %w", err)
	}

	if err := h.GHL.UpdateContactCustomField(ctx, event.ContactID, binding.FieldID, payload); err != nil {
		return err
	}

	h.Logger.Info("WEBHOOK", fmt.Sprintf("QR payload written to field %s of contact %s", binding.FieldID, event.ContactID))
	return nil
}

func (h *Handler) verifySecret(r *http.Request) bool {
	if h.Secret == "" {
		return false
	}
	provided := r.Header.Get("X-Webhook-Secret")
	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.Secret)) == 1
}
