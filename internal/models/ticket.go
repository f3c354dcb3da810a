package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	TicketStatusLive      = "live"
	TicketStatusValidated = "validated"
)

// Ticket rows are inserted by the sync job to top an order up to its
// per-type quantity. They are never decremented.
type Ticket struct {
	bun.BaseModel `bun:"table:ghl_qr_tickets"`

	TicketID    string    `bun:"ticket_id,pk" json:"ticket_id"`
	OrderID     string    `bun:"order_id,notnull" json:"order_id"`
	TicketType  string    `bun:"ticket_type,notnull" json:"ticket_type"`
	Status      string    `bun:"status,notnull" json:"status"`
	QRCode      []byte    `bun:"qr_code" json:"qr_code,omitempty"`
	IssuedAt    time.Time `bun:"issued_at,notnull" json:"issued_at"`
	ValidatedAt time.Time `bun:"validated_at,nullzero" json:"validated_at,omitempty"`
}

// QRPayload is what gets encrypted into the ticket's QR code. The image
// bytes themselves stay out of it.
type QRPayload struct {
	TicketID   string `json:"ticket_id"`
	OrderID    string `json:"order_id"`
	TicketType string `json:"ticket_type"`
}
