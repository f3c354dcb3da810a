package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Order is the local mirror of a GHL order, upserted wholesale by the sync
// job. Last write wins; there is no partial-update merge.
type Order struct {
	bun.BaseModel `bun:"table:ghl_qr_orders"`

	OrderID          string         `bun:"order_id,pk" json:"order_id"`
	PaymentStatus    string         `bun:"payment_status" json:"payment_status"`
	ContactID        string         `bun:"contact_id" json:"contact_id"`
	ContactName      string         `bun:"contact_name" json:"contact_name"`
	ContactEmail     string         `bun:"contact_email" json:"contact_email"`
	EventID          string         `bun:"event_id" json:"event_id"`
	EventName        string         `bun:"event_name" json:"event_name"`
	TicketQuantities map[string]int `bun:"ticket_quantities,type:jsonb" json:"ticket_quantities"`
	TotalPaid        float64        `bun:"total_paid" json:"total_paid"`
	Currency         string         `bun:"currency" json:"currency"`
	SyncedAt         time.Time      `bun:"synced_at,nullzero" json:"synced_at"`
	CreatedAt        time.Time      `bun:"created_at,notnull" json:"created_at"`
}

// TotalTickets sums the per-type quantities.
func (o *Order) TotalTickets() int {
	total := 0
	for _, qty := range o.TicketQuantities {
		total += qty
	}
	return total
}

type OrderWithTickets struct {
	Order   Order    `json:"order"`
	Tickets []Ticket `json:"tickets"`
}
