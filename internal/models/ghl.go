package models

// Wire types for the GHL commerce API. Field names follow the platform's
// JSON, not ours.

type GHLContact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type GHLPrice struct {
	ID        string  `json:"_id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	ProductID string  `json:"product"`
}

type GHLProduct struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type GHLLineItem struct {
	Price   GHLPrice   `json:"price"`
	Product GHLProduct `json:"product"`
	Qty     int        `json:"qty"`
	Amount  float64    `json:"amount"`
}

type GHLOrder struct {
	ID            string        `json:"_id"`
	PaymentStatus string        `json:"paymentStatus"`
	Contact       GHLContact    `json:"contactSnapshot"`
	Items         []GHLLineItem `json:"items"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
}

// TicketQuantities derives the per-type counts from the order's line items,
// keyed by the nested price name.
func (o *GHLOrder) TicketQuantities() map[string]int {
	quantities := make(map[string]int)
	for _, item := range o.Items {
		if item.Price.Name == "" {
			continue
		}
		quantities[item.Price.Name] += item.Qty
	}
	return quantities
}

// TicketType is one cached price tier for an event product.
type TicketType struct {
	Name      string  `json:"name"`
	PriceID   string  `json:"price_id"`
	ProductID string  `json:"product_id"`
	Amount    float64 `json:"amount"`
}

// GHLWebhookEvent is the inbound payload posted to /api/ghl/webhook-qr.
type GHLWebhookEvent struct {
	Type      string `json:"type"`
	OrderID   string `json:"orderId"`
	ContactID string `json:"contactId"`
	ProductID string `json:"productId"`
}
