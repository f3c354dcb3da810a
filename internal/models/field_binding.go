package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	BindingStatusActive   = "active"
	BindingStatusInactive = "inactive"
)

// FieldBinding associates a commerce product with the CRM contact custom
// field that stores the generated QR code. A product may have at most one
// active binding at any time.
type FieldBinding struct {
	bun.BaseModel `bun:"table:ghl_field_bindings"`

	ID        string    `bun:"id,pk" json:"id"`
	ProductID string    `bun:"product_id,notnull" json:"product_id"`
	FieldID   string    `bun:"field_id,notnull" json:"field_id"`
	FieldName string    `bun:"field_name" json:"field_name"`
	Status    string    `bun:"status,notnull" json:"status"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}
