package db

import (
	"context"

	"github.com/uptrace/bun"

	"qr-admin-service/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// UpsertOrder writes the order row keyed by order_id. Last write wins; the
// row is replaced wholesale from the external API response.
func (d *DB) UpsertOrder(ctx context.Context, order models.Order) error {
	_, err := d.Bun.NewInsert().
		Model(&order).
		On("CONFLICT (order_id) DO UPDATE").
		Set("payment_status = EXCLUDED.payment_status").
		Set("contact_id = EXCLUDED.contact_id").
		Set("contact_name = EXCLUDED.contact_name").
		Set("contact_email = EXCLUDED.contact_email").
		Set("event_id = EXCLUDED.event_id").
		Set("event_name = EXCLUDED.event_name").
		Set("ticket_quantities = EXCLUDED.ticket_quantities").
		Set("total_paid = EXCLUDED.total_paid").
		Set("currency = EXCLUDED.currency").
		Set("synced_at = EXCLUDED.synced_at").
		Exec(ctx)
	return err
}

func (d *DB) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("order_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns one page of orders, newest first.
func (d *DB) ListOrders(ctx context.Context, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (d *DB) CountOrders(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Order)(nil)).
		Count(ctx)
}

// GetOrderWithTickets returns an order together with its ticket rows.
func (d *DB) GetOrderWithTickets(ctx context.Context, id string) (*models.OrderWithTickets, error) {
	order, err := d.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var tickets []models.Ticket
	err = d.Bun.NewSelect().
		Model(&tickets).
		Where("order_id = ?", id).
		Order("issued_at").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &models.OrderWithTickets{
		Order:   *order,
		Tickets: tickets,
	}, nil
}
