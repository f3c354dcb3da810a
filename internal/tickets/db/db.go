package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"qr-admin-service/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetTicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("ticket_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (d *DB) GetTicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("order_id = ?", orderID).
		Order("issued_at").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// CountByOrderAndType counts existing tickets for one (order, type) pair.
// The sync job inserts only the delta up to the target quantity.
func (d *DB) CountByOrderAndType(ctx context.Context, orderID, ticketType string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		Where("order_id = ?", orderID).
		Where("ticket_type = ?", ticketType).
		Count(ctx)
}

func (d *DB) InsertTicket(ctx context.Context, ticket models.Ticket) error {
	_, err := d.Bun.NewInsert().Model(&ticket).Exec(ctx)
	return err
}

// UpdateStatus toggles a ticket between live and validated, stamping
// validated_at on validation.
func (d *DB) UpdateStatus(ctx context.Context, ticketID, status string) (*models.Ticket, error) {
	ticket, err := d.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	ticket.Status = status
	if status == models.TicketStatusValidated {
		ticket.ValidatedAt = time.Now()
	} else {
		ticket.ValidatedAt = time.Time{}
	}

	_, err = d.Bun.NewUpdate().
		Model(ticket).
		Column("status", "validated_at").
		Where("ticket_id = ?", ticketID).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// CountByStatus reports how many tickets sit in a given status.
func (d *DB) CountByStatus(ctx context.Context, status string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		Where("status = ?", status).
		Count(ctx)
}
