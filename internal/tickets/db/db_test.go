package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"qr-admin-service/internal/models"
	"qr-admin-service/internal/tickets/db"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open SQLite: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	if err := bunDB.ResetModel(context.Background(), (*models.Ticket)(nil)); err != nil {
		t.Fatalf("Failed to create tickets table: %v", err)
	}

	return &db.DB{Bun: bunDB}
}

func insertTicket(t *testing.T, store *db.DB, id, orderID, ticketType string) {
	t.Helper()
	ticket := models.Ticket{
		TicketID:   id,
		OrderID:    orderID,
		TicketType: ticketType,
		Status:     models.TicketStatusLive,
		IssuedAt:   time.Now().Round(time.Second),
	}
	if err := store.InsertTicket(context.Background(), ticket); err != nil {
		t.Fatalf("Failed to insert ticket %s: %v", id, err)
	}
}

func TestCountByOrderAndType(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	insertTicket(t, store, "t1", "order-1", "VIP")
	insertTicket(t, store, "t2", "order-1", "VIP")
	insertTicket(t, store, "t3", "order-1", "General")
	insertTicket(t, store, "t4", "order-2", "VIP")

	count, err := store.CountByOrderAndType(ctx, "order-1", "VIP")
	if err != nil {
		t.Fatalf("Failed to count tickets: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 VIP tickets for order-1, got %d", count)
	}

	count, err = store.CountByOrderAndType(ctx, "order-1", "Backstage")
	if err != nil {
		t.Fatalf("Failed to count tickets: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 Backstage tickets, got %d", count)
	}
}

func TestUpdateStatusStampsValidatedAt(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	insertTicket(t, store, "t1", "order-1", "VIP")

	updated, err := store.UpdateStatus(ctx, "t1", models.TicketStatusValidated)
	if err != nil {
		t.Fatalf("Failed to validate ticket: %v", err)
	}
	if updated.Status != models.TicketStatusValidated {
		t.Errorf("Expected status validated, got %s", updated.Status)
	}
	if updated.ValidatedAt.IsZero() {
		t.Error("Expected validated_at to be stamped")
	}

	// Flipping back to live clears the stamp.
	reverted, err := store.UpdateStatus(ctx, "t1", models.TicketStatusLive)
	if err != nil {
		t.Fatalf("Failed to revert ticket: %v", err)
	}
	if !reverted.ValidatedAt.IsZero() {
		t.Error("Expected validated_at to be cleared on revert")
	}
}

func TestUpdateStatusUnknownTicket(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.UpdateStatus(context.Background(), "missing", models.TicketStatusValidated)
	if err == nil {
		t.Error("Expected an error for an unknown ticket")
	}
}

func TestGetTicketsByOrderAndCountByStatus(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	insertTicket(t, store, "t1", "order-1", "VIP")
	insertTicket(t, store, "t2", "order-1", "General")
	insertTicket(t, store, "t3", "order-2", "VIP")

	tickets, err := store.GetTicketsByOrder(ctx, "order-1")
	if err != nil {
		t.Fatalf("Failed to list tickets: %v", err)
	}
	if len(tickets) != 2 {
		t.Errorf("Expected 2 tickets for order-1, got %d", len(tickets))
	}

	if _, err := store.UpdateStatus(ctx, "t1", models.TicketStatusValidated); err != nil {
		t.Fatalf("Failed to validate ticket: %v", err)
	}

	live, err := store.CountByStatus(ctx, models.TicketStatusLive)
	if err != nil {
		t.Fatalf("Failed to count live tickets: %v", err)
	}
	if live != 2 {
		t.Errorf("Expected 2 live tickets, got %d", live)
	}

	validated, err := store.CountByStatus(ctx, models.TicketStatusValidated)
	if err != nil {
		t.Fatalf("Failed to count validated tickets: %v", err)
	}
	if validated != 1 {
		t.Errorf("Expected 1 validated ticket, got %d", validated)
	}
}
