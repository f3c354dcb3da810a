package fields_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"qr-admin-service/internal/fields"
	"qr-admin-service/internal/models"
)

func setupTestDB(t *testing.T) *fields.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open SQLite: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	if err := bunDB.ResetModel(context.Background(), (*models.FieldBinding)(nil)); err != nil {
		t.Fatalf("Failed to create bindings table: %v", err)
	}

	return &fields.DB{Bun: bunDB}
}

func binding(id, productID, status string) models.FieldBinding {
	return models.FieldBinding{
		ID:        id,
		ProductID: productID,
		FieldID:   "field-" + id,
		FieldName: "QR Code",
		Status:    status,
		CreatedAt: time.Now().Round(time.Second),
	}
}

func TestCreateActiveBindingDeactivatesPrevious(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	if err := store.CreateBinding(ctx, binding("b1", "prod-1", models.BindingStatusActive)); err != nil {
		t.Fatalf("Failed to create first binding: %v", err)
	}
	if err := store.CreateBinding(ctx, binding("b2", "prod-1", models.BindingStatusActive)); err != nil {
		t.Fatalf("Failed to create second binding: %v", err)
	}

	active, err := store.GetActiveBinding(ctx, "prod-1")
	if err != nil {
		t.Fatalf("Failed to load active binding: %v", err)
	}
	if active.ID != "b2" {
		t.Errorf("Expected b2 to be the active binding, got %s", active.ID)
	}

	first, err := store.GetBindingByID(ctx, "b1")
	if err != nil {
		t.Fatalf("Failed to load first binding: %v", err)
	}
	if first.Status != models.BindingStatusInactive {
		t.Errorf("Expected b1 to be deactivated, got %s", first.Status)
	}
}

func TestActivationIsPerProduct(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	if err := store.CreateBinding(ctx, binding("b1", "prod-1", models.BindingStatusActive)); err != nil {
		t.Fatalf("Failed to create binding: %v", err)
	}
	if err := store.CreateBinding(ctx, binding("b2", "prod-2", models.BindingStatusActive)); err != nil {
		t.Fatalf("Failed to create binding: %v", err)
	}

	for _, productID := range []string{"prod-1", "prod-2"} {
		if _, err := store.GetActiveBinding(ctx, productID); err != nil {
			t.Errorf("Expected an active binding for %s: %v", productID, err)
		}
	}
}

func TestSetBindingStatusActivate(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	if err := store.CreateBinding(ctx, binding("b1", "prod-1", models.BindingStatusActive)); err != nil {
		t.Fatalf("Failed to create binding: %v", err)
	}
	if err := store.CreateBinding(ctx, binding("b2", "prod-1", models.BindingStatusInactive)); err != nil {
		t.Fatalf("Failed to create binding: %v", err)
	}

	updated, err := store.SetBindingStatus(ctx, "b2", models.BindingStatusActive)
	if err != nil {
		t.Fatalf("Failed to activate binding: %v", err)
	}
	if updated.Status != models.BindingStatusActive {
		t.Errorf("Expected b2 active, got %s", updated.Status)
	}

	first, err := store.GetBindingByID(ctx, "b1")
	if err != nil {
		t.Fatalf("Failed to load first binding: %v", err)
	}
	if first.Status != models.BindingStatusInactive {
		t.Errorf("Expected b1 deactivated after b2 activation, got %s", first.Status)
	}

	bindings, err := store.ListBindings(ctx)
	if err != nil {
		t.Fatalf("Failed to list bindings: %v", err)
	}
	if len(bindings) != 2 {
		t.Errorf("Expected 2 bindings, got %d", len(bindings))
	}
}

func TestGetActiveBindingMissing(t *testing.T) {
	store := setupTestDB(t)

	if _, err := store.GetActiveBinding(context.Background(), "prod-none"); err == nil {
		t.Error("Expected an error when no active binding exists")
	}
}
