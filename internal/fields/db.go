package fields

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"qr-admin-service/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetBindingByID(ctx context.Context, id string) (*models.FieldBinding, error) {
	var binding models.FieldBinding
	err := d.Bun.NewSelect().
		Model(&binding).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &binding, nil
}

func (d *DB) ListBindings(ctx context.Context) ([]models.FieldBinding, error) {
	var bindings []models.FieldBinding
	err := d.Bun.NewSelect().
		Model(&bindings).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bindings, nil
}

// GetActiveBinding returns the single active binding of a product, if any.
func (d *DB) GetActiveBinding(ctx context.Context, productID string) (*models.FieldBinding, error) {
	var binding models.FieldBinding
	err := d.Bun.NewSelect().
		Model(&binding).
		Where("product_id = ?", productID).
		Where("status = ?", models.BindingStatusActive).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &binding, nil
}

// CreateBinding inserts a binding. If the new binding is active, every other
// binding of the same product is deactivated inside the same transaction, so
// "at most one active binding per product" holds without a check-then-write
// window.
func (d *DB) CreateBinding(ctx context.Context, binding models.FieldBinding) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if binding.Status == models.BindingStatusActive {
			if err := deactivateOthers(ctx, tx, binding.ProductID, binding.ID); err != nil {
				return err
			}
		}
		_, err := tx.NewInsert().Model(&binding).Exec(ctx)
		return err
	})
}

// SetBindingStatus flips a binding between active and inactive. Activation
// deactivates the product's other bindings in the same transaction.
func (d *DB) SetBindingStatus(ctx context.Context, id, status string) (*models.FieldBinding, error) {
	var binding models.FieldBinding
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().
			Model(&binding).
			Where("id = ?", id).
			Limit(1).
			Scan(ctx); err != nil {
			return err
		}

		if status == models.BindingStatusActive {
			if err := deactivateOthers(ctx, tx, binding.ProductID, binding.ID); err != nil {
				return err
			}
		}

		binding.Status = status
		binding.UpdatedAt = time.Now()
		_, err := tx.NewUpdate().
			Model(&binding).
			Column("status", "updated_at").
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &binding, nil
}

func deactivateOthers(ctx context.Context, tx bun.Tx, productID, exceptID string) error {
	_, err := tx.NewUpdate().
		Model((*models.FieldBinding)(nil)).
		Set("status = ?", models.BindingStatusInactive).
		Set("updated_at = ?", time.Now()).
		Where("product_id = ?", productID).
		Where("id != ?", exceptID).
		Where("status = ?", models.BindingStatusActive).
		Exec(ctx)
	return err
}
