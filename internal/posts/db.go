package posts

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"qr-admin-service/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreatePost(ctx context.Context, post models.Post) error {
	_, err := d.Bun.NewInsert().Model(&post).Exec(ctx)
	return err
}

func (d *DB) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := d.Bun.NewSelect().
		Model(&post).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (d *DB) ListPosts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := d.Bun.NewSelect().
		Model(&posts).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (d *DB) UpdatePost(ctx context.Context, post models.Post) error {
	post.UpdatedAt = time.Now()
	_, err := d.Bun.NewUpdate().
		Model(&post).
		Column("title", "body", "updated_at").
		Where("id = ?", post.ID).
		Exec(ctx)
	return err
}

func (d *DB) DeletePost(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Post)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
