package posts_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"qr-admin-service/internal/models"
	"qr-admin-service/internal/posts"
)

func setupTestDB(t *testing.T) *posts.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open SQLite: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	if err := bunDB.ResetModel(context.Background(), (*models.Post)(nil)); err != nil {
		t.Fatalf("Failed to create posts table: %v", err)
	}

	return &posts.DB{Bun: bunDB}
}

func TestCreateAndGetPost(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	post := models.Post{
		ID:        "post-1",
		Title:     "Doors open at 6",
		Body:      "Please arrive early.",
		AuthorID:  "user-1",
		CreatedAt: time.Now().Round(time.Second),
	}
	if err := store.CreatePost(ctx, post); err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}

	got, err := store.GetPostByID(ctx, "post-1")
	if err != nil {
		t.Fatalf("Failed to retrieve post: %v", err)
	}
	if got.Title != post.Title {
		t.Errorf("Expected title %q, got %q", post.Title, got.Title)
	}
	if got.AuthorID != "user-1" {
		t.Errorf("Expected author user-1, got %s", got.AuthorID)
	}
}

func TestUpdatePost(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	post := models.Post{ID: "post-1", Title: "Original", Body: "body", CreatedAt: time.Now()}
	if err := store.CreatePost(ctx, post); err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}

	post.Title = "Updated"
	post.Body = "new body"
	if err := store.UpdatePost(ctx, post); err != nil {
		t.Fatalf("Failed to update post: %v", err)
	}

	got, err := store.GetPostByID(ctx, "post-1")
	if err != nil {
		t.Fatalf("Failed to retrieve post: %v", err)
	}
	if got.Title != "Updated" || got.Body != "new body" {
		t.Errorf("Post not updated, got title %q body %q", got.Title, got.Body)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("Expected updated_at to be stamped")
	}
}

func TestListAndDeletePosts(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	base := time.Now().Round(time.Second)
	for i, id := range []string{"p1", "p2", "p3"} {
		post := models.Post{
			ID:        id,
			Title:     "Post " + id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.CreatePost(ctx, post); err != nil {
			t.Fatalf("Failed to create post %s: %v", id, err)
		}
	}

	list, err := store.ListPosts(ctx, 10, 0)
	if err != nil {
		t.Fatalf("Failed to list posts: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("Expected 3 posts, got %d", len(list))
	}
	if list[0].ID != "p3" {
		t.Errorf("Expected newest post first, got %s", list[0].ID)
	}

	if err := store.DeletePost(ctx, "p2"); err != nil {
		t.Fatalf("Failed to delete post: %v", err)
	}
	if _, err := store.GetPostByID(ctx, "p2"); err == nil {
		t.Error("Expected deleted post to be gone")
	}
}
