package posts

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"qr-admin-service/internal/auth"
	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/models"
)

type Handler struct {
	DB     *DB
	Logger *logger.Logger
}

func NewHandler(db *DB, log *logger.Logger) *Handler {
	return &Handler{DB: db, Logger: log}
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	postList, err := h.DB.ListPosts(r.Context(), limit, offset)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListPosts: %v", err))
		http.Error(w, "Failed to list posts: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if postList == nil {
		postList = []models.Post{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(postList); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListPosts: failed to encode response: %v", err))
	}
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	post, err := h.DB.GetPostByID(r.Context(), postID)
	if err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(post); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetPost: failed to encode response: %v", err))
	}
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	post := models.Post{
		ID:        uuid.NewString(),
		Title:     body.Title,
		Body:      body.Body,
		AuthorID:  auth.UserID(r.Context()),
		CreatedAt: time.Now(),
	}

	if err := h.DB.CreatePost(r.Context(), post); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreatePost: %v", err))
		http.Error(w, "Failed to create post: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(post); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreatePost: failed to encode response: %v", err))
	}
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	post, err := h.DB.GetPostByID(r.Context(), postID)
	if err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	var body struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if body.Title != "" {
		post.Title = body.Title
	}
	post.Body = body.Body

	if err := h.DB.UpdatePost(r.Context(), *post); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdatePost: %v", err))
		http.Error(w, "Failed to update post: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(post); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdatePost: failed to encode response: %v", err))
	}
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	if err := h.DB.DeletePost(r.Context(), postID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeletePost: %v", err))
		http.Error(w, "Failed to delete post: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
