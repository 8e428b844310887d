package handlers

import (
	"context"
	"net/http"

	"reachmesh-bknd/internal/models"
	"reachmesh-bknd/internal/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PostHandler struct {
	service *services.PostService
	logr    *zap.Logger
}

func NewPostHandler(svc *services.PostService, logr *zap.Logger) *PostHandler {
	return &PostHandler{service: svc, logr: logr}
}

// ListPosts handles GET /posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	var (
		params models.PostQueryParams
		err    error
	)
	if params.UserID, err = queryUUID(r, "user_id"); err != nil {
		writeError(w, h.logr, err, "Invalid query")
		return
	}
	if params.BusinessID, err = queryUUID(r, "business_id"); err != nil {
		writeError(w, h.logr, err, "Invalid query")
		return
	}
	if params.ProfessionalID, err = queryUUID(r, "professional_id"); err != nil {
		writeError(w, h.logr, err, "Invalid query")
		return
	}
	params.Limit, params.Offset = parsePagination(r)

	posts, total, err := h.service.ListPosts(r.Context(), params)
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch posts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    posts,
		"count":   len(posts),
		"total":   total,
		"limit":   services.ClampLimit(params.Limit),
		"offset":  params.Offset,
	})
}

// CreatePost handles POST /posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	var req models.CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logr, err, "Invalid request body")
		return
	}
	post, err := h.service.CreatePost(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.logr, err, "Failed to create post")
		return
	}
	writeData(w, http.StatusCreated, post)
}

// DeletePost handles DELETE /posts/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid post ID")
		return
	}
	if err := h.service.DeletePost(r.Context(), userID, id); err != nil {
		writeError(w, h.logr, err, "Failed to delete post")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Post deleted"})
}

// ToggleLike handles POST /posts/{id}/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.ToggleLike, "Failed to toggle like")
}

// ToggleSave handles POST /posts/{id}/save
func (h *PostHandler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.ToggleSave, "Failed to toggle save")
}

func (h *PostHandler) toggle(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID, uuid.UUID) (*models.ToggleResult, error), failure string) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid post ID")
		return
	}
	res, err := fn(r.Context(), userID, id)
	if err != nil {
		writeError(w, h.logr, err, failure)
		return
	}
	writeData(w, http.StatusOK, res)
}
