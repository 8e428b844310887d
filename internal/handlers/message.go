package handlers

import (
	"net/http"

	"reachmesh-bknd/internal/models"
	"reachmesh-bknd/internal/services"

	"go.uber.org/zap"
)

// MessageHandler handles HTTP requests for direct messages
type MessageHandler struct {
	service *services.MessageService
	logr    *zap.Logger
}

func NewMessageHandler(svc *services.MessageService, logr *zap.Logger) *MessageHandler {
	return &MessageHandler{service: svc, logr: logr}
}

// SendMessage handles POST /messages
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	var req models.SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logr, err, "Invalid request body")
		return
	}
	msg, err := h.service.Send(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.logr, err, "Failed to send message")
		return
	}

	h.logr.Info("message sent",
		zap.String("sender_id", userID.String()),
		zap.String("recipient_id", msg.RecipientID.String()),
		zap.Bool("is_reply", msg.ParentID != nil))

	writeData(w, http.StatusCreated, msg)
}

// Inbox handles GET /messages
func (h *MessageHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	limit, offset := parsePagination(r)
	threads, err := h.service.Inbox(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch messages")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    threads,
		"count":   len(threads),
	})
}

// GetMessage handles GET /messages/{id}
func (h *MessageHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid message ID")
		return
	}
	msg, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch message")
		return
	}
	writeData(w, http.StatusOK, msg)
}

// MarkRead handles POST /messages/{id}/read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid message ID")
		return
	}
	if err := h.service.MarkRead(r.Context(), userID, id); err != nil {
		writeError(w, h.logr, err, "Failed to update message")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Message marked as read"})
}
