package handlers

import (
	"net/http"

	"reachmesh-bknd/internal/models"
	"reachmesh-bknd/internal/services"

	"go.uber.org/zap"
)

// AccountHandler serves the signed-in user's own data: profile, saved
// items and notifications.
type AccountHandler struct {
	profiles      *services.ProfileService
	saved         *services.SavedService
	notifications *services.NotificationService
	logr          *zap.Logger
}

func NewAccountHandler(profiles *services.ProfileService, saved *services.SavedService, notifications *services.NotificationService, logr *zap.Logger) *AccountHandler {
	return &AccountHandler{profiles: profiles, saved: saved, notifications: notifications, logr: logr}
}

// GetProfile handles GET /profile
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	p, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch profile")
		return
	}
	writeData(w, http.StatusOK, p)
}

// UpdateProfile handles PUT /profile
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	var req models.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logr, err, "Invalid request body")
		return
	}
	p, err := h.profiles.Update(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.logr, err, "Failed to update profile")
		return
	}
	writeData(w, http.StatusOK, p)
}

// ListSaved handles GET /saved
func (h *AccountHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	items, err := h.saved.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch saved items")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    items,
		"count":   len(items),
	})
}

// SaveItem handles POST /saved
func (h *AccountHandler) SaveItem(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	var req models.SaveItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logr, err, "Invalid request body")
		return
	}
	item, err := h.saved.Save(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.logr, err, "Failed to save item")
		return
	}
	writeData(w, http.StatusCreated, item)
}

// RemoveSaved handles DELETE /saved/{id}
func (h *AccountHandler) RemoveSaved(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid saved item ID")
		return
	}
	if err := h.saved.Remove(r.Context(), userID, id); err != nil {
		writeError(w, h.logr, err, "Failed to remove saved item")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Removed from saved"})
}

// ListNotifications handles GET /notifications?unread=true
func (h *AccountHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	limit, offset := parsePagination(r)
	items, total, err := h.notifications.List(r.Context(), userID, parseBool(r.URL.Query().Get("unread")), limit, offset)
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch notifications")
		return
	}
	unread, err := h.notifications.UnreadCount(r.Context(), userID)
	if err != nil {
		writeError(w, h.logr, err, "Failed to fetch notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    items,
		"count":   len(items),
		"total":   total,
		"unread":  unread,
	})
}

// MarkNotificationRead handles POST /notifications/{id}/read
func (h *AccountHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, h.logr, err, "Invalid notification ID")
		return
	}
	if err := h.notifications.MarkRead(r.Context(), userID, id); err != nil {
		writeError(w, h.logr, err, "Failed to update notification")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Notification marked as read"})
}

// MarkAllNotificationsRead handles POST /notifications/read-all
func (h *AccountHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logr, err, "Unauthorized")
		return
	}
	n, err := h.notifications.MarkAllRead(r.Context(), userID)
	if err != nil {
		writeError(w, h.logr, err, "Failed to update notifications")
		return
	}
	h.logr.Debug("notifications marked read", zap.String("user_id", userID.String()), zap.Int64("count", n))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"updated": n,
	})
}
