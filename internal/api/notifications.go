package api

import (
	"database/sql"
	"net/http"

	"github.com/mkovacic/biblio/internal/model"
	"github.com/mkovacic/biblio/internal/store"
)

// NotificationsHandler exposes stock notifications to admins.
type NotificationsHandler struct {
	DB *sql.DB
}

// List handles GET /api/admin/notifications. Pass ?unread=true to only
// see notifications that have not been acknowledged yet.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := store.ListNotifications(r.Context(), h.DB, unreadOnly)
	if err != nil {
		domainError(w, err, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	jsonResponse(w, http.StatusOK, notifications)
}

// MarkRead handles PUT /api/admin/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := store.MarkNotificationRead(r.Context(), h.DB, id); err != nil {
		domainError(w, err, "failed to mark notification read")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "notification marked read"})
}
