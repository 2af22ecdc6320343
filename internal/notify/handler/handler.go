// Package handler exposes the in-app notification inbox.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"matchport/internal/notify"
	id "matchport/pkg/domain"
	"matchport/pkg/platform/httputil"
	"matchport/pkg/requestcontext"
)

type Handler struct {
	service *notify.Service
	logger  *slog.Logger
}

func New(svc *notify.Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// RegisterAuthed mounts the inbox endpoints.
func (h *Handler) RegisterAuthed(r chi.Router) {
	r.Get("/notifications", h.HandleInbox)
	r.Get("/notifications/unread-count", h.HandleUnreadCount)
	r.Post("/notifications/{notificationID}/read", h.HandleMarkRead)
	r.Post("/notifications/read-all", h.HandleMarkAllRead)
}

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id,omitempty"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func fromNotification(n *notify.Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:        n.ID.String(),
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if n.RequestID != nil {
		resp.RequestID = n.RequestID.String()
	}
	return resp
}

// HandleInbox handles GET /api/notifications.
func (h *Handler) HandleInbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.Inbox(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, fromNotification(n))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleUnreadCount handles GET /api/notifications/unread-count.
func (h *Handler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n, err := h.service.UnreadCount(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"unread": n})
}

// HandleMarkRead handles POST /api/notifications/{notificationID}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "notificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.MarkRead(ctx, requestcontext.ActorID(ctx), notificationID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMarkAllRead handles POST /api/notifications/read-all.
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.MarkAllRead(ctx, requestcontext.ActorID(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
