package api

import (
	"context"
	"net/http"

	service "github.com/okian/bonusboard/internal/app"
)

// QueueDependencies defines the queue monitor operations.
type QueueDependencies interface {
	Queue(ctx context.Context, q service.QueueQuery) (service.QueueView, error)
	RefreshQueue(ctx context.Context) error
}

// QueueHandler serves the queue monitor.
type QueueHandler struct {
	deps QueueDependencies
}

// NewQueueHandler creates a new queue handler.
func NewQueueHandler(deps QueueDependencies) *QueueHandler {
	return &QueueHandler{deps: deps}
}

func queueQuery(r *http.Request) service.QueueQuery {
	v := r.URL.Query()
	return service.QueueQuery{
		Sort:   v.Get("sort"),
		Dir:    v.Get("dir"),
		Search: v.Get("q"),
		Team:   v.Get("team"),
	}
}

// HandleGetQueue handles GET /api/views/queue?sort=&dir=&q=&team=.
func (h *QueueHandler) HandleGetQueue(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_queue"
	view, err := h.deps.Queue(r.Context(), queueQuery(r))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleRefresh handles POST /api/views/queue/refresh. It replies with the
// refreshed view, or 502 when the fetch failed.
func (h *QueueHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh_queue"
	if err := h.deps.RefreshQueue(r.Context()); err != nil {
		writeFailure(w, op, err)
		return
	}
	h.HandleGetQueue(w, r)
}

// NotificationDependencies defines the notification operations.
type NotificationDependencies interface {
	Notifications(ctx context.Context) (service.NotificationsView, error)
	DismissAlert(ctx context.Context) (bool, error)
}

// NotificationsHandler serves the visible toast and alert.
type NotificationsHandler struct {
	deps NotificationDependencies
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(deps NotificationDependencies) *NotificationsHandler {
	return &NotificationsHandler{deps: deps}
}

// HandleGet handles GET /api/views/notifications.
func (h *NotificationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_notifications"
	view, err := h.deps.Notifications(r.Context())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type dismissResponse struct {
	Dismissed bool `json:"dismissed"`
}

// HandleDismiss handles POST /api/views/notifications/dismiss.
func (h *NotificationsHandler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	const op = "api.dismiss_alert"
	ok, err := h.deps.DismissAlert(r.Context())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, dismissResponse{Dismissed: ok})
}
