// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/bonusboard/internal/adapters/remote"
	service "github.com/okian/bonusboard/internal/app"
	"github.com/okian/bonusboard/internal/domain/period"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	QueueDependencies
	NotificationDependencies
	DashboardDependencies
	LeaderboardDependencies
	BonusDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	queueHandler         *QueueHandler
	notificationsHandler *NotificationsHandler
	dashboardHandler     *DashboardHandler
	leaderboardHandler   *LeaderboardHandler
	bonusHandler         *BonusHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:        NewHealthHandler(),
		statsHandler:         NewStatsHandler(statsProvider),
		queueHandler:         NewQueueHandler(deps),
		notificationsHandler: NewNotificationsHandler(deps),
		dashboardHandler:     NewDashboardHandler(deps),
		leaderboardHandler:   NewLeaderboardHandler(deps),
		bonusHandler:         NewBonusHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /api/views/queue", MetricsMiddleware(s.queueHandler.HandleGetQueue, "queue"))
	mux.HandleFunc("POST /api/views/queue/refresh", MetricsMiddleware(s.queueHandler.HandleRefresh, "queue_refresh"))
	mux.HandleFunc("GET /api/views/notifications", MetricsMiddleware(s.notificationsHandler.HandleGet, "notifications"))
	mux.HandleFunc("POST /api/views/notifications/dismiss", MetricsMiddleware(s.notificationsHandler.HandleDismiss, "notifications_dismiss"))
	mux.HandleFunc("GET /api/views/dashboard", MetricsMiddleware(s.dashboardHandler.HandleGet, "dashboard"))
	mux.HandleFunc("POST /api/views/dashboard/refresh", MetricsMiddleware(s.dashboardHandler.HandleRefresh, "dashboard_refresh"))
	mux.HandleFunc("GET /api/views/goldrush", MetricsMiddleware(s.leaderboardHandler.HandleGoldRush, "goldrush"))
	mux.HandleFunc("GET /api/views/topguns", MetricsMiddleware(s.leaderboardHandler.HandleTopGuns, "topguns"))

	mux.HandleFunc("GET /api/admin/bonus", MetricsMiddleware(s.bonusHandler.HandleList, "bonus_list"))
	mux.HandleFunc("POST /api/admin/bonus", MetricsMiddleware(s.bonusHandler.HandleSave, "bonus_save"))
	mux.HandleFunc("DELETE /api/admin/bonus/{id}", MetricsMiddleware(s.bonusHandler.HandleDelete, "bonus_delete"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a dependency error onto a status code. Backend failures
// carry the same display string the views show inline.
func writeFailure(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, remote.ErrMissingKey):
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	case errors.Is(err, period.ErrUnknownKind), errors.Is(err, period.ErrUnknownPeriod), errors.Is(err, period.ErrMissingStart):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, remote.ErrHTTPStatus), errors.Is(err, remote.ErrTransport):
		writeJSON(w, http.StatusBadGateway, errorResponse{Code: "upstream_error", Message: remote.Message(err)})
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
