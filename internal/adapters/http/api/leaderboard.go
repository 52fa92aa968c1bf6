package api

import (
	"context"
	"net/http"

	service "github.com/okian/bonusboard/internal/app"
)

// LeaderboardDependencies defines the Gold Rush and Top Guns operations.
type LeaderboardDependencies interface {
	GoldRush(ctx context.Context) (service.GoldRushView, error)
	TopGuns(ctx context.Context, name string) (service.TopGunsView, error)
}

// LeaderboardHandler serves the weekly tiers and the period rankings.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGoldRush handles GET /api/views/goldrush.
func (h *LeaderboardHandler) HandleGoldRush(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_goldrush"
	view, err := h.deps.GoldRush(r.Context())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleTopGuns handles GET /api/views/topguns?period=. The period defaults
// to last_week.
func (h *LeaderboardHandler) HandleTopGuns(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_topguns"
	view, err := h.deps.TopGuns(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
