package api

import (
	"context"
	"net/http"

	service "github.com/okian/bonusboard/internal/app"
	"github.com/okian/bonusboard/internal/domain/period"
)

// DashboardDependencies defines the summary dashboard operations.
type DashboardDependencies interface {
	Dashboard(ctx context.Context, q service.DashboardQuery) (service.DashboardView, error)
	RefreshDashboard(ctx context.Context, q service.DashboardQuery) (service.DashboardView, error)
}

// DashboardHandler serves the summary dashboard.
type DashboardHandler struct {
	deps DashboardDependencies
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps DashboardDependencies) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

func dashboardQuery(r *http.Request) (service.DashboardQuery, error) {
	v := r.URL.Query()
	kind, err := period.ParseKind(v.Get("range"))
	if err != nil {
		return service.DashboardQuery{}, err
	}
	return service.DashboardQuery{
		Kind:  kind,
		Team:  v.Get("team"),
		Start: v.Get("start_date"),
		End:   v.Get("end_date"),
	}, nil
}

// HandleGet handles GET /api/views/dashboard?range=&team=&start_date=&end_date=.
func (h *DashboardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_dashboard"
	q, err := dashboardQuery(r)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	view, err := h.deps.Dashboard(r.Context(), q)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleRefresh handles POST /api/views/dashboard/refresh.
func (h *DashboardHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh_dashboard"
	q, err := dashboardQuery(r)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	view, err := h.deps.RefreshDashboard(r.Context(), q)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
