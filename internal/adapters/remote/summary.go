package remote

import (
	"context"
	"net/url"

	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/internal/domain/period"
	"github.com/okian/bonusboard/internal/domain/table"
)

// Selection identifies a dashboard data set.
type Selection struct {
	Kind  period.Kind
	Team  string
	Start string
	End   string
}

// QueueResponse is the body of GET /api/queue/today.
type QueueResponse struct {
	Rows []model.QueueRecord `json:"rows"`
}

// SummaryResponse is the body of the fe summary endpoints.
type SummaryResponse struct {
	Rows []model.SummaryRow `json:"rows"`
}

// buildQuery omits team when empty or ALL and skips empty dates.
func buildQuery(team, start, end string) string {
	q := url.Values{}
	if team != "" && team != table.All {
		q.Set("team", team)
	}
	if start != "" {
		q.Set("start_date", start)
	}
	if end != "" {
		q.Set("end_date", end)
	}
	if s := q.Encode(); s != "" {
		return "?" + s
	}
	return ""
}

// QueueToday fetches today's queue snapshot.
func (c *Client) QueueToday(ctx context.Context) ([]model.QueueRecord, error) {
	var out QueueResponse
	if err := c.get(ctx, "queue_today", "/api/queue/today", &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// FeAgents fetches record counts for a selection.
func (c *Client) FeAgents(ctx context.Context, sel Selection) (model.AgentCounts, error) {
	var path string
	switch sel.Kind {
	case period.Today:
		path = "/api/today/fe-agents" + buildQuery(sel.Team, "", "")
	case period.Week:
		path = "/api/week/fe-agents" + buildQuery(sel.Team, "", "")
	default:
		path = "/api/range/fe-agents" + buildQuery(sel.Team, sel.Start, endOrStart(sel))
	}
	var out model.AgentCounts
	if err := c.get(ctx, "fe_agents", path, &out); err != nil {
		return model.AgentCounts{}, err
	}
	return out, nil
}

// FeSummary fetches per-qualifier sales for a selection.
func (c *Client) FeSummary(ctx context.Context, sel Selection) ([]model.SummaryRow, error) {
	var path string
	switch sel.Kind {
	case period.Today:
		path = "/api/summary/today/fe" + buildQuery(sel.Team, "", "")
	case period.Week:
		path = "/api/summary/week/fe" + buildQuery(sel.Team, "", "")
	default:
		path = "/api/range/summary/fe" + buildQuery(sel.Team, sel.Start, endOrStart(sel))
	}
	var out SummaryResponse
	if err := c.get(ctx, "fe_summary", path, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// Refresh asks the backend to recompute today's or this week's aggregates.
// Any kind other than Today refreshes the week.
func (c *Client) Refresh(ctx context.Context, kind period.Kind) error {
	path := "/api/refresh/week"
	if kind == period.Today {
		path = "/api/refresh/today"
	}
	return c.get(ctx, "refresh", path, nil)
}

func endOrStart(sel Selection) string {
	if sel.End != "" {
		return sel.End
	}
	return sel.Start
}
