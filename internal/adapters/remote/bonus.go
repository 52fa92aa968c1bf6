package remote

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/bonusboard/internal/domain/model"
)

// BonusRangeResponse is the body of GET /api/bonus/range.
type BonusRangeResponse struct {
	Rows []model.BonusRecord `json:"rows"`
}

// BonusRange lists bonus records. Unlike the summary endpoints, team is sent
// whenever it is non-empty, ALL included.
func (c *Client) BonusRange(ctx context.Context, start, end, team string) ([]model.BonusRecord, error) {
	q := url.Values{}
	q.Set("start_date", start)
	if end != "" {
		q.Set("end_date", end)
	}
	if team != "" {
		q.Set("team", team)
	}
	var out BonusRangeResponse
	if err := c.get(ctx, "bonus_range", "/api/bonus/range?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// UpsertBonus creates or updates a bonus record. The backend decides which
// based on the payload; the admin key is forwarded as-is.
func (c *Client) UpsertBonus(ctx context.Context, adminKey string, in model.BonusInput) (map[string]any, error) {
	if strings.TrimSpace(adminKey) == "" {
		return nil, ErrMissingKey
	}
	out := map[string]any{}
	err := c.do(ctx, "bonus_upsert", http.MethodPost, "/api/bonus", in,
		map[string]string{AdminKeyHeader: adminKey}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteBonus deletes the bonus record with id.
func (c *Client) DeleteBonus(ctx context.Context, adminKey, id string) error {
	if strings.TrimSpace(adminKey) == "" {
		return ErrMissingKey
	}
	return c.do(ctx, "bonus_delete", http.MethodDelete, "/api/bonus/"+url.PathEscape(id), nil,
		map[string]string{AdminKeyHeader: adminKey}, nil)
}
