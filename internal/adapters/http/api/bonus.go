package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/bonusboard/internal/adapters/remote"
	service "github.com/okian/bonusboard/internal/app"
	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/internal/domain/period"
)

// BonusDependencies defines the admin bonus operations.
type BonusDependencies interface {
	ListBonuses(ctx context.Context, q service.BonusQuery) (service.BonusList, error)
	SaveBonus(ctx context.Context, adminKey string, in model.BonusInput) (map[string]any, error)
	DeleteBonus(ctx context.Context, adminKey, id string) error
}

// BonusHandler serves the admin bonus CRUD.
type BonusHandler struct {
	deps BonusDependencies
}

// NewBonusHandler creates a new bonus handler.
func NewBonusHandler(deps BonusDependencies) *BonusHandler {
	return &BonusHandler{deps: deps}
}

// bonusRequest is the admin form. Amount may arrive as a number or as the
// raw form string.
type bonusRequest struct {
	BonusDate string          `json:"bonus_date"`
	Qualifier string          `json:"qualifier"`
	Team      string          `json:"team"`
	Amount    json.RawMessage `json:"amount"`
	Note      string          `json:"note"`
}

func (b bonusRequest) input() model.BonusInput {
	return model.BonusInput{
		BonusDate: strings.TrimSpace(b.BonusDate),
		Qualifier: strings.TrimSpace(b.Qualifier),
		Team:      strings.TrimSpace(b.Team),
		Amount:    coerceAmount(b.Amount),
		Note:      b.Note,
	}
}

// coerceAmount converts the amount field to a number. A blank string is
// zero; anything that does not parse is sent as null for the backend to
// reject.
func coerceAmount(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return model.ParseAmount(s)
}

func adminKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(remote.AdminKeyHeader))
}

// HandleList handles GET /api/admin/bonus?mode=&team=&start_date=&end_date=&q=.
func (h *BonusHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_bonus"
	v := r.URL.Query()
	kind, err := period.ParseKind(v.Get("mode"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	list, err := h.deps.ListBonuses(r.Context(), service.BonusQuery{
		Kind:   kind,
		Team:   v.Get("team"),
		Start:  v.Get("start_date"),
		End:    v.Get("end_date"),
		Search: v.Get("q"),
	})
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleSave handles POST /api/admin/bonus. The x-admin-key header is
// required and forwarded verbatim.
func (h *BonusHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	const op = "api.save_bonus"
	key := adminKey(r)
	if key == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}
	var req bonusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.SaveBonus(r.Context(), key, req.input())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type deleteResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// HandleDelete handles DELETE /api/admin/bonus/{id}.
func (h *BonusHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_bonus"
	key := adminKey(r)
	if key == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.DeleteBonus(r.Context(), key, id); err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Status: "deleted", ID: id})
}
