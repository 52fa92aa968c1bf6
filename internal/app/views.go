package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/bonusboard/internal/adapters/poller"
	"github.com/okian/bonusboard/internal/adapters/remote"
	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/internal/domain/outcome"
	"github.com/okian/bonusboard/internal/domain/period"
	"github.com/okian/bonusboard/internal/domain/scoring"
	"github.com/okian/bonusboard/internal/domain/table"
	"github.com/okian/bonusboard/internal/domain/types"
	"github.com/okian/bonusboard/pkg/logger"
)

// FetchState is the poller state shared by all views.
type FetchState struct {
	Phase      poller.Phase `json:"phase"`
	Error      string       `json:"error,omitempty"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	Loading    bool         `json:"loading"`
	Refreshing bool         `json:"refreshing"`
}

func fetchState[T any](s poller.State[T]) FetchState {
	return FetchState{
		Phase:      s.Phase,
		Error:      s.Error,
		UpdatedAt:  s.UpdatedAt,
		Loading:    s.Loading,
		Refreshing: s.Refreshing,
	}
}

// QueueQuery selects the sort and filters of the queue table.
type QueueQuery struct {
	Sort   string
	Dir    string
	Search string
	Team   string
}

// QueueRow is one decorated queue table row.
type QueueRow struct {
	Sr              int    `json:"sr"`
	CustomerID      string `json:"customerId"`
	Time            string `json:"time"`
	QualifierName   string `json:"qualifierName"`
	Team            string `json:"team"`
	Validator       string `json:"validator"`
	State           string `json:"state"`
	Carrier         string `json:"carrier"`
	Product         string `json:"product"`
	ProcessingStage string `json:"processingStage"`
	CloserStatus    string `json:"closerStatus"`
	Outcome         string `json:"outcome"`
	RowBackground   string `json:"rowBg"`
	PillBackground  string `json:"pillBg"`
	TeamBackground  string `json:"teamBg"`
	ImageURL        string `json:"imageUrl"`
}

// QueueView is the queue monitor payload.
type QueueView struct {
	FetchState
	Rows   []QueueRow          `json:"rows"`
	Counts scoring.QueueCounts `json:"counts"`
	Teams  []string            `json:"teams"`
	Sort   table.SortState     `json:"sort"`
}

func text(get func(model.QueueRecord) types.Text) func(model.QueueRecord) string {
	return func(r model.QueueRecord) string { return get(r).String() }
}

var queueColumns = []table.Column[model.QueueRecord]{
	{Key: "customerId", Type: table.String, Get: text(func(r model.QueueRecord) types.Text { return r.CustomerID })},
	{Key: "time", Type: table.Time, Get: text(func(r model.QueueRecord) types.Text { return r.Time })},
	{Key: "qualifierName", Type: table.String, Get: text(func(r model.QueueRecord) types.Text { return r.QualifierName })},
	{Key: "team", Type: table.String, Get: text(func(r model.QueueRecord) types.Text { return r.Team })},
	{Key: "validator", Type: table.String, Get: text(func(r model.QueueRecord) types.Text { return r.Validator })},
	{Key: "state", Type: table.String, Get: text(func(r model.QueueRecord) types.Text { return r.State })},
	{Key: "carrier", Type: table.String, Get: text(func(r model.QueueRecord) types.Text { return r.Carrier })},
	{Key: "product", Type: table.String, Get: text(func(r model.QueueRecord) types.Text { return r.Product })},
	{Key: "outcome", Type: table.String, Get: func(r model.QueueRecord) string { return string(outcome.Of(r)) }},
}

// Queue returns the latest queue snapshot filtered, sorted and decorated.
// Counts cover the whole snapshot.
func (s *Service) Queue(_ context.Context, q QueueQuery) (QueueView, error) {
	if !s.running() {
		return QueueView{}, ErrNotStarted
	}
	snap := s.queuePoller.Snapshot()
	rows := snap.Data

	view := QueueView{
		FetchState: fetchState(snap),
		Counts:     scoring.CountOutcomes(rows),
		Teams:      s.Teams(),
	}

	filtered := table.FilterEqual(rows, text(func(r model.QueueRecord) types.Text { return r.Team }), q.Team)
	filtered = table.FilterContains(filtered, text(func(r model.QueueRecord) types.Text { return r.QualifierName }), q.Search)
	if col, ok := table.Lookup(queueColumns, q.Sort); ok {
		dir := table.ParseDirection(q.Dir)
		filtered = table.Sort(filtered, col, dir)
		view.Sort = table.SortState{Key: col.Key, Dir: dir}
	}

	view.Rows = make([]QueueRow, 0, len(filtered))
	for _, ranked := range table.Rank(filtered) {
		r := ranked.Row
		o := outcome.Of(r)
		view.Rows = append(view.Rows, QueueRow{
			Sr:              ranked.Rank,
			CustomerID:      r.CustomerID.String(),
			Time:            r.Time.String(),
			QualifierName:   r.QualifierName.String(),
			Team:            r.Team.String(),
			Validator:       r.Validator.String(),
			State:           r.State.String(),
			Carrier:         r.Carrier.String(),
			Product:         r.Product.String(),
			ProcessingStage: r.ProcessingStage.String(),
			CloserStatus:    r.CloserStatus.String(),
			Outcome:         string(o),
			RowBackground:   outcome.RowBackground(o),
			PillBackground:  outcome.PillBackground(o),
			TeamBackground:  outcome.TeamBackground(r.Team.String()),
			ImageURL:        s.images.For(r.QualifierName.String()),
		})
	}
	return view, nil
}

// RefreshQueue performs a loud queue fetch.
func (s *Service) RefreshQueue(ctx context.Context) error {
	if !s.running() {
		return ErrNotStarted
	}
	return s.queuePoller.Refresh(ctx)
}

// NotificationsView is the visible toast, the visible alert and the backlog.
type NotificationsView struct {
	Toast   *model.Notification `json:"toast"`
	Alert   *model.Notification `json:"alert"`
	Pending int                 `json:"pending"`
}

// Notifications returns what is currently on screen.
func (s *Service) Notifications(ctx context.Context) (NotificationsView, error) {
	if !s.running() {
		return NotificationsView{}, ErrNotStarted
	}
	var v NotificationsView
	if n, ok := s.announcer.Current(); ok {
		v.Toast = &n
	}
	if n, ok := s.announcer.Alert(); ok {
		v.Alert = &n
	}
	v.Pending = s.queue.Len(ctx)
	return v, nil
}

// DismissAlert hides the visible alert and reports whether there was one.
func (s *Service) DismissAlert(_ context.Context) (bool, error) {
	if !s.running() {
		return false, ErrNotStarted
	}
	return s.announcer.DismissAlert(), nil
}

// DashboardQuery selects a dashboard range and team.
type DashboardQuery struct {
	Kind  period.Kind
	Team  string
	Start string
	End   string
}

type dashboardKey struct {
	kind  period.Kind
	team  string
	start string
	end   string
}

// dashboardData is one dashboard fetch: the counts and the summary rows.
type dashboardData struct {
	Range  period.Range
	Agents model.AgentCounts
	Rows   []model.SummaryRow
}

type dashboardEntry struct {
	poller   *poller.Poller[dashboardData]
	lastUsed time.Time
}

// TeamCount is one team breakdown entry.
type TeamCount struct {
	Team       string  `json:"team"`
	Count      float64 `json:"count"`
	Background string  `json:"bg"`
}

// DashboardView is the summary dashboard payload.
type DashboardView struct {
	FetchState
	Kind          period.Kind   `json:"range"`
	Team          string        `json:"team"`
	Range         period.Range  `json:"dates"`
	TotalRecords  float64       `json:"totalRecords"`
	TeamBreakdown []TeamCount   `json:"teamBreakdown"`
	TotalAP       float64       `json:"totalAp"`
	Rows          []types.Entry `json:"rows"`
	Teams         []string      `json:"teams"`
}

func (q DashboardQuery) key(now time.Time) (dashboardKey, error) {
	team := strings.TrimSpace(q.Team)
	if team == "" {
		team = table.All
	}
	k := dashboardKey{kind: q.Kind, team: team}
	if q.Kind == period.Custom {
		r, err := period.Resolve(period.Custom, now, q.Start, q.End)
		if err != nil {
			return dashboardKey{}, err
		}
		k.start, k.end = r.Start, r.End
	}
	return k, nil
}

func (k dashboardKey) selection(now time.Time) (remote.Selection, period.Range) {
	r, _ := period.Resolve(k.kind, now, k.start, k.end)
	sel := remote.Selection{Kind: k.kind, Team: k.team}
	if k.kind == period.Custom {
		sel.Start, sel.End = r.Start, r.End
	}
	return sel, r
}

// dashboardPoller returns the poller for a selection, creating and starting
// it on first use. Today and week selections poll on the dashboard
// schedule; custom ranges fetch once.
func (s *Service) dashboardPoller(q DashboardQuery) (*poller.Poller[dashboardData], error) {
	now := s.now()
	key, err := q.key(now)
	if err != nil {
		return nil, err
	}

	s.dashMu.Lock()
	defer s.dashMu.Unlock()

	if e, ok := s.dashboards[key]; ok {
		e.lastUsed = now
		return e.poller, nil
	}

	opts := []poller.Option[dashboardData]{
		poller.WithErrorMessage[dashboardData](remote.Message),
		poller.WithSize(func(d dashboardData) int { return len(d.Rows) }),
		poller.WithClock[dashboardData](s.now),
	}
	if key.kind != period.Custom {
		sched, err := poller.ParseSchedule(s.cfg.DashboardSchedule)
		if err != nil {
			return nil, fmt.Errorf("dashboard schedule: %w", err)
		}
		opts = append(opts, poller.WithSchedule[dashboardData](sched))
	}
	p := poller.New(ViewDashboard, func(ctx context.Context) (dashboardData, error) {
		return s.fetchDashboard(ctx, key)
	}, opts...)

	if len(s.dashboards) >= maxDashboardPollers {
		s.evictDashboardLocked()
	}
	s.dashboards[key] = &dashboardEntry{poller: p, lastUsed: now}
	p.Start(s.runCtx)
	return p, nil
}

func (s *Service) evictDashboardLocked() {
	var (
		oldest dashboardKey
		at     time.Time
		found  bool
	)
	for k, e := range s.dashboards {
		if !found || e.lastUsed.Before(at) {
			oldest, at, found = k, e.lastUsed, true
		}
	}
	if found {
		s.dashboards[oldest].poller.Cancel()
		delete(s.dashboards, oldest)
	}
}

func (s *Service) fetchDashboard(ctx context.Context, key dashboardKey) (dashboardData, error) {
	sel, r := key.selection(s.now())

	var (
		wg      sync.WaitGroup
		agents  model.AgentCounts
		rows    []model.SummaryRow
		aErr    error
		rowsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		agents, aErr = s.remote.FeAgents(ctx, sel)
	}()
	go func() {
		defer wg.Done()
		rows, rowsErr = s.remote.FeSummary(ctx, sel)
	}()
	wg.Wait()

	if aErr != nil {
		return dashboardData{}, aErr
	}
	if rowsErr != nil {
		return dashboardData{}, rowsErr
	}
	return dashboardData{Range: r, Agents: agents, Rows: rows}, nil
}

// Dashboard returns the summary for a selection. The first request for a
// selection starts its poller and reports the loading phase.
func (s *Service) Dashboard(_ context.Context, q DashboardQuery) (DashboardView, error) {
	if !s.running() {
		return DashboardView{}, ErrNotStarted
	}
	p, err := s.dashboardPoller(q)
	if err != nil {
		return DashboardView{}, err
	}
	return s.dashboardView(q, p.Snapshot()), nil
}

// RefreshDashboard asks the backend to recompute today or week, then
// performs a loud fetch of the selection.
func (s *Service) RefreshDashboard(ctx context.Context, q DashboardQuery) (DashboardView, error) {
	if !s.running() {
		return DashboardView{}, ErrNotStarted
	}
	p, err := s.dashboardPoller(q)
	if err != nil {
		return DashboardView{}, err
	}
	if q.Kind != period.Custom {
		if err := s.remote.Refresh(ctx, q.Kind); err != nil {
			s.logger.Warn(ctx, "backend refresh failed", logger.String("range", string(q.Kind)), logger.Error(err))
			return s.dashboardView(q, p.Snapshot()), err
		}
	}
	err = p.Refresh(ctx)
	return s.dashboardView(q, p.Snapshot()), err
}

func (s *Service) dashboardView(q DashboardQuery, snap poller.State[dashboardData]) DashboardView {
	key, _ := q.key(s.now())
	v := DashboardView{
		FetchState: fetchState(snap),
		Kind:       key.kind,
		Team:       key.team,
		Teams:      s.Teams(),
	}
	if !snap.HasData {
		_, v.Range = key.selection(s.now())
		v.Rows = []types.Entry{}
		v.TeamBreakdown = []TeamCount{}
		return v
	}
	d := snap.Data
	v.Range = d.Range
	v.TotalRecords = d.Agents.TotalRecords.Float()
	v.TotalAP = scoring.TotalAP(d.Rows)
	v.Rows = scoring.DashboardRows(d.Rows, s.cfg.DashboardRows, s.images)

	v.TeamBreakdown = make([]TeamCount, 0, len(d.Agents.TeamBreakdown))
	for team, n := range d.Agents.TeamBreakdown {
		v.TeamBreakdown = append(v.TeamBreakdown, TeamCount{Team: team, Count: n.Float(), Background: outcome.TeamBackground(team)})
	}
	sort.Slice(v.TeamBreakdown, func(i, j int) bool {
		a, b := v.TeamBreakdown[i], v.TeamBreakdown[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Team < b.Team
	})
	return v
}

// TierView is one Gold Rush tier.
type TierView struct {
	Tier  scoring.Tier   `json:"tier"`
	Prize int            `json:"prize"`
	Cards []scoring.Card `json:"cards"`
}

// GoldRushView is the weekly leaderboard payload.
type GoldRushView struct {
	FetchState
	Week  int        `json:"week"`
	Tiers []TierView `json:"tiers"`
}

// GoldRush returns the current week's tiers. Roster members always get a
// card, with zero AP until the first snapshot arrives.
func (s *Service) GoldRush(_ context.Context) (GoldRushView, error) {
	if !s.running() {
		return GoldRushView{}, ErrNotStarted
	}
	snap := s.goldPoller.Snapshot()
	v := GoldRushView{
		FetchState: fetchState(snap),
		Week:       period.ISOWeek(s.now()),
		Tiers:      make([]TierView, 0, len(scoring.Tiers)),
	}
	for _, t := range scoring.Tiers {
		v.Tiers = append(v.Tiers, TierView{
			Tier:  t,
			Prize: scoring.Prize(t),
			Cards: scoring.BuildTier(snap.Data, s.roster, t, s.cfg.TierLimit(t), s.images),
		})
	}
	return v, nil
}

// TopGunsView is the ranking for one named period.
type TopGunsView struct {
	Period  string           `json:"period"`
	Label   string           `json:"label"`
	Range   period.Range     `json:"dates"`
	Players []scoring.Player `json:"players"`
}

// TopGuns fetches the summary for a named period and ranks it by AP.
func (s *Service) TopGuns(ctx context.Context, name string) (TopGunsView, error) {
	if name = strings.ToLower(strings.TrimSpace(name)); name == "" {
		name = period.LastWeek
	}
	r, err := period.Named(name, s.now())
	if err != nil {
		return TopGunsView{}, err
	}
	c := s.client()
	rows, err := c.FeSummary(ctx, remote.Selection{Kind: period.Custom, Team: table.All, Start: r.Start, End: r.End})
	if err != nil {
		return TopGunsView{}, err
	}
	return TopGunsView{
		Period:  name,
		Label:   period.Label(name),
		Range:   r,
		Players: scoring.TopGuns(rows, s.cfg.TopGunsLimit, s.images),
	}, nil
}

// client returns the backend client, creating it if Start has not run.
// One-shot operations such as TopGuns and the admin calls work without the
// pollers.
func (s *Service) client() *remote.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remote == nil {
		s.remote = remote.New(s.cfg.BackendURL, remote.WithTimeout(s.cfg.RequestTimeout()))
	}
	return s.remote
}
