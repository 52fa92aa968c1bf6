// Package service wires the pollers, the change-detection engine and the
// notification pipeline, and implements the dependencies required by the
// HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/bonusboard/internal/adapters/mq/announcer"
	"github.com/okian/bonusboard/internal/adapters/mq/queue"
	"github.com/okian/bonusboard/internal/adapters/poller"
	"github.com/okian/bonusboard/internal/adapters/remote"
	"github.com/okian/bonusboard/internal/adapters/repository"
	"github.com/okian/bonusboard/internal/adapters/slack"
	"github.com/okian/bonusboard/internal/config"
	"github.com/okian/bonusboard/internal/domain/dedupe"
	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/internal/domain/notify"
	"github.com/okian/bonusboard/internal/domain/outcome"
	"github.com/okian/bonusboard/internal/domain/period"
	"github.com/okian/bonusboard/internal/domain/scoring"
	"github.com/okian/bonusboard/pkg/logger"
	"github.com/okian/bonusboard/pkg/metrics"
)

// View names used for pollers, logs and metrics.
const (
	ViewQueue     = "queue"
	ViewGoldRush  = "goldrush"
	ViewDashboard = "dashboard"
)

const (
	maxDashboardPollers = 16
	shutdownTimeout     = 5 * time.Second
)

// ErrNotStarted is returned by operations that need Start first.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the bonus board.
type Service struct {
	mu sync.RWMutex

	cfg    *config.Config
	remote *remote.Client
	store  repository.Store
	sinks  []announcer.Sink

	images *outcome.Images
	roster scoring.Roster

	engine    *notify.Engine
	queue     *queue.InMemoryQueue
	announcer *announcer.Announcer

	queuePoller *poller.Poller[[]model.QueueRecord]
	goldPoller  *poller.Poller[[]model.SummaryRow]

	dashMu     sync.Mutex
	dashboards map[dashboardKey]*dashboardEntry

	ownStore bool
	started  bool
	runCtx   context.Context
	stop     context.CancelFunc

	now    func() time.Time
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the configuration. Defaults to config.New().
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithRemote sets the backend client.
func WithRemote(c *remote.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.remote = c
		}
	}
}

// WithStore sets the key-value store; the caller keeps ownership.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithSink adds a sink for shown notifications.
func WithSink(sink announcer.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Nothing runs until Start.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:        config.New(),
		dashboards: make(map[dashboardKey]*dashboardEntry),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.images = outcome.NewImages(s.cfg.QualifierImages, s.cfg.DefaultImage)
	s.roster = scoring.NewRoster(s.cfg.TierRoster)
	return s
}

// Start opens the store, restores the seen sets and starts the pollers and
// the announcer.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting bonus board service...")

	if s.store == nil {
		st, err := repository.Open(ctx, s.cfg.StoreDriver,
			repository.WithSQLitePath(s.cfg.SQLitePath),
			repository.WithRedis(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB),
			repository.WithRedisPrefix(s.cfg.RedisPrefix),
		)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = st
		s.ownStore = true
	}
	if s.remote == nil {
		s.remote = remote.New(s.cfg.BackendURL, remote.WithTimeout(s.cfg.RequestTimeout()))
	}
	if s.cfg.SlackToken != "" {
		n, err := slack.New(s.cfg.SlackToken, s.cfg.SlackChannel, nil)
		if err != nil {
			s.logger.Warn(ctx, "slack sink disabled", logger.Error(err))
		} else {
			s.sinks = append(s.sinks, n)
		}
	}

	s.runCtx, s.stop = context.WithCancel(context.WithoutCancel(ctx))

	s.engine = notify.New(
		notify.WithSets(
			s.seenSet(notify.SeenRecordsKey),
			s.seenSet(notify.ShownSalesKey),
			s.seenSet(notify.ShownStatusKey),
		),
		notify.WithCeiling(s.cfg.PreviousOutcomeCeiling),
		notify.WithImages(s.images),
		notify.WithReturnedAlerts(s.cfg.ReturnedAlerts),
		notify.WithClock(s.now),
	)
	s.engine.Load(ctx)
	s.updateSetMetrics()

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.cfg.NotifyQueueSize))
	opts := []announcer.Option{
		announcer.WithPopupDuration(s.cfg.PopupDuration()),
		announcer.WithAlertDuration(s.cfg.AlertDuration()),
	}
	for _, sink := range s.sinks {
		opts = append(opts, announcer.WithSink(sink))
	}
	s.announcer = announcer.New(s.queue, opts...)
	go s.announcer.Run(s.runCtx)

	queueSchedule, err := poller.ParseSchedule(s.cfg.QueueSchedule)
	if err != nil {
		s.stop()
		return fmt.Errorf("queue schedule: %w", err)
	}
	goldSchedule, err := poller.ParseSchedule(s.cfg.GoldRushSchedule)
	if err != nil {
		s.stop()
		return fmt.Errorf("goldrush schedule: %w", err)
	}

	s.queuePoller = poller.New(ViewQueue, s.remote.QueueToday,
		poller.WithSchedule[[]model.QueueRecord](queueSchedule),
		poller.WithOnSuccess(s.observe),
		poller.WithErrorMessage[[]model.QueueRecord](remote.Message),
		poller.WithSize(func(rows []model.QueueRecord) int { return len(rows) }),
		poller.WithClock[[]model.QueueRecord](s.now),
	)
	s.goldPoller = poller.New(ViewGoldRush, s.fetchGoldRush,
		poller.WithSchedule[[]model.SummaryRow](goldSchedule),
		poller.WithErrorMessage[[]model.SummaryRow](remote.Message),
		poller.WithSize(func(rows []model.SummaryRow) int { return len(rows) }),
		poller.WithClock[[]model.SummaryRow](s.now),
	)
	s.queuePoller.Start(s.runCtx)
	s.goldPoller.Start(s.runCtx)

	s.started = true
	s.logger.Info(ctx, "bonus board service started",
		logger.String("backend", s.remote.BaseURL()),
		logger.String("store", s.cfg.StoreDriver),
		logger.String("queueSchedule", s.cfg.QueueSchedule),
	)
	return nil
}

// Stop cancels the pollers, clears pending notifications and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping bonus board service...")

	s.queuePoller.Cancel()
	s.goldPoller.Cancel()
	s.dashMu.Lock()
	for k, e := range s.dashboards {
		e.poller.Cancel()
		delete(s.dashboards, k)
	}
	s.dashMu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := s.announcer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, announcer.ErrStopped) {
		s.logger.Warn(ctx, "announcer shutdown", logger.Error(err))
	}
	_ = s.queue.Close()
	s.stop()

	if s.ownStore {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "store close", logger.Error(err))
		}
		s.store = nil
	}

	s.started = false
	s.logger.Info(ctx, "bonus board service stopped")
}

func (s *Service) seenSet(key string) *dedupe.Set {
	return dedupe.New(dedupe.WithMaxSize(s.cfg.SeenSetMax), dedupe.WithStore(s.store, key))
}

// observe runs the engine over a fresh queue snapshot and hands the result
// to the notification pipeline.
func (s *Service) observe(ctx context.Context, rows []model.QueueRecord) {
	res := s.engine.Observe(ctx, rows)
	s.updateSetMetrics()
	if res.Empty() {
		return
	}
	if accepted := s.queue.EnqueueAll(ctx, res.Toasts); accepted < len(res.Toasts) {
		s.logger.Warn(ctx, "notification queue full, toasts dropped",
			logger.Int("dropped", len(res.Toasts)-accepted))
	}
	s.announcer.ShowAlerts(ctx, res.Alerts)
	s.logger.Debug(ctx, "notifications raised",
		logger.Int("toasts", len(res.Toasts)), logger.Int("alerts", len(res.Alerts)))
}

func (s *Service) updateSetMetrics() {
	for key, n := range s.engine.SetSizes() {
		metrics.UpdateSeenSetSize(key, int(n))
	}
}

func (s *Service) fetchGoldRush(ctx context.Context) ([]model.SummaryRow, error) {
	rows, err := s.remote.FeSummary(ctx, remote.Selection{Kind: period.Week, Team: "ALL"})
	if err != nil {
		return nil, err
	}
	return scoring.ApplyManualFixes(rows, s.cfg.ManualFixes), nil
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Teams returns the configured team filter values, ALL first.
func (s *Service) Teams() []string {
	out := make([]string, 0, len(s.cfg.Teams)+1)
	out = append(out, "ALL")
	for _, t := range s.cfg.Teams {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"backendUrl": s.cfg.BackendURL,
		"store":      s.cfg.StoreDriver,
	}
	if !s.started {
		return stats
	}

	ctx := context.Background()
	stats["pendingNotifications"] = s.queue.Len(ctx)
	stats["rememberedOutcomes"] = s.engine.Remembered()
	stats["seenSets"] = s.engine.SetSizes()
	stats["queuePhase"] = s.queuePoller.Snapshot().Phase
	stats["goldRushPhase"] = s.goldPoller.Snapshot().Phase
	s.dashMu.Lock()
	stats["dashboardSelections"] = len(s.dashboards)
	s.dashMu.Unlock()
	return stats
}
