// Package announcer shows queued notifications one at a time and keeps a
// separate slot for alerts.
package announcer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/pkg/logger"
	"github.com/okian/bonusboard/pkg/metrics"
)

const (
	defaultPopup    = 40 * time.Second
	defaultAlertFor = 20 * time.Second
)

// Source is where the announcer reads toasts from.
type Source interface {
	Dequeue(ctx context.Context) <-chan model.Notification
}

// Sink receives each notification when it is shown.
type Sink interface {
	Deliver(ctx context.Context, n model.Notification) error
}

// Announcer owns the currently visible toast and alert.
type Announcer struct {
	source   Source
	popup    time.Duration
	alertFor time.Duration
	sinks    []Sink

	mu         sync.RWMutex
	current    *model.Notification
	alert      *model.Notification
	alertTimer *time.Timer

	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}
	started  bool

	logger logger.Logger
}

// New creates an Announcer reading from source.
func New(source Source, opts ...Option) *Announcer {
	a := &Announcer{
		source:   source,
		popup:    defaultPopup,
		alertFor: defaultAlertFor,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("announcer")
	}
	return a
}

// Run shows toasts until ctx ends, the source closes, or Shutdown is called.
// It must be called at most once.
func (a *Announcer) Run(ctx context.Context) {
	a.mu.Lock()
	select {
	case <-a.shutdown:
		a.mu.Unlock()
		return
	default:
	}
	a.started = true
	a.mu.Unlock()
	defer close(a.done)

	ch := a.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.shutdown:
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			if !a.show(ctx, n) {
				return
			}
		}
	}
}

// show makes n the visible toast for the popup duration. It returns false
// when interrupted by shutdown.
func (a *Announcer) show(ctx context.Context, n model.Notification) bool { //nolint:gocritic // hugeParam: notifications are values
	a.mu.Lock()
	a.current = &n
	a.mu.Unlock()

	metrics.RecordNotification(string(n.Kind))
	a.deliver(ctx, n)

	timer := time.NewTimer(a.popup)
	defer timer.Stop()

	var ok bool
	select {
	case <-timer.C:
		ok = true
	case <-ctx.Done():
	case <-a.shutdown:
	}

	a.mu.Lock()
	a.current = nil
	a.mu.Unlock()
	return ok
}

func (a *Announcer) deliver(ctx context.Context, n model.Notification) { //nolint:gocritic // hugeParam: notifications are values
	for _, s := range a.sinks {
		if err := s.Deliver(ctx, n); err != nil {
			a.logger.Warn(ctx, "sink delivery failed",
				logger.String("id", n.ID), logger.String("type", string(n.Kind)), logger.Error(err))
		}
	}
}

// ShowAlerts makes the last of ns the visible alert, replacing any alert
// already shown, and restarts the alert timer.
func (a *Announcer) ShowAlerts(ctx context.Context, ns []model.Notification) {
	if len(ns) == 0 {
		return
	}
	n := ns[len(ns)-1]

	a.mu.Lock()
	select {
	case <-a.shutdown:
		a.mu.Unlock()
		return
	default:
	}
	if a.alertTimer != nil {
		a.alertTimer.Stop()
	}
	a.alert = &n
	id := n.ID
	a.alertTimer = time.AfterFunc(a.alertFor, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.alert != nil && a.alert.ID == id {
			a.alert = nil
		}
	})
	a.mu.Unlock()

	for _, m := range ns {
		metrics.RecordNotification(string(m.Kind))
	}
	a.deliver(ctx, n)
}

// DismissAlert hides the current alert. It reports whether one was visible.
func (a *Announcer) DismissAlert() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.alertTimer != nil {
		a.alertTimer.Stop()
		a.alertTimer = nil
	}
	had := a.alert != nil
	a.alert = nil
	return had
}

// Current returns the visible toast, if any.
func (a *Announcer) Current() (model.Notification, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current == nil {
		return model.Notification{}, false
	}
	return *a.current, true
}

// Alert returns the visible alert, if any.
func (a *Announcer) Alert() (model.Notification, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.alert == nil {
		return model.Notification{}, false
	}
	return *a.alert, true
}

// Shutdown stops the loop and clears pending timers.
func (a *Announcer) Shutdown(ctx context.Context) error {
	stopped := false
	a.stopOnce.Do(func() {
		stopped = true
		a.mu.Lock()
		close(a.shutdown)
		if a.alertTimer != nil {
			a.alertTimer.Stop()
			a.alertTimer = nil
		}
		a.alert = nil
		started := a.started
		a.mu.Unlock()
		if !started {
			close(a.done)
		}
	})
	if !stopped {
		return ErrStopped
	}

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		a.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
