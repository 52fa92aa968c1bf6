// Package poller keeps the latest snapshot of a remote resource fresh.
//
// A Poller performs one loud fetch when started and then silent fetches on
// a cron schedule. At most one silent fetch runs at a time; loud fetches
// (Start, Refresh) are not guarded and may overlap a silent one. A failed
// fetch records a display string and keeps the last good snapshot.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/bonusboard/pkg/logger"
	"github.com/okian/bonusboard/pkg/metrics"
)

// Phase is the externally visible fetch state.
type Phase string

const (
	Idle       Phase = "idle"
	Loading    Phase = "loading"
	Ready      Phase = "ready"
	Refreshing Phase = "refreshing"
	Failed     Phase = "error"
)

// Mode tells loud fetches from silent ones.
type Mode string

const (
	Loud   Mode = "loud"
	Silent Mode = "silent"
)

// Fetch retrieves one snapshot.
type Fetch[T any] func(ctx context.Context) (T, error)

// State is a point-in-time copy of the poller.
type State[T any] struct {
	Phase      Phase     `json:"phase"`
	Data       T         `json:"data"`
	HasData    bool      `json:"hasData"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Loading    bool      `json:"loading"`
	Refreshing bool      `json:"refreshing"`
}

// Poller owns the latest snapshot of one resource.
type Poller[T any] struct {
	name      string
	fetch     Fetch[T]
	schedule  cron.Schedule
	onSuccess func(ctx context.Context, data T)
	size      func(T) int
	message   func(error) string
	now       func() time.Time
	log       logger.Logger

	mu        sync.RWMutex
	data      T
	hasData   bool
	errMsg    string
	updatedAt time.Time
	loud      int
	gen       uint64
	stop      context.CancelFunc

	silentBusy atomic.Bool
	hookMu     sync.Mutex
}

// New creates a Poller named name (used in logs and metrics).
func New[T any](name string, fetch Fetch[T], opts ...Option[T]) *Poller[T] {
	p := &Poller[T]{
		name:    name,
		fetch:   fetch,
		message: func(err error) string { return err.Error() },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Get().Named("poller").Named(name)
	}
	return p
}

// Name returns the poller name.
func (p *Poller[T]) Name() string { return p.name }

// Start runs the loud initial fetch and the silent schedule in the
// background. Calling Start on a running poller is a no-op.
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	if p.stop != nil {
		p.mu.Unlock()
		return
	}
	runCtx, stop := context.WithCancel(ctx)
	p.stop = stop
	gen := p.gen
	p.mu.Unlock()

	go p.run(runCtx, gen)
}

// Cancel stops the schedule. Fetches already in flight are not aborted but
// their results are discarded.
func (p *Poller[T]) Cancel() {
	p.mu.Lock()
	p.gen++
	stop := p.stop
	p.stop = nil
	p.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Running reports whether the schedule is active.
func (p *Poller[T]) Running() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stop != nil
}

// Refresh performs a loud fetch now, regardless of any silent fetch in flight.
func (p *Poller[T]) Refresh(ctx context.Context) error {
	p.mu.RLock()
	gen := p.gen
	p.mu.RUnlock()
	return p.fetchOnce(ctx, gen, Loud)
}

// Snapshot returns the current state.
func (p *Poller[T]) Snapshot() State[T] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := State[T]{
		Data:       p.data,
		HasData:    p.hasData,
		Error:      p.errMsg,
		UpdatedAt:  p.updatedAt,
		Loading:    p.loud > 0,
		Refreshing: p.silentBusy.Load(),
	}
	switch {
	case s.Loading:
		s.Phase = Loading
	case s.Refreshing:
		s.Phase = Refreshing
	case s.Error != "":
		s.Phase = Failed
	case s.HasData:
		s.Phase = Ready
	default:
		s.Phase = Idle
	}
	return s
}

func (p *Poller[T]) run(ctx context.Context, gen uint64) {
	_ = p.fetchOnce(ctx, gen, Loud)
	if p.schedule == nil {
		return
	}
	for {
		now := p.now()
		next := p.schedule.Next(now)
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			p.tick(ctx, gen)
		}
	}
}

// tick starts a silent fetch unless one is already running.
func (p *Poller[T]) tick(ctx context.Context, gen uint64) {
	if !p.silentBusy.CompareAndSwap(false, true) {
		metrics.RecordPollSkipped(p.name)
		p.log.Debug(ctx, "silent fetch skipped")
		return
	}
	go func() {
		defer p.silentBusy.Store(false)
		_ = p.fetchOnce(ctx, gen, Silent)
	}()
}

func (p *Poller[T]) fetchOnce(ctx context.Context, gen uint64, mode Mode) error {
	if mode == Loud {
		p.mu.Lock()
		p.loud++
		p.mu.Unlock()
	}

	start := p.now()
	data, err := p.fetch(context.WithoutCancel(ctx))
	metrics.RecordPollLatency(p.name, p.now().Sub(start).Seconds())

	p.mu.Lock()
	if mode == Loud {
		p.loud--
	}
	if gen != p.gen {
		p.mu.Unlock()
		metrics.RecordPoll(p.name, string(mode), "discarded")
		return err
	}
	if err != nil {
		p.errMsg = p.message(err)
		p.mu.Unlock()
		metrics.RecordPoll(p.name, string(mode), "error")
		p.log.Warn(ctx, "fetch failed", logger.String("mode", string(mode)), logger.Error(err))
		return err
	}
	p.data = data
	p.hasData = true
	p.errMsg = ""
	p.updatedAt = p.now()
	p.mu.Unlock()

	metrics.RecordPoll(p.name, string(mode), "ok")
	if p.size != nil {
		metrics.UpdateSnapshotRows(p.name, p.size(data))
	}

	if p.onSuccess != nil {
		p.hookMu.Lock()
		p.onSuccess(ctx, data)
		p.hookMu.Unlock()
	}
	return nil
}
