package poller

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/bonusboard/pkg/logger"
)

// Option configures a Poller.
type Option[T any] func(*Poller[T])

// WithSchedule sets when silent fetches run. Without a schedule the poller
// only fetches on Start and Refresh.
func WithSchedule[T any](s cron.Schedule) Option[T] {
	return func(p *Poller[T]) {
		p.schedule = s
	}
}

// WithOnSuccess registers a hook called with every successful snapshot, in
// fetch completion order.
func WithOnSuccess[T any](fn func(ctx context.Context, data T)) Option[T] {
	return func(p *Poller[T]) {
		p.onSuccess = fn
	}
}

// WithErrorMessage sets how fetch errors become display strings.
func WithErrorMessage[T any](fn func(error) string) Option[T] {
	return func(p *Poller[T]) {
		if fn != nil {
			p.message = fn
		}
	}
}

// WithClock replaces time.Now.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(p *Poller[T]) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets the poller logger.
func WithLogger[T any](l logger.Logger) Option[T] {
	return func(p *Poller[T]) {
		if l != nil {
			p.log = l
		}
	}
}

// ParseSchedule parses a cron spec or descriptor such as "@every 2m".
func ParseSchedule(spec string) (cron.Schedule, error) {
	return cron.ParseStandard(spec)
}

// WithSize reports the snapshot row count to metrics after each success.
func WithSize[T any](fn func(T) int) Option[T] {
	return func(p *Poller[T]) {
		p.size = fn
	}
}
