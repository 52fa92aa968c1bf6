package notify

import (
	"math/rand"
	"time"

	"github.com/okian/bonusboard/internal/domain/dedupe"
	"github.com/okian/bonusboard/internal/domain/outcome"
	"github.com/okian/bonusboard/pkg/logger"
)

// Option configures an Engine.
type Option func(*Engine)

// WithSets injects the seen-records, shown-sales and shown-status sets.
func WithSets(seen, sales, status *dedupe.Set) Option {
	return func(e *Engine) {
		e.seen, e.sales, e.status = seen, sales, status
	}
}

// WithCeiling sets the size above which the previous-outcome map is rebuilt
// from the latest snapshot.
func WithCeiling(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.ceiling = n
		}
	}
}

// WithImages sets the portrait lookup.
func WithImages(images *outcome.Images) Option {
	return func(e *Engine) { e.images = images }
}

// WithRand sets the message randomizer.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithReturnedAlerts toggles the Returned modal.
func WithReturnedAlerts(enabled bool) Option {
	return func(e *Engine) { e.returnedAlerts = enabled }
}

// WithClock sets the time source for RaisedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDs sets the notification id generator.
func WithIDs(newID func() string) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}
