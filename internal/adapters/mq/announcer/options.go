package announcer

import (
	"time"

	"github.com/okian/bonusboard/pkg/logger"
)

// Option applies a configuration option to the Announcer.
type Option func(*Announcer)

// WithPopupDuration sets how long each toast stays visible.
func WithPopupDuration(d time.Duration) Option {
	return func(a *Announcer) {
		if d > 0 {
			a.popup = d
		}
	}
}

// WithAlertDuration sets how long an alert stays visible unless dismissed.
func WithAlertDuration(d time.Duration) Option {
	return func(a *Announcer) {
		if d > 0 {
			a.alertFor = d
		}
	}
}

// WithSink adds a sink that receives every shown notification.
func WithSink(s Sink) Option {
	return func(a *Announcer) {
		if s != nil {
			a.sinks = append(a.sinks, s)
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Announcer) {
		if l != nil {
			a.logger = l
		}
	}
}
