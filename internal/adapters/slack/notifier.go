// Package slack forwards shown notifications to a Slack channel.
package slack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/pkg/logger"
)

// ErrNoChannel is returned by New when channel is empty.
var ErrNoChannel = errors.New("slack channel required")

// Poster is the subset of *slack.Client the notifier uses.
type Poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier posts notifications of selected kinds to one channel.
type Notifier struct {
	poster  Poster
	channel string
	kinds   map[model.NotificationKind]bool
	log     logger.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithKinds replaces the forwarded kinds. Defaults to sale only.
func WithKinds(kinds ...model.NotificationKind) Option {
	return func(n *Notifier) {
		n.kinds = make(map[model.NotificationKind]bool, len(kinds))
		for _, k := range kinds {
			n.kinds[k] = true
		}
	}
}

// WithPoster replaces the Slack client.
func WithPoster(p Poster) Option {
	return func(n *Notifier) {
		if p != nil {
			n.poster = p
		}
	}
}

// WithLogger sets the notifier logger.
func WithLogger(l logger.Logger) Option {
	return func(n *Notifier) {
		if l != nil {
			n.log = l
		}
	}
}

// New creates a Notifier using a bot token. Extra slack client options,
// such as slack.OptionAPIURL, are passed through.
func New(token, channel string, opts []Option, clientOpts ...slack.Option) (*Notifier, error) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return nil, ErrNoChannel
	}
	n := &Notifier{
		channel: channel,
		kinds:   map[model.NotificationKind]bool{model.KindSale: true},
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.poster == nil {
		n.poster = slack.New(token, clientOpts...)
	}
	if n.log == nil {
		n.log = logger.Get().Named("slack")
	}
	return n, nil
}

// Deliver posts n when its kind is forwarded; other kinds are ignored.
func (n *Notifier) Deliver(ctx context.Context, note model.Notification) error { //nolint:gocritic // hugeParam: notifications are values
	if !n.kinds[note.Kind] {
		return nil
	}
	_, ts, err := n.poster.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(format(note), false),
	)
	if err != nil {
		return fmt.Errorf("post to %s: %w", n.channel, err)
	}
	n.log.Debug(ctx, "notification posted", logger.String("id", note.ID), logger.String("ts", ts))
	return nil
}

func format(n model.Notification) string { //nolint:gocritic // hugeParam: notifications are values
	var b strings.Builder
	b.WriteString("*")
	b.WriteString(n.Title)
	b.WriteString("*")
	var details []string
	if n.Team != "" {
		details = append(details, n.Team)
	}
	if n.Time != "" {
		details = append(details, n.Time)
	}
	if n.CustomerID != "" {
		details = append(details, "customer "+n.CustomerID)
	}
	if len(details) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(details, " • "))
	}
	return b.String()
}
