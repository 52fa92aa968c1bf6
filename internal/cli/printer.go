package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/okian/bonusboard/internal/domain/model"
)

// printer writes each shown notification as one line.
type printer struct {
	mu sync.Mutex
	w  io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

// Deliver implements announcer.Sink.
func (p *printer) Deliver(_ context.Context, n model.Notification) error { //nolint:gocritic // hugeParam: notifications are values
	line := formatNotification(n)
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintln(p.w, line)
	return err
}

func formatNotification(n model.Notification) string { //nolint:gocritic // hugeParam: notifications are values
	parts := []string{
		n.RaisedAt.Format("15:04:05"),
		"[" + strings.ToUpper(string(n.Kind)) + "]",
		n.Title,
	}
	if n.Name != "" {
		parts = append(parts, n.Name)
	}
	var detail []string
	for _, v := range []string{n.Team, n.Time, n.CustomerID, n.Outcome} {
		if v != "" {
			detail = append(detail, v)
		}
	}
	if len(detail) > 0 {
		parts = append(parts, "("+strings.Join(detail, ", ")+")")
	}
	return strings.Join(parts, " ")
}
