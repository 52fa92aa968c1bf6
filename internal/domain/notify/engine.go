// Package notify implements change detection over queue snapshots. Each
// poll is compared with the outcomes remembered from earlier polls and with
// the persisted seen sets; the result is the ordered list of notifications
// that have not been raised before.
package notify

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/bonusboard/internal/domain/dedupe"
	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/internal/domain/outcome"
	"github.com/okian/bonusboard/pkg/logger"
)

// Storage keys for the seen sets.
const (
	SeenRecordsKey = "qm_seen_records_v1"
	ShownSalesKey  = "qm_shown_sales_v1"
	ShownStatusKey = "qm_shown_status_v1"
)

const defaultCeiling = 5000

// Result is the output of one Observe call, in snapshot order.
type Result struct {
	Toasts []model.Notification `json:"toasts"`
	Alerts []model.Notification `json:"alerts"`
}

// Empty reports whether nothing was raised.
func (r Result) Empty() bool { return len(r.Toasts) == 0 && len(r.Alerts) == 0 }

// Engine holds the previous-outcome map and the three seen sets.
// Observe is serialized so rule order within a poll is preserved.
type Engine struct {
	mu      sync.Mutex
	prev    map[string]outcome.Outcome
	ceiling int

	seen   *dedupe.Set
	sales  *dedupe.Set
	status *dedupe.Set

	images         *outcome.Images
	rng            *rand.Rand
	returnedAlerts bool
	now            func() time.Time
	newID          func() string
	log            logger.Logger
}

// New creates an Engine. Without WithSets it uses unpersisted sets.
func New(opts ...Option) *Engine {
	e := &Engine{
		prev:           make(map[string]outcome.Outcome),
		ceiling:        defaultCeiling,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // message flavor only
		returnedAlerts: true,
		now:            time.Now,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.seen == nil {
		e.seen = dedupe.New()
	}
	if e.sales == nil {
		e.sales = dedupe.New()
	}
	if e.status == nil {
		e.status = dedupe.New()
	}
	if e.log == nil {
		e.log = logger.Get().Named("notify")
	}
	return e
}

// Load restores the seen sets from storage. Corrupt payloads are logged and
// start empty.
func (e *Engine) Load(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range []*dedupe.Set{e.seen, e.sales, e.status} {
		if err := s.Load(ctx); err != nil {
			e.log.Warn(ctx, "seen set reset", logger.String("key", s.StorageKey()), logger.Error(err))
		}
	}
}

// Observe runs the detection rules over a snapshot.
func (e *Engine) Observe(ctx context.Context, rows []model.QueueRecord) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	var res Result
	var seenDirty, salesDirty, statusDirty bool

	for _, r := range rows {
		key := outcome.RecordKey(r)
		cur := outcome.Of(r)
		prev, hasPrev := e.prev[key]
		name := outcome.FirstName(string(r.QualifierName))

		returnedKey := outcome.StatusKey(key, outcome.Returned)
		alertDue := e.returnedAlerts && cur == outcome.Returned && !e.status.Contains(returnedKey)

		// first seen
		if e.seen.Add(key) {
			seenDirty = true
			res.Toasts = append(res.Toasts, e.notification(r, model.KindStatus, cur, name,
				arrivalMessage(e.rng, cur, name), outcome.Background(cur)))
		}

		// transition, once per key::outcome
		if hasPrev && prev != cur && e.status.Add(outcome.StatusKey(key, cur)) {
			statusDirty = true
			if msg := transitionMessage(e.rng, cur, name); msg != "" {
				res.Toasts = append(res.Toasts, e.notification(r, model.KindStatus, cur, name,
					msg, outcome.Background(cur)))
			}
		}

		// sale, once per key; a record first seen as Sale counts too
		if cur == outcome.Sale && prev != outcome.Sale && e.sales.Add(key) {
			salesDirty = true
			res.Toasts = append(res.Toasts, e.notification(r, model.KindSale, cur, name,
				saleMessage(name), outcome.SaleBackground))
		}

		// returned modal, gated on the shared status set
		if alertDue {
			if e.status.Add(returnedKey) {
				statusDirty = true
			}
			res.Alerts = append(res.Alerts, e.notification(r, model.KindAlert, cur, name,
				render(e.rng, returnedQuotes, name), outcome.Background(cur)))
		}

		e.prev[key] = cur
	}

	if len(e.prev) > e.ceiling {
		fresh := make(map[string]outcome.Outcome, len(rows))
		for _, r := range rows {
			fresh[outcome.RecordKey(r)] = outcome.Of(r)
		}
		e.prev = fresh
	}

	if seenDirty {
		e.persist(ctx, e.seen)
	}
	if statusDirty {
		e.persist(ctx, e.status)
	}
	if salesDirty {
		e.persist(ctx, e.sales)
	}
	return res
}

// Remembered returns the size of the previous-outcome map.
func (e *Engine) Remembered() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.prev)
}

// SetSizes reports the size of each seen set by storage key.
func (e *Engine) SetSizes() map[string]int64 {
	return map[string]int64{
		SeenRecordsKey: e.seen.Size(),
		ShownSalesKey:  e.sales.Size(),
		ShownStatusKey: e.status.Size(),
	}
}

// persist is best effort; the in-memory sets stay authoritative.
func (e *Engine) persist(ctx context.Context, s *dedupe.Set) {
	if err := s.Persist(ctx); err != nil {
		e.log.Debug(ctx, "seen set not persisted", logger.String("key", s.StorageKey()), logger.Error(err))
	}
}

func (e *Engine) notification(r model.QueueRecord, kind model.NotificationKind, o outcome.Outcome, name, title, bg string) model.Notification {
	return model.Notification{
		ID:         e.newID(),
		Kind:       kind,
		Title:      title,
		Name:       name,
		Team:       r.Team.String(),
		Time:       r.Time.String(),
		CustomerID: r.CustomerID.String(),
		Outcome:    string(o),
		ImageURL:   e.images.For(string(r.QualifierName)),
		Background: bg,
		RaisedAt:   e.now(),
	}
}
