package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/okian/bonusboard/internal/domain/dedupe"
	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/internal/domain/notify"
	"github.com/okian/bonusboard/internal/domain/outcome"
	"github.com/okian/bonusboard/internal/domain/types"
	"github.com/okian/bonusboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type kv struct {
	mu      sync.Mutex
	data    map[string]string
	failPut bool
	puts    int
}

func newKV() *kv { return &kv{data: map[string]string{}} }

func (k *kv) Get(_ context.Context, key string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[key]
	if !ok {
		return "", errors.New("missing")
	}
	return v, nil
}

func (k *kv) Put(_ context.Context, key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.puts++
	if k.failPut {
		return errors.New("disk full")
	}
	k.data[key] = value
	return nil
}

func newEngine(store *kv, opts ...notify.Option) *notify.Engine {
	seen := dedupe.New(dedupe.WithStore(store, notify.SeenRecordsKey))
	sales := dedupe.New(dedupe.WithStore(store, notify.ShownSalesKey))
	status := dedupe.New(dedupe.WithStore(store, notify.ShownStatusKey))
	all := append([]notify.Option{
		notify.WithSets(seen, sales, status),
		notify.WithRand(rand.New(rand.NewSource(1))),
	}, opts...)
	e := notify.New(all...)
	e.Load(context.Background())
	return e
}

func rec(cid, stage string) model.QueueRecord {
	return model.QueueRecord{
		CustomerID:      types.Text(cid),
		Time:            "09:00",
		QualifierName:   "Jane Doe",
		ProcessingStage: types.Text(stage),
	}
}

func TestObserve(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh engine", t, func() {
		store := newKV()
		e := newEngine(store)

		Convey("When a Lead row is seen for the first time", func() {
			first := e.Observe(ctx, []model.QueueRecord{rec("C1", "Lead")})

			Convey("Then one returned-flavored arrival toast is raised and the key is recorded", func() {
				So(first.Toasts, ShouldHaveLength, 1)
				So(first.Toasts[0].Kind, ShouldEqual, model.KindStatus)
				So(first.Toasts[0].Outcome, ShouldEqual, "Returned")
				So(first.Toasts[0].Name, ShouldEqual, "Jane")
				So(first.Toasts[0].Background, ShouldEqual, "#FFC9C9")
				So(store.data[notify.SeenRecordsKey], ShouldEqual, `["C1|09:00|JANE DOE|NOTEAM"]`)
			})

			Convey("Then the returned modal fires once", func() {
				So(first.Alerts, ShouldHaveLength, 1)
				So(first.Alerts[0].Kind, ShouldEqual, model.KindAlert)
			})

			Convey("Then the same snapshot again raises nothing", func() {
				second := e.Observe(ctx, []model.QueueRecord{rec("C1", "Lead")})
				So(second.Empty(), ShouldBeTrue)
			})
		})

		Convey("When a record goes Processing then Sale", func() {
			first := e.Observe(ctx, []model.QueueRecord{rec("C2", "Processing")})
			second := e.Observe(ctx, []model.QueueRecord{rec("C2", "Deal")})
			third := e.Observe(ctx, []model.QueueRecord{rec("C2", "Deal")})

			Convey("Then the transition toast is suppressed and one sale toast is raised", func() {
				So(first.Toasts, ShouldHaveLength, 1)
				So(first.Toasts[0].Background, ShouldEqual, "#FFF1A8")
				So(second.Toasts, ShouldHaveLength, 1)
				So(second.Toasts[0].Kind, ShouldEqual, model.KindSale)
				So(second.Toasts[0].Title, ShouldEqual, "Jane MADE A SALE! ✅")
				So(second.Toasts[0].Background, ShouldEqual, outcome.SaleBackground)
				So(third.Empty(), ShouldBeTrue)
			})
		})

		Convey("When a record is first seen already as a Sale", func() {
			res := e.Observe(ctx, []model.QueueRecord{rec("C3", "Deal")})

			Convey("Then both the arrival and sale toasts are raised", func() {
				So(res.Toasts, ShouldHaveLength, 2)
				So(res.Toasts[0].Kind, ShouldEqual, model.KindStatus)
				So(res.Toasts[1].Kind, ShouldEqual, model.KindSale)
			})
		})

		Convey("When a record moves to an unpooled stage", func() {
			e.Observe(ctx, []model.QueueRecord{rec("C4", "Processing")})
			res := e.Observe(ctx, []model.QueueRecord{rec("C4", "Callback")})

			Convey("Then the generic status message is used", func() {
				So(res.Toasts, ShouldHaveLength, 1)
				So(res.Toasts[0].Title, ShouldEqual, "Jane status changed: Callback")
				So(res.Toasts[0].Background, ShouldEqual, "#E0F2FE")
			})
		})

		Convey("When a record flips Processing, Returned, Processing, Returned", func() {
			var toasts, alerts int
			for _, stage := range []string{"Processing", "Lead", "Processing", "Lead"} {
				res := e.Observe(ctx, []model.QueueRecord{rec("C5", stage)})
				toasts += len(res.Toasts)
				alerts += len(res.Alerts)
			}

			Convey("Then each key::outcome fires at most once", func() {
				So(toasts, ShouldEqual, 3)
				So(alerts, ShouldEqual, 1)
			})
		})

		Convey("When a row is first seen as Home Office", func() {
			r := rec("C6", "Processing")
			r.CloserStatus = "home office"
			res := e.Observe(ctx, []model.QueueRecord{r})
			So(res.Toasts[0].Outcome, ShouldEqual, "Home Office")
			So(res.Toasts[0].Background, ShouldEqual, "#c6b1ee")
		})
	})

	Convey("Given an engine with returned alerts disabled", t, func() {
		e := newEngine(newKV(), notify.WithReturnedAlerts(false))
		res := e.Observe(ctx, []model.QueueRecord{rec("C1", "Lead")})
		So(res.Toasts, ShouldHaveLength, 1)
		So(res.Alerts, ShouldBeEmpty)
	})
}

func TestObservePersistence(t *testing.T) {
	ctx := context.Background()

	Convey("Given seen sets persisted by a previous session", t, func() {
		store := newKV()
		e1 := newEngine(store)
		e1.Observe(ctx, []model.QueueRecord{rec("C1", "Processing")})

		e2 := newEngine(store)

		Convey("When the restarted engine sees the same row", func() {
			res := e2.Observe(ctx, []model.QueueRecord{rec("C1", "Processing")})

			Convey("Then no arrival is raised again", func() {
				So(res.Empty(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a store that rejects writes", t, func() {
		store := newKV()
		store.failPut = true
		e := newEngine(store)

		Convey("When rows are observed", func() {
			first := e.Observe(ctx, []model.QueueRecord{rec("C1", "Processing")})
			second := e.Observe(ctx, []model.QueueRecord{rec("C1", "Processing")})

			Convey("Then in-memory behavior is unaffected", func() {
				So(first.Toasts, ShouldHaveLength, 1)
				So(second.Empty(), ShouldBeTrue)
				So(store.puts, ShouldBeGreaterThan, 0)
			})
		})
	})

	Convey("Given a corrupt persisted set", t, func() {
		store := newKV()
		store.data[notify.SeenRecordsKey] = "{broken"
		e := newEngine(store)
		res := e.Observe(ctx, []model.QueueRecord{rec("C1", "Processing")})
		So(res.Toasts, ShouldHaveLength, 1)
	})
}

func TestObserveCeiling(t *testing.T) {
	ctx := context.Background()

	Convey("Given an engine with a small ceiling", t, func() {
		e := newEngine(newKV(), notify.WithCeiling(5))

		Convey("When a snapshot pushes the map over the ceiling", func() {
			var rows []model.QueueRecord
			for i := 0; i < 6; i++ {
				rows = append(rows, rec(fmt.Sprintf("A%d", i), "Processing"))
			}
			e.Observe(ctx, rows)
			latest := []model.QueueRecord{rec("A0", "Processing"), rec("B0", "Lead")}
			e.Observe(ctx, latest)

			Convey("Then the next poll's rebuild keeps only the latest keys", func() {
				So(e.Remembered(), ShouldEqual, 2)
			})
		})

		Convey("When the map stays under the ceiling", func() {
			e.Observe(ctx, []model.QueueRecord{rec("A0", "Processing"), rec("A1", "Processing")})
			e.Observe(ctx, []model.QueueRecord{rec("A2", "Processing")})
			So(e.Remembered(), ShouldEqual, 3)
		})
	})

	Convey("Given the default ceiling", t, func() {
		e := newEngine(newKV())
		var rows []model.QueueRecord
		for i := 0; i < 5001; i++ {
			rows = append(rows, rec(fmt.Sprintf("R%d", i), "Processing"))
		}
		e.Observe(ctx, rows)
		So(e.Remembered(), ShouldEqual, 5001)
		e.Observe(ctx, rows[:10])
		So(e.Remembered(), ShouldEqual, 10)
		So(e.SetSizes()[notify.SeenRecordsKey], ShouldEqual, 5001)
	})
}

func TestObserveLargeSnapshot(t *testing.T) {
	ctx := context.Background()

	Convey("Given a snapshot larger than the persisted seen-set cap", t, func() {
		kv := newKV()
		e := newEngine(kv)
		var rows []model.QueueRecord
		for i := 0; i < 801; i++ {
			rows = append(rows, rec(fmt.Sprintf("L%d", i), "Processing"))
		}

		first := e.Observe(ctx, rows)
		So(first.Toasts, ShouldHaveLength, 801)

		Convey("When the identical snapshot is observed again", func() {
			second := e.Observe(ctx, rows)
			third := e.Observe(ctx, rows)

			Convey("Then nothing is raised", func() {
				So(second.Empty(), ShouldBeTrue)
				So(third.Empty(), ShouldBeTrue)
			})
		})

		Convey("Then only the newest 800 keys are persisted", func() {
			raw, err := kv.Get(ctx, notify.SeenRecordsKey)
			So(err, ShouldBeNil)
			var keys []string
			So(json.Unmarshal([]byte(raw), &keys), ShouldBeNil)
			So(keys, ShouldHaveLength, 800)
		})
	})
}

func TestMessages(t *testing.T) {
	Convey("Given many arrivals", t, func() {
		e := newEngine(newKV())
		var rows []model.QueueRecord
		for i := 0; i < 20; i++ {
			rows = append(rows, rec(fmt.Sprintf("M%d", i), ""))
		}
		res := e.Observe(context.Background(), rows)

		Convey("Then every message names the agent", func() {
			So(res.Toasts, ShouldHaveLength, 20)
			for _, n := range res.Toasts {
				So(strings.Contains(n.Title, "Jane"), ShouldBeTrue)
				So(n.ID, ShouldNotBeEmpty)
				So(n.Outcome, ShouldEqual, "-")
			}
		})
	})
}
