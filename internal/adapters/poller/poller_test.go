package poller_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/bonusboard/internal/adapters/poller"
	"github.com/okian/bonusboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type every time.Duration

func (e every) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }

// source serves scripted results; calls after the script repeat the last one.
type source struct {
	mu      sync.Mutex
	calls   int
	results []result
	gate    chan struct{}
}

type result struct {
	rows []string
	err  error
}

func (s *source) fetch(_ context.Context) ([]string, error) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	gate := s.gate
	s.mu.Unlock()
	if gate != nil && i > 0 {
		<-gate
	}
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	return s.results[i].rows, s.results[i].err
}

func (s *source) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestStartAndRefresh(t *testing.T) {
	Convey("Given a poller without a schedule", t, func() {
		src := &source{results: []result{
			{rows: []string{"a"}},
			{err: errors.New("HTTP 500")},
			{rows: []string{"b", "c"}},
		}}
		var seen [][]string
		var mu sync.Mutex
		p := poller.New("queue", src.fetch,
			poller.WithOnSuccess(func(_ context.Context, rows []string) {
				mu.Lock()
				seen = append(seen, rows)
				mu.Unlock()
			}),
			poller.WithSize(func(rows []string) int { return len(rows) }),
		)

		So(p.Snapshot().Phase, ShouldEqual, poller.Idle)

		Convey("When started", func() {
			p.Start(context.Background())
			So(eventually(func() bool { return p.Snapshot().Phase == poller.Ready }), ShouldBeTrue)

			Convey("Then the first snapshot is available and the hook ran", func() {
				So(p.Snapshot().Data, ShouldResemble, []string{"a"})
				So(eventually(func() bool {
					mu.Lock()
					defer mu.Unlock()
					return len(seen) == 1
				}), ShouldBeTrue)
			})

			Convey("Then a failed refresh keeps the last snapshot", func() {
				err := p.Refresh(context.Background())
				So(err, ShouldNotBeNil)
				s := p.Snapshot()
				So(s.Phase, ShouldEqual, poller.Failed)
				So(s.Error, ShouldEqual, "HTTP 500")
				So(s.Data, ShouldResemble, []string{"a"})
				So(s.HasData, ShouldBeTrue)

				Convey("And the next success clears the error", func() {
					So(p.Refresh(context.Background()), ShouldBeNil)
					s := p.Snapshot()
					So(s.Phase, ShouldEqual, poller.Ready)
					So(s.Error, ShouldBeEmpty)
					So(s.Data, ShouldResemble, []string{"b", "c"})
				})
			})

			Reset(p.Cancel)
		})
	})

	Convey("Given a custom error formatter", t, func() {
		src := &source{results: []result{{err: errors.New("dial tcp: refused")}}}
		p := poller.New("dashboard", src.fetch,
			poller.WithErrorMessage[[]string](func(error) string { return "backend unreachable" }))
		So(p.Refresh(context.Background()), ShouldNotBeNil)
		So(p.Snapshot().Error, ShouldEqual, "backend unreachable")
		So(p.Snapshot().HasData, ShouldBeFalse)
	})
}

func TestSilentGuard(t *testing.T) {
	Convey("Given a scheduled poller whose silent fetches hang", t, func() {
		src := &source{results: []result{{rows: []string{"a"}}, {rows: []string{"b"}}}, gate: make(chan struct{})}
		p := poller.New("queue", src.fetch, poller.WithSchedule[[]string](every(10*time.Millisecond)))
		p.Start(context.Background())

		Convey("When several ticks pass", func() {
			So(eventually(func() bool { return p.Snapshot().Refreshing }), ShouldBeTrue)
			time.Sleep(60 * time.Millisecond)

			Convey("Then only one silent fetch is in flight", func() {
				So(src.count(), ShouldEqual, 2)
				So(p.Snapshot().Phase, ShouldEqual, poller.Refreshing)
			})

			Convey("Then a manual refresh is not blocked by the guard", func() {
				done := make(chan error, 1)
				go func() { done <- p.Refresh(context.Background()) }()
				So(eventually(func() bool { return src.count() == 3 }), ShouldBeTrue)
				So(p.Snapshot().Loading, ShouldBeTrue)
				close(src.gate)
				So(<-done, ShouldBeNil)
			})
		})

		Reset(func() {
			p.Cancel()
			src.mu.Lock()
			defer src.mu.Unlock()
			select {
			case <-src.gate:
			default:
				close(src.gate)
			}
		})
	})
}

func TestCancel(t *testing.T) {
	Convey("Given a poller cancelled while a fetch is in flight", t, func() {
		gate := make(chan struct{})
		var calls atomic.Int32
		p := poller.New("goldrush", func(context.Context) ([]string, error) {
			calls.Add(1)
			<-gate
			return []string{"late"}, nil
		})
		p.Start(context.Background())
		So(eventually(func() bool { return calls.Load() == 1 }), ShouldBeTrue)
		p.Cancel()
		So(p.Running(), ShouldBeFalse)
		close(gate)

		Convey("Then the late result is discarded", func() {
			So(eventually(func() bool { return !p.Snapshot().Loading }), ShouldBeTrue)
			So(p.Snapshot().HasData, ShouldBeFalse)
			So(p.Snapshot().Phase, ShouldEqual, poller.Idle)
		})
	})
}

func TestParseSchedule(t *testing.T) {
	Convey("Given an @every descriptor", t, func() {
		s, err := poller.ParseSchedule("@every 2m")
		So(err, ShouldBeNil)
		base := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
		So(s.Next(base).Equal(base.Add(2*time.Minute)), ShouldBeTrue)
	})

	Convey("Given an invalid schedule", t, func() {
		_, err := poller.ParseSchedule("every two minutes")
		So(err, ShouldNotBeNil)
	})
}
