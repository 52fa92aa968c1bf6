package announcer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/bonusboard/internal/adapters/mq/announcer"
	"github.com/okian/bonusboard/internal/adapters/mq/queue"
	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type recordingSink struct {
	mu   sync.Mutex
	ids  []string
	fail bool
}

func (s *recordingSink) Deliver(_ context.Context, n model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, n.ID)
	if s.fail {
		return errors.New("sink down")
	}
	return nil
}

func (s *recordingSink) delivered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}

func toast(id string) model.Notification {
	return model.Notification{ID: id, Kind: model.KindStatus, Title: id}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestToasts(t *testing.T) {
	Convey("Given an announcer over a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue()
		sink := &recordingSink{fail: true}
		a := announcer.New(q, announcer.WithPopupDuration(60*time.Millisecond), announcer.WithSink(sink))
		go a.Run(ctx)

		Convey("When two toasts are queued", func() {
			q.EnqueueAll(ctx, []model.Notification{toast("first"), toast("second")})

			Convey("Then they are shown one at a time in order, then nothing", func() {
				So(waitFor(func() bool { n, ok := a.Current(); return ok && n.ID == "first" }), ShouldBeTrue)
				So(waitFor(func() bool { n, ok := a.Current(); return ok && n.ID == "second" }), ShouldBeTrue)
				So(waitFor(func() bool { _, ok := a.Current(); return !ok }), ShouldBeTrue)
				So(sink.delivered(), ShouldResemble, []string{"first", "second"})
			})
		})

		Convey("When shut down", func() {
			So(a.Shutdown(context.Background()), ShouldBeNil)
			So(a.Shutdown(context.Background()), ShouldEqual, announcer.ErrStopped)
		})
	})
}

func TestAlerts(t *testing.T) {
	Convey("Given an announcer with a short alert window", t, func() {
		ctx := context.Background()
		a := announcer.New(queue.NewInMemoryQueue(), announcer.WithAlertDuration(50*time.Millisecond))

		Convey("When alerts are shown", func() {
			a.ShowAlerts(ctx, []model.Notification{
				{ID: "a1", Kind: model.KindAlert},
				{ID: "a2", Kind: model.KindAlert},
			})

			Convey("Then the last one is visible until it expires", func() {
				n, ok := a.Alert()
				So(ok, ShouldBeTrue)
				So(n.ID, ShouldEqual, "a2")
				So(waitFor(func() bool { _, ok := a.Alert(); return !ok }), ShouldBeTrue)
			})
		})

		Convey("When an alert is dismissed", func() {
			a.ShowAlerts(ctx, []model.Notification{{ID: "a1", Kind: model.KindAlert}})

			So(a.DismissAlert(), ShouldBeTrue)
			_, ok := a.Alert()
			So(ok, ShouldBeFalse)
			So(a.DismissAlert(), ShouldBeFalse)
		})

		Convey("When shut down before running", func() {
			a.ShowAlerts(ctx, []model.Notification{{ID: "a1", Kind: model.KindAlert}})
			So(a.Shutdown(ctx), ShouldBeNil)

			_, ok := a.Alert()
			So(ok, ShouldBeFalse)
			a.ShowAlerts(ctx, []model.Notification{{ID: "a3", Kind: model.KindAlert}})
			_, ok = a.Alert()
			So(ok, ShouldBeFalse)
		})
	})
}
