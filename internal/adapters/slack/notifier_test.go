package slack_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	goslack "github.com/slack-go/slack"

	"github.com/okian/bonusboard/internal/adapters/slack"
	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type fakeSlack struct {
	mu       sync.Mutex
	channels []string
	texts    []string
	ok       bool
}

func (f *fakeSlack) handler(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	f.mu.Lock()
	f.channels = append(f.channels, r.FormValue("channel"))
	f.texts = append(f.texts, r.FormValue("text"))
	ok := f.ok
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if ok {
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C1","ts":"1700000000.000100"}`))
		return
	}
	_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
}

func (f *fakeSlack) posts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

func TestNotifier(t *testing.T) {
	ctx := context.Background()

	Convey("Given a notifier pointed at a fake Slack API", t, func() {
		fake := &fakeSlack{ok: true}
		srv := httptest.NewServer(http.HandlerFunc(fake.handler))
		defer srv.Close()

		n, err := slack.New("xoxb-test", "C1", nil, goslack.OptionAPIURL(srv.URL+"/"))
		So(err, ShouldBeNil)

		Convey("When a sale is delivered", func() {
			err := n.Deliver(ctx, model.Notification{ID: "1", Kind: model.KindSale, Title: "Jane MADE A SALE! ✅", Team: "Sharks", Time: "09:00"})

			Convey("Then it is posted to the channel", func() {
				So(err, ShouldBeNil)
				So(fake.posts(), ShouldHaveLength, 1)
				So(fake.posts()[0], ShouldContainSubstring, "Jane MADE A SALE!")
				So(fake.posts()[0], ShouldContainSubstring, "Sharks • 09:00")
			})
		})

		Convey("When a status toast is delivered", func() {
			So(n.Deliver(ctx, model.Notification{ID: "2", Kind: model.KindStatus}), ShouldBeNil)
			So(fake.posts(), ShouldBeEmpty)
		})

		Convey("When Slack rejects the post", func() {
			fake.mu.Lock()
			fake.ok = false
			fake.mu.Unlock()
			err := n.Deliver(ctx, model.Notification{ID: "3", Kind: model.KindSale})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "channel_not_found")
		})
	})

	Convey("Given notifier options", t, func() {
		_, err := slack.New("xoxb-test", " ", nil)
		So(err, ShouldEqual, slack.ErrNoChannel)

		fake := &fakeSlack{ok: true}
		srv := httptest.NewServer(http.HandlerFunc(fake.handler))
		defer srv.Close()
		n, err := slack.New("xoxb-test", "C1",
			[]slack.Option{slack.WithKinds(model.KindAlert)}, goslack.OptionAPIURL(srv.URL+"/"))
		So(err, ShouldBeNil)
		So(n.Deliver(ctx, model.Notification{Kind: model.KindSale}), ShouldBeNil)
		So(n.Deliver(ctx, model.Notification{Kind: model.KindAlert, Title: "Returned"}), ShouldBeNil)
		So(fake.posts(), ShouldHaveLength, 1)
	})
}
