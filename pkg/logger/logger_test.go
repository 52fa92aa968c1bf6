package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/okian/bonusboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given a logger writing JSON to a buffer", t, func() {
		var buf bytes.Buffer
		So(logger.InitWithFormat(&buf, logger.FormatJSON), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			logger.Get().Info(ctx, "poll finished",
				logger.String("view", "queue"),
				logger.Int("rows", 3),
				logger.Bool("silent", true),
				logger.Duration("took", time.Second),
				logger.Error(errors.New("boom")),
			)

			Convey("Then the line carries the fields and a source", func() {
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				So(line["msg"], ShouldEqual, "poll finished")
				So(line["view"], ShouldEqual, "queue")
				So(line["rows"], ShouldEqual, float64(3))
				So(line["silent"], ShouldEqual, true)
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to warn", func() {
			So(logger.SetLevelString("warn"), ShouldBeNil)
			logger.Get().Info(ctx, "hidden")
			logger.Get().Debug(ctx, "hidden")

			Convey("Then info and debug lines are dropped", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When a named logger is used", func() {
			logger.Named("poller").Warn(ctx, "slow", logger.String("view", "dashboard"))

			Convey("Then fields are grouped under the name", func() {
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				group, ok := line["poller"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(group["view"], ShouldEqual, "dashboard")
			})
		})

		Convey("When an unknown level is set", func() {
			So(logger.SetLevelString("loud"), ShouldNotBeNil)
		})
	})

	Convey("Given an unknown format", t, func() {
		So(logger.InitWithFormat(&bytes.Buffer{}, "xml"), ShouldNotBeNil)
	})

	Convey("Given the default initializer", t, func() {
		So(logger.Init(), ShouldBeNil)
		So(logger.Get(), ShouldNotBeNil)
		So(logger.Sync(), ShouldBeNil)
	})
}
