package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/bonusboard/internal/adapters/remote"
	"github.com/okian/bonusboard/internal/adapters/repository"
	service "github.com/okian/bonusboard/internal/app"
	"github.com/okian/bonusboard/internal/config"
	"github.com/okian/bonusboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// testConfig returns a config pointed at backendURL with long schedules so
// only loud fetches run during a test.
func testConfig(backendURL string) *config.Config {
	cfg := config.New()
	cfg.BackendURL = backendURL
	cfg.StoreDriver = "memory"
	cfg.QueueSchedule = "@every 1h"
	cfg.GoldRushSchedule = "@every 1h"
	cfg.DashboardSchedule = "@every 1h"
	cfg.RequestTimeoutMS = 2000
	cfg.PopupMS = 2000
	cfg.AlertMS = 2000
	return cfg
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Teams()[0], ShouldEqual, "ALL")
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a service with configured teams", t, func() {
		cfg := config.New()
		cfg.Teams = []string{" Legends ", "", "Sharks"}
		svc := service.New(service.WithConfig(cfg))

		Convey("Then blank teams are dropped and ALL comes first", func() {
			So(svc.Teams(), ShouldResemble, []string{"ALL", "Legends", "Sharks"})
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a service whose backend is unreachable", t, func() {
		svc := service.New(service.WithConfig(testConfig("http://127.0.0.1:1")))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)
			defer svc.Stop()

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, true)
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And the queue view reports the fetch error", func() {
				So(eventually(func() bool {
					v, err := svc.Queue(ctx, service.QueueQuery{})
					return err == nil && v.Error != ""
				}), ShouldBeTrue)
			})
		})

		Convey("When stopping the service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				_, err := svc.Queue(ctx, service.QueueQuery{})
				So(err, ShouldEqual, service.ErrNotStarted)
			})

			Convey("And stopping twice is safe", func() {
				svc.Stop()
			})
		})
	})

	Convey("Given an invalid queue schedule", t, func() {
		cfg := testConfig("http://127.0.0.1:1")
		cfg.QueueSchedule = "sometimes"
		svc := service.New(service.WithConfig(cfg))

		Convey("Then Start fails", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
		})
	})

	Convey("Given an unknown store driver", t, func() {
		cfg := testConfig("http://127.0.0.1:1")
		cfg.StoreDriver = "etcd"
		svc := service.New(service.WithConfig(cfg))

		Convey("Then Start fails with the store error", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, repository.ErrUnknownDriver), ShouldBeTrue)
		})
	})
}

func TestService_Credentials(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a memory store", t, func() {
		st := repository.NewMemoryStore()
		svc := service.New(service.WithStore(st))

		Convey("When no key was stored", func() {
			_, err := svc.AdminKey(ctx)

			Convey("Then the key is reported missing", func() {
				So(errors.Is(err, remote.ErrMissingKey), ShouldBeTrue)
			})
		})

		Convey("When logging in", func() {
			So(svc.Login(ctx, "  s3cret "), ShouldBeNil)

			Convey("Then the trimmed key is stored", func() {
				key, err := svc.AdminKey(ctx)
				So(err, ShouldBeNil)
				So(key, ShouldEqual, "s3cret")
			})

			Convey("Then logging out forgets it", func() {
				So(svc.Logout(ctx), ShouldBeNil)
				_, err := svc.AdminKey(ctx)
				So(errors.Is(err, remote.ErrMissingKey), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service without a store", t, func() {
		svc := service.New()

		Convey("Then credential operations fail", func() {
			So(svc.Login(ctx, "k"), ShouldEqual, service.ErrNoStore)
		})
	})
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
