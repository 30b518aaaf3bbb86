package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/barberbook/internal/adapters/repository"
	"github.com/okian/barberbook/internal/adapters/repository/sqlite"
	"github.com/okian/barberbook/internal/config"
	"github.com/okian/barberbook/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("BARBER_ADDR", ":8080")
			_ = os.Setenv("BARBER_QUEUE_SIZE", "1000")
			_ = os.Setenv("BARBER_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("BARBER_ADDR")
				_ = os.Unsetenv("BARBER_QUEUE_SIZE")
				_ = os.Unsetenv("BARBER_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("BARBER_VAT_PERCENT", "-1")
			defer func() { _ = os.Unsetenv("BARBER_VAT_PERCENT") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestOpenStore(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("When no store path is set", func() {
			store, err := openStore(ctx, cfg)

			convey.Convey("Then records live in memory", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := store.(*repository.MemoryStore)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a store path is set", func() {
			cfg.StorePath = filepath.Join(t.TempDir(), "barberbook.db")
			store, err := openStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer store.Close()

			convey.Convey("Then the sqlite store is used", func() {
				_, ok := store.(*sqlite.Store)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})
	})
}

func TestApplicationWiring(t *testing.T) {
	convey.Convey("Given a service built from defaults", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New()
		cfg.WorkerCount = 2
		svc, err := newService(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, svc)

		convey.Convey("Then the API, metrics and docs are routed", func() {
			for _, path := range []string{"/healthz", "/metrics", "/stats", "/openapi.yaml", "/api-docs"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then private routes require a session", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me/dashboard", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusUnauthorized)
		})

		convey.Convey("Then the rates come from the configuration", func() {
			convey.So(svc.Rates().ServicePercent.String(), convey.ShouldEqual, "40")
			convey.So(svc.Rates().VATPercent.String(), convey.ShouldEqual, "23")
		})

		convey.Convey("Then the service metrics updater runs without panicking", func() {
			convey.So(func() { updateServiceMetrics(ctx, svc) }, convey.ShouldNotPanic)

			short, stop := context.WithTimeout(ctx, 50*time.Millisecond)
			defer stop()
			convey.So(func() { startServiceMetricsUpdater(short, svc) }, convey.ShouldNotPanic)
		})
	})

	convey.Convey("Given an unknown timezone", t, func() {
		cfg := config.New()
		cfg.Timezone = "Mars/Olympus"

		convey.Convey("Then the service cannot be built", func() {
			_, err := newService(context.Background(), cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
