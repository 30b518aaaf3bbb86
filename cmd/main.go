package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/okian/barberbook/internal/adapters/http/api"
	"github.com/okian/barberbook/internal/adapters/http/swagger"
	"github.com/okian/barberbook/internal/adapters/identity"
	"github.com/okian/barberbook/internal/adapters/repository"
	"github.com/okian/barberbook/internal/adapters/repository/sqlite"
	app "github.com/okian/barberbook/internal/app"
	"github.com/okian/barberbook/internal/config"
	"github.com/okian/barberbook/internal/domain/aggregate"
	"github.com/okian/barberbook/pkg/logger"
	"github.com/okian/barberbook/pkg/metrics"
	"golang.org/x/crypto/bcrypt"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 30 * time.Second
)

func main() {
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of a manager password and exit")
	flag.Parse()
	if *hashPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*hashPassword), bcrypt.DefaultCost)
		if err != nil {
			os.Stderr.WriteString("failed to hash password: " + err.Error() + "\n")
			os.Exit(1)
		}
		fmt.Println(string(hash))
		return
	}

	if err := logger.Init(); err != nil {
		// logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// defaults -> optional file -> env
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg); err != nil {
		log.Error(ctx, "barberbook stopped with error", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newService builds the application service from cfg.
func newService(ctx context.Context, cfg *config.Config) (*app.Service, error) {
	log := logger.Get()

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn(ctx, "jwt_secret not set; sessions will not survive a restart")
	}
	issuer, err := identity.NewIssuer(secret, cfg.SessionTTL())
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if cfg.ManagerPasswordHash == "" {
		log.Warn(ctx, "manager_password_hash not set; the manager area is disabled")
	}

	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithStore(store),
		app.WithIssuer(issuer),
		app.WithLocation(loc),
		app.WithRates(aggregate.RatesFromPercent(cfg.ServiceCommissionPercent, cfg.ProductCommissionPercent, cfg.VATPercent)),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithManagerPasswordHash(cfg.ManagerPasswordHash),
		app.WithLowStockThreshold(cfg.LowStockThreshold),
		app.WithReportTitle(cfg.ReportTitle),
	), nil
}

// openStore picks the SQLite store when a path is configured and the
// in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.StorePath == "" {
		logger.Get().Warn(ctx, "store_path not set; records are kept in memory")
		return repository.NewMemoryStore(), nil
	}
	store, err := sqlite.Open(ctx, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Get().Info(ctx, "using sqlite store", logger.String("path", cfg.StorePath))
	return store, nil
}

// newMux registers the API and its OpenAPI document.
func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	return mux
}

// startServiceMetricsUpdater refreshes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc)
		}
	}
}

// updateServiceMetrics reads the service stats; GetStats updates the
// active barber gauge itself.
func updateServiceMetrics(ctx context.Context, svc *app.Service) {
	stats := svc.GetStats(ctx)
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
}
