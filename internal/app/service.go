// Package service implements the barbershop use cases behind the HTTP API:
// recording production, dashboards, profiles, inventory and reports.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/barberbook/internal/adapters/identity"
	eventqueue "github.com/okian/barberbook/internal/adapters/mq/queue"
	workerpool "github.com/okian/barberbook/internal/adapters/mq/worker"
	"github.com/okian/barberbook/internal/adapters/repository"
	"github.com/okian/barberbook/internal/domain/aggregate"
	"github.com/okian/barberbook/internal/domain/dedupe"
	"github.com/okian/barberbook/internal/domain/model"
	"github.com/okian/barberbook/pkg/logger"
	"github.com/okian/barberbook/pkg/metrics"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultSessionTTL  = 12 * time.Hour
	defaultLowStock    = 10
	defaultReportTitle = "Relatório da Barbearia"
)

// Service implements the API dependencies for the barbershop.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	deduper    dedupe.Deduper
	jobs       *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool
	issuer     *identity.Issuer
	identities identity.Provider

	// rates and engine change together under ratesMu
	ratesMu sync.RWMutex
	rates   aggregate.Rates
	engine  *aggregate.Engine

	// serializes stock checks with their decrement
	stockMu sync.Mutex

	// serializes the email check of sign-up with the account write
	signupMu sync.Mutex

	workerCount int
	queueSize   int
	dedupeSize  int
	managerHash string
	bcryptCost  int
	lowStock    int
	reportTitle string
	loc         *time.Location
	now         func() time.Time

	started bool
	logger  logger.Logger
}

// New constructs a Service. Without options records live in memory, rates
// are the shop defaults and sessions are signed with a random secret.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1_000,
		dedupeSize:  50_000,
		rates:       aggregate.DefaultRates(),
		bcryptCost:  bcrypt.DefaultCost,
		lowStock:    defaultLowStock,
		reportTitle: defaultReportTitle,
		loc:         time.UTC,
		now:         time.Now,
		identities:  identity.ContextProvider{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.issuer == nil {
		// only reached without configuration; tokens die with the process
		s.issuer, _ = identity.NewIssuer(uuid.NewString(), defaultSessionTTL)
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.engine = aggregate.New(aggregate.WithRates(s.rates), aggregate.WithLocation(s.loc))
	return s
}

// Start launches the achievement workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.jobs = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobs, s)
	// workers outlive ctx so Stop can drain jobs queued during shutdown
	s.workerPool.Start(context.WithoutCancel(ctx))
	s.started = true

	s.logger.Info(ctx, "barbershop service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("timezone", s.loc.String()),
	)
	return nil
}

// Stop drains pending achievement jobs and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping barbershop service")

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "barbershop service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"dedupeKeys":  s.deduper.Size(),
		"timezone":    s.loc.String(),
	}
	if s.started {
		stats["queueLength"] = s.jobs.Len(ctx)
	}
	if events, err := s.loadEvents(ctx, aggregate.AllBarbers); err == nil {
		active := s.currentEngine().ActiveBarbers(events)
		stats["events"] = len(events)
		stats["activeBarbers"] = active
		metrics.UpdateActiveBarbers(active)
	}
	return stats
}

// Location returns the shop's time zone.
func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) currentEngine() *aggregate.Engine {
	s.ratesMu.RLock()
	defer s.ratesMu.RUnlock()
	return s.engine
}

// loadEvents materializes the production log, optionally for one barber.
// Records that cannot be read are skipped and counted.
func (s *Service) loadEvents(ctx context.Context, barber string) ([]model.ProductionEvent, error) {
	var filters []repository.Filter
	if barber != aggregate.AllBarbers {
		filters = append(filters, repository.Eq(model.FieldBarber, barber))
	}
	recs, err := s.store.List(ctx, model.CollectionProduction, filters...)
	if err != nil {
		return nil, fmt.Errorf("load production: %w", err)
	}

	events := make([]model.ProductionEvent, 0, len(recs))
	for _, rec := range recs {
		ev, err := model.DecodeEvent(rec.ID, rec.Data, s.loc)
		if err != nil {
			metrics.RecordSkipped(skipReason(err))
			s.logger.Debug(ctx, "skipping production record",
				logger.String("id", rec.ID),
				logger.Error(err),
			)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, model.ErrMissingTimestamp):
		return "missing_timestamp"
	case errors.Is(err, model.ErrInvalidTimestamp):
		return "invalid_timestamp"
	case errors.Is(err, model.ErrUnknownKind):
		return "unknown_kind"
	default:
		return "other"
	}
}

// observe records how long an aggregation took.
func observe(op string, start time.Time) {
	metrics.RecordAggregationLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// storeErr maps store errors onto service errors.
func storeErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
