package service

import (
	"time"

	"github.com/okian/barberbook/internal/adapters/identity"
	"github.com/okian/barberbook/internal/adapters/repository"
	"github.com/okian/barberbook/internal/domain/aggregate"
	"github.com/okian/barberbook/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the record store. The default keeps records in memory.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkerCount sets the number of achievement workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the achievement job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the idempotency key cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRates sets the initial commission rates and VAT.
func WithRates(r aggregate.Rates) Option {
	return func(s *Service) {
		s.rates = r
	}
}

// WithLocation sets the shop's time zone.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithIssuer sets the session token issuer.
func WithIssuer(iss *identity.Issuer) Option {
	return func(s *Service) {
		if iss != nil {
			s.issuer = iss
		}
	}
}

// WithIdentityProvider replaces how the caller's identity is read.
func WithIdentityProvider(p identity.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.identities = p
		}
	}
}

// WithManagerPasswordHash sets the bcrypt hash guarding the manager area.
func WithManagerPasswordHash(hash string) Option {
	return func(s *Service) {
		s.managerHash = hash
	}
}

// WithBcryptCost sets the cost for new password hashes.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost > 0 {
			s.bcryptCost = cost
		}
	}
}

// WithLowStockThreshold flags products whose stock is below n.
func WithLowStockThreshold(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.lowStock = n
		}
	}
}

// WithReportTitle sets the heading of exported reports.
func WithReportTitle(title string) Option {
	return func(s *Service) {
		if title != "" {
			s.reportTitle = title
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
