// Package config defines the service configuration and its defaults.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without one
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StorePath points at the SQLite database. Empty keeps records in memory.
	StorePath string `koanf:"store_path"`

	// Timezone names the IANA zone used for calendar months and "today".
	Timezone string `koanf:"timezone"`

	// Commission rates and VAT, in percent.
	ServiceCommissionPercent float64 `koanf:"service_commission_percent"`
	ProductCommissionPercent float64 `koanf:"product_commission_percent"`
	VATPercent               float64 `koanf:"vat_percent"`

	// LowStockThreshold flags products whose stock is strictly below it.
	LowStockThreshold int `koanf:"low_stock_threshold"`

	// QueueSize bounds the achievement job queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of achievement workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize bounds the entry idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// JWTSecret signs session tokens.
	JWTSecret string `koanf:"jwt_secret"`
	// SessionTTLMinutes is the session token lifetime.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`
	// ManagerPasswordHash is the bcrypt hash guarding the manager area.
	// Empty disables the manager gate.
	ManagerPasswordHash string `koanf:"manager_password_hash"`

	// ReportTitle heads exported PDF reports.
	ReportTitle string `koanf:"report_title"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		LogFormat:                "text",
		Addr:                     ":9080",
		StorePath:                "",
		Timezone:                 "Europe/Lisbon",
		ServiceCommissionPercent: 40,
		ProductCommissionPercent: 20,
		VATPercent:               23,
		LowStockThreshold:        10,
		QueueSize:                1_000,
		WorkerCount:              runtime.NumCPU(),
		DedupeSize:               50_000,
		JWTSecret:                "",
		SessionTTLMinutes:        12 * 60,
		ReportTitle:              "Relatório da Barbearia",
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// SessionTTL returns the session lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ServiceCommissionPercent < 0 || c.ServiceCommissionPercent > 100:
		return fmt.Errorf("%w: service_commission_percent must be within [0, 100]", ErrInvalidConfig)
	case c.ProductCommissionPercent < 0 || c.ProductCommissionPercent > 100:
		return fmt.Errorf("%w: product_commission_percent must be within [0, 100]", ErrInvalidConfig)
	case c.VATPercent < 0:
		return fmt.Errorf("%w: vat_percent must not be negative", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.SessionTTLMinutes < 1:
		return fmt.Errorf("%w: session_ttl_minutes must be positive", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
