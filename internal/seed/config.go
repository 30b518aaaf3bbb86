// Package seed fills a running barberbook instance with a realistic shop
// through its public API and checks the leaderboard against its own totals.
package seed

import (
	"fmt"
	"strings"
	"time"
)

// Config holds configuration for a seed run.
type Config struct {
	BaseURL         string        // base URL of the service
	Barbers         int           // barber accounts to create or reuse
	Entries         int           // production entries to submit
	Days            int           // entries are spread over this many past days
	Workers         int           // concurrent submitters
	Timeout         time.Duration // HTTP request timeout
	Password        string        // password of every seeded barber
	ManagerPassword string        // manager gate password
	DuplicateEvery  int           // resend every Nth entry with the same idempotency key; 0 disables
	LogFile         string        // optional log file
	Verbose         bool
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.BaseURL) == "":
		return fmt.Errorf("%w: base url is required", ErrConfig)
	case c.Barbers < 1 || c.Barbers > maxBarbers:
		return fmt.Errorf("%w: barbers must be within [1, %d]", ErrConfig, maxBarbers)
	case c.Entries < 0:
		return fmt.Errorf("%w: entries must not be negative", ErrConfig)
	case c.Days < 1:
		return fmt.Errorf("%w: days must be positive", ErrConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive", ErrConfig)
	case len(c.Password) < minPasswordLength:
		return fmt.Errorf("%w: password must have at least %d characters", ErrConfig, minPasswordLength)
	case c.ManagerPassword == "":
		return fmt.Errorf("%w: manager password is required", ErrConfig)
	}
	return nil
}

// Stats holds run statistics.
type Stats struct {
	BarbersReady     int
	EntriesGenerated int
	EntriesSubmitted int
	EntriesAccepted  int
	EntriesReplayed  int
	EntriesFailed    int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
