package api

import "time"

const defaultMaxLimit = 100

type serverConfig struct {
	maxLimit int
	now      func() time.Time
}

// Option configures a Server.
type Option func(*serverConfig)

// WithMaxLimit caps the leaderboard ?limit parameter.
func WithMaxLimit(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxLimit = n
		}
	}
}

// WithClock sets the clock that resolves the default month.
func WithClock(now func() time.Time) Option {
	return func(c *serverConfig) {
		if now != nil {
			c.now = now
		}
	}
}
