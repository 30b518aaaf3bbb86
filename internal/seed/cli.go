package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/barberbook/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging sends seed logs to stdout and, when logFile is set, to that
// file as well. The returned func closes the file.
func SetupLogging(logFile, format string) (func() error, error) {
	if logFile == "" {
		if err := logger.Init(logger.WithFormat(format)); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return func() error { return nil }, nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if err := logger.Init(logger.WithFormat(format), logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file.Close, nil
}

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Barberbook Seed Tool
====================

Fills a running barberbook instance with barbers, a catalog and production
entries through the HTTP API, then checks the leaderboard totals.

Usage:
  go run ./cmd/seed [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -barbers int
        Barber accounts to create or reuse (default 5)
  -entries int
        Production entries to submit (default 500)
  -days int
        Spread entries over this many past days (default 90)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -password string
        Password of every seeded barber (default "barber123")
  -manager-password string
        Manager gate password (default $BARBER_SEED_MANAGER_PASSWORD)
  -duplicate-every int
        Resend every Nth entry with the same Idempotency-Key; 0 disables (default 10)
  -log string
        Also write logs to this file
  -verbose
        Log every rejected entry
  -help
        Show this help message

Examples:
  # Seed a local instance
  go run ./cmd/seed -manager-password s3cret

  # A bigger run against another host
  go run ./cmd/seed -url http://barber.local:8080 -barbers 20 -entries 20000 -workers 16
`)
}
