package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/barberbook/internal/seed"
)

const (
	defaultBarbers  = 5
	defaultEntries  = 500
	defaultDays     = 90
	defaultWorkers  = 2 // multiplier for runtime.NumCPU()
	defaultTimeout  = 30 * time.Second
	defaultDupEvery = 10
	runTimeout      = 10 * time.Minute
)

func main() {
	var (
		baseURL         = flag.String("url", "http://localhost:8080", "Base URL of the service")
		barbers         = flag.Int("barbers", defaultBarbers, "Barber accounts to create or reuse")
		entries         = flag.Int("entries", defaultEntries, "Production entries to submit")
		days            = flag.Int("days", defaultDays, "Spread entries over this many past days")
		workers         = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout         = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		password        = flag.String("password", "barber123", "Password of every seeded barber")
		managerPassword = flag.String("manager-password", os.Getenv("BARBER_SEED_MANAGER_PASSWORD"), "Manager gate password")
		duplicateEvery  = flag.Int("duplicate-every", defaultDupEvery, "Resend every Nth entry with the same Idempotency-Key; 0 disables")
		logFile         = flag.String("log", "", "Also write logs to this file")
		logFormat       = flag.String("log-format", "text", "Log format: text or json")
		verbose         = flag.Bool("verbose", false, "Log every rejected entry")
		help            = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	closeLog, err := seed.SetupLogging(*logFile, *logFormat)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	cfg := &seed.Config{
		BaseURL:         *baseURL,
		Barbers:         *barbers,
		Entries:         *entries,
		Days:            *days,
		Workers:         *workers,
		Timeout:         *timeout,
		Password:        *password,
		ManagerPassword: *managerPassword,
		DuplicateEvery:  *duplicateEvery,
		LogFile:         *logFile,
		Verbose:         *verbose,
	}

	if _, err := seed.Run(ctx, cfg); err != nil {
		_, _ = os.Stderr.WriteString("Seed failed: " + err.Error() + "\n")
		cancel()
		stop()
		_ = closeLog()
		os.Exit(1)
	}
}
