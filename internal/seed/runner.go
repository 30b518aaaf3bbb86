package seed

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/barberbook/pkg/logger"
	"github.com/shopspring/decimal"
)

// shop holds the ids the service assigned to the seeded catalog.
type shop struct {
	services []string
	extras   []string
	products []string
}

type authResult struct {
	Token string `json:"token"`
}

type idOnly struct {
	ID string `json:"id"`
}

type standing struct {
	Barber  string          `json:"barber"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Run executes a complete seed run against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()
	log.Info(ctx, "starting barberbook seed",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("barbers", cfg.Barbers),
		logger.Int("entries", cfg.Entries),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()))

	c := newAPIClient(cfg.BaseURL, cfg.Timeout)

	if err := c.do(ctx, http.MethodGet, "/healthz", "", nil, nil); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	tokens, err := ensureBarbers(ctx, c, cfg, stats)
	if err != nil {
		return nil, fmt.Errorf("barber setup failed: %w", err)
	}

	var manager authResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/manager", tokens[0], map[string]string{"password": cfg.ManagerPassword}, &manager); err != nil {
		return nil, fmt.Errorf("manager gate failed: %w", err)
	}

	s, err := setupShop(ctx, c, manager.Token, cfg.Entries*maxSaleUnits+1)
	if err != nil {
		return nil, fmt.Errorf("catalog setup failed: %w", err)
	}

	before, err := leaderboard(ctx, c, tokens[0])
	if err != nil {
		return nil, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	entries, err := generateEntries(ctx, cfg, time.Now(), stats)
	if err != nil {
		return nil, err
	}
	submitEntries(ctx, c, cfg, s, tokens, entries, stats)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("context cancelled during submission: %w", err)
	}

	after, err := leaderboard(ctx, c, tokens[0])
	if err != nil {
		return nil, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	if stats.EntriesFailed == 0 {
		if err := verifyLeaderboard(before, after, barberEmails(cfg.Barbers), expectedRevenue(entries)); err != nil {
			return stats, err
		}
		log.Info(ctx, "leaderboard matches submitted entries")
	} else {
		log.Warn(ctx, "skipping verification after failed submissions", logger.Int("failed", stats.EntriesFailed))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

func barberEmail(i int) string { return fmt.Sprintf("barber-%02d@seed.barberbook.local", i+1) }

func barberEmails(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = barberEmail(i)
	}
	return out
}

// ensureBarbers signs up every seeded barber, or signs in when the account
// already exists from an earlier run.
func ensureBarbers(ctx context.Context, c *apiClient, cfg *Config, stats *Stats) ([]string, error) {
	tokens := make([]string, cfg.Barbers)
	for i := range tokens {
		creds := map[string]string{"email": barberEmail(i), "password": cfg.Password}
		var res authResult
		err := c.do(ctx, http.MethodPost, "/api/auth/signup", "", creds, &res)
		if isStatus(err, http.StatusConflict) {
			err = c.do(ctx, http.MethodPost, "/api/auth/signin", "", creds, &res)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", barberEmail(i), err)
		}
		tokens[i] = res.Token
	}
	stats.BarbersReady = len(tokens)
	logger.Get().Info(ctx, "barbers ready", logger.Int("count", len(tokens)))
	return tokens, nil
}

// setupShop creates the catalogs and stocks every product with stock units.
func setupShop(ctx context.Context, c *apiClient, token string, stock int) (shop, error) {
	var s shop
	create := func(path string, body any) (string, error) {
		var out idOnly
		if err := c.do(ctx, http.MethodPost, path, token, body, &out); err != nil {
			return "", fmt.Errorf("POST %s: %w", path, err)
		}
		return out.ID, nil
	}
	for _, p := range shopServices {
		id, err := create("/api/catalog/services", map[string]any{"name": p.Name, "price": p.Price})
		if err != nil {
			return shop{}, err
		}
		s.services = append(s.services, id)
	}
	for _, p := range shopExtras {
		id, err := create("/api/catalog/extras", map[string]any{"name": p.Name, "price": p.Price})
		if err != nil {
			return shop{}, err
		}
		s.extras = append(s.extras, id)
	}
	for _, p := range shopProducts {
		id, err := create("/api/products", map[string]any{"name": p.Name, "basePrice": p.BasePrice, "stock": stock})
		if err != nil {
			return shop{}, err
		}
		s.products = append(s.products, id)
	}
	return s, nil
}

func leaderboard(ctx context.Context, c *apiClient, token string) ([]standing, error) {
	var rows []standing
	path := fmt.Sprintf("/api/leaderboard?month=all&limit=%d", maxBarbers)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// submitEntries posts entries concurrently. Every DuplicateEvery-th entry is
// sent twice with the same idempotency key; the replay must return the same
// entry.
func submitEntries(ctx context.Context, c *apiClient, cfg *Config, s shop, tokens []string, entries []plannedEntry, stats *Stats) {
	log := logger.Get()
	log.Info(ctx, "submitting entries", logger.Int("entries", len(entries)), logger.Int("workers", cfg.Workers))

	var submitted, accepted, replayed, failed int64

	work := make(chan int, cfg.Workers*workerChanMult)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				e := entries[i]
				id, err := submitEntry(ctx, c, s, tokens[e.Barber], e)
				atomic.AddInt64(&submitted, 1)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "entry rejected", logger.Int("index", i), logger.Error(err))
					}
					continue
				}
				atomic.AddInt64(&accepted, 1)

				if cfg.DuplicateEvery > 0 && i%cfg.DuplicateEvery == 0 {
					again, err := submitEntry(ctx, c, s, tokens[e.Barber], e)
					atomic.AddInt64(&submitted, 1)
					if err != nil || again != id {
						atomic.AddInt64(&failed, 1)
						log.Warn(ctx, "idempotent replay diverged", logger.Int("index", i), logger.String("first", id), logger.String("replay", again))
						continue
					}
					atomic.AddInt64(&replayed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range entries {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()
	wg.Wait()

	stats.EntriesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.EntriesAccepted = int(atomic.LoadInt64(&accepted))
	stats.EntriesReplayed = int(atomic.LoadInt64(&replayed))
	stats.EntriesFailed = int(atomic.LoadInt64(&failed))
	log.Info(ctx, "entry submission completed",
		logger.Int("accepted", stats.EntriesAccepted),
		logger.Int("replayed", stats.EntriesReplayed),
		logger.Int("failed", stats.EntriesFailed))
}

func submitEntry(ctx context.Context, c *apiClient, s shop, token string, e plannedEntry) (string, error) {
	var out idOnly
	var err error
	if e.Sale {
		err = c.do(ctx, http.MethodPost, "/api/entries/sales", token, map[string]any{
			"productId":  s.products[e.Product],
			"quantity":   e.Quantity,
			"clientName": e.Client,
			"date":       e.Date.Format(time.RFC3339),
		}, &out, "Idempotency-Key", e.Key)
	} else {
		body := map[string]any{
			"clientName": e.Client,
			"date":       e.Date.Format(time.RFC3339),
		}
		if e.Service >= 0 {
			body["serviceId"] = s.services[e.Service]
		}
		extras := make([]string, 0, len(e.Extras))
		for _, x := range e.Extras {
			extras = append(extras, s.extras[x])
		}
		body["extraIds"] = extras
		err = c.do(ctx, http.MethodPost, "/api/entries/services", token, body, &out, "Idempotency-Key", e.Key)
	}
	return out.ID, err
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, entriesPerSecond float64
	if stats.EntriesGenerated > 0 {
		successRate = float64(stats.EntriesAccepted) / float64(stats.EntriesGenerated) * percentageMultiplier
	}
	if stats.Duration > 0 {
		entriesPerSecond = float64(stats.EntriesSubmitted) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("barbers", stats.BarbersReady),
		logger.Int("entriesGenerated", stats.EntriesGenerated),
		logger.Int("entriesSubmitted", stats.EntriesSubmitted),
		logger.Int("entriesAccepted", stats.EntriesAccepted),
		logger.Int("entriesReplayed", stats.EntriesReplayed),
		logger.Int("entriesFailed", stats.EntriesFailed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("entriesPerSecond", entriesPerSecond))
}
