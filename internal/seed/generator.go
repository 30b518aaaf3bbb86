package seed

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/okian/barberbook/pkg/logger"
	"github.com/shopspring/decimal"
)

const clientPool = 200

// plannedEntry is one entry to submit, with its expected gross.
type plannedEntry struct {
	Barber   int
	Key      string
	Sale     bool
	Service  int // index into shopServices; -1 for extras only
	Extras   []int
	Product  int
	Quantity int
	Client   string
	Date     time.Time
	Gross    decimal.Decimal
}

// randInt returns a uniform int in [0, n) using crypto/rand.
func randInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// generateEntries plans cfg.Entries entries spread over the last cfg.Days
// days before now.
func generateEntries(ctx context.Context, cfg *Config, now time.Time, stats *Stats) ([]plannedEntry, error) {
	logger.Get().Info(ctx, "generating entries", logger.Int("entries", cfg.Entries), logger.Int("days", cfg.Days))

	span := int(time.Duration(cfg.Days) * 24 * time.Hour / time.Second)
	entries := make([]plannedEntry, 0, cfg.Entries)
	for i := 0; i < cfg.Entries; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		e := plannedEntry{
			Barber: randInt(cfg.Barbers),
			Key:    uuid.NewString(),
			Client: fmt.Sprintf("Cliente %03d", randInt(clientPool)+1),
			Date:   now.Add(-time.Duration(randInt(span)) * time.Second),
		}
		if randInt(saleShare) == 0 {
			e.Sale = true
			e.Product = randInt(len(shopProducts))
			e.Quantity = randInt(maxSaleUnits) + 1
			e.Gross = shopProducts[e.Product].BasePrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
		} else {
			fillService(&e)
		}
		entries = append(entries, e)
	}

	stats.EntriesGenerated = len(entries)
	logger.Get().Info(ctx, "generated entries", logger.Int("count", len(entries)))
	return entries, nil
}

func fillService(e *plannedEntry) {
	e.Service = randInt(len(shopServices))
	e.Gross = shopServices[e.Service].Price
	extras := randInt(maxExtras + 1)
	if extras > 0 && randInt(10) == 0 {
		// extras only
		e.Service = -1
		e.Gross = decimal.Zero
	}
	for j := 0; j < extras; j++ {
		x := randInt(len(shopExtras))
		e.Extras = append(e.Extras, x)
		e.Gross = e.Gross.Add(shopExtras[x].Price)
	}
}

// expectedRevenue sums planned gross per barber index.
func expectedRevenue(entries []plannedEntry) map[int]decimal.Decimal {
	out := make(map[int]decimal.Decimal)
	for _, e := range entries {
		out[e.Barber] = out[e.Barber].Add(e.Gross)
	}
	return out
}
