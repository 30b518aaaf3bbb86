// Package aggregate computes production counts, revenue, commissions,
// monthly buckets and achievement tiers over materialized production events.
//
// Every Engine method is a pure function of its arguments: nothing is cached,
// inputs are never mutated, and the same slice always yields the same result.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/okian/barberbook/internal/domain/model"
	"github.com/shopspring/decimal"
)

// AllBarbers disables the identity filter.
const AllBarbers = ""

// Average gap bounds, in minutes.
const (
	DefaultInterServiceMinutes = 30.0
	minGapMinutes              = 15.0
	maxGapMinutes              = 60.0
)

var hundred = decimal.NewFromInt(100)

// Engine aggregates production events under one set of rates and one calendar.
type Engine struct {
	rates Rates
	loc   *time.Location
}

// New builds an Engine with DefaultRates in UTC unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{
		rates: DefaultRates(),
		loc:   time.UTC,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rates returns the configured rates.
func (e *Engine) Rates() Rates { return e.rates }

// Location returns the calendar zone.
func (e *Engine) Location() *time.Location { return e.loc }

func (e *Engine) matches(ev model.ProductionEvent, identity string, month model.Month) bool {
	if identity != AllBarbers && ev.Barber != identity {
		return false
	}
	return month.Contains(ev.OccurredAt, e.loc)
}

// CountByKind counts the identity's events of kind within month.
func (e *Engine) CountByKind(events []model.ProductionEvent, identity string, kind model.Kind, month model.Month) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind && e.matches(ev, identity, month) {
			n++
		}
	}
	return n
}

// CountDistinctClients counts distinct non-blank client names.
func (e *Engine) CountDistinctClients(events []model.ProductionEvent, identity string, month model.Month) int {
	seen := make(map[string]struct{})
	for _, ev := range events {
		if strings.TrimSpace(ev.ClientName) == "" || !e.matches(ev, identity, month) {
			continue
		}
		seen[ev.ClientName] = struct{}{}
	}
	return len(seen)
}

// TotalRevenue sums gross amounts of both kinds.
func (e *Engine) TotalRevenue(events []model.ProductionEvent, identity string, month model.Month) decimal.Decimal {
	total := decimal.Zero
	for _, ev := range events {
		if e.matches(ev, identity, month) {
			total = total.Add(ev.Gross)
		}
	}
	return total
}

// CommissionFor returns the barber's share of one event. Product sales earn
// the product rate on the amount net of VAT; services use the stored
// commission when there is one, otherwise the service rate on the gross.
func (e *Engine) CommissionFor(ev model.ProductionEvent) decimal.Decimal {
	if ev.Kind == model.KindProductSale {
		net := ev.Gross.Div(decimal.NewFromInt(1).Add(e.rates.VATPercent.Div(hundred)))
		return net.Mul(e.rates.ProductPercent).Div(hundred)
	}
	if ev.Commission != nil {
		return *ev.Commission
	}
	return ev.Gross.Mul(e.rates.ServicePercent).Div(hundred)
}

// TotalCommission sums CommissionFor. Pass AllBarbers for the whole shop.
func (e *Engine) TotalCommission(events []model.ProductionEvent, identity string, month model.Month) decimal.Decimal {
	total := decimal.Zero
	for _, ev := range events {
		if e.matches(ev, identity, month) {
			total = total.Add(e.CommissionFor(ev))
		}
	}
	return total
}

// MonthlyRevenueBuckets groups the identity's revenue by "YYYY-MM". Months
// without events are absent.
func (e *Engine) MonthlyRevenueBuckets(events []model.ProductionEvent, identity string) map[string]decimal.Decimal {
	buckets := make(map[string]decimal.Decimal)
	for _, ev := range events {
		if !e.matches(ev, identity, model.AnyMonth) {
			continue
		}
		key := model.MonthOf(ev.OccurredAt, e.loc).String()
		buckets[key] = buckets[key].Add(ev.Gross)
	}
	return buckets
}

// AverageInterServiceMinutes averages the gaps between consecutive services,
// each gap clamped to [15, 60] minutes. Fewer than two services yield 30.
func (e *Engine) AverageInterServiceMinutes(events []model.ProductionEvent, identity string, month model.Month) float64 {
	var times []time.Time
	for _, ev := range events {
		if ev.Kind == model.KindService && e.matches(ev, identity, month) {
			times = append(times, ev.OccurredAt)
		}
	}
	if len(times) < 2 {
		return DefaultInterServiceMinutes
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	sum := 0.0
	for i := 1; i < len(times); i++ {
		gap := times[i].Sub(times[i-1]).Minutes()
		sum += min(max(gap, minGapMinutes), maxGapMinutes)
	}
	return sum / float64(len(times)-1)
}
