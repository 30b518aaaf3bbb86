package aggregate

import (
	"sort"
	"time"

	"github.com/okian/barberbook/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Totals summarizes a slice of events.
type Totals struct {
	Count      int             `json:"count"`
	Services   int             `json:"services"`
	Products   int             `json:"products"`
	Revenue    decimal.Decimal `json:"revenue"`
	Commission decimal.Decimal `json:"commission"`
}

// Summarize totals the identity's events inside w.
func (e *Engine) Summarize(events []model.ProductionEvent, identity string, w Window) Totals {
	t := Totals{Revenue: decimal.Zero, Commission: decimal.Zero}
	for _, ev := range events {
		if !e.matches(ev, identity, model.AnyMonth) || !e.inWindow(w, ev.OccurredAt) {
			continue
		}
		t.Count++
		switch ev.Kind {
		case model.KindService:
			t.Services++
		case model.KindProductSale:
			t.Products++
		}
		t.Revenue = t.Revenue.Add(ev.Gross)
		t.Commission = t.Commission.Add(e.CommissionFor(ev))
	}
	return t
}

// DayRevenue is one bar of the weekday chart.
type DayRevenue struct {
	Weekday time.Weekday    `json:"weekday"`
	Label   string          `json:"label"`
	Revenue decimal.Decimal `json:"revenue"`
}

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

var weekdayLabels = map[time.Weekday]string{
	time.Monday:    "Seg",
	time.Tuesday:   "Ter",
	time.Wednesday: "Qua",
	time.Thursday:  "Qui",
	time.Friday:    "Sex",
	time.Saturday:  "Sáb",
	time.Sunday:    "Dom",
}

// WeekdayRevenue sums revenue per weekday inside w, Monday first. All seven
// days are always present.
func (e *Engine) WeekdayRevenue(events []model.ProductionEvent, identity string, w Window) []DayRevenue {
	sums := make(map[time.Weekday]decimal.Decimal, 7)
	for _, ev := range events {
		if !e.matches(ev, identity, model.AnyMonth) || !e.inWindow(w, ev.OccurredAt) {
			continue
		}
		day := ev.OccurredAt.In(e.loc).Weekday()
		sums[day] = sums[day].Add(ev.Gross)
	}
	out := make([]DayRevenue, 0, len(weekdayOrder))
	for _, d := range weekdayOrder {
		out = append(out, DayRevenue{Weekday: d, Label: weekdayLabels[d], Revenue: sums[d]})
	}
	return out
}

// Recent returns up to n of the identity's events, newest first.
func (e *Engine) Recent(events []model.ProductionEvent, identity string, n int) []model.ProductionEvent {
	out := make([]model.ProductionEvent, 0, len(events))
	for _, ev := range events {
		if e.matches(ev, identity, model.AnyMonth) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID < out[j].ID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ActiveBarbers counts distinct barbers with at least one event.
func (e *Engine) ActiveBarbers(events []model.ProductionEvent) int {
	seen := make(map[string]struct{})
	for _, ev := range events {
		if ev.Barber != "" {
			seen[ev.Barber] = struct{}{}
		}
	}
	return len(seen)
}

// Standing is one row of the shop leaderboard.
type Standing struct {
	Rank       int             `json:"rank"`
	Barber     string          `json:"barber"`
	Services   int             `json:"services"`
	Products   int             `json:"products"`
	Revenue    decimal.Decimal `json:"revenue"`
	Commission decimal.Decimal `json:"commission"`
	Tier       Tier            `json:"tier"`
}

// Leaderboard ranks barbers by revenue within month, highest first. Ties are
// ordered by identity.
func (e *Engine) Leaderboard(events []model.ProductionEvent, month model.Month) []Standing {
	byBarber := make(map[string]*Standing)
	for _, ev := range events {
		if ev.Barber == "" || !e.matches(ev, AllBarbers, month) {
			continue
		}
		s, ok := byBarber[ev.Barber]
		if !ok {
			s = &Standing{Barber: ev.Barber, Revenue: decimal.Zero, Commission: decimal.Zero}
			byBarber[ev.Barber] = s
		}
		switch ev.Kind {
		case model.KindService:
			s.Services++
		case model.KindProductSale:
			s.Products++
		}
		s.Revenue = s.Revenue.Add(ev.Gross)
		s.Commission = s.Commission.Add(e.CommissionFor(ev))
	}

	out := make([]Standing, 0, len(byBarber))
	for _, s := range byBarber {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Barber < out[j].Barber
	})
	for i := range out {
		out[i].Rank = i + 1
		out[i].Tier = RankingTier(out[i].Revenue)
	}
	return out
}

// ProfileSummary is everything the profile screen shows for one barber.
type ProfileSummary struct {
	Barber          string                     `json:"barber"`
	Month           string                     `json:"month"`
	Services        int                        `json:"services"`
	Products        int                        `json:"products"`
	Clients         int                        `json:"clients"`
	TotalRevenue    decimal.Decimal            `json:"totalRevenue"`
	MonthRevenue    decimal.Decimal            `json:"monthRevenue"`
	TotalCommission decimal.Decimal            `json:"totalCommission"`
	MonthCommission decimal.Decimal            `json:"monthCommission"`
	MonthlyRevenue  map[string]decimal.Decimal `json:"monthlyRevenue"`
	PeakMonth       string                     `json:"peakMonth,omitempty"`
	PeakRevenue     decimal.Decimal            `json:"peakRevenue"`
	Tier            Tier                       `json:"tier"`
	Achievements    []string                   `json:"achievements"`
	AverageMinutes  float64                    `json:"averageMinutes"`
}

// Profile assembles a ProfileSummary. The ranking tier follows the current
// month's revenue; achievements follow the best month ever.
func (e *Engine) Profile(events []model.ProductionEvent, identity string, now time.Time) ProfileSummary {
	month := model.MonthOf(now, e.loc)
	buckets := e.MonthlyRevenueBuckets(events, identity)
	peakMonth, peak, _ := PeakMonth(buckets)
	monthRevenue := e.TotalRevenue(events, identity, month)

	return ProfileSummary{
		Barber:          identity,
		Month:           month.String(),
		Services:        e.CountByKind(events, identity, model.KindService, model.AnyMonth),
		Products:        e.CountByKind(events, identity, model.KindProductSale, model.AnyMonth),
		Clients:         e.CountDistinctClients(events, identity, model.AnyMonth),
		TotalRevenue:    e.TotalRevenue(events, identity, model.AnyMonth),
		MonthRevenue:    monthRevenue,
		TotalCommission: e.TotalCommission(events, identity, model.AnyMonth),
		MonthCommission: e.TotalCommission(events, identity, month),
		MonthlyRevenue:  buckets,
		PeakMonth:       peakMonth,
		PeakRevenue:     peak,
		Tier:            RankingTier(monthRevenue),
		Achievements:    AchievementsForPeakMonth(buckets),
		AverageMinutes:  e.AverageInterServiceMinutes(events, identity, month),
	}
}
