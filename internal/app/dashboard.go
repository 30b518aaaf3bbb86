package service

import (
	"context"
	"time"

	"github.com/okian/barberbook/internal/domain/aggregate"
	"github.com/okian/barberbook/internal/domain/model"
	"github.com/shopspring/decimal"
)

const (
	recentEntries = 5
	weekDays      = 7
)

// DashboardQuery picks the weekday chart range. A zero range means the last
// seven days.
type DashboardQuery struct {
	From time.Time
	To   time.Time
}

// BarberDashboard is the signed-in barber's home screen.
type BarberDashboard struct {
	Barber          string                  `json:"barber"`
	Today           aggregate.Totals        `json:"today"`
	LastWeek        aggregate.Totals        `json:"lastWeek"`
	Weekday         []aggregate.DayRevenue  `json:"weekday"`
	Recent          []model.ProductionEvent `json:"recent"`
	TotalCommission decimal.Decimal         `json:"totalCommission"`
	Rates           aggregate.Rates         `json:"rates"`
}

// Dashboard assembles the barber dashboard.
func (s *Service) Dashboard(ctx context.Context, q DashboardQuery) (BarberDashboard, error) {
	defer observe("dashboard", time.Now())
	who, err := s.caller(ctx)
	if err != nil {
		return BarberDashboard{}, err
	}
	events, err := s.loadEvents(ctx, who)
	if err != nil {
		return BarberDashboard{}, err
	}

	e := s.currentEngine()
	now := s.now()
	chart := aggregate.LastDays(now, weekDays)
	if !q.From.IsZero() || !q.To.IsZero() {
		to := q.To
		if to.IsZero() {
			to = now
		}
		chart = aggregate.Between(q.From, to)
	}

	return BarberDashboard{
		Barber:          who,
		Today:           e.Summarize(events, who, aggregate.Today(now)),
		LastWeek:        e.Summarize(events, who, aggregate.LastDays(now, weekDays)),
		Weekday:         e.WeekdayRevenue(events, who, chart),
		Recent:          e.Recent(events, who, recentEntries),
		TotalCommission: e.TotalCommission(events, who, model.AnyMonth),
		Rates:           e.Rates(),
	}, nil
}

// ManagerOverview is the manager's home screen. Weekday charts the whole
// shop's gross for the chosen month.
type ManagerOverview struct {
	Month           string                 `json:"month,omitempty"`
	TodayRevenue    decimal.Decimal        `json:"todayRevenue"`
	TodayEntries    int                    `json:"todayEntries"`
	MonthRevenue    decimal.Decimal        `json:"monthRevenue"`
	TotalCommission decimal.Decimal        `json:"totalCommission"`
	ActiveBarbers   int                    `json:"activeBarbers"`
	TotalBalance    decimal.Decimal        `json:"totalBalance"`
	TotalStock      int                    `json:"totalStock"`
	LowStock        []model.Product        `json:"lowStock"`
	LowStockCount   int                    `json:"lowStockCount"`
	Weekday         []aggregate.DayRevenue `json:"weekday"`
	Leaderboard     []aggregate.Standing   `json:"leaderboard"`
	Rates           aggregate.Rates        `json:"rates"`
}

// Overview assembles the manager overview for month; AnyMonth covers all
// time.
func (s *Service) Overview(ctx context.Context, month model.Month) (ManagerOverview, error) {
	defer observe("overview", time.Now())
	if err := s.requireManager(ctx); err != nil {
		return ManagerOverview{}, err
	}
	events, err := s.loadEvents(ctx, aggregate.AllBarbers)
	if err != nil {
		return ManagerOverview{}, err
	}
	products, err := s.listProducts(ctx)
	if err != nil {
		return ManagerOverview{}, err
	}
	barbers, err := s.listBarbers(ctx)
	if err != nil {
		return ManagerOverview{}, err
	}

	e := s.currentEngine()
	today := e.Summarize(events, aggregate.AllBarbers, aggregate.Today(s.now()))
	out := ManagerOverview{
		Month:           month.String(),
		TodayRevenue:    today.Revenue,
		TodayEntries:    today.Count,
		MonthRevenue:    e.TotalRevenue(events, aggregate.AllBarbers, month),
		TotalCommission: e.TotalCommission(events, aggregate.AllBarbers, month),
		ActiveBarbers:   e.ActiveBarbers(events),
		TotalBalance:    decimal.Zero,
		LowStock:        []model.Product{},
		Weekday:         e.WeekdayRevenue(events, aggregate.AllBarbers, aggregate.InMonth(month)),
		Leaderboard:     e.Leaderboard(events, month),
		Rates:           e.Rates(),
	}
	for _, p := range products {
		out.TotalStock += p.Stock
		if p.Stock < s.lowStock {
			out.LowStock = append(out.LowStock, p)
		}
	}
	out.LowStockCount = len(out.LowStock)
	for _, b := range barbers {
		out.TotalBalance = out.TotalBalance.Add(b.Balance)
	}
	return out, nil
}

// Leaderboard ranks every barber by revenue within month.
func (s *Service) Leaderboard(ctx context.Context, month model.Month) ([]aggregate.Standing, error) {
	defer observe("leaderboard", time.Now())
	if _, err := s.caller(ctx); err != nil {
		return nil, err
	}
	events, err := s.loadEvents(ctx, aggregate.AllBarbers)
	if err != nil {
		return nil, err
	}
	return s.currentEngine().Leaderboard(events, month), nil
}

// MonthlyRevenue returns the signed-in barber's revenue per "YYYY-MM".
func (s *Service) MonthlyRevenue(ctx context.Context) (map[string]decimal.Decimal, error) {
	who, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.loadEvents(ctx, who)
	if err != nil {
		return nil, err
	}
	return s.currentEngine().MonthlyRevenueBuckets(events, who), nil
}
