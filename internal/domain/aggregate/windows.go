package aggregate

import (
	"math"
	"time"

	"github.com/okian/barberbook/internal/domain/model"
)

type windowKind int

const (
	windowAll windowKind = iota
	windowToday
	windowLastDays
	windowBetween
	windowMonth
)

// Window selects events by time for the dashboard summaries.
type Window struct {
	kind     windowKind
	now      time.Time
	days     int
	from, to time.Time
	month    model.Month
}

// AllTime matches every dated event.
func AllTime() Window { return Window{kind: windowAll} }

// Today matches events on the calendar day of now.
func Today(now time.Time) Window { return Window{kind: windowToday, now: now} }

// LastDays matches events whose distance from now, rounded up to whole days,
// is at most n. The distance is absolute, so near-future entries count too.
func LastDays(now time.Time, n int) Window { return Window{kind: windowLastDays, now: now, days: n} }

// Between matches events in [from, to].
func Between(from, to time.Time) Window { return Window{kind: windowBetween, from: from, to: to} }

// InMonth matches events in the calendar month m; AnyMonth matches all.
func InMonth(m model.Month) Window { return Window{kind: windowMonth, month: m} }

func (e *Engine) inWindow(w Window, t time.Time) bool {
	if t.IsZero() {
		return false
	}
	switch w.kind {
	case windowToday:
		ny, nm, nd := w.now.In(e.loc).Date()
		ty, tm, td := t.In(e.loc).Date()
		return ny == ty && nm == tm && nd == td
	case windowLastDays:
		days := math.Ceil(math.Abs(w.now.Sub(t).Hours()) / 24)
		return days <= float64(w.days)
	case windowBetween:
		return !t.Before(w.from) && !t.After(w.to)
	case windowMonth:
		return w.month.Contains(t, e.loc)
	default:
		return true
	}
}
