package seed

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// verifyLeaderboard checks that every seeded barber's revenue grew by exactly
// the gross of the entries submitted for them.
func verifyLeaderboard(before, after []standing, emails []string, expected map[int]decimal.Decimal) error {
	prev := revenueByBarber(before)
	next := revenueByBarber(after)

	var problems []string
	for i, email := range emails {
		want := expected[i]
		got := next[email].Sub(prev[email])
		if !got.Equal(want) {
			problems = append(problems, fmt.Sprintf("%s: expected +%s, got +%s", email, want.StringFixed(2), got.StringFixed(2)))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrMismatch, strings.Join(problems, "; "))
	}
	return nil
}

func revenueByBarber(rows []standing) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		out[r.Barber] = r.Revenue
	}
	return out
}
