package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.EuropeanPortuguese)
	spaces  = strings.NewReplacer("\u202f", " ", "\u00a0", " ")
)

// Money formats an amount the way the shop prints prices, e.g. "12,50 €".
func Money(d decimal.Decimal) string {
	s := printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
	// core PDF fonts have no narrow no-break space
	s = spaces.Replace(s)
	return s + " €"
}

// Number formats an integer with the shop's grouping.
func Number(n int) string {
	return spaces.Replace(printer.Sprintf("%d", n))
}

// Date formats t as dd/mm/yyyy hh:mm in loc.
func Date(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(loc).Format("02/01/2006 15:04")
}
