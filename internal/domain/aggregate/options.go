package aggregate

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rates are the commission percentages per event kind and the VAT percentage
// included in product prices.
type Rates struct {
	ServicePercent decimal.Decimal `json:"servicePercent"`
	ProductPercent decimal.Decimal `json:"productPercent"`
	VATPercent     decimal.Decimal `json:"vatPercent"`
}

// DefaultRates are the shop's standing rates: 40% on services, 20% on the
// pre-tax value of product sales, 23% VAT.
func DefaultRates() Rates {
	return Rates{
		ServicePercent: decimal.NewFromInt(40),
		ProductPercent: decimal.NewFromInt(20),
		VATPercent:     decimal.NewFromInt(23),
	}
}

// RatesFromPercent builds Rates from plain percentages, e.g. from config.
func RatesFromPercent(service, product, vat float64) Rates {
	return Rates{
		ServicePercent: decimal.NewFromFloat(service),
		ProductPercent: decimal.NewFromFloat(product),
		VATPercent:     decimal.NewFromFloat(vat),
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithRates sets the commission and VAT rates.
func WithRates(r Rates) Option {
	return func(e *Engine) {
		e.rates = r
	}
}

// WithLocation sets the zone whose calendar defines months and days.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}
