// Package model contains the domain types shared between layers.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags a production event.
type Kind string

// Event kinds.
const (
	KindService     Kind = "service"
	KindProductSale Kind = "productSale"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindService || k == KindProductSale
}

// ProductSaleSentinel is the service name legacy records use to mark a product sale.
const ProductSaleSentinel = "Product Sale"

// ProductionEvent is one unit of recorded work: a service performed or a
// product sold by a barber.
type ProductionEvent struct {
	ID         string           `json:"id"`
	Barber     string           `json:"barber"`
	Kind       Kind             `json:"kind"`
	ClientName string           `json:"clientName,omitempty"`
	Name       string           `json:"name,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
	Gross      decimal.Decimal  `json:"gross"`
	Commission *decimal.Decimal `json:"commission,omitempty"`

	// Product sales only.
	ProductID string          `json:"productId,omitempty"`
	Quantity  int             `json:"quantity,omitempty"`
	BasePrice decimal.Decimal `json:"basePrice,omitempty"`
	VATAmount decimal.Decimal `json:"vatAmount,omitempty"`

	// Services only: names of the add-ons folded into Gross.
	Extras []string `json:"extras,omitempty"`
}

// IsService reports whether e is a performed service.
func (e ProductionEvent) IsService() bool { return e.Kind == KindService }

// IsProductSale reports whether e is a product sale.
func (e ProductionEvent) IsProductSale() bool { return e.Kind == KindProductSale }
