package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Collections of the record store.
const (
	CollectionProduction    = "productionResults"
	CollectionBarbers       = "barbers"
	CollectionProducts      = "products"
	CollectionServices      = "services"
	CollectionExtraServices = "extraservice"
	CollectionUsers         = "users"
)

// Field names of stored documents.
const (
	FieldKind         = "kind"
	FieldBarber       = "barberName" // holds the barber's email
	FieldClientName   = "clientName"
	FieldServiceName  = "serviceName"
	FieldProductName  = "productName"
	FieldProductID    = "productId"
	FieldPrice        = "price"
	FieldTotalPrice   = "totalPrice"
	FieldBasePrice    = "basePrice"
	FieldVATAmount    = "vatAmount"
	FieldCommission   = "commission"
	FieldQuantity     = "quantity"
	FieldDate         = "date"
	FieldExtras       = "extraServices"
	FieldName         = "name"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldUnit         = "unit"
	FieldBalance      = "balance"
	FieldPicture      = "profilePicture"
	FieldAchievements = "achievements"
	FieldStock        = "stock"
	FieldPasswordHash = "passwordHash"
	FieldRole         = "role"
)

const (
	dateOnlyLayout     = "2006-01-02"
	localDateTimeForms = "2006-01-02T15:04:05.999999999"
)

// DecodeEvent turns a stored production document into an event. Monetary
// fields never fail: anything missing or non-numeric reads as zero. The kind
// and the timestamp can fail, and callers exclude such records.
func DecodeEvent(id string, doc map[string]any, loc *time.Location) (ProductionEvent, error) {
	kind, err := decodeKind(doc)
	if err != nil {
		return ProductionEvent{}, err
	}
	at, err := ParseTimestamp(doc[FieldDate], loc)
	if err != nil {
		return ProductionEvent{}, err
	}

	ev := ProductionEvent{
		ID:         id,
		Barber:     Text(doc[FieldBarber]),
		Kind:       kind,
		ClientName: Text(doc[FieldClientName]),
		OccurredAt: at,
		Extras:     Strings(doc[FieldExtras]),
	}

	own, other := FieldPrice, FieldTotalPrice
	ev.Name = Text(doc[FieldServiceName])
	if kind == KindProductSale {
		own, other = FieldTotalPrice, FieldPrice
		ev.Name = Text(doc[FieldProductName])
		ev.ProductID = Text(doc[FieldProductID])
		ev.Quantity = Count(doc[FieldQuantity])
		ev.BasePrice = Amount(doc[FieldBasePrice])
		ev.VATAmount = Amount(doc[FieldVATAmount])
	}
	if v, ok := doc[own]; ok && v != nil {
		ev.Gross = Amount(v)
	} else {
		ev.Gross = Amount(doc[other])
	}

	if c := Amount(doc[FieldCommission]); c.IsPositive() {
		ev.Commission = &c
	}
	return ev, nil
}

// EncodeEvent renders ev as a storable document. Product sales also carry the
// legacy service name so older readers still classify them.
func EncodeEvent(ev ProductionEvent) map[string]any {
	doc := map[string]any{
		FieldKind:       string(ev.Kind),
		FieldBarber:     ev.Barber,
		FieldClientName: ev.ClientName,
		FieldDate:       ev.OccurredAt.Format(time.RFC3339Nano),
	}
	if ev.Commission != nil {
		doc[FieldCommission] = ev.Commission.String()
	}
	switch ev.Kind {
	case KindProductSale:
		doc[FieldServiceName] = ProductSaleSentinel
		doc[FieldProductName] = ev.Name
		doc[FieldProductID] = ev.ProductID
		doc[FieldQuantity] = ev.Quantity
		doc[FieldBasePrice] = ev.BasePrice.String()
		doc[FieldVATAmount] = ev.VATAmount.String()
		doc[FieldTotalPrice] = ev.Gross.String()
	default:
		doc[FieldServiceName] = ev.Name
		doc[FieldPrice] = ev.Gross.String()
		if len(ev.Extras) > 0 {
			doc[FieldExtras] = ev.Extras
		}
	}
	return doc
}

func decodeKind(doc map[string]any) (Kind, error) {
	if raw, ok := doc[FieldKind]; ok && raw != nil {
		k := Kind(strings.TrimSpace(Text(raw)))
		if !k.Valid() {
			return "", fmt.Errorf("%w: %v", ErrUnknownKind, raw)
		}
		return k, nil
	}
	if Text(doc[FieldServiceName]) == ProductSaleSentinel {
		return KindProductSale, nil
	}
	return KindService, nil
}

// ParseTimestamp reads the timestamp shapes found in stored documents.
// Date-only and zone-less values are read as wall clock time in loc.
func ParseTimestamp(v any, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch x := v.(type) {
	case nil:
		return time.Time{}, ErrMissingTimestamp
	case time.Time:
		if x.IsZero() {
			return time.Time{}, ErrMissingTimestamp
		}
		return x, nil
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, ErrMissingTimestamp
		}
		return *x, nil
	case string:
		return parseTimestampString(x, loc)
	case map[string]any:
		// Exported document timestamps: {"seconds": .., "nanoseconds": ..}.
		secs, ok := x["seconds"]
		if !ok {
			secs, ok = x["_seconds"]
		}
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, x)
		}
		nanos := x["nanoseconds"]
		if nanos == nil {
			nanos = x["_nanoseconds"]
		}
		return time.Unix(int64(Count(secs)), int64(Count(nanos))), nil
	}
	d, ok := parseDecimal(v)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, v)
	}
	return time.UnixMilli(d.IntPart()), nil
}

func parseTimestampString(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingTimestamp
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{localDateTimeForms, "2006-01-02T15:04", "2006-01-02 15:04:05", dateOnlyLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// Amount coalesces a stored monetary value to a non-negative decimal.
func Amount(v any) decimal.Decimal {
	d, ok := parseDecimal(v)
	if !ok || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Count coalesces a stored quantity to a non-negative int.
func Count(v any) int {
	d, ok := parseDecimal(v)
	if !ok || d.IsNegative() {
		return 0
	}
	return int(d.IntPart())
}

func parseDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, false
		}
		return *x, true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(x), true
	case float32:
		return parseDecimal(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	}
	return decimal.Zero, false
}

// Text reads a string field; anything else reads as "".
func Text(v any) string {
	s, _ := v.(string)
	return s
}

// Strings reads a list of strings, skipping non-string members.
func Strings(v any) []string {
	switch x := v.(type) {
	case []string:
		return append([]string(nil), x...)
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// DecodeBarber reads a barber profile.
func DecodeBarber(id string, doc map[string]any) Barber {
	return Barber{
		ID:             id,
		Name:           Text(doc[FieldName]),
		Email:          Text(doc[FieldEmail]),
		Phone:          Text(doc[FieldPhone]),
		Unit:           Text(doc[FieldUnit]),
		Balance:        Amount(doc[FieldBalance]),
		ProfilePicture: Text(doc[FieldPicture]),
		Achievements:   Strings(doc[FieldAchievements]),
	}
}

// EncodeBarber renders a barber profile.
func EncodeBarber(b Barber) map[string]any {
	achievements := b.Achievements
	if achievements == nil {
		achievements = []string{}
	}
	return map[string]any{
		FieldName:         b.Name,
		FieldEmail:        b.Email,
		FieldPhone:        b.Phone,
		FieldUnit:         b.Unit,
		FieldBalance:      b.Balance.String(),
		FieldPicture:      b.ProfilePicture,
		FieldAchievements: achievements,
	}
}

// DecodeProduct reads an inventory item.
func DecodeProduct(id string, doc map[string]any) Product {
	return Product{
		ID:        id,
		Name:      Text(doc[FieldName]),
		BasePrice: Amount(doc[FieldBasePrice]),
		Stock:     Count(doc[FieldStock]),
	}
}

// EncodeProduct renders an inventory item.
func EncodeProduct(p Product) map[string]any {
	return map[string]any{
		FieldName:      p.Name,
		FieldBasePrice: p.BasePrice.String(),
		FieldStock:     p.Stock,
	}
}

// DecodeCatalogItem reads a catalog service.
func DecodeCatalogItem(id string, doc map[string]any) CatalogItem {
	return CatalogItem{
		ID:    id,
		Name:  Text(doc[FieldName]),
		Price: Amount(doc[FieldPrice]),
	}
}

// EncodeCatalogItem renders a catalog service.
func EncodeCatalogItem(c CatalogItem) map[string]any {
	return map[string]any{
		FieldName:  c.Name,
		FieldPrice: c.Price.String(),
	}
}

// DecodeUser reads a sign-in account.
func DecodeUser(id string, doc map[string]any) User {
	role := Role(Text(doc[FieldRole]))
	if role == "" {
		role = RoleBarber
	}
	return User{
		ID:           id,
		Email:        Text(doc[FieldEmail]),
		PasswordHash: Text(doc[FieldPasswordHash]),
		Role:         role,
	}
}

// EncodeUser renders a sign-in account.
func EncodeUser(u User) map[string]any {
	return map[string]any{
		FieldEmail:        u.Email,
		FieldPasswordHash: u.PasswordHash,
		FieldRole:         string(u.Role),
	}
}
