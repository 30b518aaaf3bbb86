package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/barberbook/internal/domain/aggregate"
	"github.com/okian/barberbook/internal/domain/model"
	"github.com/okian/barberbook/pkg/logger"
	"github.com/shopspring/decimal"
)

// CatalogKind names one of the two service catalogs.
type CatalogKind string

// Catalogs.
const (
	CatalogServices CatalogKind = model.CollectionServices
	CatalogExtras   CatalogKind = model.CollectionExtraServices
)

func (k CatalogKind) valid() bool { return k == CatalogServices || k == CatalogExtras }

// ProductInput creates or edits a product; nil fields are left alone on edit.
type ProductInput struct {
	Name      *string          `json:"name"`
	BasePrice *decimal.Decimal `json:"basePrice"`
	Stock     *int             `json:"stock"`
}

func (in ProductInput) validate() error {
	switch {
	case in.Name != nil && strings.TrimSpace(*in.Name) == "":
		return fmt.Errorf("%w: product name must not be empty", ErrInvalidInput)
	case in.BasePrice != nil && in.BasePrice.IsNegative():
		return fmt.Errorf("%w: base price must not be negative", ErrInvalidInput)
	case in.Stock != nil && *in.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}
	return nil
}

// Products lists the inventory. Any signed-in barber may read it.
func (s *Service) Products(ctx context.Context) ([]model.Product, error) {
	if _, err := s.caller(ctx); err != nil {
		return nil, err
	}
	return s.listProducts(ctx)
}

// CreateProduct adds an inventory item.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (model.Product, error) {
	if err := s.requireManager(ctx); err != nil {
		return model.Product{}, err
	}
	if in.Name == nil || in.BasePrice == nil {
		return model.Product{}, fmt.Errorf("%w: name and base price are required", ErrInvalidInput)
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}
	p := model.Product{Name: strings.TrimSpace(*in.Name), BasePrice: *in.BasePrice}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	id, err := s.store.Insert(ctx, model.CollectionProducts, model.EncodeProduct(p))
	if err != nil {
		return model.Product{}, err
	}
	p.ID = id
	s.logger.Info(ctx, "product created", logger.String("id", id), logger.String("name", p.Name))
	return p, nil
}

// UpdateProduct edits an inventory item.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (model.Product, error) {
	if err := s.requireManager(ctx); err != nil {
		return model.Product{}, err
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}
	patch := map[string]any{}
	if in.Name != nil {
		patch[model.FieldName] = strings.TrimSpace(*in.Name)
	}
	if in.BasePrice != nil {
		patch[model.FieldBasePrice] = in.BasePrice.String()
	}
	if in.Stock != nil {
		patch[model.FieldStock] = *in.Stock
	}

	s.stockMu.Lock()
	defer s.stockMu.Unlock()
	if err := s.store.Update(ctx, model.CollectionProducts, id, patch); err != nil {
		return model.Product{}, storeErr(err)
	}
	rec, err := s.store.Get(ctx, model.CollectionProducts, id)
	if err != nil {
		return model.Product{}, storeErr(err)
	}
	return model.DecodeProduct(rec.ID, rec.Data), nil
}

// DeleteProduct removes an inventory item. Past sales keep their copy of
// the product name and price.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.requireManager(ctx); err != nil {
		return err
	}
	return storeErr(s.store.Delete(ctx, model.CollectionProducts, id))
}

func (s *Service) listProducts(ctx context.Context) ([]model.Product, error) {
	recs, err := s.store.List(ctx, model.CollectionProducts)
	if err != nil {
		return nil, err
	}
	out := make([]model.Product, 0, len(recs))
	for _, r := range recs {
		out = append(out, model.DecodeProduct(r.ID, r.Data))
	}
	return out, nil
}

// Catalog lists a service catalog.
func (s *Service) Catalog(ctx context.Context, kind CatalogKind) ([]model.CatalogItem, error) {
	if _, err := s.caller(ctx); err != nil {
		return nil, err
	}
	if !kind.valid() {
		return nil, fmt.Errorf("%w: catalog %q", ErrInvalidInput, kind)
	}
	return s.listCatalog(ctx, kind)
}

// CreateCatalogItem adds a priced service to a catalog.
func (s *Service) CreateCatalogItem(ctx context.Context, kind CatalogKind, name string, price decimal.Decimal) (model.CatalogItem, error) {
	if err := s.requireManager(ctx); err != nil {
		return model.CatalogItem{}, err
	}
	name = strings.TrimSpace(name)
	switch {
	case !kind.valid():
		return model.CatalogItem{}, fmt.Errorf("%w: catalog %q", ErrInvalidInput, kind)
	case name == "":
		return model.CatalogItem{}, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	case price.IsNegative():
		return model.CatalogItem{}, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	item := model.CatalogItem{Name: name, Price: price}
	id, err := s.store.Insert(ctx, string(kind), model.EncodeCatalogItem(item))
	if err != nil {
		return model.CatalogItem{}, err
	}
	item.ID = id
	return item, nil
}

// DeleteCatalogItem removes a service from a catalog.
func (s *Service) DeleteCatalogItem(ctx context.Context, kind CatalogKind, id string) error {
	if err := s.requireManager(ctx); err != nil {
		return err
	}
	if !kind.valid() {
		return fmt.Errorf("%w: catalog %q", ErrInvalidInput, kind)
	}
	return storeErr(s.store.Delete(ctx, string(kind), id))
}

func (s *Service) listCatalog(ctx context.Context, kind CatalogKind) ([]model.CatalogItem, error) {
	recs, err := s.store.List(ctx, string(kind))
	if err != nil {
		return nil, err
	}
	out := make([]model.CatalogItem, 0, len(recs))
	for _, r := range recs {
		out = append(out, model.DecodeCatalogItem(r.ID, r.Data))
	}
	return out, nil
}

// Barbers lists every barber profile.
func (s *Service) Barbers(ctx context.Context) ([]model.Barber, error) {
	if err := s.requireManager(ctx); err != nil {
		return nil, err
	}
	return s.listBarbers(ctx)
}

// BarberInput creates or edits a barber profile from the manager area.
type BarberInput struct {
	ProfileUpdate
	Email   string           `json:"email"`
	Balance *decimal.Decimal `json:"balance"`
}

// CreateBarber adds a barber profile without a sign-in account.
func (s *Service) CreateBarber(ctx context.Context, in BarberInput) (model.Barber, error) {
	if err := s.requireManager(ctx); err != nil {
		return model.Barber{}, err
	}
	email := model.NormalizeEmail(in.Email)
	if !strings.Contains(email, "@") {
		return model.Barber{}, fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if _, err := s.findBarber(ctx, email); err == nil {
		return model.Barber{}, ErrEmailTaken
	}
	b := model.Barber{Name: model.DefaultBarberName, Email: email, Balance: decimal.Zero}
	if in.Balance != nil {
		b.Balance = *in.Balance
	}
	data := model.EncodeBarber(b)
	for k, v := range in.patch() {
		data[k] = v
	}
	id, err := s.store.Insert(ctx, model.CollectionBarbers, data)
	if err != nil {
		return model.Barber{}, err
	}
	return model.DecodeBarber(id, data), nil
}

// UpdateBarber edits any barber's profile, including the balance.
func (s *Service) UpdateBarber(ctx context.Context, id string, in BarberInput) (model.Barber, error) {
	if err := s.requireManager(ctx); err != nil {
		return model.Barber{}, err
	}
	patch := in.patch()
	if in.Balance != nil {
		patch[model.FieldBalance] = in.Balance.String()
	}
	if err := s.store.Update(ctx, model.CollectionBarbers, id, patch); err != nil {
		return model.Barber{}, storeErr(err)
	}
	rec, err := s.store.Get(ctx, model.CollectionBarbers, id)
	if err != nil {
		return model.Barber{}, storeErr(err)
	}
	return model.DecodeBarber(rec.ID, rec.Data), nil
}

func (s *Service) listBarbers(ctx context.Context) ([]model.Barber, error) {
	recs, err := s.store.List(ctx, model.CollectionBarbers)
	if err != nil {
		return nil, err
	}
	out := make([]model.Barber, 0, len(recs))
	for _, r := range recs {
		out = append(out, model.DecodeBarber(r.ID, r.Data))
	}
	return out, nil
}

// RatesUpdate changes commission percentages; nil leaves a rate alone.
type RatesUpdate struct {
	ServicePercent *decimal.Decimal `json:"servicePercent"`
	ProductPercent *decimal.Decimal `json:"productPercent"`
}

// Rates returns the rates in force.
func (s *Service) Rates() aggregate.Rates { return s.currentEngine().Rates() }

// SetRates changes the commission rates for every later computation.
func (s *Service) SetRates(ctx context.Context, u RatesUpdate) (aggregate.Rates, error) {
	if err := s.requireManager(ctx); err != nil {
		return aggregate.Rates{}, err
	}
	hundred := decimal.NewFromInt(100)
	for _, p := range []*decimal.Decimal{u.ServicePercent, u.ProductPercent} {
		if p != nil && (p.IsNegative() || p.GreaterThan(hundred)) {
			return aggregate.Rates{}, fmt.Errorf("%w: rates must be within [0, 100]", ErrInvalidInput)
		}
	}

	s.ratesMu.Lock()
	defer s.ratesMu.Unlock()
	r := s.engine.Rates()
	if u.ServicePercent != nil {
		r.ServicePercent = *u.ServicePercent
	}
	if u.ProductPercent != nil {
		r.ProductPercent = *u.ProductPercent
	}
	s.rates = r
	s.engine = aggregate.New(aggregate.WithRates(r), aggregate.WithLocation(s.loc))
	s.logger.Info(ctx, "commission rates changed",
		logger.String("service", r.ServicePercent.String()),
		logger.String("product", r.ProductPercent.String()),
	)
	return r, nil
}
