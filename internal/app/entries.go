package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/barberbook/internal/adapters/repository"
	"github.com/okian/barberbook/internal/domain/model"
	"github.com/okian/barberbook/pkg/logger"
	"github.com/okian/barberbook/pkg/metrics"
	"github.com/shopspring/decimal"
)

// maxExtras caps the add-ons on one service entry.
const maxExtras = 2

// ServiceEntry records a performed service. At least one of ServiceID and
// ExtraIDs is required.
type ServiceEntry struct {
	ServiceID      string    `json:"serviceId"`
	ExtraIDs       []string  `json:"extraIds"`
	ClientName     string    `json:"clientName"`
	Date           time.Time `json:"date"`
	IdempotencyKey string    `json:"-"`
}

// SaleEntry records a product sold over the counter.
type SaleEntry struct {
	ProductID      string    `json:"productId"`
	Quantity       int       `json:"quantity"`
	ClientName     string    `json:"clientName"`
	Date           time.Time `json:"date"`
	IdempotencyKey string    `json:"-"`
}

// RecordService prices a service from the catalogs and stores it for the
// signed-in barber.
func (s *Service) RecordService(ctx context.Context, entry ServiceEntry) (model.ProductionEvent, error) {
	who, err := s.caller(ctx)
	if err != nil {
		return model.ProductionEvent{}, err
	}
	if strings.TrimSpace(entry.ServiceID) == "" && len(entry.ExtraIDs) == 0 {
		return model.ProductionEvent{}, fmt.Errorf("%w: a service or an extra is required", ErrInvalidInput)
	}
	if len(entry.ExtraIDs) > maxExtras {
		return model.ProductionEvent{}, fmt.Errorf("%w: at most %d extras", ErrInvalidInput, maxExtras)
	}

	ev := model.ProductionEvent{
		Barber:     who,
		Kind:       model.KindService,
		ClientName: strings.TrimSpace(entry.ClientName),
		Name:       "Unknown Service",
		OccurredAt: s.entryTime(entry.Date),
		Gross:      decimal.Zero,
	}
	if id := strings.TrimSpace(entry.ServiceID); id != "" {
		item, err := s.catalogItem(ctx, model.CollectionServices, id)
		if err != nil {
			return model.ProductionEvent{}, err
		}
		ev.Name = item.Name
		ev.Gross = item.Price
	}
	for _, id := range entry.ExtraIDs {
		item, err := s.catalogItem(ctx, model.CollectionExtraServices, strings.TrimSpace(id))
		if err != nil {
			return model.ProductionEvent{}, err
		}
		ev.Extras = append(ev.Extras, item.Name)
		ev.Gross = ev.Gross.Add(item.Price)
	}
	return s.persist(ctx, who, entry.IdempotencyKey, ev, nil)
}

// RecordProductSale prices a sale from the inventory, stores it and takes the
// quantity out of stock.
func (s *Service) RecordProductSale(ctx context.Context, entry SaleEntry) (model.ProductionEvent, error) {
	who, err := s.caller(ctx)
	if err != nil {
		return model.ProductionEvent{}, err
	}
	if entry.Quantity < 1 {
		return model.ProductionEvent{}, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}

	s.stockMu.Lock()
	defer s.stockMu.Unlock()

	rec, err := s.store.Get(ctx, model.CollectionProducts, strings.TrimSpace(entry.ProductID))
	if err != nil {
		return model.ProductionEvent{}, storeErr(err)
	}
	product := model.DecodeProduct(rec.ID, rec.Data)
	if product.Stock < entry.Quantity {
		return model.ProductionEvent{}, fmt.Errorf("%w: %s has %d", ErrOutOfStock, product.Name, product.Stock)
	}

	rates := s.currentEngine().Rates()
	total := product.BasePrice.Mul(decimal.NewFromInt(int64(entry.Quantity)))
	net := total.Div(decimal.NewFromInt(1).Add(rates.VATPercent.Div(decimal.NewFromInt(100))))

	ev := model.ProductionEvent{
		Barber:     who,
		Kind:       model.KindProductSale,
		ClientName: strings.TrimSpace(entry.ClientName),
		Name:       product.Name,
		OccurredAt: s.entryTime(entry.Date),
		Gross:      total,
		ProductID:  product.ID,
		Quantity:   entry.Quantity,
		BasePrice:  product.BasePrice,
		VATAmount:  total.Sub(net).Round(2),
	}
	return s.persist(ctx, who, entry.IdempotencyKey, ev, func(ctx context.Context) error {
		return s.store.Update(ctx, model.CollectionProducts, product.ID, map[string]any{
			model.FieldStock: product.Stock - entry.Quantity,
		})
	})
}

// persist writes one event once per idempotency key, runs after on success
// and schedules an achievement refresh. When after fails the event is removed
// and the key released, so a retry starts over. Commission is never stored
// for new entries; the returned event carries it at the current rates.
func (s *Service) persist(ctx context.Context, who, key string, ev model.ProductionEvent, after func(context.Context) error) (model.ProductionEvent, error) {
	dedupeKey := ""
	if key = strings.TrimSpace(key); key != "" {
		dedupeKey = who + "|" + key
		if id, seen := s.deduper.Claim(ctx, dedupeKey); seen {
			metrics.RecordEntryDuplicate()
			if id == "" {
				return model.ProductionEvent{}, ErrDuplicateEntry
			}
			s.logger.Debug(ctx, "duplicate entry", logger.String("barber", who), logger.String("id", id))
			stored, err := s.getEvent(ctx, id)
			if err != nil {
				return model.ProductionEvent{}, err
			}
			return s.withCommission(stored), nil
		}
	}

	id, err := s.store.Insert(ctx, model.CollectionProduction, model.EncodeEvent(ev))
	if err != nil {
		if dedupeKey != "" {
			s.deduper.Release(ctx, dedupeKey)
		}
		return model.ProductionEvent{}, fmt.Errorf("store entry: %w", err)
	}
	ev.ID = id

	if after != nil {
		if err := after(ctx); err != nil {
			s.logger.Error(ctx, "entry follow-up failed, rolling back", logger.String("id", id), logger.Error(err))
			if derr := s.store.Delete(ctx, model.CollectionProduction, id); derr != nil {
				s.logger.Error(ctx, "rollback failed", logger.String("id", id), logger.Error(derr))
			}
			if dedupeKey != "" {
				s.deduper.Release(ctx, dedupeKey)
			}
			return model.ProductionEvent{}, fmt.Errorf("entry follow-up: %w", err)
		}
	}
	if dedupeKey != "" {
		s.deduper.Bind(ctx, dedupeKey, id)
	}

	metrics.RecordEntry(string(ev.Kind))
	s.logger.Info(ctx, "entry recorded",
		logger.String("id", id),
		logger.String("barber", who),
		logger.String("kind", string(ev.Kind)),
		logger.String("gross", ev.Gross.StringFixed(2)),
	)
	if err := s.ScheduleAchievements(ctx, who); err != nil && !errors.Is(err, ErrNotStarted) {
		s.logger.Warn(ctx, "achievement refresh not scheduled", logger.String("barber", who), logger.Error(err))
	}
	return s.withCommission(ev), nil
}

// withCommission fills ev.Commission from the engine.
func (s *Service) withCommission(ev model.ProductionEvent) model.ProductionEvent {
	c := s.currentEngine().CommissionFor(ev)
	ev.Commission = &c
	return ev
}

// DeleteEvent removes an entry. Barbers may delete their own entries,
// managers any entry.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	who, err := s.caller(ctx)
	if err != nil {
		return err
	}
	rec, err := s.store.Get(ctx, model.CollectionProduction, id)
	if err != nil {
		return storeErr(err)
	}
	owner := model.NormalizeEmail(model.Text(rec.Data[model.FieldBarber]))
	if owner != who && !isManager(ctx) {
		return ErrForbidden
	}
	if err := s.store.Delete(ctx, model.CollectionProduction, id); err != nil {
		return storeErr(err)
	}
	metrics.RecordEntryDeleted()
	s.logger.Info(ctx, "entry deleted", logger.String("id", id), logger.String("by", who))
	if owner != "" {
		if err := s.ScheduleAchievements(ctx, owner); err != nil && !errors.Is(err, ErrNotStarted) {
			s.logger.Warn(ctx, "achievement refresh not scheduled", logger.String("barber", owner), logger.Error(err))
		}
	}
	return nil
}

func (s *Service) getEvent(ctx context.Context, id string) (model.ProductionEvent, error) {
	rec, err := s.store.Get(ctx, model.CollectionProduction, id)
	if err != nil {
		return model.ProductionEvent{}, storeErr(err)
	}
	return model.DecodeEvent(rec.ID, rec.Data, s.loc)
}

func (s *Service) catalogItem(ctx context.Context, collection, id string) (model.CatalogItem, error) {
	if id == "" {
		return model.CatalogItem{}, fmt.Errorf("%w: empty catalog id", ErrInvalidInput)
	}
	rec, err := s.store.Get(ctx, collection, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.CatalogItem{}, fmt.Errorf("%w: %s %s", ErrNotFound, collection, id)
	}
	if err != nil {
		return model.CatalogItem{}, err
	}
	return model.DecodeCatalogItem(rec.ID, rec.Data), nil
}

func (s *Service) entryTime(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}
