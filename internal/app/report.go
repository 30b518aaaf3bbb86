package service

import (
	"context"
	"io"
	"time"

	"github.com/okian/barberbook/internal/adapters/report"
	"github.com/okian/barberbook/internal/domain/aggregate"
	"github.com/okian/barberbook/internal/domain/model"
	"github.com/okian/barberbook/pkg/logger"
)

// ExportReport writes the shop report for month as a PDF. AnyMonth prints
// the whole production log.
func (s *Service) ExportReport(ctx context.Context, w io.Writer, sections []report.Section, month model.Month) error {
	defer observe("report", time.Now())
	if err := s.requireManager(ctx); err != nil {
		return err
	}

	events, err := s.loadEvents(ctx, aggregate.AllBarbers)
	if err != nil {
		return err
	}
	products, err := s.listProducts(ctx)
	if err != nil {
		return err
	}
	services, err := s.listCatalog(ctx, CatalogServices)
	if err != nil {
		return err
	}
	extras, err := s.listCatalog(ctx, CatalogExtras)
	if err != nil {
		return err
	}
	barbers, err := s.listBarbers(ctx)
	if err != nil {
		return err
	}

	e := s.currentEngine()
	rows := make([]report.ProductionRow, 0, len(events))
	for _, ev := range e.Recent(events, aggregate.AllBarbers, -1) {
		if month.Contains(ev.OccurredAt, s.loc) {
			rows = append(rows, report.ProductionRow{Event: ev, Commission: e.CommissionFor(ev)})
		}
	}

	title := s.reportTitle
	if !month.IsAny() {
		title += " " + month.String()
	}
	if err := report.Render(w, report.Data{
		Title:       title,
		GeneratedAt: s.now(),
		Location:    s.loc,
		Production:  rows,
		Products:    products,
		Services:    services,
		Extras:      extras,
		Barbers:     barbers,
	}, sections); err != nil {
		return err
	}
	s.logger.Info(ctx, "report exported",
		logger.Int("rows", len(rows)),
		logger.String("month", month.String()),
	)
	return nil
}
