// Package report renders the shop report as a PDF.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/okian/barberbook/internal/domain/model"
	"github.com/okian/barberbook/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Section selects a part of the report.
type Section string

// Report sections.
const (
	SectionProduction Section = "production"
	SectionProducts   Section = "products"
	SectionServices   Section = "services"
	SectionBarbers    Section = "barbers"
)

// AllSections lists every section in print order.
func AllSections() []Section {
	return []Section{SectionProduction, SectionProducts, SectionServices, SectionBarbers}
}

// ParseSections reads a comma separated list. Blank or "all" selects every
// section.
func ParseSections(raw string) ([]Section, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "all" {
		return AllSections(), nil
	}
	seen := make(map[Section]bool)
	var out []Section
	for _, part := range strings.Split(raw, ",") {
		s := Section(strings.ToLower(strings.TrimSpace(part)))
		switch s {
		case SectionProduction, SectionProducts, SectionServices, SectionBarbers:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownSection, part)
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out, nil
}

// ProductionRow is one printed production line.
type ProductionRow struct {
	Event      model.ProductionEvent
	Commission decimal.Decimal
}

// Data is everything a report can print.
type Data struct {
	Title       string
	GeneratedAt time.Time
	Location    *time.Location
	Production  []ProductionRow
	Products    []model.Product
	Services    []model.CatalogItem
	Extras      []model.CatalogItem
	Barbers     []model.Barber
}

const (
	pageMargin = 12.0
	rowHeight  = 6.0
)

type renderer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	loc *time.Location
	w   float64
}

// Render writes the PDF for the chosen sections to w.
func Render(w io.Writer, data Data, sections []Section) error {
	if len(sections) == 0 {
		sections = AllSections()
	}
	loc := data.Location
	if loc == nil {
		loc = time.UTC
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	if !data.GeneratedAt.IsZero() {
		pdf.SetCreationDate(data.GeneratedAt)
	}
	pdf.SetTitle(data.Title, true)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	r := &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), loc: loc, w: pageW - 2*pageMargin}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(r.w, 9, r.tr(data.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(r.w, 5, r.tr("Gerado em "+Date(data.GeneratedAt, loc)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, s := range sections {
		switch s {
		case SectionProduction:
			r.production(data.Production)
		case SectionProducts:
			r.products(data.Products)
		case SectionServices:
			r.catalog("Serviços", data.Services)
			r.catalog("Serviços extra", data.Extras)
		case SectionBarbers:
			r.barbers(data.Barbers)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownSection, s)
		}
		metrics.RecordReportGenerated(string(s))
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	return nil
}

func (r *renderer) heading(title string) {
	r.pdf.Ln(2)
	r.pdf.SetFont("Helvetica", "B", 12)
	r.pdf.CellFormat(r.w, 8, r.tr(title), "B", 1, "L", false, 0, "")
	r.pdf.Ln(1)
}

// table prints a header row then rows; widths are fractions of the page.
func (r *renderer) table(widths []float64, header []string, rows [][]string, aligns string) {
	r.pdf.SetFont("Helvetica", "B", 8)
	r.pdf.SetFillColor(235, 235, 235)
	for i, h := range header {
		r.pdf.CellFormat(r.w*widths[i], rowHeight, r.tr(h), "1", 0, string(aligns[i]), true, 0, "")
	}
	r.pdf.Ln(-1)

	r.pdf.SetFont("Helvetica", "", 8)
	for _, row := range rows {
		for i, cell := range row {
			r.pdf.CellFormat(r.w*widths[i], rowHeight, r.tr(cell), "1", 0, string(aligns[i]), false, 0, "")
		}
		r.pdf.Ln(-1)
	}
}

func (r *renderer) total(label, value string) {
	r.pdf.SetFont("Helvetica", "B", 9)
	r.pdf.CellFormat(r.w*0.75, rowHeight, r.tr(label), "", 0, "R", false, 0, "")
	r.pdf.CellFormat(r.w*0.25, rowHeight, r.tr(value), "", 1, "R", false, 0, "")
}

func kindLabel(k model.Kind) string {
	if k == model.KindProductSale {
		return "Produto"
	}
	return "Serviço"
}

func (r *renderer) production(rows []ProductionRow) {
	r.heading("Produção")
	gross, commission := decimal.Zero, decimal.Zero
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		ev := row.Event
		gross = gross.Add(ev.Gross)
		commission = commission.Add(row.Commission)
		cells = append(cells, []string{
			Date(ev.OccurredAt, r.loc), ev.Barber, kindLabel(ev.Kind), ev.Name, ev.ClientName,
			Money(ev.Gross), Money(row.Commission),
		})
	}
	r.table(
		[]float64{0.15, 0.19, 0.09, 0.18, 0.15, 0.12, 0.12},
		[]string{"Data", "Barbeiro", "Tipo", "Item", "Cliente", "Valor", "Comissão"},
		cells, "LLLLLRR",
	)
	r.total("Total faturado", Money(gross))
	r.total("Total comissões", Money(commission))
}

func (r *renderer) products(products []model.Product) {
	r.heading("Produtos")
	stock := 0
	cells := make([][]string, 0, len(products))
	for _, p := range products {
		stock += p.Stock
		cells = append(cells, []string{p.Name, Money(p.BasePrice), Number(p.Stock)})
	}
	r.table([]float64{0.6, 0.2, 0.2}, []string{"Produto", "Preço base", "Stock"}, cells, "LRR")
	r.total("Unidades em stock", Number(stock))
}

func (r *renderer) catalog(title string, items []model.CatalogItem) {
	r.heading(title)
	cells := make([][]string, 0, len(items))
	for _, it := range items {
		cells = append(cells, []string{it.Name, Money(it.Price)})
	}
	r.table([]float64{0.75, 0.25}, []string{"Nome", "Preço"}, cells, "LR")
}

func (r *renderer) barbers(barbers []model.Barber) {
	r.heading("Barbeiros")
	balance := decimal.Zero
	cells := make([][]string, 0, len(barbers))
	for _, b := range barbers {
		balance = balance.Add(b.Balance)
		cells = append(cells, []string{b.Name, b.Email, b.Unit, Money(b.Balance)})
	}
	r.table([]float64{0.28, 0.32, 0.2, 0.2}, []string{"Nome", "Email", "Unidade", "Saldo"}, cells, "LLLR")
	r.total("Saldo total", Money(balance))
}
