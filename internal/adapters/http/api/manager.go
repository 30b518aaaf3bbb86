package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/barberbook/internal/adapters/report"
	service "github.com/okian/barberbook/internal/app"
	"github.com/okian/barberbook/internal/domain/aggregate"
	"github.com/okian/barberbook/internal/domain/model"
)

// ManagerDependencies defines the manager area operations.
type ManagerDependencies interface {
	Overview(ctx context.Context, month model.Month) (service.ManagerOverview, error)
	Leaderboard(ctx context.Context, month model.Month) ([]aggregate.Standing, error)
	Barbers(ctx context.Context) ([]model.Barber, error)
	CreateBarber(ctx context.Context, in service.BarberInput) (model.Barber, error)
	UpdateBarber(ctx context.Context, id string, in service.BarberInput) (model.Barber, error)
	Rates() aggregate.Rates
	SetRates(ctx context.Context, u service.RatesUpdate) (aggregate.Rates, error)
	ExportReport(ctx context.Context, w io.Writer, sections []report.Section, month model.Month) error
	Location() *time.Location
}

// ManagerHandler handles the manager area.
type ManagerHandler struct {
	deps ManagerDependencies
	now  func() time.Time
}

// NewManagerHandler creates a new manager handler.
func NewManagerHandler(deps ManagerDependencies, now func() time.Time) *ManagerHandler {
	return &ManagerHandler{deps: deps, now: now}
}

// HandleOverview handles GET /api/manager/overview?month=YYYY-MM.
func (h *ManagerHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r, h.now(), h.deps.Location())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	o, err := h.deps.Overview(r.Context(), month)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// HandleReport handles GET /api/manager/report?sections=a,b&month=YYYY-MM.
// The whole PDF is rendered before anything is written.
func (h *ManagerHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	sections, err := report.ParseSections(r.URL.Query().Get("sections"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	month, err := monthParam(r, h.now(), h.deps.Location())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	var buf bytes.Buffer
	if err := h.deps.ExportReport(r.Context(), &buf, sections, month); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	name := "relatorio"
	if !month.IsAny() {
		name += "-" + month.String()
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandleListBarbers handles GET /api/barbers.
func (h *ManagerHandler) HandleListBarbers(w http.ResponseWriter, r *http.Request) {
	barbers, err := h.deps.Barbers(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, barbers)
}

// HandleCreateBarber handles POST /api/barbers.
func (h *ManagerHandler) HandleCreateBarber(w http.ResponseWriter, r *http.Request) {
	var req service.BarberInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	b, err := h.deps.CreateBarber(r.Context(), req)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// HandleUpdateBarber handles PATCH /api/barbers/{id}.
func (h *ManagerHandler) HandleUpdateBarber(w http.ResponseWriter, r *http.Request) {
	var req service.BarberInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	b, err := h.deps.UpdateBarber(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// HandleGetRates handles GET /api/rates.
func (h *ManagerHandler) HandleGetRates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Rates())
}

// HandleSetRates handles PUT /api/rates.
func (h *ManagerHandler) HandleSetRates(w http.ResponseWriter, r *http.Request) {
	var req service.RatesUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rates, err := h.deps.SetRates(r.Context(), req)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}
