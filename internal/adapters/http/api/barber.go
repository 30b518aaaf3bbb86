package api

import (
	"context"
	"net/http"
	"time"

	service "github.com/okian/barberbook/internal/app"
	"github.com/okian/barberbook/internal/domain/model"
	"github.com/shopspring/decimal"
)

// BarberDependencies defines the signed-in barber's own screens.
type BarberDependencies interface {
	Dashboard(ctx context.Context, q service.DashboardQuery) (service.BarberDashboard, error)
	Profile(ctx context.Context) (service.BarberProfile, error)
	UpdateProfile(ctx context.Context, u service.ProfileUpdate) (model.Barber, error)
	MonthlyRevenue(ctx context.Context) (map[string]decimal.Decimal, error)
	Location() *time.Location
}

// BarberHandler serves the barber dashboard and profile.
type BarberHandler struct {
	deps BarberDependencies
}

// NewBarberHandler creates a new barber handler.
func NewBarberHandler(deps BarberDependencies) *BarberHandler {
	return &BarberHandler{deps: deps}
}

// HandleDashboard handles GET /api/me/dashboard?from=&to=. The range only
// drives the weekday chart.
func (h *BarberHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	loc := h.deps.Location()
	from, err := timeParam(r, "from", loc)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	to, err := timeParam(r, "to", loc)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	d, err := h.deps.Dashboard(r.Context(), service.DashboardQuery{From: from, To: to})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleGetProfile handles GET /api/me/profile.
func (h *BarberHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Profile(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleUpdateProfile handles PATCH /api/me/profile.
func (h *BarberHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req service.ProfileUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	b, err := h.deps.UpdateProfile(r.Context(), req)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// HandleMonthlyRevenue handles GET /api/me/revenue.
func (h *BarberHandler) HandleMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.deps.MonthlyRevenue(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}
