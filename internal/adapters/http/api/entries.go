package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	service "github.com/okian/barberbook/internal/app"
	"github.com/okian/barberbook/internal/domain/model"
)

// IdempotencyHeader carries the client's retry key for entry submissions.
const IdempotencyHeader = "Idempotency-Key"

// EntryDependencies defines the production entry operations.
type EntryDependencies interface {
	RecordService(ctx context.Context, entry service.ServiceEntry) (model.ProductionEvent, error)
	RecordProductSale(ctx context.Context, entry service.SaleEntry) (model.ProductionEvent, error)
	DeleteEvent(ctx context.Context, id string) error
	Location() *time.Location
}

type serviceEntryRequest struct {
	ServiceID  string   `json:"serviceId"`
	ExtraIDs   []string `json:"extraIds"`
	ClientName string   `json:"clientName"`
	Date       string   `json:"date"`
}

type saleEntryRequest struct {
	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
	ClientName string `json:"clientName"`
	Date       string `json:"date"`
}

// EntriesHandler handles production entry requests.
type EntriesHandler struct {
	deps EntryDependencies
}

// NewEntriesHandler creates a new entries handler.
func NewEntriesHandler(deps EntryDependencies) *EntriesHandler {
	return &EntriesHandler{deps: deps}
}

// HandleRecordService handles POST /api/entries/services.
func (h *EntriesHandler) HandleRecordService(w http.ResponseWriter, r *http.Request) {
	var req serviceEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	date, err := entryDate(req.Date, h.deps.Location())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	ev, err := h.deps.RecordService(r.Context(), service.ServiceEntry{
		ServiceID:      req.ServiceID,
		ExtraIDs:       req.ExtraIDs,
		ClientName:     req.ClientName,
		Date:           date,
		IdempotencyKey: strings.TrimSpace(r.Header.Get(IdempotencyHeader)),
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// HandleRecordSale handles POST /api/entries/sales.
func (h *EntriesHandler) HandleRecordSale(w http.ResponseWriter, r *http.Request) {
	var req saleEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	date, err := entryDate(req.Date, h.deps.Location())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	ev, err := h.deps.RecordProductSale(r.Context(), service.SaleEntry{
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		ClientName:     req.ClientName,
		Date:           date,
		IdempotencyKey: strings.TrimSpace(r.Header.Get(IdempotencyHeader)),
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// HandleDeleteEntry handles DELETE /api/entries/{id}.
func (h *EntriesHandler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
