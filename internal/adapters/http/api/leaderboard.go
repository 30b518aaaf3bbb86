package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	service "github.com/okian/barberbook/internal/app"
	"github.com/okian/barberbook/internal/domain/aggregate"
	"github.com/okian/barberbook/internal/domain/model"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, month model.Month) ([]aggregate.Standing, error)
	Location() *time.Location
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
	now      func() time.Time
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int, now func() time.Time) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
		now:      now,
	}
}

// HandleGetLeaderboard handles GET /api/leaderboard?month=YYYY-MM&limit=N.
// Without a limit the configured maximum applies.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 || v > h.maxLimit {
			writeError(r.Context(), w, fmt.Errorf("%w: limit must be within [1, %d]", ErrBadRequest, h.maxLimit))
			return
		}
		n = v
	}
	rows, ok := h.standings(w, r)
	if !ok {
		return
	}
	if len(rows) > n {
		rows = rows[:n]
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleGetStanding handles GET /api/leaderboard/{barber}.
func (h *LeaderboardHandler) HandleGetStanding(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.standings(w, r)
	if !ok {
		return
	}
	barber := model.NormalizeEmail(r.PathValue("barber"))
	for _, row := range rows {
		if row.Barber == barber {
			writeJSON(w, http.StatusOK, row)
			return
		}
	}
	writeError(r.Context(), w, fmt.Errorf("%w: no standing for %s", service.ErrNotFound, barber))
}

func (h *LeaderboardHandler) standings(w http.ResponseWriter, r *http.Request) ([]aggregate.Standing, bool) {
	month, err := monthParam(r, h.now(), h.deps.Location())
	if err != nil {
		writeError(r.Context(), w, err)
		return nil, false
	}
	rows, err := h.deps.Leaderboard(r.Context(), month)
	if err != nil {
		writeError(r.Context(), w, err)
		return nil, false
	}
	return rows, true
}
