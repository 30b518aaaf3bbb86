package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/barberbook/internal/domain/model"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON body", ErrBadRequest)
	}
	return nil
}

// monthParam reads ?month=YYYY-MM. Absent means the current month, "all"
// means no month filter.
func monthParam(r *http.Request, now time.Time, loc *time.Location) (model.Month, error) {
	switch v := strings.TrimSpace(r.URL.Query().Get("month")); v {
	case "":
		return model.MonthOf(now, loc), nil
	case "all":
		return model.AnyMonth, nil
	default:
		return model.ParseMonth(v)
	}
}

// entryDate reads an optional entry date. Blank means "now", decided by the
// service.
func entryDate(raw string, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	t, err := model.ParseTimestamp(raw, loc)
	if errors.Is(err, model.ErrMissingTimestamp) {
		return time.Time{}, nil
	}
	return t, err
}

// timeParam reads an optional RFC 3339 or date-only query parameter.
func timeParam(r *http.Request, name string, loc *time.Location) (time.Time, error) {
	t, err := entryDate(r.URL.Query().Get(name), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrBadRequest, name, err)
	}
	return t, nil
}
