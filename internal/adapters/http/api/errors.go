package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/barberbook/internal/adapters/report"
	service "github.com/okian/barberbook/internal/app"
	"github.com/okian/barberbook/internal/domain/model"
	"github.com/okian/barberbook/pkg/logger"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrMissingToken = errors.New("missing bearer token")
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps an error onto an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingToken), errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, service.ErrManagerGateDisabled):
		return http.StatusForbidden, "manager_gate_disabled"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "email_taken"
	case errors.Is(err, service.ErrDuplicateEntry):
		return http.StatusConflict, "duplicate_entry"
	case errors.Is(err, service.ErrOutOfStock):
		return http.StatusConflict, "out_of_stock"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, model.ErrInvalidMonth),
		errors.Is(err, model.ErrInvalidTimestamp),
		errors.Is(err, report.ErrUnknownSection):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err. Internal failures are logged and answered without
// their details.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Get().Error(ctx, "request failed", logger.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
