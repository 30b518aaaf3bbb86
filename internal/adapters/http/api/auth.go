package api

import (
	"context"
	"net/http"

	"github.com/okian/barberbook/internal/adapters/identity"
	service "github.com/okian/barberbook/internal/app"
)

// AuthDependencies defines the account and session operations.
type AuthDependencies interface {
	SignUp(ctx context.Context, req service.SignUpRequest) (service.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (service.AuthResult, error)
	EnterManager(ctx context.Context, password string) (service.AuthResult, error)
	Authenticate(ctx context.Context, token string) (identity.Session, error)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type managerRequest struct {
	Password string `json:"password"`
}

// AuthHandler handles sign-up, sign-in and the manager gate.
type AuthHandler struct {
	deps AuthDependencies
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(deps AuthDependencies) *AuthHandler {
	return &AuthHandler{deps: deps}
}

// HandleSignUp handles POST /api/auth/signup.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	res, err := h.deps.SignUp(r.Context(), req)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// HandleSignIn handles POST /api/auth/signin.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	res, err := h.deps.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleEnterManager handles POST /api/auth/manager. The response carries a
// new token with manager rights.
func (h *AuthHandler) HandleEnterManager(w http.ResponseWriter, r *http.Request) {
	var req managerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	res, err := h.deps.EnterManager(r.Context(), req.Password)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
