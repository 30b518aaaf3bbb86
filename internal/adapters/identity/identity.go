// Package identity issues session tokens and carries the signed-in barber
// through request contexts.
package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/okian/barberbook/internal/domain/model"
)

const issuer = "barberbook"

// Session is the authenticated caller.
type Session struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	// Manager is set once the manager password was entered in this session.
	Manager bool `json:"manager,omitempty"`
}

type claims struct {
	Role    string `json:"role"`
	Manager bool   `json:"mgr,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. The secret must not be empty.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for s.
func (i *Issuer) Issue(s Session) (string, error) {
	now := i.now()
	c := claims{
		Role:    string(s.Role),
		Manager: s.Manager,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   model.NormalizeEmail(s.Email),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Parse verifies a token and returns its session.
func (i *Issuer) Parse(token string) (Session, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || c.Subject == "" {
		return Session{}, ErrInvalidToken
	}
	role := model.Role(c.Role)
	if role == "" {
		role = model.RoleBarber
	}
	return Session{Email: c.Subject, Role: role, Manager: c.Manager}, nil
}

type ctxKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s.Email != ""
}

// Provider answers who is calling.
type Provider interface {
	CurrentIdentity(ctx context.Context) (string, bool)
}

// ContextProvider reads the identity from the request context.
type ContextProvider struct{}

// CurrentIdentity implements Provider.
func (ContextProvider) CurrentIdentity(ctx context.Context) (string, bool) {
	s, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	return s.Email, true
}
