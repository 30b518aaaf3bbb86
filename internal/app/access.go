package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/barberbook/internal/adapters/identity"
	"github.com/okian/barberbook/internal/adapters/repository"
	"github.com/okian/barberbook/internal/domain/model"
	"github.com/okian/barberbook/pkg/logger"
	"github.com/okian/barberbook/pkg/metrics"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// SignUpRequest registers a barber account.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Unit     string `json:"unit"`
}

// AuthResult is a freshly issued session.
type AuthResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Session   identity.Session `json:"session"`
}

// SignUp creates the account and its barber profile, then signs the barber in.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (AuthResult, error) {
	email := model.NormalizeEmail(req.Email)
	if !strings.Contains(email, "@") {
		return AuthResult{}, fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if len(req.Password) < minPasswordLength {
		return AuthResult{}, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	s.signupMu.Lock()
	defer s.signupMu.Unlock()

	if _, err := s.findUser(ctx, email); err == nil {
		metrics.RecordAuthAttempt("signup", "taken")
		return AuthResult{}, ErrEmailTaken
	} else if !isNotFound(err) {
		return AuthResult{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	user := model.User{Email: email, PasswordHash: string(hash), Role: model.RoleBarber}
	id, err := s.store.Insert(ctx, model.CollectionUsers, model.EncodeUser(user))
	if err != nil {
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}
	barber := model.Barber{
		Name:    model.DefaultBarberName,
		Email:   email,
		Phone:   strings.TrimSpace(req.Phone),
		Unit:    strings.TrimSpace(req.Unit),
		Balance: decimal.Zero,
	}
	if err := s.store.Put(ctx, model.CollectionBarbers, id, model.EncodeBarber(barber)); err != nil {
		if derr := s.store.Delete(ctx, model.CollectionUsers, id); derr != nil {
			s.logger.Error(ctx, "removing user without profile", logger.String("barber", email), logger.Error(derr))
		}
		return AuthResult{}, fmt.Errorf("create barber: %w", err)
	}

	metrics.RecordAuthAttempt("signup", "ok")
	s.logger.Info(ctx, "barber signed up", logger.String("barber", email))
	return s.issue(identity.Session{Email: email, Role: model.RoleBarber})
}

// SignIn checks the account password.
func (s *Service) SignIn(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.findUser(ctx, model.NormalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			metrics.RecordAuthAttempt("signin", "failed")
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.RecordAuthAttempt("signin", "failed")
		return AuthResult{}, ErrInvalidCredentials
	}
	metrics.RecordAuthAttempt("signin", "ok")
	return s.issue(identity.Session{Email: user.Email, Role: user.Role})
}

// EnterManager unlocks the manager area for the signed-in caller.
func (s *Service) EnterManager(ctx context.Context, password string) (AuthResult, error) {
	sess, ok := identity.FromContext(ctx)
	if !ok {
		return AuthResult{}, ErrUnauthenticated
	}
	if s.managerHash == "" {
		metrics.RecordAuthAttempt("manager", "disabled")
		return AuthResult{}, ErrManagerGateDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.managerHash), []byte(password)); err != nil {
		metrics.RecordAuthAttempt("manager", "failed")
		s.logger.Warn(ctx, "manager password rejected", logger.String("barber", sess.Email))
		return AuthResult{}, ErrInvalidCredentials
	}
	metrics.RecordAuthAttempt("manager", "ok")
	sess.Manager = true
	return s.issue(sess)
}

// Authenticate verifies a session token.
func (s *Service) Authenticate(_ context.Context, token string) (identity.Session, error) {
	sess, err := s.issuer.Parse(token)
	if err != nil {
		return identity.Session{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return sess, nil
}

func (s *Service) issue(sess identity.Session) (AuthResult, error) {
	token, err := s.issuer.Issue(sess)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, ExpiresAt: s.now().Add(s.issuer.TTL()), Session: sess}, nil
}

// caller returns the signed-in barber's email.
func (s *Service) caller(ctx context.Context) (string, error) {
	who, ok := s.identities.CurrentIdentity(ctx)
	if !ok || who == "" {
		return "", ErrUnauthenticated
	}
	return model.NormalizeEmail(who), nil
}

func isManager(ctx context.Context) bool {
	sess, ok := identity.FromContext(ctx)
	return ok && (sess.Manager || sess.Role == model.RoleManager)
}

func (s *Service) requireManager(ctx context.Context) error {
	if _, err := s.caller(ctx); err != nil {
		return err
	}
	if !isManager(ctx) {
		return ErrForbidden
	}
	return nil
}

func (s *Service) findUser(ctx context.Context, email string) (model.User, error) {
	recs, err := s.store.List(ctx, model.CollectionUsers, repository.Eq(model.FieldEmail, email))
	if err != nil {
		return model.User{}, err
	}
	if len(recs) == 0 {
		return model.User{}, repository.ErrNotFound
	}
	return model.DecodeUser(recs[0].ID, recs[0].Data), nil
}

func (s *Service) findBarber(ctx context.Context, email string) (model.Barber, error) {
	recs, err := s.store.List(ctx, model.CollectionBarbers, repository.Eq(model.FieldEmail, email))
	if err != nil {
		return model.Barber{}, err
	}
	if len(recs) == 0 {
		return model.Barber{}, fmt.Errorf("%w: barber %s", ErrNotFound, email)
	}
	return model.DecodeBarber(recs[0].ID, recs[0].Data), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, ErrNotFound)
}
