package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/crm-accounts/internal/domain/entity"
	repo "github.com/oksasatya/crm-accounts/internal/domain/repository"
	"github.com/oksasatya/crm-accounts/pkg/helpers"
)

const defaultSessionTTL = 24 * time.Hour

// Session is an issued token pair bound to one session id.
type Session struct {
	AccountID          int64
	SessionID          string
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// AuthService verifies credentials and manages the per-account session.
// Sessions may be nil, in which case tokens are accepted on signature alone.
type AuthService struct {
	Repo       repo.AccountRepository
	Hasher     PasswordHasher
	JWT        *helpers.JWTManager
	Sessions   SessionStore
	Logger     *logrus.Logger
	SessionTTL time.Duration
}

func NewAuthService(r repo.AccountRepository, hasher PasswordHasher, jwt *helpers.JWTManager, sessions SessionStore, logger *logrus.Logger, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AuthService{Repo: r, Hasher: hasher, JWT: jwt, Sessions: sessions, Logger: logger, SessionTTL: ttl}
}

// AuthenticateCredentials checks email/password without issuing a session.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) AuthenticateCredentials(ctx context.Context, email, password string) (*entity.Account, error) {
	var errs ValidationError
	normalized, err := ValidateEmail("email", email)
	errs.Collect(err)
	errs.Collect(ValidateLoginPassword("password", password))
	if err := errs.Err(); err != nil {
		return nil, err
	}

	a, err := s.Repo.FindByEmail(ctx, normalized)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if !s.Hasher.Compare(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !a.IsActive {
		return nil, ErrInactiveAccount
	}
	return a, nil
}

// Login authenticates and opens a fresh session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.Account, *Session, error) {
	a, err := s.AuthenticateCredentials(ctx, email, password)
	if err != nil {
		s.log().WithField("email", email).WithError(err).Info("login refused")
		return nil, nil, err
	}
	sess, err := s.IssueSession(ctx, a)
	if err != nil {
		return nil, nil, err
	}
	s.log().WithField("account_id", a.ID).Info("login")
	return a, sess, nil
}

// IssueSession rotates the session id of a and signs a new token pair.
// Any previously issued tokens stop resolving.
func (s *AuthService) IssueSession(ctx context.Context, a *entity.Account) (*Session, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(a.ID, sid)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(a.ID, sid)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if s.Sessions != nil {
		rec := SessionRecord{AccountID: a.ID, SessionID: sid, Email: a.Email, Role: a.Role, CreatedAt: time.Now().UTC()}
		if err := s.Sessions.Save(ctx, rec, s.SessionTTL); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return &Session{
		AccountID:          a.ID,
		SessionID:          sid,
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
	}, nil
}

// Refresh exchanges a refresh token of the live session for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	a, err := s.loadSessionAccount(ctx, claims)
	if err != nil {
		return nil, err
	}
	return s.IssueSession(ctx, a)
}

// Logout ends the session bound to accountID.
func (s *AuthService) Logout(ctx context.Context, accountID int64) error {
	s.log().WithField("account_id", accountID).Info("logout")
	return s.RevokeSessions(ctx, accountID)
}

func (s *AuthService) RevokeSessions(ctx context.Context, accountID int64) error {
	if s.Sessions == nil {
		return nil
	}
	return s.Sessions.Delete(ctx, accountID)
}

// ResolveActor turns an access token into the actor of the current request.
func (s *AuthService) ResolveActor(ctx context.Context, accessToken string) (Actor, error) {
	claims, err := s.JWT.ParseAccessToken(accessToken)
	if err != nil {
		return Actor{}, ErrInvalidCredentials
	}
	a, err := s.loadSessionAccount(ctx, claims)
	if err != nil {
		return Actor{}, err
	}
	return ActorFromAccount(a), nil
}

func (s *AuthService) loadSessionAccount(ctx context.Context, claims *helpers.Claims) (*entity.Account, error) {
	if s.Sessions != nil {
		rec, err := s.Sessions.Get(ctx, claims.UserID)
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidCredentials
		}
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if rec.SessionID != claims.SessionID {
			return nil, ErrInvalidCredentials
		}
	}
	a, err := s.Repo.FindByID(ctx, claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if !a.IsActive {
		return nil, ErrInactiveAccount
	}
	return a, nil
}

func (s *AuthService) log() logrus.FieldLogger {
	if s.Logger != nil {
		return s.Logger
	}
	return logrus.StandardLogger()
}
