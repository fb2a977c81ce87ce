package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/articlehub/content-service/internal/core/auth"
	"github.com/articlehub/content-service/internal/core/domain"
	"github.com/articlehub/content-service/internal/core/ports"
)

// LoginThrottle abstracts the failed-login counter (Redis).
type LoginThrottle interface {
	Allow(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// TokenTTL holds the configured lifetimes of the two token types.
type TokenTTL struct {
	Access  time.Duration
	Refresh time.Duration
}

// AuthService implements login, refresh rotation and current-user resolution.
type AuthService struct {
	users    ports.UserRepository
	hasher   *auth.PasswordHasher
	codec    *auth.TokenCodec
	ttl      TokenTTL
	throttle LoginThrottle
	audit    ports.AuditSink
	log      zerolog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService wires the token service. throttle and audit may be nil.
func NewAuthService(
	users ports.UserRepository,
	hasher *auth.PasswordHasher,
	codec *auth.TokenCodec,
	ttl TokenTTL,
	throttle LoginThrottle,
	audit ports.AuditSink,
	log zerolog.Logger,
) *AuthService {
	if throttle == nil {
		throttle = noThrottle{}
	}
	if audit == nil {
		audit = discardAudit{}
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		codec:    codec,
		ttl:      ttl,
		throttle: throttle,
		audit:    audit,
		log:      log,
	}
}

// Login verifies credentials and issues an access/refresh pair. Unknown
// email, wrong password and deactivated account all yield
// domain.ErrAuthenticationFailed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrAuthenticationFailed
	}

	allowed, err := s.throttle.Allow(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle check failed, allowing attempt")
	} else if !allowed {
		s.record(domain.AuditLogin, email, 0, 0, "throttled")
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("login: %w", err)
	}

	ok := false
	if user == nil {
		s.hasher.Dummy(password)
	} else {
		ok = s.hasher.Verify(password, user.PasswordHash) && user.Active
	}
	if !ok {
		if ferr := s.throttle.Fail(ctx, email); ferr != nil {
			s.log.Warn().Err(ferr).Msg("failed to count login failure")
		}
		s.record(domain.AuditLogin, email, 0, 0, "failure")
		return nil, domain.ErrAuthenticationFailed
	}

	pair, err := s.issuePair(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	if rerr := s.throttle.Reset(ctx, email); rerr != nil {
		s.log.Warn().Err(rerr).Msg("failed to reset login throttle")
	}
	s.record(domain.AuditLogin, user.Email, user.ID, 0, "success")
	s.log.Info().Int64("user_id", user.ID).Msg("user logged in")
	return pair, nil
}

// Refresh validates a refresh token and rotates it into a brand-new pair.
// The previous refresh token is not revoked; two concurrent refreshes with
// the same token both succeed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.codec.Parse(refreshToken, domain.TokenRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.activeSubject(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	pair, err := s.issuePair(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	s.record(domain.AuditRefresh, user.Email, user.ID, 0, "success")
	return pair, nil
}

// ResolveCurrentUser returns the active user an access token was issued to.
func (s *AuthService) ResolveCurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.codec.Parse(accessToken, domain.TokenAccess)
	if err != nil {
		return nil, err
	}
	return s.activeSubject(ctx, claims.Subject)
}

// Logout only records the event; tokens expire naturally.
func (s *AuthService) Logout(_ context.Context, actor *domain.User) {
	if actor == nil {
		return
	}
	s.record(domain.AuditLogout, actor.Email, actor.ID, 0, "success")
}

func (s *AuthService) activeSubject(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenSubjectUnknown
		}
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}
	if !user.Active {
		return nil, domain.ErrTokenSubjectUnknown
	}
	return user, nil
}

// issuePair mints both tokens and returns them together or not at all. It
// runs only after the user lookup has returned and gives up if the request
// was cancelled meanwhile.
func (s *AuthService) issuePair(ctx context.Context, subject string) (*domain.TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	access, accessExp, err := s.codec.Issue(subject, domain.TokenAccess, s.ttl.Access)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshExp, err := s.codec.Issue(subject, domain.TokenRefresh, s.ttl.Refresh)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *AuthService) record(action domain.AuditAction, email string, actorID, targetID int64, outcome string) {
	s.audit.Record(domain.AuditEvent{
		Action:     action,
		ActorEmail: email,
		ActorID:    actorID,
		TargetID:   targetID,
		Outcome:    outcome,
		OccurredAt: time.Now().UTC(),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type noThrottle struct{}

func (noThrottle) Allow(context.Context, string) (bool, error) { return true, nil }
func (noThrottle) Fail(context.Context, string) error          { return nil }
func (noThrottle) Reset(context.Context, string) error         { return nil }

type discardAudit struct{}

func (discardAudit) Record(domain.AuditEvent) {}
