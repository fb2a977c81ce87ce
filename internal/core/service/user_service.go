package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/articlehub/content-service/internal/core/auth"
	"github.com/articlehub/content-service/internal/core/domain"
	"github.com/articlehub/content-service/internal/core/policy"
	"github.com/articlehub/content-service/internal/core/ports"
)

// UserService implements account registration, profile updates, soft
// deletion and admin privilege management.
type UserService struct {
	repo   ports.UserRepository
	hasher *auth.PasswordHasher
	audit  ports.AuditSink
	log    zerolog.Logger
}

func NewUserService(repo ports.UserRepository, hasher *auth.PasswordHasher, audit ports.AuditSink, log zerolog.Logger) *UserService {
	if audit == nil {
		audit = discardAudit{}
	}
	return &UserService{repo: repo, hasher: hasher, audit: audit, log: log}
}

var _ ports.UserService = (*UserService)(nil)

// Register creates an active account holding only the USER role.
func (s *UserService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email, err := parseEmail(input.Email)
	if err != nil || username == "" || input.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Roles:        domain.NewRoleSet(),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Msg("user registered")
	return created, nil
}

// Get returns an active user.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.FindActiveByID(ctx, id)
}

// UpdateProfile changes the caller's own username and/or email. Changing the
// email invalidates outstanding tokens, whose subject is the old address.
func (s *UserService) UpdateProfile(ctx context.Context, actor *domain.User, input ports.UpdateProfileInput) (*domain.User, error) {
	updated := *actor
	if input.Username != nil {
		name := strings.TrimSpace(*input.Username)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		updated.Username = name
	}
	if input.Email != nil {
		email, err := parseEmail(*input.Email)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		updated.Email = email
	}
	updated.UpdatedAt = time.Now().UTC()

	return s.repo.UpdateProfile(ctx, &updated)
}

// Delete deactivates targetID when the role authority allows it and returns
// the deactivated user's ID.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, targetID int64) (int64, error) {
	target, err := s.target(ctx, actor, targetID)
	if err != nil {
		return 0, err
	}

	decision := policy.CanDeleteUser(actor, target)
	s.record(domain.AuditDeleteUser, actor, targetID, decision)
	if err := domain.DecisionError(domain.AuditDeleteUser, decision); err != nil {
		return 0, err
	}

	if err := s.repo.Deactivate(ctx, targetID); err != nil {
		return 0, err
	}
	s.log.Info().Int64("actor_id", actor.ID).Int64("target_id", targetID).Msg("user deactivated")
	return targetID, nil
}

// PromoteToAdmin grants ADMIN to targetID.
func (s *UserService) PromoteToAdmin(ctx context.Context, actor *domain.User, targetID int64) (*domain.User, error) {
	return s.changeRoles(ctx, actor, targetID, domain.AuditPromote, policy.CanPromoteToAdmin)
}

// RevokeAdmin removes ADMIN from targetID.
func (s *UserService) RevokeAdmin(ctx context.Context, actor *domain.User, targetID int64) (*domain.User, error) {
	return s.changeRoles(ctx, actor, targetID, domain.AuditRevoke, policy.CanRevokeAdmin)
}

type roleRule func(actor, target *domain.User) (domain.Decision, domain.RoleSet)

func (s *UserService) changeRoles(ctx context.Context, actor *domain.User, targetID int64, action domain.AuditAction, rule roleRule) (*domain.User, error) {
	target, err := s.target(ctx, actor, targetID)
	if err != nil {
		return nil, err
	}

	decision, roles := rule(actor, target)
	s.record(action, actor, targetID, decision)
	if err := domain.DecisionError(action, decision); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateRoles(ctx, target.ID, roles)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Int64("actor_id", actor.ID).
		Int64("target_id", target.ID).
		Str("roles", roles.String()).
		Msg("user roles changed")
	return updated, nil
}

// target resolves the user an action is aimed at. A missing or inactive
// target is returned as nil so the role authority decides what to reveal.
func (s *UserService) target(ctx context.Context, actor *domain.User, id int64) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrPermissionDenied
	}
	if id == actor.ID {
		return actor, nil
	}
	target, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find target user: %w", err)
	}
	return target, nil
}

func (s *UserService) record(action domain.AuditAction, actor *domain.User, targetID int64, d domain.Decision) {
	s.audit.Record(domain.AuditEvent{
		Action:     action,
		ActorEmail: actor.Email,
		ActorID:    actor.ID,
		TargetID:   targetID,
		Outcome:    d.String(),
		OccurredAt: time.Now().UTC(),
	})
}

func parseEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", domain.ErrInvalidInput
	}
	return normalizeEmail(addr.Address), nil
}
