package ports

import (
	"context"

	"github.com/articlehub/content-service/internal/core/domain"
)

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateProfileInput carries optional profile changes; nil fields are kept.
type UpdateProfileInput struct {
	Username *string
	Email    *string
}

// UserService defines account use cases. The actor is always the already
// resolved caller.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor *domain.User, input UpdateProfileInput) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, targetID int64) (int64, error)
	PromoteToAdmin(ctx context.Context, actor *domain.User, targetID int64) (*domain.User, error)
	RevokeAdmin(ctx context.Context, actor *domain.User, targetID int64) (*domain.User, error)
}
