package ports

import (
	"context"

	"github.com/articlehub/content-service/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create inserts user and returns it with its assigned ID.
	// Returns domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail returns the user with email regardless of its active flag.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindActiveByID returns an active user or domain.ErrUserNotFound.
	FindActiveByID(ctx context.Context, id int64) (*domain.User, error)
	// UpdateProfile stores username and email of user.ID.
	UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error)
	// UpdateRoles replaces the role set of an active user.
	UpdateRoles(ctx context.Context, id int64, roles domain.RoleSet) (*domain.User, error)
	// Deactivate clears the active flag of an active user.
	Deactivate(ctx context.Context, id int64) error
}
