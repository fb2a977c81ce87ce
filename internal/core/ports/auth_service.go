package ports

import (
	"context"

	"github.com/articlehub/content-service/internal/core/domain"
)

// AuthService issues, rotates and resolves session tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	ResolveCurrentUser(ctx context.Context, accessToken string) (*domain.User, error)
	Logout(ctx context.Context, actor *domain.User)
}
