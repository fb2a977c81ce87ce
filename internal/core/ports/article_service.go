package ports

import (
	"context"
	"time"

	"github.com/articlehub/content-service/internal/core/domain"
)

// CreateArticleInput carries the data for a new article.
type CreateArticleInput struct {
	Title   string
	Content string
}

// UpdateArticleInput carries optional changes; nil fields are kept.
type UpdateArticleInput struct {
	Title   *string
	Content *string
}

// ListArticlesInput carries the list endpoint parameters before defaults
// are applied.
type ListArticlesInput struct {
	Username string
	Date     time.Time
	Page     int
	Limit    int
}

// ArticleService defines article use cases.
type ArticleService interface {
	Create(ctx context.Context, actor *domain.User, input CreateArticleInput) (*domain.Article, error)
	Get(ctx context.Context, id int64) (*domain.ArticleView, error)
	List(ctx context.Context, input ListArticlesInput) ([]*domain.ArticleView, error)
	Update(ctx context.Context, actor *domain.User, id int64, input UpdateArticleInput) (*domain.Article, error)
	Delete(ctx context.Context, actor *domain.User, id int64) error
}
