package ports

import (
	"context"
	"time"

	"github.com/articlehub/content-service/internal/core/domain"
)

// ListArticlesFilter carries the query parameters for listing articles.
type ListArticlesFilter struct {
	Username string    // optional: owner's username
	Date     time.Time // optional: calendar day (UTC) the article was created on
	Page     int       // 1-based
	Limit    int
}

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) (*domain.Article, error)
	// FindByID returns the article joined with its owner's username.
	FindByID(ctx context.Context, id int64) (*domain.ArticleView, error)
	// List returns a page ordered by ID.
	List(ctx context.Context, filter ListArticlesFilter) ([]*domain.ArticleView, error)
	Update(ctx context.Context, article *domain.Article) (*domain.Article, error)
	Delete(ctx context.Context, id int64) error
}
