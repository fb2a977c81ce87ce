package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/articlehub/content-service/internal/core/domain"
	"github.com/articlehub/content-service/internal/core/policy"
	"github.com/articlehub/content-service/internal/core/ports"
)

const (
	defaultArticleLimit = 5
	maxArticleLimit     = 100
)

// ArticleService implements article CRUD gated by ownership.
type ArticleService struct {
	repo ports.ArticleRepository
	log  zerolog.Logger
}

func NewArticleService(repo ports.ArticleRepository, log zerolog.Logger) *ArticleService {
	return &ArticleService{repo: repo, log: log}
}

var _ ports.ArticleService = (*ArticleService)(nil)

func (s *ArticleService) Create(ctx context.Context, actor *domain.User, input ports.CreateArticleInput) (*domain.Article, error) {
	if actor == nil {
		return nil, domain.ErrPermissionDenied
	}
	title := strings.TrimSpace(input.Title)
	if !validTitle(title) {
		return nil, domain.ErrInvalidInput
	}

	created, err := s.repo.Create(ctx, &domain.Article{
		OwnerID:   actor.ID,
		Title:     title,
		Content:   input.Content,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Error().Err(err).Int64("owner_id", actor.ID).Msg("failed to create article")
		return nil, err
	}

	s.log.Info().Int64("article_id", created.ID).Int64("owner_id", actor.ID).Msg("article created")
	return created, nil
}

func (s *ArticleService) Get(ctx context.Context, id int64) (*domain.ArticleView, error) {
	return s.repo.FindByID(ctx, id)
}

// List applies page/limit defaults (page 1, limit 5, limit capped at 100).
func (s *ArticleService) List(ctx context.Context, input ports.ListArticlesInput) ([]*domain.ArticleView, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultArticleLimit
	}
	if limit > maxArticleLimit {
		limit = maxArticleLimit
	}

	return s.repo.List(ctx, ports.ListArticlesFilter{
		Username: strings.TrimSpace(input.Username),
		Date:     input.Date,
		Page:     page,
		Limit:    limit,
	})
}

// Update changes title and/or content when actor owns the article or holds
// an admin role.
func (s *ArticleService) Update(ctx context.Context, actor *domain.User, id int64, input ports.UpdateArticleInput) (*domain.Article, error) {
	view, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	article := view.Article
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if !validTitle(title) {
			return nil, domain.ErrInvalidInput
		}
		article.Title = title
	}
	if input.Content != nil {
		article.Content = *input.Content
	}

	return s.repo.Update(ctx, &article)
}

// Delete removes the article when actor owns it or holds an admin role.
func (s *ArticleService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("article_id", id).Int64("actor_id", actor.ID).Msg("article deleted")
	return nil
}

func (s *ArticleService) authorize(ctx context.Context, actor *domain.User, id int64) (*domain.ArticleView, error) {
	view, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanModifyArticle(actor, &view.Article) {
		return nil, domain.ErrPermissionDenied
	}
	return view, nil
}

func validTitle(title string) bool {
	return title != "" && utf8.RuneCountInString(title) <= domain.ArticleTitleMaxLen
}
