package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/articlehub/content-service/internal/core/domain"
	"github.com/articlehub/content-service/internal/core/ports"
)

const articleViewColumns = `a.id, a.owner_id, a.title, a.content, a.created_at, u.username`

type ArticleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

var _ ports.ArticleRepository = (*ArticleRepository)(nil)

func (r *ArticleRepository) Create(ctx context.Context, a *domain.Article) (*domain.Article, error) {
	const q = `INSERT INTO articles (owner_id, title, content, created_at) VALUES ($1, $2, $3, $4) RETURNING id`

	created := *a
	if err := r.db.QueryRowContext(ctx, q, a.OwnerID, a.Title, a.Content, a.CreatedAt).Scan(&created.ID); err != nil {
		return nil, fmt.Errorf("insert article: %w", err)
	}
	return &created, nil
}

func (r *ArticleRepository) FindByID(ctx context.Context, id int64) (*domain.ArticleView, error) {
	const q = `SELECT ` + articleViewColumns + `
FROM articles a JOIN users u ON u.id = a.owner_id
WHERE a.id = $1`

	return scanArticleView(r.db.QueryRowContext(ctx, q, id))
}

// List returns one page of articles ordered by id, optionally restricted to
// an author's username and a UTC calendar day.
func (r *ArticleRepository) List(ctx context.Context, f ports.ListArticlesFilter) ([]*domain.ArticleView, error) {
	var (
		where []string
		args  []any
	)
	if f.Username != "" {
		args = append(args, f.Username)
		where = append(where, fmt.Sprintf("u.username = $%d", len(args)))
	}
	if !f.Date.IsZero() {
		day := f.Date.UTC().Truncate(24 * time.Hour)
		args = append(args, day, day.Add(24*time.Hour))
		where = append(where, fmt.Sprintf("a.created_at >= $%d AND a.created_at < $%d", len(args)-1, len(args)))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + articleViewColumns + ` FROM articles a JOIN users u ON u.id = a.owner_id`)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	fmt.Fprintf(&sb, " ORDER BY a.id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.ArticleView, 0, f.Limit)
	for rows.Next() {
		v, err := scanArticleView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return out, nil
}

func (r *ArticleRepository) Update(ctx context.Context, a *domain.Article) (*domain.Article, error) {
	const q = `UPDATE articles SET title = $2, content = $3 WHERE id = $1
RETURNING id, owner_id, title, content, created_at`

	var out domain.Article
	err := r.db.QueryRowContext(ctx, q, a.ID, a.Title, a.Content).
		Scan(&out.ID, &out.OwnerID, &out.Title, &out.Content, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrArticleNotFound
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	return &out, nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if n == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

func scanArticleView(row rowScanner) (*domain.ArticleView, error) {
	var v domain.ArticleView
	err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Content, &v.CreatedAt, &v.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrArticleNotFound
		}
		return nil, fmt.Errorf("scan article: %w", err)
	}
	return &v, nil
}
