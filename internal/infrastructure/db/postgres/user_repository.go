package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/articlehub/content-service/internal/core/domain"
	"github.com/articlehub/content-service/internal/core/ports"
)

const uniqueViolation = "23505"

const userColumns = `id, username, email, password_hash, roles, is_active, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	const q = `INSERT INTO users (username, email, password_hash, roles, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

	created := *user
	err := r.db.QueryRowContext(ctx, q,
		user.Username,
		user.Email,
		user.PasswordHash,
		pq.Array(user.Roles.Names()),
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&created.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &created, nil
}

// FindByEmail returns the user regardless of its active flag.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) FindActiveByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND is_active`, id)
	return scanUser(row)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	const q = `UPDATE users SET username = $2, email = $3, updated_at = $4
WHERE id = $1 AND is_active
RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, q, user.ID, user.Username, user.Email, user.UpdatedAt)
	updated, err := scanUser(row)
	if err != nil && isUniqueViolation(err) {
		return nil, domain.ErrUserExists
	}
	return updated, err
}

func (r *UserRepository) UpdateRoles(ctx context.Context, id int64, roles domain.RoleSet) (*domain.User, error) {
	const q = `UPDATE users SET roles = $2, updated_at = $3
WHERE id = $1 AND is_active
RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, q, id, pq.Array(roles.Names()), time.Now().UTC())
	return scanUser(row)
}

// Deactivate soft-deletes the user; its rows stay in place.
func (r *UserRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = $2 WHERE id = $1 AND is_active`,
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u     domain.User
		roles pq.StringArray
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &roles, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.Roles, err = domain.ParseRoleSet(roles)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", u.ID, err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
