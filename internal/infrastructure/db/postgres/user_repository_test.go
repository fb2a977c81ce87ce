package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/articlehub/content-service/internal/core/domain"
)

var userCols = []string{"id", "username", "email", "password_hash", "roles", "is_active", "created_at", "updated_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		_ = db.Close()
	})
	return db, mock
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice", "alice@example.com", "hash", sqlmock.AnyArg(), true, now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	created, err := repo.Create(context.Background(), &domain.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Roles:        domain.NewRoleSet(),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 42 {
		t.Fatalf("id = %d", created.ID)
	}
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	_, err := repo.Create(context.Background(), &domain.User{Email: "alice@example.com", Roles: domain.NewRoleSet()})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("root@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "root", "root@example.com", "hash", "{USER,SUPERADMIN}", false, now, now))

	u, err := repo.FindByEmail(context.Background(), "root@example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !u.IsSuperadmin() || u.Roles.Has(domain.RoleAdmin) {
		t.Fatalf("unexpected roles %s", u.Roles)
	}
	if u.Active {
		t.Fatalf("inactive users are still returned with Active=false")
	}
}

func TestUserRepository_FindActiveByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND is_active")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userCols))

	if _, err := repo.FindActiveByID(context.Background(), 7); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_UnknownStoredRole(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND is_active")).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "x", "x@example.com", "hash", "{USER,OWNER}", true, now, now))

	if _, err := repo.FindActiveByID(context.Background(), 1); !errors.Is(err, domain.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestUserRepository_UpdateRoles(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET roles = $2")).
		WithArgs(int64(3), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(3, "ugo", "ugo@example.com", "hash", "{USER,ADMIN}", true, now, now))

	u, err := repo.UpdateRoles(context.Background(), 3, domain.NewRoleSet(domain.RoleAdmin))
	if err != nil {
		t.Fatalf("update roles: %v", err)
	}
	if !u.IsAdmin() {
		t.Fatalf("expected ADMIN, got %s", u.Roles)
	}
}

func TestUserRepository_UpdateProfileDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET username = $2, email = $3")).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	_, err := repo.UpdateProfile(context.Background(), &domain.User{ID: 3, Username: "ugo", Email: "taken@example.com"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserRepository_Deactivate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET is_active = FALSE")).
		WithArgs(int64(3), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET is_active = FALSE")).
		WithArgs(int64(3), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Deactivate(context.Background(), 3); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := repo.Deactivate(context.Background(), 3); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second deactivate, got %v", err)
	}
}
