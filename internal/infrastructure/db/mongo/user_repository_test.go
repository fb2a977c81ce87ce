package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/articlehub/content-service/internal/core/domain"
)

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func userBSON(id int64, email string, roles []string, active bool) bson.D {
	now := time.Date(2024, 1, 21, 10, 0, 0, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: "ugo"},
		{Key: "email", Value: email},
		{Key: "password_hash", Value: "$2a$04$hash"},
		{Key: "roles", Value: bson.A(toAny(roles))},
		{Key: "is_active", Value: active},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func counterReply(seq int64) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
		{Key: "_id", Value: collectionUsers},
		{Key: "seq", Value: seq},
	}})
}

func TestUserRepository_Create(t *testing.T) {
	mt := newMockT(t)

	mt.Run("assigns sequence id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(counterReply(7), mtest.CreateSuccessResponse())

		u, err := repo.Create(context.Background(), &domain.User{
			Username: "ugo",
			Email:    "ugo@example.com",
			Roles:    domain.NewRoleSet(domain.RoleAdmin),
			Active:   true,
		})
		if err != nil {
			mt.Fatalf("create: %v", err)
		}
		if u.ID != 7 || !u.Roles.Has(domain.RoleAdmin) || !u.Roles.Has(domain.RoleUser) {
			mt.Fatalf("unexpected user %+v", u)
		}
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(counterReply(8), mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: email_1",
		}))

		_, err := repo.Create(context.Background(), &domain.User{Email: "ugo@example.com", Active: true})
		if !errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("expected ErrUserExists, got %v", err)
		}
	})

	mt.Run("counter failure", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad counter",
		}))

		_, err := repo.Create(context.Background(), &domain.User{Email: "ugo@example.com"})
		if err == nil || errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("expected wrapped counter error, got %v", err)
		}
	})
}

func TestUserRepository_FindByEmail(t *testing.T) {
	mt := newMockT(t)

	mt.Run("found inactive user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		ns := mt.DB.Name() + "." + collectionUsers
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			userBSON(3, "ugo@example.com", []string{"USER", "SUPERADMIN"}, false)))

		u, err := repo.FindByEmail(context.Background(), "ugo@example.com")
		if err != nil {
			mt.Fatalf("find: %v", err)
		}
		if u.ID != 3 || u.Active || !u.IsSuperadmin() || u.PasswordHash == "" {
			mt.Fatalf("unexpected user %+v", u)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "find" {
			mt.Fatalf("expected find command, got %+v", evt)
		}
		filter := evt.Command.Lookup("filter").Document()
		if _, err := filter.LookupErr("is_active"); err == nil {
			mt.Fatalf("email lookup must not filter on is_active: %s", filter)
		}
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		ns := mt.DB.Name() + "." + collectionUsers
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		if _, err := repo.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("unknown role stored", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		ns := mt.DB.Name() + "." + collectionUsers
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			userBSON(4, "odd@example.com", []string{"USER", "OWNER"}, true)))

		_, err := repo.FindByEmail(context.Background(), "odd@example.com")
		if err == nil || errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected role decode error, got %v", err)
		}
	})
}

func TestUserRepository_FindActiveByID(t *testing.T) {
	mt := newMockT(t)

	mt.Run("filters on active flag", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		ns := mt.DB.Name() + "." + collectionUsers
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		if _, err := repo.FindActiveByID(context.Background(), 9); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}

		evt := mt.GetStartedEvent()
		if evt == nil {
			mt.Fatal("no command sent")
		}
		filter := evt.Command.Lookup("filter").Document()
		if active, ok := filter.Lookup("is_active").BooleanOK(); !ok || !active {
			mt.Fatalf("expected is_active: true in filter, got %s", filter)
		}
	})
}

func TestUserRepository_Deactivate(t *testing.T) {
	mt := newMockT(t)

	mt.Run("matched", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		if err := repo.Deactivate(context.Background(), 5); err != nil {
			mt.Fatalf("deactivate: %v", err)
		}
	})

	mt.Run("missing or already inactive", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		if err := repo.Deactivate(context.Background(), 5); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserRepository_UpdateRoles(t *testing.T) {
	mt := newMockT(t)

	mt.Run("returns updated user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key:   "value",
			Value: userBSON(2, "ada@example.com", []string{"USER", "ADMIN"}, true),
		}))

		u, err := repo.UpdateRoles(context.Background(), 2, domain.NewRoleSet(domain.RoleAdmin))
		if err != nil {
			mt.Fatalf("update roles: %v", err)
		}
		if !u.Roles.Has(domain.RoleAdmin) {
			mt.Fatalf("expected ADMIN, got %s", u.Roles)
		}
	})

	mt.Run("inactive target", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		if _, err := repo.UpdateRoles(context.Background(), 2, domain.NewRoleSet()); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserRepository_UpdateProfileDuplicateEmail(t *testing.T) {
	mt := newMockT(t)

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Name:    "DuplicateKey",
			Message: "E11000 duplicate key error collection: users index: email_1",
		}))

		_, err := repo.UpdateProfile(context.Background(), &domain.User{ID: 2, Username: "ada", Email: "taken@example.com"})
		if !errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("expected ErrUserExists, got %v", err)
		}
	})
}
