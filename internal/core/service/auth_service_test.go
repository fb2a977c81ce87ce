package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/articlehub/content-service/internal/core/auth"
	"github.com/articlehub/content-service/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var testTTL = TokenTTL{Access: 15 * time.Minute, Refresh: 7 * 24 * time.Hour}

func newTestHasher(t *testing.T) *auth.PasswordHasher {
	t.Helper()
	h, err := auth.NewPasswordHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	return h
}

func hashFor(t *testing.T, h *auth.PasswordHasher, plain string) string {
	t.Helper()
	hash, err := h.Hash(plain)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return hash
}

type authFixture struct {
	svc      *AuthService
	repo     *stubUserRepo
	clock    *fakeClock
	audit    *recordingAudit
	throttle *stubThrottle
	alice    *domain.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	codec, err := auth.NewTokenCodec("test-secret", "HS256", clock.Now)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	hasher := newTestHasher(t)
	repo := newStubUserRepo()
	alice := repo.seed(&domain.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hashFor(t, hasher, "s3cret"),
		Roles:        domain.NewRoleSet(),
		Active:       true,
	})
	audit := &recordingAudit{}
	throttle := newStubThrottle(3)
	svc := NewAuthService(repo, hasher, codec, testTTL, throttle, audit, zerolog.Nop())
	return &authFixture{svc: svc, repo: repo, clock: clock, audit: audit, throttle: throttle, alice: alice}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestLogin_ResolveExpireRefresh(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	pair, err := f.svc.Login(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if !pair.AccessExpiresAt.Equal(f.clock.t.Add(testTTL.Access)) {
		t.Fatalf("unexpected access expiry %s", pair.AccessExpiresAt)
	}
	if got := f.audit.last(); got.Action != domain.AuditLogin || got.Outcome != "success" || got.ActorID != 1 {
		t.Fatalf("unexpected audit event %+v", got)
	}

	user, err := f.svc.ResolveCurrentUser(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.ID != f.alice.ID {
		t.Fatalf("resolved user %d, want %d", user.ID, f.alice.ID)
	}

	f.clock.Advance(testTTL.Access)
	if _, err := f.svc.ResolveCurrentUser(ctx, pair.AccessToken); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	fresh, err := f.svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	user, err = f.svc.ResolveCurrentUser(ctx, fresh.AccessToken)
	if err != nil {
		t.Fatalf("resolve after refresh: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("unexpected user %q", user.Email)
	}

	// the old refresh token is still usable until it expires
	if _, err := f.svc.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("second refresh with same token: %v", err)
	}
}

func TestLogin_NormalizesEmail(t *testing.T) {
	f := newAuthFixture(t)
	if _, err := f.svc.Login(context.Background(), "  Alice@Example.COM ", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.seed(&domain.User{
		ID:           2,
		Username:     "bob",
		Email:        "bob@example.com",
		PasswordHash: f.alice.PasswordHash,
		Roles:        domain.NewRoleSet(),
		Active:       false,
	})

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "s3cret"},
		{"wrong password", "alice@example.com", "wrong"},
		{"inactive user", "bob@example.com", "s3cret"},
		{"empty password", "alice@example.com", ""},
		{"empty email", "", "s3cret"},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := f.svc.Login(context.Background(), tt.email, tt.password)
			if !errors.Is(err, domain.ErrAuthenticationFailed) {
				t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
			}
			if pair != nil {
				t.Fatalf("expected no tokens on failure")
			}
			messages = append(messages, err.Error())
		})
	}
	for _, m := range messages {
		if m != messages[0] {
			t.Fatalf("failure messages differ: %q vs %q", m, messages[0])
		}
	}
}

func TestLogin_Throttled(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, domain.ErrAuthenticationFailed) {
			t.Fatalf("attempt %d: expected ErrAuthenticationFailed, got %v", i, err)
		}
	}

	// the correct password is refused while the window is open
	if _, err := f.svc.Login(ctx, "alice@example.com", "s3cret"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if got := f.audit.last(); got.Outcome != "throttled" {
		t.Fatalf("expected throttled audit, got %+v", got)
	}
}

func TestLogin_SuccessResetsThrottle(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, _ = f.svc.Login(ctx, "alice@example.com", "wrong")
	if _, err := f.svc.Login(ctx, "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if n := f.throttle.failures["alice@example.com"]; n != 0 {
		t.Fatalf("expected failures reset, got %d", n)
	}
}

func TestLogin_ThrottleErrorFailsOpen(t *testing.T) {
	f := newAuthFixture(t)
	f.throttle.err = errors.New("redis down")

	if _, err := f.svc.Login(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("expected login to proceed, got %v", err)
	}
}

func TestLogin_RepositoryError(t *testing.T) {
	f := newAuthFixture(t)
	boom := errors.New("connection reset")
	f.repo.err = boom

	_, err := f.svc.Login(context.Background(), "alice@example.com", "s3cret")
	if !errors.Is(err, boom) {
		t.Fatalf("expected repository error, got %v", err)
	}
	if errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("infrastructure errors must not look like bad credentials")
	}
}

func TestLogin_CancelledIssuesNothing(t *testing.T) {
	f := newAuthFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pair, err := f.svc.Login(ctx, "alice@example.com", "s3cret")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if pair != nil {
		t.Fatalf("expected no pair")
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	pair, err := f.svc.Login(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := f.svc.Refresh(ctx, pair.AccessToken); !errors.Is(err, domain.ErrTokenWrongType) {
		t.Fatalf("expected ErrTokenWrongType, got %v", err)
	}
	if _, err := f.svc.ResolveCurrentUser(ctx, pair.RefreshToken); !errors.Is(err, domain.ErrTokenWrongType) {
		t.Fatalf("expected ErrTokenWrongType, got %v", err)
	}
}

func TestRefresh_Expired(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	pair, err := f.svc.Login(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	f.clock.Advance(testTTL.Refresh + time.Second)
	if _, err := f.svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestRefresh_DeactivatedSubject(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	pair, err := f.svc.Login(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := f.repo.Deactivate(ctx, f.alice.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := f.svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, domain.ErrTokenSubjectUnknown) {
		t.Fatalf("expected ErrTokenSubjectUnknown, got %v", err)
	}
	if _, err := f.svc.ResolveCurrentUser(ctx, pair.AccessToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid family, got %v", err)
	}
}

func TestResolveCurrentUser_Garbage(t *testing.T) {
	f := newAuthFixture(t)
	if _, err := f.svc.ResolveCurrentUser(context.Background(), "not-a-token"); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestLogout_RecordsEvent(t *testing.T) {
	f := newAuthFixture(t)
	f.svc.Logout(context.Background(), f.alice)
	if got := f.audit.last(); got.Action != domain.AuditLogout || got.ActorEmail != "alice@example.com" {
		t.Fatalf("unexpected audit event %+v", got)
	}
}
