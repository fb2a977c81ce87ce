package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/articlehub/content-service/internal/core/domain"
	"github.com/articlehub/content-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu     sync.Mutex
	byID   map[int64]*domain.User
	nextID int64
	err    error // if set, every call returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = r.nextID
	r.byID[created.ID] = cloneUser(created)
	return created, nil
}

// seed stores u as-is, keeping its ID.
func (r *stubUserRepo) seed(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID > r.nextID {
		r.nextID = u.ID
	}
	r.byID[u.ID] = cloneUser(u)
	return u
}

func (r *stubUserRepo) get(id int64) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.byID[id])
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindActiveByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byID[id]
	if !ok || !u.Active {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.ID != user.ID && u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	u, ok := r.byID[user.ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Username, u.Email, u.UpdatedAt = user.Username, user.Email, user.UpdatedAt
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdateRoles(_ context.Context, id int64, roles domain.RoleSet) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok || !u.Active {
		return nil, domain.ErrUserNotFound
	}
	u.Roles = roles
	return cloneUser(u), nil
}

func (r *stubUserRepo) Deactivate(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok || !u.Active {
		return domain.ErrUserNotFound
	}
	u.Active = false
	return nil
}

type stubArticleRepo struct {
	byID       map[int64]*domain.Article
	users      *stubUserRepo
	nextID     int64
	lastFilter ports.ListArticlesFilter
}

func newStubArticleRepo(users *stubUserRepo) *stubArticleRepo {
	return &stubArticleRepo{byID: make(map[int64]*domain.Article), users: users}
}

func (r *stubArticleRepo) Create(_ context.Context, a *domain.Article) (*domain.Article, error) {
	r.nextID++
	clone := *a
	clone.ID = r.nextID
	stored := clone
	r.byID[clone.ID] = &stored
	return &clone, nil
}

func (r *stubArticleRepo) view(a *domain.Article) *domain.ArticleView {
	v := &domain.ArticleView{Article: *a}
	if owner := r.users.get(a.OwnerID); owner != nil {
		v.Username = owner.Username
	}
	return v
}

func (r *stubArticleRepo) FindByID(_ context.Context, id int64) (*domain.ArticleView, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrArticleNotFound
	}
	return r.view(a), nil
}

func (r *stubArticleRepo) List(_ context.Context, f ports.ListArticlesFilter) ([]*domain.ArticleView, error) {
	r.lastFilter = f
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []*domain.ArticleView
	for _, id := range ids {
		v := r.view(r.byID[id])
		if f.Username != "" && !strings.EqualFold(v.Username, f.Username) {
			continue
		}
		if !f.Date.IsZero() && v.CreatedAt.Format("2006-01-02") != f.Date.Format("2006-01-02") {
			continue
		}
		out = append(out, v)
	}

	skip := (f.Page - 1) * f.Limit
	if skip >= len(out) {
		return []*domain.ArticleView{}, nil
	}
	end := skip + f.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[skip:end], nil
}

func (r *stubArticleRepo) Update(_ context.Context, a *domain.Article) (*domain.Article, error) {
	if _, ok := r.byID[a.ID]; !ok {
		return nil, domain.ErrArticleNotFound
	}
	clone := *a
	r.byID[a.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubArticleRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrArticleNotFound
	}
	delete(r.byID, id)
	return nil
}

// recordingAudit collects audit events synchronously.
type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *recordingAudit) Record(e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) last() domain.AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.events) == 0 {
		return domain.AuditEvent{}
	}
	return a.events[len(a.events)-1]
}

// stubThrottle blocks once failures reach max.
type stubThrottle struct {
	max      int
	failures map[string]int
	err      error
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{max: max, failures: make(map[string]int)}
}

func (t *stubThrottle) Allow(_ context.Context, key string) (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	return t.failures[key] < t.max, nil
}

func (t *stubThrottle) Fail(_ context.Context, key string) error {
	t.failures[key]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, key string) error {
	delete(t.failures, key)
	return nil
}
