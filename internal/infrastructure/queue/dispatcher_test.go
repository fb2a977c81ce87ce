package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/articlehub/content-service/internal/api/metrics"
	"github.com/articlehub/content-service/internal/core/domain"
)

type memAuditRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	block  chan struct{}
}

func (r *memAuditRepo) Insert(ctx context.Context, e domain.AuditEvent) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *memAuditRepo) snapshot() []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuditEvent(nil), r.events...)
}

func TestDispatcher_PreservesPerActorOrder(t *testing.T) {
	repo := &memAuditRepo{}
	d := NewDispatcher(4, repo, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 50; i++ {
		d.Record(domain.AuditEvent{
			Action:     domain.AuditRefresh,
			ActorEmail: "alice@example.com",
			ActorID:    int64(i),
			Outcome:    "success",
			OccurredAt: time.Now(),
		})
		d.Record(domain.AuditEvent{Action: domain.AuditRefresh, ActorEmail: "bob@example.com", ActorID: int64(i)})
	}
	d.Shutdown()

	var alice []int64
	for _, e := range repo.snapshot() {
		if e.ActorEmail == "alice@example.com" {
			alice = append(alice, e.ActorID)
		}
	}
	if len(alice) != 50 {
		t.Fatalf("expected 50 events for alice, got %d", len(alice))
	}
	for i, id := range alice {
		if id != int64(i) {
			t.Fatalf("event %d out of order: %d", i, id)
		}
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	repo := &memAuditRepo{block: make(chan struct{})}
	d := NewDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	before := testutil.ToFloat64(metrics.AuditDroppedTotal)
	// one event is held by the blocked worker, channelBuffer more fill the queue
	for i := 0; i < channelBuffer+11; i++ {
		d.Record(domain.AuditEvent{Action: domain.AuditLogout, ActorEmail: "a@example.com"})
	}

	done := make(chan struct{})
	go func() {
		d.Record(domain.AuditEvent{Action: domain.AuditLogout, ActorEmail: "a@example.com"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Record blocked on a full queue")
	}

	if dropped := testutil.ToFloat64(metrics.AuditDroppedTotal) - before; dropped < 10 {
		t.Fatalf("expected at least 10 dropped events, got %v", dropped)
	}
	close(repo.block)
	d.Shutdown()
}

func TestDispatcher_RecordAfterShutdown(t *testing.T) {
	repo := &memAuditRepo{}
	d := NewDispatcher(2, repo, zerolog.Nop())
	d.Start(context.Background())
	d.Shutdown()

	// must not panic on a closed channel
	d.Record(domain.AuditEvent{Action: domain.AuditLogin, ActorEmail: "a@example.com", Outcome: "success"})
	d.Shutdown()

	if n := len(repo.snapshot()); n != 0 {
		t.Fatalf("expected nothing persisted after shutdown, got %d", n)
	}
}

func TestDispatcher_CountsLoginOutcomes(t *testing.T) {
	d := NewDispatcher(1, &memAuditRepo{}, zerolog.Nop())
	d.Start(context.Background())
	defer d.Shutdown()

	before := testutil.ToFloat64(metrics.LoginAttemptsTotal.WithLabelValues("throttled"))
	d.Record(domain.AuditEvent{Action: domain.AuditLogin, ActorEmail: "a@example.com", Outcome: "throttled"})
	if got := testutil.ToFloat64(metrics.LoginAttemptsTotal.WithLabelValues("throttled")) - before; got != 1 {
		t.Fatalf("expected one throttled login counted, got %v", got)
	}

	beforeDecision := testutil.ToFloat64(metrics.PolicyDecisionsTotal.WithLabelValues("delete_user", "deny"))
	d.Record(domain.AuditEvent{Action: domain.AuditDeleteUser, ActorEmail: "a@example.com", Outcome: "deny"})
	if got := testutil.ToFloat64(metrics.PolicyDecisionsTotal.WithLabelValues("delete_user", "deny")) - beforeDecision; got != 1 {
		t.Fatalf("expected one policy decision counted, got %v", got)
	}
}
