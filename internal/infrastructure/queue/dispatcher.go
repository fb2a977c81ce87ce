package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/articlehub/content-service/internal/api/metrics"
	"github.com/articlehub/content-service/internal/core/domain"
	"github.com/articlehub/content-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
)

// Dispatcher routes audit events to a fixed set of workers using consistent
// hashing on the actor key, preserving per-actor ordering. Record never
// blocks the request path: when a worker channel is full the event is
// dropped and counted.
type Dispatcher struct {
	workers []chan domain.AuditEvent
	repo    ports.AuditRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ ports.AuditSink = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or after Shutdown has drained their channels.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues an event for persistence and updates the auth metrics.
func (d *Dispatcher) Record(event domain.AuditEvent) {
	observe(event)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.AuditDroppedTotal.Inc()
		return
	}

	idx := d.shardIndex(event.Key())
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditDroppedTotal.Inc()
		d.log.Warn().
			Str("action", string(event.Action)).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// Shutdown stops accepting events and waits for queued ones to be written.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps an actor key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.persist(ctx, id, event)
		}
	}
}

func (d *Dispatcher) persist(ctx context.Context, id int, event domain.AuditEvent) {
	insertCtx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()

	if err := d.repo.Insert(insertCtx, event); err != nil {
		d.log.Error().Err(err).
			Str("action", string(event.Action)).
			Str("outcome", event.Outcome).
			Int("worker_id", id).
			Msg("audit event persistence failed")
	}
}

func observe(event domain.AuditEvent) {
	switch event.Action {
	case domain.AuditLogin:
		metrics.LoginAttemptsTotal.WithLabelValues(event.Outcome).Inc()
	case domain.AuditDeleteUser, domain.AuditPromote, domain.AuditRevoke:
		metrics.PolicyDecisionsTotal.WithLabelValues(string(event.Action), event.Outcome).Inc()
	}
}
