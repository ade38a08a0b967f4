package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"drop-bot/internal/adapters/metrics"

	"github.com/cespare/xxhash/v2"
)

const persistQueueSize = 256

type WriteFunc func(ctx context.Context) error

type writeJob struct {
	key string
	op  string
	fn  WriteFunc
}

// Persister applies storage writes in the background. Jobs sharing a key
// always land on the same worker, so writes for one guild or user are applied
// in the order they were submitted. Failures are logged and not retried.
type Persister struct {
	queues  []chan writeJob
	timeout time.Duration
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewPersister(workers int, timeout time.Duration) *Persister {
	workers = max(workers, 1)
	p := &Persister{
		queues:  make([]chan writeJob, workers),
		timeout: timeout,
	}
	for i := range p.queues {
		p.queues[i] = make(chan writeJob, persistQueueSize)
		p.wg.Add(1)
		go p.work(p.queues[i])
	}
	return p
}

// Submit queues fn for key without blocking. When the key's queue is full or
// the persister is closed it logs and drops the write.
func (p *Persister) Submit(key, op string, fn WriteFunc) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		slog.Warn("Persister closed, dropping write", "key", key, "op", op)
		metrics.PersistenceWrites.WithLabelValues(op, "dropped").Inc()
		return
	}

	select {
	case p.queues[p.shard(key)] <- writeJob{key: key, op: op, fn: fn}:
	default:
		// Memory stays authoritative. The next write for key carries a full snapshot.
		slog.Warn("Persist queue full, dropping write", "key", key, "op", op)
		metrics.PersistenceWrites.WithLabelValues(op, "dropped").Inc()
	}
}

// Close stops accepting writes and waits for queued ones to finish.
func (p *Persister) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, q := range p.queues {
		close(q)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Persister) shard(key string) int {
	return int(xxhash.Sum64String(key) % uint64(len(p.queues)))
}

func (p *Persister) work(jobs <-chan writeJob) {
	defer p.wg.Done()
	for job := range jobs {
		p.apply(job)
	}
}

func (p *Persister) apply(job writeJob) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := job.fn(ctx); err != nil {
		slog.Error("Failed to persist state", "key", job.key, "op", job.op, "error", err)
		metrics.PersistenceWrites.WithLabelValues(job.op, "failure").Inc()
		return
	}
	metrics.PersistenceWrites.WithLabelValues(job.op, "success").Inc()
}
