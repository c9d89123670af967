package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/adapters/metrics"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
)

type job struct {
	kind ports.JobKind
	name string
	fn   func(ctx context.Context) error
}

// Pool runs fanout side effects on a fixed set of workers fed by a bounded
// queue. Email jobs are refused once the queue passes its high-water mark so
// realtime jobs keep the remaining room.
type Pool struct {
	logger       *slog.Logger
	queue        chan job
	workers      int
	emailLimit   int
	drainTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

type Config struct {
	Workers   int
	QueueSize int
	// EmailShare is the fraction of the queue email jobs may fill.
	EmailShare   float64
	DrainTimeout time.Duration
}

func NewPool(logger *slog.Logger, cfg Config) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.EmailShare <= 0 || cfg.EmailShare > 1 {
		cfg.EmailShare = 0.75
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 10 * time.Second
	}
	emailLimit := int(float64(cfg.QueueSize) * cfg.EmailShare)
	if emailLimit >= cfg.QueueSize {
		emailLimit = cfg.QueueSize - 1
	}
	return &Pool{
		logger:       logger,
		queue:        make(chan job, cfg.QueueSize),
		workers:      cfg.Workers,
		emailLimit:   emailLimit,
		drainTimeout: cfg.DrainTimeout,
	}
}

// Dispatch enqueues fn without blocking. It returns false when the job was
// dropped because the queue is past the limit for its kind or the pool is
// shut down.
func (p *Pool) Dispatch(kind ports.JobKind, name string, fn func(ctx context.Context) error) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		metrics.FanoutJobsTotal.WithLabelValues(string(kind), "dropped").Inc()
		return false
	}
	if kind == ports.JobEmail && len(p.queue) >= p.emailLimit {
		metrics.FanoutJobsTotal.WithLabelValues(string(kind), "dropped").Inc()
		return false
	}
	select {
	case p.queue <- job{kind: kind, name: name, fn: fn}:
		metrics.FanoutQueueDepth.Set(float64(len(p.queue)))
		return true
	default:
		metrics.FanoutJobsTotal.WithLabelValues(string(kind), "dropped").Inc()
		return false
	}
}

// Run starts the workers and blocks until ctx is done. Queued jobs are then
// drained with a bounded deadline.
func (p *Pool) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.work(ctx)
		}()
	}
	<-ctx.Done()
	wg.Wait()

	p.mu.Lock()
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.drainTimeout)
	defer cancel()
	drained := 0
	for j := range p.queue {
		if drainCtx.Err() != nil {
			metrics.FanoutJobsTotal.WithLabelValues(string(j.kind), "dropped").Inc()
			continue
		}
		p.execute(drainCtx, j)
		drained++
	}
	p.logger.Info("fanout pool stopped",
		"module", "dispatch.pool",
		"layer", "adapter",
		"operation", "pool_shutdown",
		"outcome", "success",
		"drained_jobs", drained,
	)
	return nil
}

func (p *Pool) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.queue:
			p.execute(ctx, j)
		}
	}
}

func (p *Pool) execute(ctx context.Context, j job) {
	metrics.FanoutQueueDepth.Set(float64(len(p.queue)))
	defer func() {
		if r := recover(); r != nil {
			metrics.FanoutJobsTotal.WithLabelValues(string(j.kind), "panic").Inc()
			p.logger.ErrorContext(ctx, "fanout job panicked",
				"module", "dispatch.pool",
				"layer", "adapter",
				"operation", "run_"+string(j.kind),
				"outcome", "failure",
				"job", j.name,
				"panic", r,
			)
		}
	}()
	if err := j.fn(ctx); err != nil {
		metrics.FanoutJobsTotal.WithLabelValues(string(j.kind), "failure").Inc()
		return
	}
	metrics.FanoutJobsTotal.WithLabelValues(string(j.kind), "success").Inc()
}
