// Package worker runs queued recompute jobs in the background.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/qualify/internal/adapters/mq/queue"
	"github.com/okian/qualify/pkg/logger"
)

const poolShutdownTimeout = 30 * time.Second

// Handler executes one job.
type Handler interface {
	Handle(ctx context.Context, job queue.Job) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, job queue.Job) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, job queue.Job) error { return f(ctx, job) }

// Source is where workers receive jobs from.
type Source interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker consumes jobs until its source closes, ctx ends or it is shut down.
type Worker struct {
	source  Source
	handler Handler
	name    string

	shutdown chan struct{}
	done     chan struct{}
	logger   logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(source Source, handler Handler, opts ...Option) *Worker {
	w := &Worker{
		source:   source,
		handler:  handler,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get()
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes jobs until stopped. It blocks.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			w.drain(ctx, jobs)
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// drain handles jobs that were already queued when shutdown was requested.
func (w *Worker) drain(ctx context.Context, jobs <-chan queue.Job) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		default:
			return
		}
	}
}

func (w *Worker) process(ctx context.Context, job queue.Job) {
	start := time.Now()
	err := w.handler.Handle(ctx, job)
	fields := []logger.Field{
		logger.String("job", job.ID),
		logger.String("trigger", job.Trigger),
		logger.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
	}
	if err != nil {
		w.logger.Error(ctx, "recompute job failed", append(fields, logger.Error(err))...)
		return
	}
	w.logger.Debug(ctx, "recompute job done", fields...)
}

// Shutdown stops the worker once the jobs already queued are handled.
func (w *Worker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages several workers sharing one source.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
	logger  logger.Logger
}

// NewPool creates count workers. count < 1 is treated as 1.
func NewPool(count int, source Source, handler Handler, opts ...Option) *Pool {
	if count < 1 {
		count = 1
	}
	p := &Pool{workers: make([]*Worker, count), logger: logger.Get().Named("worker-pool")}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewWorker(source, handler, wopts...)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Shutdown stops all workers, waiting at most poolShutdownTimeout.
func (p *Pool) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var firstErr error
	for i, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	p.wg.Wait()
	return firstErr
}
