package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// WorkerPool manages a pool of worker goroutines that process jobs
// from a queue. Workers exit once the queue is closed and drained, or
// when Stop's context expires.
type WorkerPool struct {
	queue       QueueReader
	workerCount int
	jobTimeout  time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	// errorHandler is called when a job fails or panics.
	// If nil, errors are only logged
	errorHandler func(job Job, err error)
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start.
	// If zero or negative, defaults to 1
	WorkerCount int

	// JobTimeout bounds a single Execute call. Zero means no timeout.
	JobTimeout time.Duration
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
		JobTimeout:  30 * time.Second,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration.
// A nil logger falls back to slog.Default().
func NewWorkerPool(queue QueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "worker_pool"))

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		queue:       queue,
		workerCount: workerCount,
		jobTimeout:  config.JobTimeout,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler sets a handler for job failures. Call before Start.
func (p *WorkerPool) SetErrorHandler(handler func(job Job, err error)) {
	p.errorHandler = handler
}

// Start launches the worker goroutines.
func (p *WorkerPool) Start() {
	p.logger.Info("starting worker pool", "worker_count", p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop waits for the workers to drain the closed queue. If ctx expires
// first, running jobs are cancelled and Stop returns ctx.Err().
// The queue must be closed before Stop is called.
func (p *WorkerPool) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("worker pool stopped")
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		p.logger.Warn("worker pool stopped before queue drained", "error", ctx.Err())
		return ctx.Err()
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	log := p.logger.With("worker_id", id)

	for {
		select {
		case <-p.ctx.Done():
			return
		case j, ok := <-p.queue.GetChannel():
			if !ok {
				log.Debug("job queue closed, worker exiting")
				return
			}
			p.run(log, j)
		}
	}
}

func (p *WorkerPool) run(log *slog.Logger, j Job) {
	ctx := p.ctx
	if p.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.jobTimeout)
		defer cancel()
	}

	start := time.Now()
	err := p.execute(ctx, j)
	if err != nil {
		log.Error("job execution failed",
			"job_id", j.ID(),
			"job_type", j.Type(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		if p.errorHandler != nil {
			p.errorHandler(j, err)
		}
		return
	}

	log.Debug("job completed",
		"job_id", j.ID(),
		"job_type", j.Type(),
		"duration_ms", time.Since(start).Milliseconds())
}

// execute converts a panicking job into an error so one bad job cannot kill a worker.
func (p *WorkerPool) execute(ctx context.Context, j Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return j.Execute(ctx)
}
