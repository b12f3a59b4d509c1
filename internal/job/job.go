package job

import (
	"context"

	"github.com/google/uuid"
)

// Job represents a unit of background work.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier, used in logs
	Type() string

	// Execute runs the job. ctx is owned by the worker pool, not by the
	// request that enqueued the job.
	Execute(ctx context.Context) error
}

// QueueReader provides read-only access to the job channel
// allowing workers to consume jobs without the ability to enqueue
type QueueReader interface {
	GetChannel() <-chan Job
}

// QueueWriter provides write access to the job queue
type QueueWriter interface {
	// Enqueue adds a job to the queue without blocking.
	// Returns ErrQueueFull or ErrQueueClosed when the job is not accepted.
	Enqueue(job Job) error

	// Close closes the queue, preventing further submission
	Close()
}

// FuncJob adapts a function to the Job interface.
type FuncJob struct {
	id  uuid.UUID
	typ string
	fn  func(ctx context.Context) error
}

var _ Job = (*FuncJob)(nil)

// NewFuncJob creates a job of type typ that runs fn.
func NewFuncJob(typ string, fn func(ctx context.Context) error) *FuncJob {
	return &FuncJob{id: uuid.New(), typ: typ, fn: fn}
}

// ID implements Job.
func (j *FuncJob) ID() uuid.UUID { return j.id }

// Type implements Job.
func (j *FuncJob) Type() string { return j.typ }

// Execute implements Job.
func (j *FuncJob) Execute(ctx context.Context) error { return j.fn(ctx) }
