// Package job runs detached background work on a bounded in-memory queue
// drained by a fixed pool of workers. Jobs are not persisted; a job that
// cannot be enqueued is reported to the caller and dropped.
package job
