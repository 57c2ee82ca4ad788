package queue

import (
	"context"
	"fmt"

	"github.com/cuongbtq/warden-data/internal/domain"
)

// DefaultCapacity is used when a non-positive capacity is configured
const DefaultCapacity = 100

// JobQueue is a bounded in-memory FIFO of job records. Enqueue blocks while
// the queue is full, which is the only backpressure applied to producers.
// Jobs still queued when the process exits are lost.
type JobQueue struct {
	jobs chan domain.JobRecord
}

// New creates a queue holding at most capacity jobs
func New(capacity int) *JobQueue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &JobQueue{jobs: make(chan domain.JobRecord, capacity)}
}

// Enqueue adds job, waiting for free space. It fails only if ctx is done
// before the job is accepted.
func (q *JobQueue) Enqueue(ctx context.Context, job domain.JobRecord) error {
	select {
	case q.jobs <- job:
		return nil
	default:
	}

	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("enqueue job %s: %w", job.ID, ctx.Err())
	}
}

// Dequeue returns the oldest job, waiting while the queue is empty. When ctx
// is canceled first it returns ctx.Err() unwrapped, so callers can treat it
// as a shutdown rather than a failure.
func (q *JobQueue) Dequeue(ctx context.Context) (domain.JobRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.JobRecord{}, err
	}

	select {
	case job := <-q.jobs:
		return job, nil
	case <-ctx.Done():
		return domain.JobRecord{}, ctx.Err()
	}
}

// Len returns the number of queued jobs
func (q *JobQueue) Len() int {
	return len(q.jobs)
}

// Cap returns the queue capacity
func (q *JobQueue) Cap() int {
	return cap(q.jobs)
}
