package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/cuongbtq/warden-data/internal/domain"
)

// runPool spawns N identical loops and waits for all of them
func (w *Worker) runPool(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < w.concurrency; i++ {
		workerName := fmt.Sprintf("%s-%d", w.workerID, i)
		g.Go(func() error {
			return w.workerLoop(gctx, workerName)
		})
	}

	w.logger.Info("Worker pool spawned successfully",
		slog.Int("worker_count", w.concurrency),
	)

	return g.Wait()
}

// workerLoop is the main processing loop for each worker goroutine
func (w *Worker) workerLoop(ctx context.Context, workerName string) error {
	w.logger.Debug("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				w.logger.Info("Worker goroutine stopping - context canceled",
					slog.String("worker_name", workerName),
				)
				return nil
			}
			return fmt.Errorf("%s: dequeue: %w", workerName, err)
		}

		w.logger.Debug("Worker received job",
			slog.String("worker_name", workerName),
			slog.String("job_id", job.ID),
			slog.String("kind", string(job.Kind)),
			slog.String("state", string(domain.JobStateDequeued)),
		)

		// a dequeued job runs to completion even if shutdown starts meanwhile
		w.handleJob(context.WithoutCancel(ctx), job)
	}
}
