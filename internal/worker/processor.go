package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/warden-data/internal/domain"
	"github.com/cuongbtq/warden-data/internal/notify"
)

const notifyTimeout = 5 * time.Second

// handleJob processes one job, logs its terminal state and publishes the outcome
func (w *Worker) handleJob(ctx context.Context, job domain.JobRecord) domain.JobState {
	start := w.now()

	w.logger.Debug("Processing job",
		slog.String("job_id", job.ID),
		slog.String("kind", string(job.Kind)),
		slog.String("state", string(domain.JobStateProcessing)),
		slog.Duration("queued_for", start.Sub(job.EnqueuedAt)),
	)

	rows, err := w.processJob(ctx, job)

	state := domain.JobStateCommitted
	outcome := notify.Outcome{
		TrackingID: job.ID,
		Kind:       job.Kind,
		UserID:     job.UserID,
		Rows:       rows,
	}

	switch {
	case err == nil:
		w.logger.Info("Job committed",
			slog.String("job_id", job.ID),
			slog.String("kind", string(job.Kind)),
			slog.String("state", string(state)),
			slog.Int("rows", rows),
			slog.Duration("duration", w.now().Sub(start)),
		)
	case errors.Is(err, domain.ErrPayloadNotFound):
		state = domain.JobStateDropped
		outcome.Error = err.Error()
		w.logger.Warn("Job dropped, staged payload missing",
			slog.String("job_id", job.ID),
			slog.String("kind", string(job.Kind)),
			slog.String("state", string(state)),
		)
	default:
		state = domain.JobStateDropped
		outcome.Error = err.Error()
		w.logger.Error("Job dropped",
			slog.String("job_id", job.ID),
			slog.String("kind", string(job.Kind)),
			slog.String("state", string(state)),
			slog.Any("error", err),
		)
	}

	outcome.State = state
	outcome.CompletedAt = w.now()

	nctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if nerr := w.notifier.Notify(nctx, outcome); nerr != nil {
		w.logger.Warn("Failed to publish job outcome",
			slog.String("job_id", job.ID),
			slog.Any("error", nerr),
		)
	}

	return state
}

// processJob fetches, converts and stores one job. It returns the number of
// rows written. On failure the staged payload is left for TTL expiry.
func (w *Worker) processJob(ctx context.Context, job domain.JobRecord) (int, error) {
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	// Step 1: fetch staged payload
	payload, found, err := w.cache.Get(ctx, job.ID)
	if err != nil {
		return 0, domain.NewProcessingError(job, domain.StageFetch, err)
	}
	if !found {
		return 0, domain.NewProcessingError(job, domain.StageFetch, domain.ErrPayloadNotFound)
	}

	// Step 2: normalize
	set, err := w.converter.Convert(job.Kind, payload, job.UserID)
	if err != nil {
		return 0, domain.NewProcessingError(job, domain.StageConvert, err)
	}

	// Step 3: upsert, header rows before children
	if err := w.writeEntities(ctx, set); err != nil {
		return 0, domain.NewProcessingError(job, domain.StageStore, err)
	}

	// Step 4: cleanup. Rows are already durable, so a failed delete only
	// leaves the entry to expire.
	if err := w.cache.Remove(ctx, job.ID); err != nil {
		w.logger.Warn("Failed to remove staged payload",
			slog.String("job_id", job.ID),
			slog.Any("error", domain.NewProcessingError(job, domain.StageCleanup, err)),
		)
	}

	return set.RowCount(), nil
}

// writeEntities upserts every row set. There is no transaction across
// entity types; a failure leaves earlier sets written.
func (w *Worker) writeEntities(ctx context.Context, set *domain.EntitySet) error {
	steps := []struct {
		table string
		rows  int
		write func() error
	}{
		{"orders", len(set.Orders), func() error { return w.store.UpsertOrders(ctx, set.Orders) }},
		{"order_effects", len(set.OrderEffects), func() error { return w.store.UpsertOrderEffects(ctx, set.OrderEffects) }},
		{"sessions", len(set.Sessions), func() error { return w.store.UpsertSessions(ctx, set.Sessions) }},
		{"rune_histories", len(set.RuneHistories), func() error { return w.store.UpsertRuneHistories(ctx, set.RuneHistories) }},
		{"session_effects", len(set.SessionEffects), func() error { return w.store.UpsertSessionEffects(ctx, set.SessionEffects) }},
		{"session_rune_prices", len(set.SessionRunePrices), func() error { return w.store.UpsertSessionRunePrices(ctx, set.SessionRunePrices) }},
		{"rune_history_effects", len(set.RuneHistoryEffects), func() error { return w.store.UpsertRuneHistoryEffects(ctx, set.RuneHistoryEffects) }},
	}

	for _, step := range steps {
		if step.rows == 0 {
			continue
		}
		if err := step.write(); err != nil {
			return fmt.Errorf("write %s: %w", step.table, err)
		}
	}
	return nil
}
