package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cuongbtq/warden-data/internal/cache"
	"github.com/cuongbtq/warden-data/internal/domain"
)

// DefaultStagingTTL bounds how long an unprocessed batch is kept
const DefaultStagingTTL = time.Hour

// Enqueuer accepts job records for background processing
type Enqueuer interface {
	Enqueue(ctx context.Context, job domain.JobRecord) error
}

// Receipt is returned to the producer once a batch is accepted
type Receipt struct {
	TrackingID string
	Received   int
}

// Service is the producer side of the pipeline: stage, then enqueue
type Service struct {
	cache  cache.StagingCache
	queue  Enqueuer
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new ingestion service
func NewService(staging cache.StagingCache, queue Enqueuer, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultStagingTTL
	}
	return &Service{
		cache:  staging,
		queue:  queue,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Submit stages a batch of count records under a fresh tracking id and
// enqueues it. The batch is staged before enqueue, so the worker never sees a
// job whose payload was not written. Enqueue may block while the queue is full.
func (s *Service) Submit(ctx context.Context, userID int64, kind domain.JobKind, batch any, count int) (*Receipt, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownJobKind, kind)
	}

	payload, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}

	job := domain.JobRecord{
		ID:         uuid.NewString(),
		Kind:       kind,
		UserID:     userID,
		EnqueuedAt: s.now(),
	}

	if err := s.cache.Put(ctx, job.ID, payload, s.ttl); err != nil {
		s.logger.Error("Failed to stage batch",
			slog.String("tracking_id", job.ID),
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheWrite, err)
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		// The producer gave up while waiting for space; nothing will read this entry.
		if rmErr := s.cache.Remove(context.WithoutCancel(ctx), job.ID); rmErr != nil {
			s.logger.Warn("Failed to remove orphaned staged batch",
				slog.String("tracking_id", job.ID),
				slog.Any("error", rmErr),
			)
		}
		return nil, fmt.Errorf("failed to enqueue batch: %w", err)
	}

	s.logger.Info("Batch accepted",
		slog.String("tracking_id", job.ID),
		slog.String("kind", string(kind)),
		slog.Int64("user_id", userID),
		slog.String("state", string(domain.JobStateEnqueued)),
		slog.Int("records", count),
		slog.Int("bytes", len(payload)),
	)

	return &Receipt{TrackingID: job.ID, Received: count}, nil
}
