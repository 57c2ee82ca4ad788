package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cuongbtq/warden-data/internal/cache"
	"github.com/cuongbtq/warden-data/internal/domain"
	"github.com/cuongbtq/warden-data/internal/notify"
)

// Dequeuer is the consumer side of the job queue
type Dequeuer interface {
	Dequeue(ctx context.Context) (domain.JobRecord, error)
}

// Converter turns a staged batch into normalized rows
type Converter interface {
	Convert(kind domain.JobKind, payload []byte, userID int64) (*domain.EntitySet, error)
}

// Store is the bulk insert-or-update API of the durable store
type Store interface {
	UpsertOrders(ctx context.Context, rows []domain.Order) error
	UpsertOrderEffects(ctx context.Context, rows []domain.OrderEffect) error
	UpsertSessions(ctx context.Context, rows []domain.Session) error
	UpsertSessionEffects(ctx context.Context, rows []domain.SessionEffect) error
	UpsertSessionRunePrices(ctx context.Context, rows []domain.SessionRunePrice) error
	UpsertRuneHistories(ctx context.Context, rows []domain.RuneHistory) error
	UpsertRuneHistoryEffects(ctx context.Context, rows []domain.RuneHistoryEffect) error
}

// Config holds worker configuration
type Config struct {
	Logger    *slog.Logger
	Queue     Dequeuer
	Cache     cache.StagingCache
	Converter Converter
	Store     Store
	Notifier  notify.Notifier
	// Concurrency is the number of processing loops. Loops may race on
	// overlapping parent ids, so 1 is the safe default.
	Concurrency int
	// JobTimeout bounds a single job. Zero means no deadline.
	JobTimeout time.Duration
}

// Worker drains the job queue and writes normalized rows to the store
type Worker struct {
	logger      *slog.Logger
	queue       Dequeuer
	cache       cache.StagingCache
	converter   Converter
	store       Store
	notifier    notify.Notifier
	concurrency int
	jobTimeout  time.Duration
	workerID    string
	now         func() time.Time
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}

	return &Worker{
		logger:      cfg.Logger,
		queue:       cfg.Queue,
		cache:       cfg.Cache,
		converter:   cfg.Converter,
		store:       cfg.Store,
		notifier:    notifier,
		concurrency: concurrency,
		jobTimeout:  cfg.JobTimeout,
		workerID:    fmt.Sprintf("worker-%s", uuid.NewString()[:8]),
		now:         time.Now,
	}
}

// Start runs the worker pool until ctx is canceled. Cancellation is a clean
// exit: Start returns nil once every loop has finished its current job.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	err := w.runPool(ctx)

	w.logger.Info("Worker stopped",
		slog.String("worker_id", w.workerID),
	)
	return err
}
