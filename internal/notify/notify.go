package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cuongbtq/warden-data/internal/domain"
)

// Outcome is published once per job when it reaches a terminal state
type Outcome struct {
	TrackingID  string          `json:"tracking_id"`
	Kind        domain.JobKind  `json:"kind"`
	UserID      int64           `json:"user_id"`
	State       domain.JobState `json:"state"`
	Rows        int             `json:"rows"`
	Error       string          `json:"error,omitempty"`
	CompletedAt time.Time       `json:"completed_at"`
}

// Notifier delivers job outcomes to interested parties
type Notifier interface {
	Notify(ctx context.Context, outcome Outcome) error
}

// Publisher is the subset of the RabbitMQ client used here
type Publisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// AMQPNotifier publishes outcomes as JSON messages
type AMQPNotifier struct {
	publisher Publisher
}

// NewAMQPNotifier creates a notifier on top of a RabbitMQ publisher
func NewAMQPNotifier(publisher Publisher) *AMQPNotifier {
	return &AMQPNotifier{publisher: publisher}
}

// Notify publishes outcome. Only terminal states are published.
func (n *AMQPNotifier) Notify(ctx context.Context, outcome Outcome) error {
	if !outcome.State.Terminal() {
		return fmt.Errorf("outcome for %s is not terminal: %s", outcome.TrackingID, outcome.State)
	}

	body, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to encode outcome: %w", err)
	}

	if err := n.publisher.PublishWithRetry(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish outcome for %s: %w", outcome.TrackingID, err)
	}
	return nil
}

// Nop discards outcomes. Used when RabbitMQ is disabled.
type Nop struct{}

func (Nop) Notify(context.Context, Outcome) error { return nil }
