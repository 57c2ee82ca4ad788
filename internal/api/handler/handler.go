package handler

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/warden-data/internal/domain"
	"github.com/cuongbtq/warden-data/internal/ingest"
)

// UserContextKey is the gin context key holding the authenticated *domain.User
const UserContextKey = "user"

// Submitter stages and enqueues an accepted batch
type Submitter interface {
	Submit(ctx context.Context, userID int64, kind domain.JobKind, batch any, count int) (*ingest.Receipt, error)
}

// QueueStats exposes queue occupancy
type QueueStats interface {
	Len() int
	Cap() int
}

// UserResolver maps an API token to its active owner
type UserResolver interface {
	GetActiveUserByToken(ctx context.Context, token string) (*domain.User, error)
}

// HealthChecker verifies a backing service is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// BrokerStatus reports the outcome event publisher connection
type BrokerStatus interface {
	IsConnected() bool
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger      *slog.Logger
	ServiceName string
	Version     string
	Ingest      Submitter
	Queue       QueueStats
	Users       UserResolver
	DB          HealthChecker
	Cache       HealthChecker
	// Broker is nil when outcome events are disabled
	Broker BrokerStatus
}

// IngestHandler handles batch ingestion requests
type IngestHandler struct {
	logger *slog.Logger
	ingest Submitter
}

// NewIngestHandler creates a new IngestHandler instance
func NewIngestHandler(deps *Dependencies) *IngestHandler {
	return &IngestHandler{
		logger: deps.Logger,
		ingest: deps.Ingest,
	}
}

// CurrentUser returns the user stored by the auth middleware
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(UserContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok && user != nil
}
