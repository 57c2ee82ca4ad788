package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/warden-data/internal/api/dto"
)

const healthCheckTimeout = 3 * time.Second

// Health handles GET /health. The database and the staging cache are
// required; a disconnected broker only degrades the service.
func Health(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		status := "healthy"
		code := http.StatusOK
		checks := map[string]string{}

		required := []struct {
			name    string
			checker HealthChecker
		}{
			{"database", deps.DB},
			{"cache", deps.Cache},
		}
		for _, r := range required {
			if r.checker == nil {
				continue
			}
			if err := r.checker.HealthCheck(ctx); err != nil {
				deps.Logger.Error("Health check failed",
					slog.String("component", r.name),
					slog.String("error", err.Error()),
				)
				checks[r.name] = "unavailable"
				status = "unhealthy"
				code = http.StatusServiceUnavailable
				continue
			}
			checks[r.name] = "ok"
		}

		if deps.Broker != nil {
			if deps.Broker.IsConnected() {
				checks["broker"] = "connected"
			} else {
				checks["broker"] = "disconnected"
				if status == "healthy" {
					status = "degraded"
				}
			}
		}

		c.JSON(code, dto.HealthResponse{
			Status:  status,
			Service: deps.ServiceName,
			Version: deps.Version,
			Queue: dto.QueueStatus{
				Depth:    deps.Queue.Len(),
				Capacity: deps.Queue.Cap(),
			},
			Checks: checks,
		})
	}
}
