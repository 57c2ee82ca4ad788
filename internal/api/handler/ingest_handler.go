package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/warden-data/internal/api/dto"
	"github.com/cuongbtq/warden-data/internal/domain"
)

// SubmitOrders handles POST /api/data/orders
func (h *IngestHandler) SubmitOrders(c *gin.Context) {
	submitBatch[domain.OrderDTO](h, c, domain.JobKindOrder)
}

// SubmitOrderEffects handles POST /api/data/order-effects
func (h *IngestHandler) SubmitOrderEffects(c *gin.Context) {
	submitBatch[domain.OrderEffectDTO](h, c, domain.JobKindOrderEffect)
}

// SubmitSessions handles POST /api/data/sessions
func (h *IngestHandler) SubmitSessions(c *gin.Context) {
	submitBatch[domain.SessionDTO](h, c, domain.JobKindSession)
}

// SubmitRuneHistory handles POST /api/data/rune-history
func (h *IngestHandler) SubmitRuneHistory(c *gin.Context) {
	submitBatch[domain.RuneHistoryDTO](h, c, domain.JobKindRuneHistory)
}

// submitBatch validates a JSON array of T and hands it to the ingestion
// service. Processing happens later; the reply only covers acceptance.
func submitBatch[T any](h *IngestHandler, c *gin.Context, kind domain.JobKind) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var batch []T
	if err := c.ShouldBindJSON(&batch); err != nil {
		h.logger.Warn("Invalid request body",
			slog.String("kind", string(kind)),
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	if len(batch) == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Batch must contain at least one record"})
		return
	}

	receipt, err := h.ingest.Submit(c.Request.Context(), user.ID, kind, batch, len(batch))
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// caller gave up while the queue was full
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Ingestion queue is full"})
		case errors.Is(err, domain.ErrCacheWrite):
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to stage batch"})
		default:
			h.logger.Error("Failed to submit batch",
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to submit batch"})
		}
		return
	}

	c.JSON(http.StatusAccepted, dto.AcceptedResponse{
		TrackingID: receipt.TrackingID,
		Received:   receipt.Received,
	})
}
