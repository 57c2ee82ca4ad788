package router

import (
	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/warden-data/internal/api/handler"
)

// Options tunes optional middleware
type Options struct {
	MaxBodyBytes      int64
	RequestsPerSecond float64 // 0 disables rate limiting
	Burst             int
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, opts Options) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", handler.Health(deps))

	ingestHandler := handler.NewIngestHandler(deps)

	data := r.Group("/api/data")
	data.Use(BodyLimitMiddleware(opts.MaxBodyBytes))
	data.Use(AuthMiddleware(deps.Users, deps.Logger))
	if opts.RequestsPerSecond > 0 {
		data.Use(RateLimitMiddleware(opts.RequestsPerSecond, opts.Burst))
	}
	{
		data.POST("/orders", ingestHandler.SubmitOrders)
		data.POST("/order-effects", ingestHandler.SubmitOrderEffects)
		data.POST("/sessions", ingestHandler.SubmitSessions)
		data.POST("/rune-history", ingestHandler.SubmitRuneHistory)
	}

	return r
}
