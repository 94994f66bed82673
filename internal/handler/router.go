package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gratitude-api/internal/middleware"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Letters *LetterHandler
	Surveys *SurveyHandler
	Metrics *MetricsHandler
	// Limiter throttles writes and password checks. Nil disables it.
	Limiter *middleware.IPRateLimiter
}

// Register mounts the letter and survey routes on group.
func Register(group gin.IRoutes, h Handlers) {
	limited := middleware.RateLimitByIP(h.Limiter)

	group.POST("/letters", limited, h.Letters.Create)
	group.GET("/letters", h.Letters.List)

	group.POST("/surveys", limited, h.Surveys.Create)
	group.GET("/surveys", h.Surveys.List)
	group.GET("/surveys/:id", h.Surveys.Get)
	group.PUT("/surveys/:id", limited, h.Surveys.Update)
	group.POST("/surveys/:id/verify", limited, h.Surveys.Verify)
	group.POST("/surveys/:id/responses", limited, h.Surveys.Respond)
	group.GET("/surveys/:id/stats", h.Surveys.Stats)
	group.POST("/surveys/:id/export", limited, h.Surveys.Export)
}

// RegisterObservability mounts health, readiness and metrics endpoints.
func RegisterObservability(r gin.IRoutes, h *MetricsHandler) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
	r.GET("/metrics/summary", h.Summary)
}
