package handlers

import (
	"net/http"
	"time"

	"safecircle/pkg/cache"
	"safecircle/pkg/config"
	"safecircle/pkg/metrics"
	"safecircle/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the full HTTP surface on the engine.
func RegisterRoutes(r *gin.Engine, h *Handlers, m *metrics.Metrics, store cache.Cache) {
	cfg := config.GlobalConfig

	r.Use(m.Middleware())

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate: cfg.RateLimit,
		PerRouteRates: map[string]string{
			// SOS must never be throttled below what a panicking user can tap.
			"/sos": "600-M",
		},
		SkipPaths:   []string{"/healthCheck", cfg.MetricsPrefix},
		AddHeaders:  true,
		DenyMessage: "too many requests",
	}, nil).WithObserver(middleware.NewPrometheusObserver())
	r.Use(limiter.Middleware())

	r.GET("/healthCheck", h.HealthCheck)
	r.GET(cfg.MetricsPrefix, metrics.Handler())

	// Payment wire surface kept byte-compatible with the mobile client.
	r.POST("/requestMobileMoneyPayment", h.RequestMobileMoneyPayment)
	r.POST("/verifyMobileMoneyPayment", h.VerifyMobileMoneyPayment)
	r.POST("/confirmCardPayment", h.ConfirmCardPayment)

	r.POST("/moneyUnifyWebhook",
		middleware.WebhookSignature("", cfg.WebhookSecret),
		middleware.Idempotency(middleware.IdempotencyConfig{
			TTL:   10 * time.Minute,
			Store: store,
			// the provider keeps retrying until it sees success, and an
			// exact replay lands on the same final status anyway
			OnDuplicate: func(c *gin.Context) {
				c.String(http.StatusOK, "Webhook received")
			},
		}),
		h.MoneyUnifyWebhook,
	)

	r.POST("/sos", h.TriggerSOS)
	r.GET("/sos/queue", h.QueueStatus)
	r.POST("/sos/retry", h.RetryPending)

	users := r.Group("/users/:userId")
	{
		users.GET("/records", h.ListRecords)
		users.POST("/circle", h.AddCircleMember)
		users.GET("/circle", h.ListCircle)
		users.DELETE("/circle/:memberId", h.RemoveCircleMember)
	}
	r.POST("/records/:recordId/safe", h.MarkRecordSafe)
}
