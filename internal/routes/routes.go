package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	gatherer prometheus.Gatherer,
	healthHandler *handlers.HealthHandler,
	moderationHandler *handlers.ModerationHandler,
	reputationHandler *handlers.ReputationHandler,
) {
	// Scraped from inside the cluster; not rate limited.
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Report intake (protected)
	api.Post("/reports", middleware.JWTProtected(cfg), moderationHandler.CreateReport)

	// Admin panel and cron (admin token or admin JWT)
	admin := api.Group("/admin", middleware.AdminJWT(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/moderation/reports", moderationHandler.ListReports)
	admin.Post("/moderation/sweep", moderationHandler.RunSweep)

	admin.Post("/reputation/recompute", reputationHandler.RecomputeBatch)
	admin.Post("/reputation/:id/recompute", reputationHandler.Recompute)
	admin.Delete("/evaluations/:id", reputationHandler.DeleteEvaluation)
}
