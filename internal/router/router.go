package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/Producdevity/EmuReady-sub005/internal/handler"
	"github.com/Producdevity/EmuReady-sub005/internal/metrics"
	"github.com/Producdevity/EmuReady-sub005/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Spam   *handler.SpamHandler
	Score  *handler.ScoreHandler
	Health *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(metrics.Middleware())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))

	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// Spam routes
	spamLimiter := middleware.NewSpamCheckRateLimiter()
	api.Post("/spam/check", spamLimiter.Handler(), h.Spam.Check)

	// Score routes
	scores := api.Group("/scores", middleware.NewScoreRateLimiter().Handler())
	scores.Get("/emulators", h.Score.Emulators)
	scores.Get("/systems", h.Score.Systems)
	scores.Get("/overview", h.Score.Overview)
	scores.Get("/listings/:listingId", h.Score.Listing)
}
