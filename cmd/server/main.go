package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Producdevity/EmuReady-sub005/internal/config"
	"github.com/Producdevity/EmuReady-sub005/internal/db"
	"github.com/Producdevity/EmuReady-sub005/internal/handler"
	"github.com/Producdevity/EmuReady-sub005/internal/metrics"
	"github.com/Producdevity/EmuReady-sub005/internal/middleware"
	"github.com/Producdevity/EmuReady-sub005/internal/repository"
	"github.com/Producdevity/EmuReady-sub005/internal/router"
	"github.com/Producdevity/EmuReady-sub005/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "trust-engine")
	log := middleware.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	cache := service.NewCacheService(cfg.RedisURL, cfg.ScoreCacheTTL, log)
	defer cache.Close()

	metrics.Register(pool)

	spamSvc := service.NewSpamService(repository.NewContentRepo(pool), cfg.SpamConfig(), log)
	compatSvc := service.NewCompatibilityService(
		repository.NewListingRepo(pool),
		service.NewScoreService(cfg.ScoringConfig()),
		cache,
	)

	app := fiber.New(fiber.Config{
		AppName:      "EmuReady Trust Engine",
		ServerHeader: "EmuReady",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		BodyLimit:    middleware.MaxRequestBodyBytes,
	})

	router.Setup(app, &router.Handlers{
		Spam:   handler.NewSpamHandler(spamSvc),
		Score:  handler.NewScoreHandler(compatSvc),
		Health: handler.NewHealthHandler(pool, spamSvc, cache),
	}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("trust engine starting")
	if err := app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
