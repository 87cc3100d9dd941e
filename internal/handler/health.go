package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Producdevity/EmuReady-sub005/internal/model"
	"github.com/Producdevity/EmuReady-sub005/internal/service"
)

const readinessTimeout = 3 * time.Second

type HealthHandler struct {
	pool    *pgxpool.Pool
	spam    *service.SpamService
	cache   *service.CacheService
	startAt time.Time
}

func NewHealthHandler(pool *pgxpool.Pool, spam *service.SpamService, cache *service.CacheService) *HealthHandler {
	return &HealthHandler{
		pool:    pool,
		spam:    spam,
		cache:   cache,
		startAt: time.Now(),
	}
}

type dependencyCheck struct {
	Status     string `json:"status"`
	LatencyMS  *int64 `json:"latency_ms,omitempty"`
	Error      string `json:"error,omitempty"`
	TTLSeconds int    `json:"ttl_seconds,omitempty"`
}

type spamPipelineStatus struct {
	Detectors []model.DetectionMethod `json:"detectors"`
	TimeoutMS int64                   `json:"timeout_ms"`
}

type readinessResponse struct {
	Status        string                     `json:"status"`
	Checks        map[string]dependencyCheck `json:"checks"`
	SpamPipeline  spamPipelineStatus         `json:"spam_pipeline"`
	UptimeSeconds int                        `json:"uptime_seconds"`
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready. The service is degraded when the database
// is unreachable or no spam detector is enabled. The score cache is reported
// but never degrades readiness.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), readinessTimeout)
	defer cancel()

	resp := readinessResponse{
		Status: "healthy",
		Checks: map[string]dependencyCheck{
			"database": h.checkDatabase(ctx),
			"cache":    h.checkCache(ctx),
		},
		SpamPipeline: spamPipelineStatus{
			Detectors: h.spam.Methods(),
			TimeoutMS: h.spam.DetectorTimeout().Milliseconds(),
		},
		UptimeSeconds: int(time.Since(h.startAt).Seconds()),
	}

	if resp.Checks["database"].Status != "up" || len(resp.SpamPipeline.Detectors) == 0 {
		resp.Status = "degraded"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) dependencyCheck {
	if h.pool == nil {
		return dependencyCheck{Status: "down", Error: "not configured"}
	}
	return timedPing(func() error { return h.pool.Ping(ctx) })
}

func (h *HealthHandler) checkCache(ctx context.Context) dependencyCheck {
	ttl := int(h.cache.TTL().Seconds())
	rdb := h.cache.Client()
	if rdb == nil {
		return dependencyCheck{Status: "disabled", TTLSeconds: ttl}
	}
	check := timedPing(func() error { return rdb.Ping(ctx).Err() })
	check.TTLSeconds = ttl
	return check
}

func timedPing(ping func() error) dependencyCheck {
	start := time.Now()
	err := ping()
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return dependencyCheck{Status: "down", LatencyMS: &latency, Error: "connection failed"}
	}
	return dependencyCheck{Status: "up", LatencyMS: &latency}
}
