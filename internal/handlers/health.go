package handlers

import (
	"context"
	"time"

	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const healthTimeout = 2 * time.Second

// DBPinger reports whether the database is reachable.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// DBPingFunc adapts a function to DBPinger.
type DBPingFunc func(ctx context.Context) error

func (f DBPingFunc) Ping(ctx context.Context) error { return f(ctx) }

// CachePinger is satisfied by cache.CacheService.
type CachePinger interface {
	HealthCheck(ctx context.Context) error
	PoolStats() *redis.PoolStats
}

type HealthHandler struct {
	db      DBPinger
	cache   CachePinger
	version string
}

// NewHealthHandler accepts a nil cache when Redis is not configured.
func NewHealthHandler(db DBPinger, cache CachePinger, version string) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, version: version}
}

// Check returns 200 when the database answers and 503 otherwise. Redis being
// down degrades the status but is not fatal.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	status := "ok"
	code := fiber.StatusOK

	database := "connected"
	if err := h.db.Ping(ctx); err != nil {
		database = "unavailable"
		status = "error"
		code = fiber.StatusServiceUnavailable
	}

	redisStatus := "disabled"
	if h.cache != nil {
		redisStatus = "connected"
		if err := h.cache.HealthCheck(ctx); err != nil {
			redisStatus = "unavailable"
			if status == "ok" {
				status = "degraded"
			}
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"status":  status,
		"version": h.version,
		"services": fiber.Map{
			"database": database,
			"redis":    redisStatus,
		},
	})
}

// CacheStats exposes the Redis connection pool counters.
func (h *HealthHandler) CacheStats(c *fiber.Ctx) error {
	if h.cache == nil {
		return response.Success(c, "Cache disabled", nil)
	}
	poolStats := h.cache.PoolStats()

	return response.Success(c, "", fiber.Map{
		"hits":       poolStats.Hits,
		"misses":     poolStats.Misses,
		"timeouts":   poolStats.Timeouts,
		"totalConns": poolStats.TotalConns,
		"idleConns":  poolStats.IdleConns,
		"staleConns": poolStats.StaleConns,
	})
}
