package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-events/utils/cache"
	"github.com/sahilchouksey/campus-events/utils/response"
	"gorm.io/gorm"
)

// HealthHandler answers liveness probes
type HealthHandler struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewHealthHandler creates a new health handler. cache may be nil.
func NewHealthHandler(db *gorm.DB, cache *cache.RedisCache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Ping handles GET /ping
func (h *HealthHandler) Ping(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.Map{"status": "ok", "database": "ok"}

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
		return response.Send(c, fiber.StatusServiceUnavailable, "pong", status)
	}

	if h.cache != nil {
		status["cache"] = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			status["cache"] = err.Error()
		}
	}

	return response.Success(c, "pong", status)
}
