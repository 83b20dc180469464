package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/lineup-editor/internal/services"
	"github.com/jstittsworth/lineup-editor/pkg/database"
)

type HealthHandler struct {
	db       *database.DB
	cache    *services.CacheService
	sessions *services.SessionManager
	hub      *services.Hub
	breakers *services.CircuitBreakerService
}

func NewHealthHandler(db *database.DB, cache *services.CacheService, sessions *services.SessionManager, hub *services.Hub, breakers *services.CircuitBreakerService) *HealthHandler {
	return &HealthHandler{
		db:       db,
		cache:    cache,
		sessions: sessions,
		hub:      hub,
		breakers: breakers,
	}
}

// GetHealth returns basic health status - always returns 200 if server is running
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"service":   "lineup-editor",
	})
}

// GetReady checks the database and redis and reports editor load
func (h *HealthHandler) GetReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true

	if sqlDB, err := h.db.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "down"
		ready = false
	} else {
		checks["database"] = "up"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["redis"] = "down"
		} else {
			checks["redis"] = "up"
		}
	}

	body := gin.H{
		"status":   "ready",
		"checks":   checks,
		"sessions": h.sessions.Count(),
	}
	if h.hub != nil {
		body["websocket_clients"] = h.hub.GetConnectionCount(ctx)
	}
	if h.breakers != nil {
		body["circuit_breakers"] = h.breakers.States()
	}

	if !ready {
		body["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
