package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/pricelist_api/internal/utils"
)

var startTime = time.Now()

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler provides health endpoint.
type HealthHandler struct {
	database HealthCheck
	cache    HealthCheck
}

// NewHealthHandler creates a new HealthHandler. cache may be nil when the
// product cache is disabled.
func NewHealthHandler(database, cache HealthCheck) *HealthHandler {
	return &HealthHandler{database: database, cache: cache}
}

// GetHealth responds with database and cache status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "connected"
	if err := h.database(ctx); err != nil {
		log.Error().Err(err).Msg("Database health check failed")
		dbStatus = "disconnected"
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "connected"
		if err := h.cache(ctx); err != nil {
			log.Warn().Err(err).Msg("Cache health check failed")
			cacheStatus = "disconnected"
		}
	}

	data := gin.H{
		"status":   "healthy",
		"uptime":   int(time.Since(startTime).Seconds()),
		"database": gin.H{"status": dbStatus},
		"cache":    gin.H{"status": cacheStatus},
	}
	if dbStatus != "connected" {
		data["status"] = "unhealthy"
		utils.ErrorWithData(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Service is unhealthy", data)
		return
	}
	utils.Success(c, http.StatusOK, "Service is healthy", data)
}
