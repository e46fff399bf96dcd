package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "fieldeval",
		"version": h.version,
	})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"cache":          h.cache.Stats(),
		"history":        h.runs != nil,
	})
}
