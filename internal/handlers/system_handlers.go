package handlers

import (
	"net/http"
	"time"

	"github.com/01moynul/pricetracker-golang/internal/cache"
	"github.com/gin-gonic/gin"
)

// Health handles GET /api/health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "PriceTracker API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"uptime":    time.Since(h.StartedAt).Seconds(),
	})
}

// CacheStats handles GET /api/cache/stats
func (h *Handlers) CacheStats(c *gin.Context) {
	var snapshot cache.StatsSnapshot
	if h.Cache != nil {
		snapshot = h.Cache.Stats().Snapshot()
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"backend":  h.CacheBackend,
			"enabled":  h.Cache.Enabled(),
			"hits":     snapshot.Hits,
			"misses":   snapshot.Misses,
			"sets":     snapshot.Sets,
			"errors":   snapshot.Errors,
			"hit_rate": snapshot.HitRate,
		},
	})
}
