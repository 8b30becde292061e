package handlers

import (
	"net/http"

	"github.com/01moynul/pricetracker-golang/internal/pricing"
	"github.com/gin-gonic/gin"
)

const (
	defaultDealsLimit = 10
	maxDealsLimit     = 100
	defaultTrendDays  = 7
)

// GetOverallStats handles GET /api/stats
func (h *Handlers) GetOverallStats(c *gin.Context) {
	stats, err := h.Store.OverallStats(c.Request.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// GetBestDeals handles GET /api/stats/deals
func (h *Handlers) GetBestDeals(c *gin.Context) {
	limit := queryInt(c, "limit", defaultDealsLimit, maxDealsLimit)

	candidates, err := h.Store.RecentDealCandidates(c.Request.Context())
	if err != nil {
		fail(c, err, "")
		return
	}

	deals := pricing.BestDeals(candidates, limit)
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(deals), "data": deals})
}

// GetPriceTrends handles GET /api/stats/trends/:id
func (h *Handlers) GetPriceTrends(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid product ID")
	if !ok {
		return
	}
	days := queryInt(c, "days", defaultTrendDays, maxHistoryDays)

	trends, err := h.Store.PriceTrends(c.Request.Context(), id, days)
	if err != nil {
		fail(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(trends), "data": trends})
}
