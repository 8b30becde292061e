package handlers

import (
	"fmt"
	"net/http"

	"github.com/01moynul/pricetracker-golang/internal/models"
	"github.com/01moynul/pricetracker-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
)

// CreateAlert handles POST /api/alerts
func (h *Handlers) CreateAlert(c *gin.Context) {
	var input models.CreateAlertInput
	if !bindJSON(c, &input) {
		return
	}

	created, err := h.Store.CreateAlert(c.Request.Context(), input)
	if err != nil {
		var tooHigh *store.TargetNotBelowMinimumError
		if errors.As(err, &tooHigh) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success":           false,
				"error":             fmt.Sprintf("Target price must be lower than current minimum price (€%.2f)", tooHigh.CurrentMinPrice),
				"current_min_price": tooHigh.CurrentMinPrice,
			})
			return
		}
		fail(c, err, "Product not found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Price alert created successfully",
		"data":    created,
	})
}

// GetAlertStats handles GET /api/alerts/stats
func (h *Handlers) GetAlertStats(c *gin.Context) {
	stats, err := h.Store.AlertStats(c.Request.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// CheckAlerts handles GET /api/alerts/check
// It only lists the triggerable alerts; the external scheduler (or the
// in-process checker) sends the emails and calls mark-notified.
func (h *Handlers) CheckAlerts(c *gin.Context) {
	alerts, err := h.Store.FindTriggerableAlerts(c.Request.Context())
	if err != nil {
		fail(c, err, "")
		return
	}

	message := "No alerts to trigger at this time"
	if len(alerts) > 0 {
		message = fmt.Sprintf("Found %d alert(s) ready to be triggered", len(alerts))
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(alerts),
		"data":    alerts,
		"message": message,
	})
}

// MarkNotified handles POST /api/alerts/:id/mark-notified
func (h *Handlers) MarkNotified(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid alert ID")
	if !ok {
		return
	}

	alert, err := h.Store.MarkNotified(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Alert not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Alert marked as notified",
		"data":    alert,
	})
}
