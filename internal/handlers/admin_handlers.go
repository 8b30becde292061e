package handlers

import (
	"net/http"

	"github.com/01moynul/pricetracker-golang/internal/models"
	"github.com/gin-gonic/gin"
)

// --- Admin: Product Handlers ---

// AdminListProducts is the handler for GET /api/admin/products
// It lists every product, including inactive ones, newest first.
func (h *Handlers) AdminListProducts(c *gin.Context) {
	products, err := h.Store.AdminListProducts(c.Request.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(products), "data": products})
}

// AdminCreateProduct is the handler for POST /api/admin/products
func (h *Handlers) AdminCreateProduct(c *gin.Context) {
	var input models.CreateProductInput
	if !bindJSON(c, &input) {
		return
	}

	product, err := h.Store.CreateProduct(c.Request.Context(), input)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Product created successfully", "data": product})
}

// AdminUpdateProduct is the handler for PUT /api/admin/products/:id
// Fields missing from the body keep their current value.
func (h *Handlers) AdminUpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid product ID")
	if !ok {
		return
	}
	var input models.UpdateProductInput
	if !bindJSON(c, &input) {
		return
	}

	product, err := h.Store.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		fail(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product updated successfully", "data": product})
}

// AdminToggleProduct is the handler for PATCH /api/admin/products/:id/toggle
func (h *Handlers) AdminToggleProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid product ID")
	if !ok {
		return
	}

	product, err := h.Store.ToggleProduct(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product status toggled successfully", "data": product})
}

// AdminDeleteProduct is the handler for DELETE /api/admin/products/:id
// Products are only deactivated so their price history survives.
func (h *Handlers) AdminDeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid product ID")
	if !ok {
		return
	}

	product, err := h.Store.SoftDeleteProduct(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully", "data": product})
}

// --- Admin: Price Handlers ---

// AdminListPrices is the handler for GET /api/admin/products/:id/prices
func (h *Handlers) AdminListPrices(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid product ID")
	if !ok {
		return
	}

	quotes, used, err := h.Store.AdminListPrices(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"new_prices":  quotes,
			"used_prices": used,
		},
	})
}

// AdminUpdatePrice is the handler for PUT /api/admin/prices/new/:id
func (h *Handlers) AdminUpdatePrice(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid price ID")
	if !ok {
		return
	}
	var input models.UpdatePriceInput
	if !bindJSON(c, &input) {
		return
	}

	quote, err := h.Store.UpdateQuote(c.Request.Context(), id, input)
	if err != nil {
		fail(c, err, "Price not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Price updated successfully", "data": quote})
}

// AdminDeletePrice is the handler for DELETE /api/admin/prices/new/:id
func (h *Handlers) AdminDeletePrice(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid price ID")
	if !ok {
		return
	}

	if err := h.Store.DeleteQuote(c.Request.Context(), id); err != nil {
		fail(c, err, "Price not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Price deleted successfully"})
}

// AdminUpdateUsedListing is the handler for PUT /api/admin/prices/used/:id
func (h *Handlers) AdminUpdateUsedListing(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid used listing ID")
	if !ok {
		return
	}
	var input models.UpdateUsedListingInput
	if !bindJSON(c, &input) {
		return
	}

	listing, err := h.Store.UpdateUsedListing(c.Request.Context(), id, input)
	if err != nil {
		fail(c, err, "Used listing not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Used listing updated successfully", "data": listing})
}

// AdminDeleteUsedListing is the handler for DELETE /api/admin/prices/used/:id
func (h *Handlers) AdminDeleteUsedListing(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid used listing ID")
	if !ok {
		return
	}

	if err := h.Store.DeleteUsedListing(c.Request.Context(), id); err != nil {
		fail(c, err, "Used listing not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Used listing deleted successfully"})
}

// --- Admin: Alert Handlers ---

// AdminListAlerts is the handler for GET /api/admin/alerts
func (h *Handlers) AdminListAlerts(c *gin.Context) {
	alerts, err := h.Store.AdminListAlerts(c.Request.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(alerts), "data": alerts})
}

// AdminDeleteAlert is the handler for DELETE /api/admin/alerts/:id
func (h *Handlers) AdminDeleteAlert(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid alert ID")
	if !ok {
		return
	}

	alert, err := h.Store.DeleteAlert(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Alert not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Alert deleted successfully", "data": alert})
}

// AdminAlertStats is the handler for GET /api/admin/alerts/stats
// The counters sit at the top level of the response, next to "success".
func (h *Handlers) AdminAlertStats(c *gin.Context) {
	stats, err := h.Store.AdminAlertStats(c.Request.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"total_alerts":     stats.TotalAlerts,
		"active_count":     stats.ActiveCount,
		"notified_count":   stats.NotifiedCount,
		"unique_users":     stats.UniqueUsers,
		"avg_target_price": stats.AvgTargetPrice,
	})
}
