package handlers

import (
	"net/http"

	"github.com/01moynul/pricetracker-golang/internal/models"
	"github.com/01moynul/pricetracker-golang/internal/pricing"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	defaultProductLimit = 50
	maxProductLimit     = 500
	usedListingsLimit   = 50
	defaultHistoryDays  = 30
	maxHistoryDays      = 365
	defaultNearbyLimit  = 20
	maxNearbyLimit      = 100
)

// ListProducts handles GET /api/products
func (h *Handlers) ListProducts(c *gin.Context) {
	category := c.Query("category")
	limit := queryInt(c, "limit", defaultProductLimit, maxProductLimit)

	products, err := h.Store.ListProducts(c.Request.Context(), category, limit)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(products), "data": products})
}

// GetProduct handles GET /api/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid product ID")
	if !ok {
		return
	}

	product, err := h.Store.GetProduct(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

// GetProductPrices handles GET /api/products/:id/prices
// It returns the latest new price per retailer, the active used listings
// and their combined statistics.
func (h *Handlers) GetProductPrices(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid product ID")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// --- 1. Product ---
	product, err := h.Store.GetProduct(ctx, id)
	if err != nil {
		fail(c, err, "Product not found")
		return
	}

	// --- 2. New and used prices, concurrently ---
	var (
		newPrices    []models.PriceQuote
		usedListings []models.UsedListing
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		newPrices, err = h.Store.LatestQuotes(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		usedListings, err = h.Store.ActiveUsedListings(gctx, id, usedListingsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		fail(c, err, "Product not found")
		return
	}

	// --- 3. Stats ---
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"product":       product,
		"new_prices":    newPrices,
		"used_listings": usedListings,
		"stats":         pricing.ComputeStats(newPrices, usedListings),
	})
}

// GetPriceHistory handles GET /api/products/:id/history
func (h *Handlers) GetPriceHistory(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid product ID")
	if !ok {
		return
	}
	days := queryInt(c, "days", defaultHistoryDays, maxHistoryDays)
	retailer := c.Query("retailer")

	history, err := h.Store.PriceHistory(c.Request.Context(), id, days, retailer)
	if err != nil {
		fail(c, err, "Product not found")
		return
	}

	shown := retailer
	if shown == "" {
		shown = "all"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"product_id": id,
		"days":       days,
		"retailer":   shown,
		"count":      len(history),
		"data":       history,
	})
}

// GetNearbyUsed handles GET /api/products/:id/used/nearby
func (h *Handlers) GetNearbyUsed(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid product ID")
	if !ok {
		return
	}
	city := c.Query("city")
	limit := queryInt(c, "limit", defaultNearbyLimit, maxNearbyLimit)

	listings, err := h.Store.NearbyUsedListings(c.Request.Context(), id, city, limit)
	if err != nil {
		fail(c, err, "Product not found")
		return
	}

	shown := city
	if shown == "" {
		shown = "all"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"product_id": id,
		"city":       shown,
		"count":      len(listings),
		"data":       listings,
	})
}
