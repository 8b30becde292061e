package routes

import (
	"net/http"
	"time"

	"github.com/01moynul/pricetracker-golang/internal/handlers"
	"github.com/01moynul/pricetracker-golang/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the router.
type Options struct {
	CORSOrigin string

	StatsTTL  time.Duration
	DealsTTL  time.Duration
	TrendsTTL time.Duration

	// Registry receives the HTTP metrics and is served on /metrics.
	// Nil disables both.
	Registry *prometheus.Registry
}

// CORSMiddleware tells the browser which origin may call the API.
func CORSMiddleware(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	handlers.RegisterValidation()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(CORSMiddleware(opts.CORSOrigin))
	router.Use(middleware.RequestID())
	if opts.Registry != nil {
		router.Use(middleware.Metrics(opts.Registry))
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "PriceTracker API",
			"endpoints": gin.H{
				"health":   "/api/health",
				"products": "/api/products",
				"stats":    "/api/stats",
			},
		})
	})

	api := router.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/cache/stats", h.CacheStats)
		api.POST("/auth/signin", h.SignIn)

		// --- Products ---
		products := api.Group("/products")
		{
			products.GET("", h.ListProducts)
			products.GET("/:id", h.GetProduct)
			products.GET("/:id/prices", h.GetProductPrices)
			products.GET("/:id/history", h.GetPriceHistory)
			products.GET("/:id/used/nearby", h.GetNearbyUsed)
		}

		// --- Stats (cached) ---
		stats := api.Group("/stats")
		{
			stats.GET("", h.Cache.Wrap(opts.StatsTTL, h.GetOverallStats))
			stats.GET("/deals", h.Cache.Wrap(opts.DealsTTL, h.GetBestDeals))
			stats.GET("/trends/:id", h.Cache.Wrap(opts.TrendsTTL, h.GetPriceTrends))
		}

		// --- Categories ---
		api.GET("/categories", h.ListCategories)
		api.GET("/categories/:slug", h.GetCategory)

		// --- Alerts ---
		alerts := api.Group("/alerts")
		{
			alerts.POST("", h.CreateAlert)
			alerts.GET("/stats", h.GetAlertStats)
			alerts.GET("/check", h.CheckAlerts)
			alerts.POST("/:id/mark-notified", h.MarkNotified)
		}

		// --- Admin (token required when configured) ---
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuth(h.Issuer))
		{
			admin.GET("/products", h.AdminListProducts)
			admin.POST("/products", h.AdminCreateProduct)
			admin.PUT("/products/:id", h.AdminUpdateProduct)
			admin.PATCH("/products/:id/toggle", h.AdminToggleProduct)
			admin.DELETE("/products/:id", h.AdminDeleteProduct)
			admin.GET("/products/:id/prices", h.AdminListPrices)

			admin.PUT("/prices/new/:id", h.AdminUpdatePrice)
			admin.DELETE("/prices/new/:id", h.AdminDeletePrice)
			admin.PUT("/prices/used/:id", h.AdminUpdateUsedListing)
			admin.DELETE("/prices/used/:id", h.AdminDeleteUsedListing)

			admin.GET("/alerts", h.AdminListAlerts)
			admin.GET("/alerts/stats", h.AdminAlertStats)
			admin.DELETE("/alerts/:id", h.AdminDeleteAlert)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Route not found"})
	})

	return router
}
