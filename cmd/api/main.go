package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/01moynul/pricetracker-golang/internal/alerts"
	"github.com/01moynul/pricetracker-golang/internal/auth"
	"github.com/01moynul/pricetracker-golang/internal/cache"
	"github.com/01moynul/pricetracker-golang/internal/config"
	"github.com/01moynul/pricetracker-golang/internal/database"
	"github.com/01moynul/pricetracker-golang/internal/handlers"
	"github.com/01moynul/pricetracker-golang/internal/routes"
	"github.com/01moynul/pricetracker-golang/internal/store"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// 0. --- Configuration (.env + environment) ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 1. --- Database ---
	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	pool, err := database.OpenPool(startCtx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if cfg.ApplySchema {
		if err := database.ApplySchema(startCtx, pool); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
	}
	cancelStart()

	// 2. --- Response cache ---
	var (
		responseCache *cache.Cache
		redisStore    *cache.RedisStore
	)
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		redisStore = cache.NewRedisStore(cfg.Redis)
		responseCache = cache.New(redisStore, cfg.CacheOpTimeout)
	case config.CacheBackendMemory:
		memoryStore, err := cache.NewMemoryStore(cache.DefaultMemoryConfig())
		if err != nil {
			log.Fatalf("Failed to create memory cache: %v", err)
		}
		responseCache = cache.New(memoryStore, cfg.CacheOpTimeout)
	default:
		log.Println("[cache] Response cache disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if responseCache != nil {
		registry.MustRegister(responseCache.Stats())
	}

	// 3. --- Admin auth (optional) ---
	var issuer *auth.Issuer
	if cfg.AdminJWTSecret != "" {
		issuer, err = auth.NewIssuer(cfg.AdminJWTSecret, cfg.AdminTokenTTL)
		if err != nil {
			log.Fatalf("Invalid ADMIN_JWT_SECRET: %v", err)
		}
	} else {
		log.Println("WARNING: ADMIN_JWT_SECRET is not set. Admin routes are unauthenticated.")
	}

	// --- Application Setup ---
	repo := store.New(pool)
	app := &handlers.Handlers{
		Store:        repo,
		Cache:        responseCache,
		CacheBackend: cfg.CacheBackend,
		Issuer:       issuer,
		Admin:        cfg.AdminCredentials,
		StartedAt:    time.Now(),
	}

	// 4. --- Background Workers ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	if cfg.AlertCheckInterval > 0 {
		checker, err := alerts.NewChecker(alerts.Config{
			Source:   repo,
			Notifier: alerts.LogNotifier{},
			Clock:    clock.WallClock,
			Interval: cfg.AlertCheckInterval,
		})
		if err != nil {
			log.Fatalf("Failed to create alert checker: %v", err)
		}
		log.Printf("[alerts] Checking alerts every %s", cfg.AlertCheckInterval)
		go checker.Run(workerCtx)
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, routes.Options{
		CORSOrigin: cfg.CORSOrigin,
		StatsTTL:   cfg.TTL.Stats,
		DealsTTL:   cfg.TTL.Deals,
		TrendsTTL:  cfg.TTL.Trends,
		Registry:   registry,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Start Server ---
	go func() {
		log.Printf("Starting PriceTracker API server on port %s (cache: %s)...", cfg.Port, cfg.CacheBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// Sequential: in-flight requests still need the pool and cache.
			"pricetracker-api": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				stopWorkers()
				err := srv.Shutdown(ctx)
				pool.Close()
				if redisStore != nil {
					if cerr := redisStore.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}
				return err
			},
		},
	)

	exitCode := <-wait
	log.Printf("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}
