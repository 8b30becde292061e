// Package config loads the API configuration from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/01moynul/pricetracker-golang/internal/auth"
	"github.com/01moynul/pricetracker-golang/internal/cache"
	"github.com/01moynul/pricetracker-golang/internal/database"
	"github.com/joho/godotenv"
	"github.com/juju/errors"
)

// Cache backends.
const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
)

// Config is the complete process configuration.
type Config struct {
	Port    string
	GinMode string

	Database    database.Config
	ApplySchema bool

	CacheBackend   string
	Redis          cache.RedisConfig
	CacheOpTimeout time.Duration
	TTL            RouteTTLs

	CORSOrigin string

	AdminJWTSecret   string
	AdminTokenTTL    time.Duration
	AdminCredentials auth.Credentials

	AlertCheckInterval time.Duration
	ShutdownTimeout    time.Duration
}

// RouteTTLs are the cache lifetimes of the cached stats routes.
type RouteTTLs struct {
	Stats  time.Duration
	Deals  time.Duration
	Trends time.Duration
}

// Load reads .env when present, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching
// .env files.
func FromEnv() (Config, error) {
	redisDefaults := cache.DefaultRedisConfig()

	cfg := Config{
		Port:    getEnv("PORT", "3000"),
		GinMode: getEnv("GIN_MODE", "release"),

		Database: database.Config{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "pricetracker"),
			User:     getEnv("DB_USER", "pricetracker"),
			Password: getEnv("DB_PASSWORD", ""),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25)),
		},
		ApplySchema: getEnvBool("DB_APPLY_SCHEMA", false),

		CacheBackend: strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendRedis)),
		Redis: cache.RedisConfig{
			Addr:         getEnv("REDIS_ADDR", redisDefaults.Addr),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			PoolSize:     redisDefaults.PoolSize,
			DialTimeout:  redisDefaults.DialTimeout,
			ReadTimeout:  redisDefaults.ReadTimeout,
			WriteTimeout: redisDefaults.WriteTimeout,
		},
		CacheOpTimeout: getEnvDuration("CACHE_OP_TIMEOUT", cache.DefaultOpTimeout),
		TTL: RouteTTLs{
			Stats:  getEnvDuration("CACHE_TTL_STATS", 300*time.Second),
			Deals:  getEnvDuration("CACHE_TTL_DEALS", 60*time.Second),
			Trends: getEnvDuration("CACHE_TTL_TRENDS", 300*time.Second),
		},

		CORSOrigin: getEnv("CORS_ORIGIN", "*"),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		AdminTokenTTL:  getEnvDuration("ADMIN_TOKEN_TTL", auth.DefaultTokenTTL),
		AdminCredentials: auth.Credentials{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},

		AlertCheckInterval: getEnvDuration("ALERT_CHECK_INTERVAL", 0),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would only fail later at runtime.
func (c Config) Validate() error {
	switch c.CacheBackend {
	case CacheBackendRedis, CacheBackendMemory, CacheBackendNone:
	default:
		return errors.NotValidf("CACHE_BACKEND %q", c.CacheBackend)
	}
	for name, ttl := range map[string]time.Duration{
		"CACHE_TTL_STATS":  c.TTL.Stats,
		"CACHE_TTL_DEALS":  c.TTL.Deals,
		"CACHE_TTL_TRENDS": c.TTL.Trends,
	} {
		if ttl <= 0 {
			return errors.NotValidf("%s %v", name, ttl)
		}
	}
	if c.AlertCheckInterval < 0 {
		return errors.NotValidf("ALERT_CHECK_INTERVAL %v", c.AlertCheckInterval)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("WARNING: %s=%q is not an integer, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("WARNING: %s=%q is not a boolean, using %t", key, value, fallback)
		return fallback
	}
	return b
}

// getEnvDuration accepts Go durations ("90s", "5m") or a bare number of
// seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("WARNING: %s=%q is not a duration, using %v", key, value, fallback)
		return fallback
	}
	return d
}
