package cache

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// KeyPrefix namespaces response cache keys in a shared store.
const KeyPrefix = "cache:"

// DefaultOpTimeout bounds each individual store call.
const DefaultOpTimeout = 250 * time.Millisecond

// Cache is a read-through cache for GET handlers. A nil *Cache, or one
// without a store, passes every request straight to the handler.
type Cache struct {
	store     Store
	opTimeout time.Duration
	stats     *Stats
}

// New wraps store. A zero opTimeout means DefaultOpTimeout.
func New(store Store, opTimeout time.Duration) *Cache {
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}
	return &Cache{
		store:     store,
		opTimeout: opTimeout,
		stats:     NewStats(),
	}
}

// Stats returns the hit/miss counters.
func (c *Cache) Stats() *Stats {
	return c.stats
}

// Enabled reports whether responses are actually cached.
func (c *Cache) Enabled() bool {
	return c != nil && c.store != nil
}

// Key is the cache key of a request: the prefix plus path and raw query.
// Two URLs that differ only in parameter order get different keys.
func Key(r *http.Request) string {
	return KeyPrefix + r.URL.RequestURI()
}

// Wrap returns handler behind the cache. Successful GET responses are
// stored for ttl; a hit replays the stored body with status 200 without
// running handler. Any store failure degrades to calling handler.
func (c *Cache) Wrap(ttl time.Duration, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !c.Enabled() || ctx.Request.Method != http.MethodGet {
			handler(ctx)
			return
		}

		key := Key(ctx.Request)
		if body, ok := c.lookup(ctx.Request.Context(), key); ok {
			ctx.Header("X-Cache", "HIT")
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", []byte(body))
			return
		}

		ctx.Header("X-Cache", "MISS")
		w := &bodyCapture{ResponseWriter: ctx.Writer}
		ctx.Writer = w
		handler(ctx)
		ctx.Writer = w.ResponseWriter

		status := w.Status()
		if status < 200 || status > 299 || w.body.Len() == 0 {
			return
		}
		// The response is already sent; a client hanging up must not
		// cancel the write.
		c.save(context.WithoutCancel(ctx.Request.Context()), key, w.body.String(), ttl)
	}
}

func (c *Cache) lookup(parent context.Context, key string) (string, bool) {
	ctx, cancel := context.WithTimeout(parent, c.opTimeout)
	defer cancel()

	body, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.stats.failure()
		log.Printf("[cache] Lookup of %s failed, serving uncached: %v", key, err)
		return "", false
	}
	if !found {
		c.stats.miss()
		return "", false
	}
	c.stats.hit()
	return body, true
}

func (c *Cache) save(parent context.Context, key, body string, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(parent, c.opTimeout)
	defer cancel()

	if err := c.store.Set(ctx, key, body, ttl); err != nil {
		c.stats.failure()
		log.Printf("[cache] Store of %s failed: %v", key, err)
		return
	}
	c.stats.set()
}

// bodyCapture tees everything the handler writes into a buffer.
type bodyCapture struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCapture) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
