package cache

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// countingHandler answers with a payload that changes on every call, so a
// replayed body is distinguishable from a fresh one.
type countingHandler struct {
	calls  atomic.Int64
	status int
}

func (h *countingHandler) handle(c *gin.Context) {
	n := h.calls.Add(1)
	status := h.status
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"success": status < 300, "data": gin.H{"call": n}})
}

func newRouter(c *Cache, ttl time.Duration, h *countingHandler) *gin.Engine {
	r := gin.New()
	r.GET("/api/stats", c.Wrap(ttl, h.handle))
	r.POST("/api/stats", c.Wrap(ttl, h.handle))
	return r
}

func do(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func newMemory(t *testing.T) *MemoryStore {
	t.Helper()
	store, err := NewMemoryStore(DefaultMemoryConfig())
	require.NoError(t, err)
	return store
}

// failingStore errors on every call.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (failingStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}

// blockingStore waits for its context to expire.
type blockingStore struct{}

func (blockingStore) Get(ctx context.Context, _ string) (string, bool, error) {
	<-ctx.Done()
	return "", false, ctx.Err()
}

func (blockingStore) Set(ctx context.Context, _, _ string, _ time.Duration) error {
	<-ctx.Done()
	return ctx.Err()
}

// recordingStore remembers the TTL of every write.
type recordingStore struct {
	mu   sync.Mutex
	ttls map[string]time.Duration
}

func (s *recordingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (s *recordingStore) Set(_ context.Context, key, _ string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ttls == nil {
		s.ttls = make(map[string]time.Duration)
	}
	s.ttls[key] = ttl
	return nil
}

func TestWrap_HitReplaysIdenticalBody(t *testing.T) {
	c := New(newMemory(t), 0)
	h := &countingHandler{}
	r := newRouter(c, time.Minute, h)

	first := do(r, http.MethodGet, "/api/stats")
	second := do(r, http.MethodGet, "/api/stats")

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Contains(t, second.Header().Get("Content-Type"), "application/json")
	assert.EqualValues(t, 1, h.calls.Load())

	snap := c.Stats().Snapshot()
	assert.EqualValues(t, 1, snap.Hits)
	assert.EqualValues(t, 1, snap.Misses)
	assert.EqualValues(t, 1, snap.Sets)
	assert.Zero(t, snap.Errors)
	assert.InDelta(t, 0.5, snap.HitRate, 1e-9)
}

func TestWrap_FailingStoreServesUncached(t *testing.T) {
	c := New(failingStore{}, 0)
	h := &countingHandler{}
	r := newRouter(c, time.Minute, h)

	for i := 0; i < 3; i++ {
		w := do(r, http.MethodGet, "/api/stats")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, fmt.Sprintf(`{"success":true,"data":{"call":%d}}`, i+1), w.Body.String())
	}
	assert.EqualValues(t, 3, h.calls.Load())
	// One failed lookup and one failed write per request.
	assert.EqualValues(t, 6, c.Stats().Snapshot().Errors)
}

func TestWrap_SlowStoreIsBoundedByOpTimeout(t *testing.T) {
	c := New(blockingStore{}, 20*time.Millisecond)
	h := &countingHandler{}
	r := newRouter(c, time.Minute, h)

	start := time.Now()
	w := do(r, http.MethodGet, "/api/stats")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, h.calls.Load())
	assert.Less(t, time.Since(start), time.Second)
}

func TestWrap_NonGetBypassesCache(t *testing.T) {
	store := newMemory(t)
	c := New(store, 0)
	h := &countingHandler{}
	r := newRouter(c, time.Minute, h)

	do(r, http.MethodPost, "/api/stats")
	w := do(r, http.MethodPost, "/api/stats")

	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.EqualValues(t, 2, h.calls.Load())
	assert.Zero(t, store.Len())
}

func TestWrap_ErrorResponsesAreNotStored(t *testing.T) {
	store := newMemory(t)
	c := New(store, 0)
	h := &countingHandler{status: http.StatusNotFound}
	r := newRouter(c, time.Minute, h)

	first := do(r, http.MethodGet, "/api/stats")
	second := do(r, http.MethodGet, "/api/stats")

	assert.Equal(t, http.StatusNotFound, first.Code)
	assert.Equal(t, http.StatusNotFound, second.Code)
	assert.EqualValues(t, 2, h.calls.Load())
	assert.Zero(t, store.Len())
}

func TestWrap_QueryOrderProducesDistinctEntries(t *testing.T) {
	store := newMemory(t)
	c := New(store, 0)
	h := &countingHandler{}
	r := newRouter(c, time.Minute, h)

	do(r, http.MethodGet, "/api/stats?a=1&b=2")
	do(r, http.MethodGet, "/api/stats?b=2&a=1")
	w := do(r, http.MethodGet, "/api/stats?a=1&b=2")

	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.EqualValues(t, 2, h.calls.Load())
	assert.Equal(t, 2, store.Len())
}

func TestWrap_PassesRouteTTLToStore(t *testing.T) {
	store := &recordingStore{}
	c := New(store, 0)
	r := gin.New()
	h := &countingHandler{}
	r.GET("/api/stats", c.Wrap(300*time.Second, h.handle))
	r.GET("/api/stats/deals", c.Wrap(60*time.Second, h.handle))

	do(r, http.MethodGet, "/api/stats")
	do(r, http.MethodGet, "/api/stats/deals?limit=5")

	assert.Equal(t, map[string]time.Duration{
		"cache:/api/stats":               300 * time.Second,
		"cache:/api/stats/deals?limit=5": 60 * time.Second,
	}, store.ttls)
}

func TestWrap_NilCacheIsPassThrough(t *testing.T) {
	var c *Cache
	h := &countingHandler{}
	r := newRouter(c, time.Minute, h)

	do(r, http.MethodGet, "/api/stats")
	do(r, http.MethodGet, "/api/stats")

	assert.EqualValues(t, 2, h.calls.Load())
}

func TestWrap_UnreachableRedisFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := New(NewRedisStoreFromClient(client), 100*time.Millisecond)
	h := &countingHandler{}
	r := newRouter(c, time.Minute, h)

	first := do(r, http.MethodGet, "/api/stats")
	second := do(r, http.MethodGet, "/api/stats")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.EqualValues(t, 2, h.calls.Load())
	assert.NotZero(t, c.Stats().Snapshot().Errors)
}

func TestWrap_RedisRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 200 * time.Millisecond})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}

	target := "/api/stats?test=" + time.Now().Format("150405.000000000")
	t.Cleanup(func() {
		client.Del(context.Background(), KeyPrefix+target)
	})

	c := New(NewRedisStoreFromClient(client), time.Second)
	h := &countingHandler{}
	r := newRouter(c, time.Minute, h)

	first := do(r, http.MethodGet, target)
	second := do(r, http.MethodGet, target)

	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.EqualValues(t, 1, h.calls.Load())

	ttl, err := client.TTL(context.Background(), KeyPrefix+target).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}
