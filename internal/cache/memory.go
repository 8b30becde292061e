package cache

import (
	"context"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/viccon/sturdyc"
)

// MemoryConfig sizes the in-process store.
type MemoryConfig struct {
	Capacity           int
	NumShards          int
	EvictionPercentage int
}

// DefaultMemoryConfig returns sensible defaults for a single API instance.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Capacity:           10000,
		NumShards:          64,
		EvictionPercentage: 10,
	}
}

// Validate checks the sizing values.
func (c MemoryConfig) Validate() error {
	if c.Capacity <= 0 {
		return errors.NotValidf("memory cache capacity %d", c.Capacity)
	}
	if c.NumShards <= 0 {
		return errors.NotValidf("memory cache shard count %d", c.NumShards)
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return errors.NotValidf("memory cache eviction percentage %d", c.EvictionPercentage)
	}
	return nil
}

// MemoryStore is an in-process Store for single-instance deployments and
// tests. sturdyc fixes the TTL per client, so one client is kept for every
// distinct TTL in use.
type MemoryStore struct {
	cfg MemoryConfig

	mu      sync.RWMutex
	clients map[time.Duration]*sturdyc.Client[string]
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore(cfg MemoryConfig) (*MemoryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &MemoryStore{
		cfg:     cfg,
		clients: make(map[time.Duration]*sturdyc.Client[string]),
	}, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, client := range s.clients {
		if value, ok := client.Get(key); ok {
			return value, true, nil
		}
	}
	return "", false, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.NotValidf("ttl %v", ttl)
	}
	client := s.clientFor(ttl)

	s.mu.RLock()
	for other, c := range s.clients {
		if other != ttl {
			c.Delete(key)
		}
	}
	s.mu.RUnlock()

	client.Set(key, value)
	return nil
}

func (s *MemoryStore) clientFor(ttl time.Duration) *sturdyc.Client[string] {
	s.mu.RLock()
	client, ok := s.clients[ttl]
	s.mu.RUnlock()
	if ok {
		return client
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if client, ok := s.clients[ttl]; ok {
		return client
	}
	client = sturdyc.New[string](s.cfg.Capacity, s.cfg.NumShards, ttl, s.cfg.EvictionPercentage)
	s.clients[ttl] = client
	return client
}

// Len returns the number of entries across all TTL buckets.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, client := range s.clients {
		n += len(client.ScanKeys())
	}
	return n
}
