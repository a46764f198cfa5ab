package secrets

import (
	"context"
	"strings"
	"sync"
	"time"

	"payment-broker.backend/internal/domain/entities"
	"payment-broker.backend/pkg/metrics"
)

// DefaultCacheTTL is used when no TTL is configured
const DefaultCacheTTL = 15 * time.Minute

const keySeparator = "|"

// FetchFunc loads a secret from the vault on a cache miss
type FetchFunc = func(ctx context.Context) (*entities.Secret, error)

type cacheEntry struct {
	secret    entities.Secret
	expiresAt time.Time
}

// Cache keeps vault reads in memory for a fixed TTL. A zero TTL disables it.
// Fetch errors are never cached. A fetch that overlaps Invalidate for the
// same secret id is returned to its caller but not stored.
type Cache struct {
	mu          sync.Mutex
	ttl         time.Duration
	entries     map[string]cacheEntry
	generations map[string]uint64
	now         func() time.Time
	metrics     *metrics.BrokerMetrics
}

// NewCache creates a cache; m may be nil
func NewCache(ttl time.Duration, m *metrics.BrokerMetrics) *Cache {
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{
		ttl:         ttl,
		entries:     make(map[string]cacheEntry),
		generations: make(map[string]uint64),
		now:         time.Now,
		metrics:     m,
	}
}

func cacheKey(secretID, version, stage string) string {
	return secretID + keySeparator + version + keySeparator + stage
}

// GetOrFetch returns the cached secret for (secretID, version, stage) or
// calls fetch and caches its result. forceRefresh always calls fetch.
func (c *Cache) GetOrFetch(ctx context.Context, secretID, version, stage string, fetch FetchFunc, forceRefresh bool) (*entities.Secret, error) {
	key := cacheKey(secretID, version, stage)

	if !forceRefresh && c.ttl > 0 {
		if s, ok := c.lookup(key); ok {
			c.hit()
			return s, nil
		}
	}
	c.miss()

	gen := c.generation(secretID)
	secret, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if secret == nil {
		return nil, nil
	}

	if c.ttl > 0 {
		c.mu.Lock()
		if c.generations[secretID] == gen {
			now := c.now()
			c.purgeExpiredLocked(now)
			c.entries[key] = cacheEntry{secret: *secret, expiresAt: now.Add(c.ttl)}
		}
		c.mu.Unlock()
	}

	out := *secret
	return &out, nil
}

func (c *Cache) generation(secretID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[secretID]
}

func (c *Cache) lookup(key string) (*entities.Secret, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	s := e.secret
	return &s, true
}

// purgeExpiredLocked keeps the map bounded by live entries; c.mu must be held
func (c *Cache) purgeExpiredLocked(now time.Time) {
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Invalidate drops every cached version and stage of secretID and discards
// the result of any fetch for it still in flight
func (c *Cache) Invalidate(secretID string) {
	prefix := secretID + keySeparator

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[secretID]++
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of cached entries, expired ones included
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) hit() {
	if c.metrics != nil {
		c.metrics.SecretCacheHits.Inc()
	}
}

func (c *Cache) miss() {
	if c.metrics != nil {
		c.metrics.SecretCacheMisses.Inc()
	}
}
