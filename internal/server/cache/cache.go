// Package cache keeps recent reconciliation responses so identical requests
// are answered without classifying (and judging) every field again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/fieldeval/pkg/reconcile"
)

// Cache maps request digests to results.
type Cache struct {
	store  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache whose entries expire after ttl.
func New(ttl, cleanupInterval time.Duration) *Cache {
	return &Cache{store: gocache.New(ttl, cleanupInterval)}
}

// Key returns the digest of a request body.
func Key(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached result for key.
func (c *Cache) Get(key string) (*reconcile.Result, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return v.(*reconcile.Result), true
}

// Set stores result under key with the default TTL.
func (c *Cache) Set(key string, result *reconcile.Result) {
	c.store.Set(key, result, gocache.DefaultExpiration)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.store.Flush()
}

// Stats reports cache usage.
type Stats struct {
	Items  int   `json:"items"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// Stats returns current usage counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Items:  c.store.ItemCount(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
