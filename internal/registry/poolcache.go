package registry

import (
	"sync"

	"google.golang.org/protobuf/reflect/protoregistry"
)

// PoolCache caches the most recently built descriptor pool, keyed by the
// store generation it was built from. Correctness never depends on this
// cache: a miss simply falls back to BuildPool. It exists purely to avoid
// re-linking descriptors on every validation request when no upload has
// happened in between, grounded on the generation-keyed caching idiom the
// teacher uses for compiled message types.
type PoolCache struct {
	mu         sync.Mutex
	generation uint64
	pool       *protoregistry.Files
	valid      bool
}

// NewPoolCache creates an empty pool cache.
func NewPoolCache() *PoolCache {
	return &PoolCache{}
}

// GetOrBuild returns the cached pool for snap.Generation if present,
// otherwise builds a fresh one via BuildPool and caches it.
func (c *PoolCache) GetOrBuild(snap Snapshot) (*protoregistry.Files, error) {
	c.mu.Lock()
	if c.valid && c.generation == snap.Generation {
		pool := c.pool
		c.mu.Unlock()
		return pool, nil
	}
	c.mu.Unlock()

	pool, err := BuildPool(snap)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// Only cache the newest generation seen; a concurrent rebuild for a
	// later generation should never be clobbered by a stale one.
	if snap.Generation >= c.generation {
		c.generation = snap.Generation
		c.pool = pool
		c.valid = true
	}
	c.mu.Unlock()

	return pool, nil
}

// Invalidate drops the cached pool. Called after every successful Upsert.
func (c *PoolCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.pool = nil
}
