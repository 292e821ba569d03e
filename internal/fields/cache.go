package fields

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// RegistryCache memoizes registries loaded from a RegistryStore for editor tooling.
// Concurrent Get calls for the same template share one load.
type RegistryCache struct {
	store RegistryStore
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	// gen and epoch advance on invalidation; a load only stores its result
	// when neither moved while it ran
	gen      map[string]uint64
	epoch    uint64
	inflight map[string]int
	group    singleflight.Group
}

type cacheEntry struct {
	registry *Registry
	expiry   time.Time
}

// NewRegistryCache creates a cache over store. A ttl of 0 keeps entries until invalidated.
func NewRegistryCache(store RegistryStore, ttl time.Duration) *RegistryCache {
	return &RegistryCache{
		store:    store,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]cacheEntry),
		gen:      make(map[string]uint64),
		inflight: make(map[string]int),
	}
}

// Get returns the registry of a template, loading it on a miss.
// The load outlives the cancellation of the caller that started it, since
// other callers may be waiting on the same load.
func (c *RegistryCache) Get(ctx context.Context, templateID string) (*Registry, error) {
	if registry, ok := c.lookup(templateID); ok {
		return registry, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(templateID, func() (interface{}, error) {
		c.mu.Lock()
		gen, epoch := c.gen[templateID], c.epoch
		c.inflight[templateID]++
		c.mu.Unlock()

		declared, err := c.store.Load(loadCtx, templateID)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.inflight[templateID]--; c.inflight[templateID] <= 0 {
			delete(c.inflight, templateID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load fields for template %s: %w", templateID, err)
		}
		registry := NewRegistry(declared...)
		if c.gen[templateID] != gen || c.epoch != epoch {
			// invalidated mid-load: hand the result to this flight's callers only
			return registry, nil
		}

		entry := cacheEntry{registry: registry}
		if c.ttl > 0 {
			entry.expiry = c.now().Add(c.ttl)
		}
		c.entries[templateID] = entry
		return registry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Registry), nil
}

func (c *RegistryCache) lookup(templateID string) (*Registry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[templateID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().After(entry.expiry) {
		c.mu.Lock()
		if current, ok := c.entries[templateID]; ok && current.expiry.Equal(entry.expiry) {
			delete(c.entries, templateID)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.registry, true
}

// Invalidate drops the cached registry of one template; call it when the template is saved
func (c *RegistryCache) Invalidate(templateID string) {
	c.mu.Lock()
	delete(c.entries, templateID)
	c.gen[templateID]++
	c.mu.Unlock()
	c.group.Forget(templateID)
}

// InvalidateAll empties the cache and detaches every load in flight
func (c *RegistryCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.epoch++
	loading := make([]string, 0, len(c.inflight))
	for templateID := range c.inflight {
		loading = append(loading, templateID)
	}
	c.mu.Unlock()
	for _, templateID := range loading {
		c.group.Forget(templateID)
	}
}

// Len returns the number of cached registries
func (c *RegistryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
