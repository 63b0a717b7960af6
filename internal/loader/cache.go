package loader

import (
	"sort"
	"sync"
	"time"

	"ModelVault/internal/domain/models"
)

type cacheEntry struct {
	bundle     *models.Bundle
	insertedAt time.Time
}

// bundleCache holds loaded bundles keyed by normalized ticker. Unbounded on
// purpose: the loader targets short-lived processes, so entries live until
// an explicit clear or process exit.
type bundleCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newBundleCache() *bundleCache {
	return &bundleCache{entries: make(map[string]cacheEntry)}
}

func (c *bundleCache) get(ticker string) (*models.Bundle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[ticker]
	if !ok {
		return nil, false
	}
	return e.bundle, true
}

func (c *bundleCache) put(ticker string, b *models.Bundle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ticker] = cacheEntry{bundle: b, insertedAt: time.Now()}
}

func (c *bundleCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func (c *bundleCache) tickers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.entries))
	for t := range c.entries {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (c *bundleCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
