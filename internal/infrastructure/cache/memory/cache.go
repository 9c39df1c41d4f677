package memory

import (
	"sync"
	"time"

	"github.com/kevinotieno/bizfinder/internal/core/domain"
)

const DefaultTTL = time.Hour

type entry struct {
	result    domain.LookupResult
	expiresAt time.Time
}

// Cache is the process-lifetime lookup cache. Entries expire TTL after the
// write; expired entries are dropped lazily on read. Nothing survives a
// process restart.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

func (c *Cache) Get(key string) (domain.LookupResult, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return domain.LookupResult{}, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		if cur, still := c.entries[key]; still && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return domain.LookupResult{}, false
	}
	return e.result, true
}

func (c *Cache) Set(key string, result domain.LookupResult) {
	c.mu.Lock()
	c.entries[key] = entry{
		result:    result,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}
