package geocode

import (
	"sync"

	"github.com/spigell/fedjobs/internal/geo"
)

// Cache maps exact address strings to resolved coordinates. Entries are never
// evicted. A stored nil marks an address that is known not to resolve.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*geo.Coordinates
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*geo.Coordinates)}
}

// Get reports the cached coordinates for address and whether an entry exists.
func (c *Cache) Get(address string) (*geo.Coordinates, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	coords, ok := c.entries[address]
	if !ok || coords == nil {
		return nil, ok
	}

	cp := *coords
	return &cp, true
}

func (c *Cache) Put(address string, coords *geo.Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stored *geo.Coordinates
	if coords != nil {
		stored = coords.Ptr()
	}
	c.entries[address] = stored
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
