// Package geocache is the durable map from geocode query to coordinate.
// A nil coordinate is a first-class negative result: the query was
// resolved and permanently failed, so it must not be retried. Key
// absence means the query was never attempted.
package geocache

import (
	"sync"

	"github.com/ssbor/jobmap/internal/entities"
	"github.com/ssbor/jobmap/internal/logger"
	"github.com/ssbor/jobmap/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// Store is the durable backend holding the cache contents.
type Store interface {
	Load() (map[string]*entities.Coordinate, error)
	Save(entries map[string]*entities.Coordinate) error
}

type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entities.Coordinate
	store   Store
}

// Open loads the cache from store. A missing, empty or malformed backend
// degrades to an empty cache; resolution must keep working without
// persistence.
func Open(store Store) *Cache {
	entries, err := store.Load()
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).
			Warnf("geo cache could not be loaded, starting empty: %v", err)
		entries = nil
	}
	if entries == nil {
		entries = map[string]*entities.Coordinate{}
	}
	return &Cache{entries: entries, store: store}
}

// Get returns the cached coordinate for query. The bool reports key
// presence; a (nil, true) result is a cached permanent failure.
func (c *Cache) Get(query string) (*entities.Coordinate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	coord, ok := c.entries[query]
	return coord, ok
}

// Set records a resolution result. Pass nil to mark the query as
// permanently unresolvable.
func (c *Cache) Set(query string, coord *entities.Coordinate) {
	c.mu.Lock()
	c.entries[query] = coord
	size := len(c.entries)
	c.mu.Unlock()
	metrics.GeoCacheSize.Set(float64(size))
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Persist writes the cache through to the store. Failures are logged and
// swallowed; the in-memory state stays authoritative for the session.
func (c *Cache) Persist() {
	c.mu.RLock()
	snapshot := make(map[string]*entities.Coordinate, len(c.entries))
	for k, v := range c.entries {
		snapshot[k] = v
	}
	c.mu.RUnlock()

	if err := c.store.Save(snapshot); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).
			Warnf("geo cache persist failed: %v", err)
	}
}
