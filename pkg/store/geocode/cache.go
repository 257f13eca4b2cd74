package geocode

import (
	"context"
	"fmt"
	"sync"

	"github.com/soochnamitra/dash-core/pkg/metrics"
	"github.com/soochnamitra/dash-core/pkg/models/domain"
)

// CachedReverser wraps a Reverser with an in-memory LRU cache keyed on
// rounded coordinates. Repeat detections from the same device position
// skip the provider entirely.
type CachedReverser struct {
	inner   Reverser
	cache   *lruCache
	metrics *metrics.Metrics
}

func NewCachedReverser(inner Reverser, maxEntries int, m *metrics.Metrics) *CachedReverser {
	return &CachedReverser{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: m,
	}
}

func (c *CachedReverser) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.Placement, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)
	if placement, ok := c.cache.get(key); ok {
		c.count("hit")
		return placement, nil
	}
	c.count("miss")

	placement, err := c.inner.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return placement, err
	}
	// Only cache usable results so transient empty responses can be retried.
	if placement.State != "" || placement.District != "" {
		c.cache.put(key, placement)
	}
	return placement, nil
}

func (c *CachedReverser) count(result string) {
	if c.metrics != nil {
		c.metrics.GeocodeCache.WithLabelValues(result).Inc()
	}
}

// lruCache is a small thread-safe LRU for placements.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.Placement
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.Placement, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.Placement{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.Placement) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
