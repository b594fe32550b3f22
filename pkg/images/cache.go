package images

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/ordermatch/pkg/constants"
)

// cache holds encoded thumbnails keyed by source and box size.
type cache struct {
	store  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

func newCache(ttl time.Duration) *cache {
	if ttl <= 0 {
		return nil
	}
	return &cache{store: gocache.New(ttl, constants.ImageCacheCleanupInterval)}
}

func (c *cache) get(key string) (*Thumbnail, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.store.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return v.(*Thumbnail), true
}

func (c *cache) set(key string, t *Thumbnail) {
	if c == nil {
		return
	}
	c.store.Set(key, t, gocache.DefaultExpiration)
}

func (c *cache) clear() {
	if c == nil {
		return
	}
	c.store.Flush()
}

// CacheStats reports thumbnail cache usage.
type CacheStats struct {
	Items  int   `json:"items" yaml:"items"`
	Hits   int64 `json:"hits" yaml:"hits"`
	Misses int64 `json:"misses" yaml:"misses"`
}

func (c *cache) stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	return CacheStats{
		Items:  c.store.ItemCount(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
