package render

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"docgraph/internal/shared/observability"
)

// Cache keeps recently rendered payloads keyed by graph identifier, so a
// graph embedded on several pages is laid out only once.
type Cache struct {
	lru *lru.Cache[string, Rendered]
}

func NewCache(size int) *Cache {
	// lru.New only errors on a non-positive size.
	c, err := lru.New[string, Rendered](size)
	if err != nil {
		return nil
	}
	return &Cache{lru: c}
}

func (c *Cache) Get(ident string) (Rendered, bool) {
	if c == nil || c.lru == nil {
		return Rendered{}, false
	}
	hit, ok := c.lru.Get(ident)
	if ok {
		observability.RenderCacheHits.Inc()
	}
	return hit, ok
}

func (c *Cache) Add(ident string, r Rendered) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(ident, r)
}
