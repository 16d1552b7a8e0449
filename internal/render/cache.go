package render

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/dgallion1/papertrail/internal/stats"
)

// Cache memoizes renders by theme and content hash.
type Cache struct {
	renderer *Renderer
	items    *ttlcache.Cache[string, Preview]
	latency  *stats.Window
}

// CacheStats reports cache effectiveness and the time spent rendering
// misses.
type CacheStats struct {
	Entries   int            `json:"entries"`
	Hits      uint64         `json:"hits"`
	Misses    uint64         `json:"misses"`
	Evictions uint64         `json:"evictions"`
	Renders   stats.Snapshot `json:"renders"`
}

// NewCache wraps r with a cache of at most capacity entries, each kept for ttl.
func NewCache(r *Renderer, ttl time.Duration, capacity uint64) *Cache {
	return &Cache{
		renderer: r,
		items: ttlcache.New[string, Preview](
			ttlcache.WithTTL[string, Preview](ttl),
			ttlcache.WithCapacity[string, Preview](capacity),
		),
		latency: stats.NewWindow(time.Hour),
	}
}

// Start runs expired-entry eviction until Stop is called.
func (c *Cache) Start() { c.items.Start() }

// Stop ends eviction started by Start.
func (c *Cache) Stop() { c.items.Stop() }

// Render returns the cached preview for (text, theme) or renders it.
func (c *Cache) Render(text string, theme Theme) Preview {
	key := cacheKey(text, theme)
	if item := c.items.Get(key); item != nil {
		return item.Value()
	}
	start := time.Now()
	p := c.renderer.Render(text, theme)
	c.latency.Since(start)
	c.items.Set(key, p, ttlcache.DefaultTTL)
	return p
}

// Len reports the number of cached previews.
func (c *Cache) Len() int { return c.items.Len() }

// Stats returns hit counts and render latency.
func (c *Cache) Stats() CacheStats {
	m := c.items.Metrics()
	return CacheStats{
		Entries:   c.items.Len(),
		Hits:      m.Hits,
		Misses:    m.Misses,
		Evictions: m.Evictions,
		Renders:   c.latency.Snapshot(),
	}
}

func cacheKey(text string, theme Theme) string {
	h := sha256.New()
	h.Write([]byte(theme))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
