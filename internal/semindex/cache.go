// cache.go implements the process-wide, mutex-protected two-tier cache
// (§5, §3 CacheEntry): OCR + description are always cached; embeddings
// are computed on demand. A periodic sweeper (not a per-entry timer)
// evicts stale entries, the way the design notes in §9 prescribe.
package semindex

import (
	"sync"
	"time"

	"github.com/polzovatel/screenintel/internal/model"
)

// CacheEntry mirrors §3's CacheEntry.
type CacheEntry struct {
	ScreenID      string
	ScreenState   *model.ScreenState
	Timestamp     time.Time
	HasEmbeddings bool
}

type cache struct {
	mu       sync.Mutex
	entries  map[string]*CacheEntry
	staleTTL time.Duration
}

func newCache(staleTTL time.Duration) *cache {
	return &cache{entries: make(map[string]*CacheEntry), staleTTL: staleTTL}
}

func (c *cache) put(entry *CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.ScreenID] = entry
}

// get returns the entry if present and not past staleTTL; a stale entry
// is evicted and reported as absent (per §3's CacheEntry invariant).
func (c *cache) get(screenID string, now time.Time) (*CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[screenID]
	if !ok {
		return nil, false
	}
	if now.Sub(e.Timestamp) > c.staleTTL {
		delete(c.entries, screenID)
		return nil, false
	}
	return e, true
}

func (c *cache) markEmbedded(screenID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[screenID]; ok {
		e.HasEmbeddings = true
	}
}

// sweep evicts every entry older than staleTTL, independent of get().
func (c *cache) sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	evicted := 0
	for id, e := range c.entries {
		if now.Sub(e.Timestamp) > c.staleTTL {
			delete(c.entries, id)
			evicted++
		}
	}
	return evicted
}

// runSweeper starts a ticker-driven sweep loop; stops when stop is closed.
// Grounded on the teacher/sift debounce pattern, generalized from a
// single-shot timer to a recurring ticker per the design notes.
func (c *cache) runSweeper(stop <-chan struct{}, interval time.Duration, now func() time.Time) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case t := <-ticker.C:
			if now != nil {
				t = now()
			}
			c.sweep(t)
		}
	}
}
