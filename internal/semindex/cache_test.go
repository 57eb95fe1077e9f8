package semindex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/polzovatel/screenintel/internal/model"
)

func TestCache_GetMiss(t *testing.T) {
	c := newCache(time.Minute)
	_, ok := c.get("missing", time.Now())
	assert.False(t, ok)
}

func TestCache_PutThenGet(t *testing.T) {
	c := newCache(time.Minute)
	now := time.Now()
	c.put(&CacheEntry{ScreenID: "s1", ScreenState: &model.ScreenState{ID: "s1"}, Timestamp: now})
	e, ok := c.get("s1", now.Add(time.Second))
	assert.True(t, ok)
	assert.Equal(t, "s1", e.ScreenID)
}

func TestCache_GetEvictsStaleEntry(t *testing.T) {
	c := newCache(time.Minute)
	now := time.Now()
	c.put(&CacheEntry{ScreenID: "s1", Timestamp: now})

	_, ok := c.get("s1", now.Add(2*time.Minute))
	assert.False(t, ok)

	// Second read confirms the stale entry was actually deleted, not just
	// reported absent this once.
	_, ok = c.get("s1", now.Add(2*time.Minute))
	assert.False(t, ok)
}

func TestCache_MarkEmbedded(t *testing.T) {
	c := newCache(time.Minute)
	now := time.Now()
	c.put(&CacheEntry{ScreenID: "s1", Timestamp: now, HasEmbeddings: false})
	c.markEmbedded("s1")
	e, ok := c.get("s1", now)
	assert.True(t, ok)
	assert.True(t, e.HasEmbeddings)
}

func TestCache_SweepEvictsIndependentlyOfGet(t *testing.T) {
	c := newCache(time.Minute)
	now := time.Now()
	c.put(&CacheEntry{ScreenID: "old", Timestamp: now})
	c.put(&CacheEntry{ScreenID: "fresh", Timestamp: now.Add(90 * time.Second)})

	evicted := c.sweep(now.Add(2 * time.Minute))
	assert.Equal(t, 1, evicted)

	_, ok := c.get("fresh", now.Add(2*time.Minute))
	assert.True(t, ok)
}
