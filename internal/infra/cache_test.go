package infra

import (
	"fmt"
	"sync"
	"testing"
)

func TestNewCache(t *testing.T) {
	c := NewCache[string](100)

	if c == nil {
		t.Fatal("NewCache returned nil")
	}
	if got := c.Stats().MaxSize; got != 100 {
		t.Errorf("expected maxsize=100, got %d", got)
	}
}

func TestNewCache_DefaultMaxEntries(t *testing.T) {
	for _, n := range []int{0, -1} {
		if got := NewCache[string](n).Stats().MaxSize; got != DefaultMaxCacheEntries {
			t.Errorf("expected maxsize=%d for %d, got %d", DefaultMaxCacheEntries, n, got)
		}
	}
}

func TestCache_SetAndGet(t *testing.T) {
	c := NewCache[string](100)

	c.Set("key1", "value1")

	got, ok := c.Get("key1")
	if !ok {
		t.Error("expected to find key1")
	}
	if got != "value1" {
		t.Errorf("expected 'value1', got %v", got)
	}
}

func TestCache_Get_NotFound(t *testing.T) {
	c := NewCache[string](100)

	got, ok := c.Get("nonexistent")
	if ok {
		t.Error("expected ok=false for nonexistent key")
	}
	if got != "" {
		t.Errorf("expected zero value, got %q", got)
	}
}

func TestCache_Set_Update(t *testing.T) {
	c := NewCache[string](100)

	c.Set("key", "value1")
	c.Set("key", "value2")

	got, _ := c.Get("key")
	if got != "value2" {
		t.Errorf("expected 'value2', got %v", got)
	}
	if c.Size() != 1 {
		t.Errorf("expected size=1, got %d", c.Size())
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache[int](3)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Touch "a" so "b" becomes the oldest
	c.Get("a")
	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("expected 'b' to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %q to survive eviction", k)
		}
	}
	if c.Size() != 3 {
		t.Errorf("expected size=3, got %d", c.Size())
	}
}

func TestCache_Stats(t *testing.T) {
	c := NewCache[int](10)

	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	want := CacheStats{Hits: 2, Misses: 1, CurrSize: 1, MaxSize: 10}
	if got := c.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	c.Clear()
	want = CacheStats{MaxSize: 10}
	if got := c.Stats(); got != want {
		t.Errorf("Stats() after Clear = %+v, want %+v", got, want)
	}
}

func TestCache_PeekDoesNotCount(t *testing.T) {
	c := NewCache[int](10)
	c.Set("a", 1)

	if v, ok := c.peek("a"); !ok || v != 1 {
		t.Errorf("peek = %v, %v; want 1, true", v, ok)
	}
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Errorf("peek changed counters: %+v", s)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := NewCache[int](50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d-%d", n, j%10)
				c.Set(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Size() > 50 {
		t.Errorf("size %d exceeds capacity 50", c.Size())
	}
}
