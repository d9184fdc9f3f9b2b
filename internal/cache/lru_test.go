package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](3, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache returned ok = true")
	}

	c.Set("a", "alpha")
	got, ok := c.Get("a")
	if !ok {
		t.Fatal("Get() after Set() returned ok = false")
	}
	if got != "alpha" {
		t.Errorf("Get() = %v, want alpha", got)
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("newest entry should still be present")
	}
}

func TestLRUCache_RecentlyUsedSurvivesEviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a becomes most recently used
	c.Set("c", 3)

	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry should have been evicted")
	}
}

func TestLRUCache_Expiration(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should not be returned")
	}
}

func TestLRUCache_Delete(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("a", 1)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry should not be returned")
	}

	// Deleting a missing key must not panic
	c.Delete("missing")
}

func TestLRUCache_Clear(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	if c.Size() != 0 {
		t.Errorf("Size() after clear = %d, want 0", c.Size())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("cleared entry should not be returned")
	}

	// The cache stays usable after a clear
	c.Set("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) = %v, %v after clear", v, ok)
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i)
	}
	time.Sleep(20 * time.Millisecond)

	removed := c.CleanExpired()
	if removed != 5 {
		t.Errorf("CleanExpired() = %d, want 5", removed)
	}
	if c.Size() != 0 {
		t.Errorf("Size() after cleanup = %d, want 0", c.Size())
	}
}

func TestManager_Cleanup(t *testing.T) {
	c := NewLRUCache[int](10, 5*time.Millisecond)
	c.Set("a", 1)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)

	time.Sleep(40 * time.Millisecond)
	m.Stop()

	if c.Size() != 0 {
		t.Errorf("Size() after managed cleanup = %d, want 0", c.Size())
	}
}
