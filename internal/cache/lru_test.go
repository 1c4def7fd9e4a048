package cache

import (
	"testing"
	"time"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %d, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute).WithClock(func() time.Time { return now })
	c.Set("a", "x")
	c.Set("b", "y")

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("a should be expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired = %d, want 1", n)
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d, want 0", c.Len())
	}
}

func TestLRUSwap(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute).WithClock(func() time.Time { return now })

	if _, had := c.Swap("k", "one"); had {
		t.Fatal("unexpected previous value")
	}
	if prev, had := c.Swap("k", "two"); !had || prev != "one" {
		t.Fatalf("Swap = %q, %v", prev, had)
	}

	now = now.Add(time.Hour)
	if _, had := c.Swap("k", "three"); had {
		t.Fatal("expired value reported as previous")
	}
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("k should be deleted")
	}
}
