package cache

import (
	"testing"
	"time"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss on empty cache")
	}

	c.Set("a", "1")
	c.Set("b", "2")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}

	// "b" is now least recently used, so "c" evicts it.
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Error("expected b evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive eviction")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestLRUOverwrite(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) = %d, want 2", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)
	c.Set("a", "1")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after expired Get, want 0", c.Len())
	}
}

func TestLRUDeletePrefix(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)
	c.Set("user:1:summary:2026-08", "x")
	c.Set("user:1:summary:2026-07", "y")
	c.Set("user:2:summary:2026-08", "z")

	if n := c.DeletePrefix("user:1:"); n != 2 {
		t.Errorf("DeletePrefix removed %d, want 2", n)
	}
	if _, ok := c.Get("user:2:summary:2026-08"); !ok {
		t.Error("other user's entry should survive")
	}
}

func TestLRUCleanExpired(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)
	c.Set("a", "1")
	c.Set("b", "2")
	time.Sleep(20 * time.Millisecond)
	c.Set("fresh", "3")

	if n := c.CleanExpired(); n != 2 {
		t.Errorf("CleanExpired = %d, want 2", n)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry should survive cleanup")
	}
}

func TestManagerSweep(t *testing.T) {
	c := NewLRUCache[string](10, 5*time.Millisecond)
	c.Set("a", "1")

	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)
	defer m.Stop()

	deadline := time.After(500 * time.Millisecond)
	for c.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("sweep never removed expired entry")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
