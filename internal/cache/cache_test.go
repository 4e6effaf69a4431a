package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("k", "v")

	got, ok := c.Get("k")

	if !ok || got != "v" {
		t.Fatalf("Get(k) = %v, %v; want v, true", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("Get(missing) reported a hit")
	}
}

func TestExpiry(t *testing.T) {
	c := New(10 * time.Millisecond)

	c.Set("k", "v")

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry still served")
	}
}

func TestClear(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()

	if _, ok := c.Get("a"); ok {
		t.Fatal("Clear left entry a")
	}

	if _, ok := c.Get("b"); ok {
		t.Fatal("Clear left entry b")
	}
}

func TestDelete(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")

	if _, ok := c.Get("a"); ok {
		t.Fatal("Delete left entry a")
	}

	if _, ok := c.Get("b"); !ok {
		t.Fatal("Delete removed unrelated entry b")
	}
}
