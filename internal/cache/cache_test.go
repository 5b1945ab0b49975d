package cache

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/goleak"

	applog "boatshare/internal/log"
)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: &bytes.Buffer{}})
}

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Error("expected miss on empty cache")
	}

	c.Set("a", 1)
	c.Set("b", 2)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v; want 1, true", v, ok)
	}

	// "b" is now least recently used and goes first.
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}

	c.Set("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) = %d, want 10", v)
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after Delete")
	}

	hits, misses := c.Stats()
	if hits != 2 || misses != 3 {
		t.Errorf("Stats() = %d hits, %d misses; want 2, 3", hits, misses)
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("old", "x")
	now = now.Add(30 * time.Second)
	c.Set("new", "y")

	now = now.Add(45 * time.Second)
	if _, ok := c.Get("old"); ok {
		t.Error("entry past its TTL must not be returned")
	}

	c.Set("old", "x")
	now = now.Add(20 * time.Second)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestLRUCache_Concurrent(t *testing.T) {
	c := NewLRUCache[int](50, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%80)
				c.Set(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	if c.Size() > 50 {
		t.Errorf("Size() = %d, exceeds capacity 50", c.Size())
	}
}

func TestManager_StopsCleanupGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewLRUCache[int](10, time.Millisecond)
	c.Set("a", 1)

	m := NewManager(quietLogger())
	m.Register(c)
	m.StartCleanup(5 * time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for c.Size() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("cleanup goroutine did not sweep the expired entry")
		}
		time.Sleep(5 * time.Millisecond)
	}

	m.Stop()
	m.Stop()
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := NewManager(nil)
	m.Stop()
	if n := m.Sweep(); n != 0 {
		t.Errorf("Sweep() = %d, want 0", n)
	}
}

func TestRedisCache_UnreachableDegradesToMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	c := NewRedisCache[int](client, "test:", time.Minute, quietLogger())
	defer c.Close()

	var _ Cache[int] = c

	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss when redis is unreachable")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
	if got := c.key("a"); got != "test:a" {
		t.Errorf("key(a) = %q, want test:a", got)
	}
}
