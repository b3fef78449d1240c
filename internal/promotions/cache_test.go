package promotions

import (
	"testing"
	"time"

	evbus "github.com/asaskevich/EventBus"
)

func TestResultCacheRoundTrip(t *testing.T) {
	cache := NewResultCache(time.Minute, nil)
	defer cache.Stop()

	cache.Set("key", map[string]int{"a": 1})

	var out map[string]int
	if !cache.Get("key", &out) {
		t.Fatal("expected cache hit")
	}
	if out["a"] != 1 {
		t.Fatalf("got %v", out)
	}
}

func TestResultCacheMiss(t *testing.T) {
	cache := NewResultCache(time.Minute, nil)
	defer cache.Stop()

	var out string
	if cache.Get("absent", &out) {
		t.Fatal("expected miss")
	}
}

func TestResultCacheExpiry(t *testing.T) {
	cache := NewResultCache(10*time.Millisecond, nil)
	defer cache.Stop()

	cache.Set("key", "value")
	time.Sleep(30 * time.Millisecond)

	var out string
	if cache.Get("key", &out) {
		t.Fatal("expected expired entry to miss")
	}
}

func TestResultCacheFlushOnDealChange(t *testing.T) {
	bus := evbus.New()
	cache := NewResultCache(time.Minute, bus)
	defer cache.Stop()

	cache.Set(CacheKeyFlashDeals, []string{"x"})
	bus.Publish(TopicDealChanged)
	bus.WaitAsync()

	var out []string
	if cache.Get(CacheKeyFlashDeals, &out) {
		t.Fatal("cache should be flushed after a deal change")
	}
}
