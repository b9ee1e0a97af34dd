package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testLimiter builds a limiter without the cleanup goroutine so the clock can be swapped.
func testLimiter(cfg *Config, clock *fakeClock) *Limiter {
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	l.now = clock.Now
	return l
}

func TestTokenBucket_Take(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(10, 1.0, now) // 10 tokens, 1 token per second

	for i := 0; i < 10; i++ {
		if allowed, _, _ := bucket.take(now); !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	if allowed, remaining, _ := bucket.take(now); allowed || remaining != 0 {
		t.Errorf("Expected 11th request to be denied with 0 remaining, got allowed=%v remaining=%d", allowed, remaining)
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(10, 1.0, now)

	for i := 0; i < 10; i++ {
		bucket.take(now)
	}

	now = now.Add(1100 * time.Millisecond)
	if allowed, _, _ := bucket.take(now); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
	if allowed, _, _ := bucket.take(now); allowed {
		t.Error("Expected request to be denied after consuming refilled token")
	}
}

func TestTokenBucket_ResetTime(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(10, 1.0, now)

	for i := 0; i < 4; i++ {
		bucket.take(now)
	}
	_, remaining, resetTime := bucket.take(now)

	if remaining != 5 {
		t.Errorf("Expected 5 remaining tokens, got %d", remaining)
	}
	if got := resetTime.Sub(now); got != 5*time.Second {
		t.Errorf("Expected reset in 5s, got %v", got)
	}
}

func TestTokenBucket_NeverExceedsCapacity(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(3, 10.0, now)

	_, remaining, _ := bucket.take(now.Add(time.Hour))
	if remaining != 2 {
		t.Errorf("Expected refill to cap at capacity (2 left after one take), got %d", remaining)
	}
}

func TestLimiter_Allow(t *testing.T) {
	clock := newFakeClock()
	l := testLimiter(NewConfig(true, 5, time.Minute, nil, nil), clock)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := l.Allow("1.2.3.4", "/other", "GET")
		if !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
		if info.Limit != 5 {
			t.Errorf("Expected limit 5, got %d", info.Limit)
		}
	}

	allowed, info := l.Allow("1.2.3.4", "/other", "GET")
	if allowed {
		t.Fatal("Expected 6th request to be denied")
	}
	if info.RetryAfter != 12*time.Second {
		t.Errorf("Expected retry after 12s (5 per minute), got %v", info.RetryAfter)
	}

	// A different client has its own bucket
	if allowed, _ := l.Allow("5.6.7.8", "/other", "GET"); !allowed {
		t.Error("Expected other client to be allowed")
	}

	clock.Advance(13 * time.Second)
	if allowed, _ := l.Allow("1.2.3.4", "/other", "GET"); !allowed {
		t.Error("Expected request to be allowed after one token refilled")
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	l := testLimiter(NewConfig(true, 1, time.Minute, []string{"10.0.0.1"}, nil), newFakeClock())
	defer l.Stop()

	for i := 0; i < 10; i++ {
		if allowed, _ := l.Allow("10.0.0.1", "/llm/rank", "POST"); !allowed {
			t.Fatalf("Expected whitelisted request %d to be allowed", i+1)
		}
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	l := testLimiter(NewConfig(true, 1000, time.Minute, nil, []string{" 10.0.0.2 "}), newFakeClock())
	defer l.Stop()

	if allowed, _ := l.Allow("10.0.0.2", "/health", "GET"); allowed {
		t.Error("Expected blacklisted client to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(NewConfig(false, 1, time.Minute, nil, nil))
	defer l.Stop()

	for i := 0; i < 10; i++ {
		if allowed, _ := l.Allow("1.2.3.4", "/llm/rank", "POST"); !allowed {
			t.Fatal("Expected all requests to be allowed when disabled")
		}
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	cfg := NewConfig(true, 1000, time.Minute, nil, nil)
	cfg.EndpointConfigs = []EndpointConfig{
		{Path: "/llm/rank", Method: "POST", Limit: 2, Window: time.Minute, Burst: 2},
	}
	l := testLimiter(cfg, newFakeClock())
	defer l.Stop()

	for i := 0; i < 2; i++ {
		if allowed, _ := l.Allow("1.2.3.4", "/llm/rank", "POST"); !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
	}
	if allowed, _ := l.Allow("1.2.3.4", "/llm/rank", "POST"); allowed {
		t.Error("Expected endpoint limit to apply")
	}

	// Same client, other endpoint falls back to the default limit
	if allowed, info := l.Allow("1.2.3.4", "/analyze", "POST"); !allowed || info.Limit != 1000 {
		t.Errorf("Expected default limit on other endpoint, got allowed=%v limit=%d", allowed, info.Limit)
	}
}

func TestLimiter_UnlimitedEndpoints(t *testing.T) {
	l := testLimiter(NewConfig(true, 1, time.Minute, nil, nil), newFakeClock())
	defer l.Stop()

	for _, path := range []string{"/health", "/metrics"} {
		for i := 0; i < 20; i++ {
			if allowed, _ := l.Allow("1.2.3.4", path, "GET"); !allowed {
				t.Fatalf("Expected %s to be unlimited", path)
			}
		}
	}
	if l.size() != 0 {
		t.Errorf("Expected no buckets for unlimited endpoints, got %d", l.size())
	}
}

func TestLimiter_Burst(t *testing.T) {
	cfg := NewConfig(true, 1000, time.Minute, nil, nil)
	cfg.EndpointConfigs = []EndpointConfig{
		{Path: "/analyze", Method: "POST", Limit: 60, Window: time.Minute, Burst: 3},
	}
	l := testLimiter(cfg, newFakeClock())
	defer l.Stop()

	allowedCount := 0
	for i := 0; i < 10; i++ {
		if allowed, _ := l.Allow("1.2.3.4", "/analyze", "POST"); allowed {
			allowedCount++
		}
	}
	if allowedCount != 3 {
		t.Errorf("Expected burst of 3, got %d", allowedCount)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l := testLimiter(NewConfig(true, 100, time.Hour, nil, nil), newFakeClock())
	defer l.Stop()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if ok, _ := l.Allow("1.2.3.4", "/other", "GET"); ok {
					allowed.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != 100 {
		t.Errorf("Expected exactly 100 allowed requests, got %d", got)
	}
}

func TestLimiter_EvictIdle(t *testing.T) {
	clock := newFakeClock()
	l := testLimiter(NewConfig(true, 10, time.Minute, nil, nil), clock)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i), "/other", "GET")
	}
	clock.Advance(30 * time.Minute)
	l.Allow("10.0.0.0", "/other", "GET")

	clock.Advance(45 * time.Minute)
	l.evictIdle()

	if got := l.size(); got != 1 {
		t.Errorf("Expected 1 bucket to survive cleanup, got %d", got)
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()

	if allowed, info := l.Allow("1.2.3.4", "/other", "GET"); !allowed || info.Limit != 1000 {
		t.Errorf("Expected default limiter to allow with limit 1000, got allowed=%v limit=%d", allowed, info.Limit)
	}
	l.Stop() // second Stop must not panic
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/llm/rank", Method: "POST", Limit: 1},
		{Path: "/llm/", Method: "POST", Limit: 2},
	}

	if c := MatchEndpoint("/llm/rank", "POST", configs); c == nil || c.Limit != 1 {
		t.Errorf("Expected exact match, got %+v", c)
	}
	if c := MatchEndpoint("/llm/explain", "POST", configs); c == nil || c.Limit != 2 {
		t.Errorf("Expected prefix match, got %+v", c)
	}
	if c := MatchEndpoint("/llm/rank", "GET", configs); c != nil {
		t.Errorf("Expected no match for other method, got %+v", c)
	}
}

func TestLimiter_UnmatchedPathsShareBucket(t *testing.T) {
	l := testLimiter(NewConfig(true, 5, time.Minute, nil, nil), newFakeClock())
	defer l.Stop()

	allowedCount := 0
	for i := 0; i < 1000; i++ {
		method := "GET"
		if i%2 == 1 {
			method = fmt.Sprintf("X%d", i)
		}
		if allowed, _ := l.Allow("1.2.3.4", fmt.Sprintf("/nope/%d", i), method); allowed {
			allowedCount++
		}
	}

	if got := l.size(); got != 1 {
		t.Errorf("Expected unmatched paths to share 1 bucket, got %d", got)
	}
	if allowedCount != 5 {
		t.Errorf("Expected default limit of 5 across unmatched paths, got %d", allowedCount)
	}
}

func TestLimiter_PrefixEndpointSharesBucket(t *testing.T) {
	cfg := NewConfig(true, 1000, time.Minute, nil, nil)
	cfg.EndpointConfigs = []EndpointConfig{
		{Path: "/files/", Method: "GET", Limit: 2, Window: time.Minute, Burst: 2},
	}
	l := testLimiter(cfg, newFakeClock())
	defer l.Stop()

	l.Allow("1.2.3.4", "/files/a", "GET")
	l.Allow("1.2.3.4", "/files/b", "GET")
	if allowed, _ := l.Allow("1.2.3.4", "/files/c", "GET"); allowed {
		t.Error("Expected prefix endpoint limit to span sub-paths")
	}
	if got := l.size(); got != 1 {
		t.Errorf("Expected 1 bucket for the prefix endpoint, got %d", got)
	}
}
