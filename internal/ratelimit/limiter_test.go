package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAllow_BurstThenRefill(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{RequestsPerMinute: 60, Burst: 2, Clock: clock})
	defer limiter.Close()

	key := MemberKey(7)
	for i := 0; i < 2; i++ {
		if result := limiter.Allow(key); !result.Allowed {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}

	result := limiter.Allow(key)
	if result.Allowed {
		t.Fatal("request over burst should be blocked")
	}
	if result.RetryAfter != time.Second {
		t.Fatalf("expected RetryAfter 1s, got %v", result.RetryAfter)
	}

	clock.Advance(time.Second)
	if result := limiter.Allow(key); !result.Allowed {
		t.Fatal("request after refill should be allowed")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{RequestsPerMinute: 1, Burst: 1, Clock: clock})
	defer limiter.Close()

	if !limiter.Allow(MemberKey(1)).Allowed {
		t.Fatal("first member should be allowed")
	}
	if limiter.Allow(MemberKey(1)).Allowed {
		t.Fatal("first member should now be blocked")
	}
	if !limiter.Allow(MemberKey(2)).Allowed {
		t.Fatal("second member has its own bucket")
	}
}

func TestAllow_ZeroRateDisablesLimiting(t *testing.T) {
	limiter := New(&Config{RequestsPerMinute: 0, Burst: 1, Clock: newMockClock()})
	defer limiter.Close()

	for i := 0; i < 100; i++ {
		if !limiter.Allow("k").Allowed {
			t.Fatalf("request %d blocked with limiting disabled", i)
		}
	}
	if limiter.Len() != 0 {
		t.Fatalf("disabled limiter should not track buckets, got %d", limiter.Len())
	}
}

func TestCleanup_DropsIdleBuckets(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{RequestsPerMinute: 60, Burst: 1, IdleTTL: time.Minute, Clock: clock})
	defer limiter.Close()

	limiter.Allow("idle")
	clock.Advance(30 * time.Second)
	limiter.Allow("busy")
	clock.Advance(45 * time.Second)

	limiter.cleanup()
	if limiter.Len() != 1 {
		t.Fatalf("expected only the busy bucket to remain, got %d", limiter.Len())
	}
}

func TestNew_NilConfig(t *testing.T) {
	limiter := New(nil)
	defer limiter.Close()

	if limiter.config.RequestsPerMinute != 30 || limiter.config.Burst != 5 {
		t.Fatalf("expected defaults 30/min burst 5, got %d/min burst %d", limiter.config.RequestsPerMinute, limiter.config.Burst)
	}
}

func TestMiddleware(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{RequestsPerMinute: 60, Burst: 1, Clock: clock})
	defer limiter.Close()

	handler := limiter.Middleware(func(r *http.Request) (string, bool) {
		member := r.Header.Get("X-Member-ID")
		return "member:" + member, member != ""
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(member string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/deposit", nil)
		if member != "" {
			req.Header.Set("X-Member-ID", member)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := send("3"); rec.Code != http.StatusNoContent {
		t.Fatalf("first request: expected 204, got %d", rec.Code)
	}
	rec := send("3")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected Retry-After 1, got %q", got)
	}
	for i := 0; i < 3; i++ {
		if rec := send(""); rec.Code != http.StatusNoContent {
			t.Fatalf("unkeyed request should pass through, got %d", rec.Code)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	limiter := New(&Config{RequestsPerMinute: 60, Burst: 10, Clock: newMockClock()})
	defer limiter.Close()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("shared").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Fatalf("expected exactly the burst of 10 to pass, got %d", allowed)
	}
}
