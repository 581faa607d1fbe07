package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeClock implements Clock with controllable time.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)}
	limiter := New(&Config{RequestsPerMinute: perMinute, Clock: clock})
	t.Cleanup(limiter.Close)
	return limiter, clock
}

func TestAllowWithinBudget(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if result := limiter.Allow("203.0.113.7"); !result.Allowed {
			t.Fatalf("request %d denied: %+v", i+1, result)
		}
	}
}

func TestAllowDeniesOverBudget(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2)

	limiter.Allow("203.0.113.7")
	limiter.Allow("203.0.113.7")

	result := limiter.Allow("203.0.113.7")
	if result.Allowed {
		t.Fatalf("third request allowed over a budget of 2")
	}
	if result.Reason != "minute_limit" {
		t.Fatalf("reason = %q", result.Reason)
	}
	if result.RetryAfter <= 0 || result.RetryAfter > time.Minute {
		t.Fatalf("retry after = %v", result.RetryAfter)
	}
}

func TestAllowWindowResets(t *testing.T) {
	limiter, clock := newTestLimiter(t, 1)

	limiter.Allow("203.0.113.7")
	if result := limiter.Allow("203.0.113.7"); result.Allowed {
		t.Fatalf("second request in window allowed")
	}

	clock.Advance(61 * time.Second)
	if result := limiter.Allow("203.0.113.7"); !result.Allowed {
		t.Fatalf("request after window reset denied: %+v", result)
	}
}

func TestAllowIsolatesClients(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1)

	limiter.Allow("203.0.113.7")
	if result := limiter.Allow("198.51.100.4"); !result.Allowed {
		t.Fatalf("other client denied: %+v", result)
	}
}

func TestAllowDisabledLimiter(t *testing.T) {
	limiter, _ := newTestLimiter(t, 0)

	for i := 0; i < 100; i++ {
		if result := limiter.Allow("203.0.113.7"); !result.Allowed {
			t.Fatalf("disabled limiter denied request %d", i+1)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		trustProxy bool
		want       string
	}{
		{"direct", "203.0.113.7:52114", "", false, "203.0.113.7"},
		{"spoofed_xff_untrusted", "203.0.113.7:52114", "198.51.100.4", false, "203.0.113.7"},
		{"trusted_xff", "10.0.0.2:52114", "198.51.100.4", true, "198.51.100.4"},
		{"trusted_xff_skips_private", "10.0.0.2:52114", "198.51.100.4, 192.168.1.10", true, "198.51.100.4"},
		{"no_port", "203.0.113.7", "", false, "203.0.113.7"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = test.remoteAddr
			if test.xff != "" {
				req.Header.Set("X-Forwarded-For", test.xff)
			}
			if got := GetClientIP(req, test.trustProxy); got != test.want {
				t.Fatalf("GetClientIP = %q, want %q", got, test.want)
			}
		})
	}
}
