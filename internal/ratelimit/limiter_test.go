package ratelimit

import (
	"net/http"
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
	return &mockClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
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

func TestCheckLogin_Lockout(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		MaxAttempts:  3,
		Lockout:      5 * time.Minute,
		MaxIPPerHour: 100,
		Clock:        clock,
	})
	defer limiter.Close()

	username := "coach"
	ip := "192.168.1.1"

	for i := 0; i < 2; i++ {
		if result := limiter.CheckLogin(username, ip); !result.Allowed {
			t.Fatalf("attempt %d should be allowed, got %s", i+1, result.Reason)
		}
		if limiter.RecordFailure(username, ip) {
			t.Fatalf("attempt %d should not lock out", i+1)
		}
	}

	if !limiter.RecordFailure(username, ip) {
		t.Fatal("third failure should start the lockout")
	}

	clock.Advance(time.Minute)
	result := limiter.CheckLogin(username, ip)
	if result.Allowed {
		t.Fatal("login during lockout should be blocked")
	}
	if result.Reason != "lockout" {
		t.Fatalf("reason = %q, want lockout", result.Reason)
	}
	if result.RetryAfter != 4*time.Minute {
		t.Fatalf("RetryAfter = %v, want 4m", result.RetryAfter)
	}

	clock.Advance(4 * time.Minute)
	if result := limiter.CheckLogin(username, ip); !result.Allowed {
		t.Fatalf("login after lockout should be allowed, got %s", result.Reason)
	}

	// The first failure after an expired lockout starts a fresh count.
	if limiter.RecordFailure(username, ip) {
		t.Fatal("failure after expired lockout should not lock out again")
	}
	if result := limiter.CheckLogin(username, ip); !result.Allowed {
		t.Fatalf("expected a fresh counter, got %s", result.Reason)
	}
}

func TestCheckLogin_UsernameNormalization(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{MaxAttempts: 2, Lockout: time.Minute, MaxIPPerHour: 100, Clock: clock})
	defer limiter.Close()

	limiter.RecordFailure("Coach", "10.0.0.1")
	limiter.RecordFailure("  COACH ", "10.0.0.2")

	if result := limiter.CheckLogin("coach", "10.0.0.3"); result.Allowed {
		t.Fatal("case variants of a username must share one counter")
	}
}

func TestReset_ClearsUsernameCounter(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{MaxAttempts: 2, Lockout: time.Minute, MaxIPPerHour: 100, Clock: clock})
	defer limiter.Close()

	limiter.RecordFailure("coach", "10.0.0.1")
	limiter.Reset("coach")
	if limiter.RecordFailure("coach", "10.0.0.1") {
		t.Fatal("reset should clear earlier failures")
	}
	if result := limiter.CheckLogin("coach", "10.0.0.1"); !result.Allowed {
		t.Fatalf("expected allowed after reset, got %s", result.Reason)
	}
}

func TestCheckLogin_IPLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{MaxAttempts: 100, Lockout: time.Minute, MaxIPPerHour: 3, Clock: clock})
	defer limiter.Close()

	ip := "203.0.113.7"
	for _, username := range []string{"anna", "ben", "carl"} {
		limiter.RecordFailure(username, ip)
	}

	result := limiter.CheckLogin("dana", ip)
	if result.Allowed {
		t.Fatal("fourth username from one IP should be blocked")
	}
	if result.Reason != "ip_hourly_limit" {
		t.Fatalf("reason = %q, want ip_hourly_limit", result.Reason)
	}

	if result := limiter.CheckLogin("dana", "203.0.113.8"); !result.Allowed {
		t.Fatal("other IPs must not be affected")
	}

	clock.Advance(time.Hour)
	if result := limiter.CheckLogin("dana", ip); !result.Allowed {
		t.Fatalf("IP window should reset after an hour, got %s", result.Reason)
	}
}

func TestCheckLogin_DoesNotConsumeQuota(t *testing.T) {
	limiter := New(&Config{MaxAttempts: 1, Lockout: time.Minute, MaxIPPerHour: 1, Clock: newMockClock()})
	defer limiter.Close()

	for i := 0; i < 10; i++ {
		if result := limiter.CheckLogin("coach", "10.0.0.1"); !result.Allowed {
			t.Fatalf("check %d should be allowed without a recorded failure", i+1)
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	limiter := New(nil)
	defer limiter.Close()

	if limiter.config.MaxAttempts != 5 || limiter.config.Lockout != 5*time.Minute || limiter.config.MaxIPPerHour != 30 {
		t.Fatalf("unexpected defaults: %+v", limiter.config)
	}

	partial := New(&Config{MaxAttempts: 7})
	defer partial.Close()
	if partial.config.MaxAttempts != 7 || partial.config.Lockout != 5*time.Minute {
		t.Fatalf("zero fields should fall back to defaults: %+v", partial.config)
	}
}

func TestLimiter_Close(t *testing.T) {
	limiter := New(nil)
	limiter.CheckLogin("coach", "1.2.3.4")

	done := make(chan struct{})
	go func() {
		limiter.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Close() should not hang")
	}
}

func TestCleanup_DropsStaleEntries(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{MaxAttempts: 5, Lockout: time.Minute, MaxIPPerHour: 100, Clock: clock})
	defer limiter.Close()

	limiter.RecordFailure("coach", "10.0.0.1")
	clock.Advance(2 * time.Hour)
	limiter.cleanup()

	limiter.mu.RLock()
	defer limiter.mu.RUnlock()
	if len(limiter.byUser) != 0 || len(limiter.byIP) != 0 {
		t.Fatalf("expected stale entries to be removed, got %d users and %d ips", len(limiter.byUser), len(limiter.byIP))
	}
}

func TestConcurrentAccess(t *testing.T) {
	limiter := New(&Config{MaxAttempts: 1000, Lockout: time.Minute, MaxIPPerHour: 1000, Clock: newMockClock()})
	defer limiter.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if limiter.CheckLogin("coach", "192.168.1.1").Allowed {
					limiter.RecordFailure("coach", "192.168.1.1")
				}
				limiter.Reset("coach")
			}
		}()
	}
	wg.Wait()
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		trustProxy bool
		expected   string
	}{
		{
			name:       "trusted_proxy_rightmost_public",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.50",
		},
		{
			name:       "trusted_proxy_all_private",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "10.0.0.1",
		},
		{
			name:       "trusted_proxy_real_ip",
			headers:    map[string]string{"X-Real-IP": "203.0.113.51"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.51",
		},
		{
			name:       "untrusted_ignores_forwarded_for",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4"},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
		{
			name:       "remote_addr_without_port",
			remoteAddr: "192.168.1.100",
			expected:   "192.168.1.100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodPost, "/login", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r, tt.trustProxy); got != tt.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"fe80::1", true},
		{"::ffff:192.168.1.1", true},
		{"::ffff:8.8.8.8", false},
		{"203.0.113.50", false},
		{"2001:4860:4860::8888", false},
		{"invalid", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := isPrivateIP(tt.ip); got != tt.expected {
				t.Errorf("isPrivateIP(%q) = %v, want %v", tt.ip, got, tt.expected)
			}
		})
	}
}

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"coach", "co***"},
		{"  COACH ", "co***"},
		{"ab", "***"},
		{"", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeUsername(tt.input); got != tt.expected {
				t.Errorf("SanitizeUsername(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
