package api

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_AllowsBurst(t *testing.T) {
	rl := NewRateLimiter(1, 5)
	for i := 0; i < 5; i++ {
		if !rl.Allow("client-a") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("client-a") {
		t.Error("6th request should be blocked")
	}
}

func TestRateLimiter_Refills(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }
	if !rl.Allow("c") || rl.Allow("c") {
		t.Fatal("burst of 1 not enforced")
	}
	now = now.Add(time.Second)
	if !rl.Allow("c") {
		t.Error("token not refilled after a second")
	}
}

func TestRateLimiter_SeparateClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Allow("client-a")
	if rl.Allow("client-a") {
		t.Error("client-a should be blocked")
	}
	if !rl.Allow("client-b") {
		t.Error("client-b should be allowed")
	}
}

func TestRateLimiter_PrunesIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }
	rl.Allow("old")
	now = now.Add(limiterIdleTTL + time.Second)
	rl.Allow("new")
	if _, ok := rl.clients["old"]; ok {
		t.Error("idle client was not pruned")
	}
}

func TestRateLimiter_DisabledAndNilSafe(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if !rl.Allow("client") {
			t.Fatal("disabled limiter should always allow")
		}
	}
	var nilRL *RateLimiter
	if !nilRL.Allow("key") {
		t.Error("nil limiter should allow")
	}
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	if got := ClientKey(r); got != "ip:10.0.0.1" {
		t.Errorf("ClientKey = %q", got)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientKey(r); got != "ip:203.0.113.9" {
		t.Errorf("ClientKey with proxy = %q", got)
	}
}
