package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_AllowWithinBurst(t *testing.T) {
	limiter := NewLimiter(1, 3)

	allowed := 0
	for i := 0; i < 5; i++ {
		if limiter.Allow("https://example.com/cert.pdf") {
			allowed++
		}
	}

	if allowed != 3 {
		t.Errorf("Expected 3 requests within burst, got %d", allowed)
	}
}

func TestLimiter_PerDomainIsolation(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("https://a.example.com/x") {
		t.Error("Expected first request to a.example.com to be allowed")
	}
	if limiter.Allow("https://a.example.com/y") {
		t.Error("Expected second request to a.example.com to be limited")
	}
	// A different domain has its own bucket
	if !limiter.Allow("https://b.example.com/x") {
		t.Error("Expected first request to b.example.com to be allowed")
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	limiter := NewLimiter(0.1, 1) // one request per 10s after burst

	// Exhaust the burst
	if err := limiter.Wait(context.Background(), "https://example.com/"); err != nil {
		t.Fatalf("First wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, "https://example.com/")
	if err == nil {
		t.Error("Expected wait to fail when context expires before clearance")
	}
}

func TestLimiter_SetDomainRate(t *testing.T) {
	limiter := NewLimiter(1, 1)
	limiter.SetDomainRate("slow.example.com", 0.01, 1)

	if !limiter.Allow("https://slow.example.com/a") {
		t.Error("Expected burst request to be allowed")
	}
	if limiter.Allow("https://slow.example.com/b") {
		t.Error("Expected custom slow rate to limit the second request")
	}
}

func TestLimiter_InvalidURL(t *testing.T) {
	limiter := NewLimiter(1, 1)
	if limiter.Allow("://not a url") {
		t.Error("Expected invalid URL to be denied")
	}
}
