package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

func fastPolicy() model.RetryConfig {
	return model.RetryConfig{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     4 * time.Millisecond,
	}
}

func TestDo_TransientThenSuccess(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastPolicy(), func() error {
		attempts++
		if attempts < 3 {
			return Classify(fmt.Errorf("unexpected status: 503 Service Unavailable"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestDo_PermanentFailsImmediately(t *testing.T) {
	attempts := 0
	permErr := errors.New("unexpected status: 404 Not Found")
	err := Do(context.Background(), fastPolicy(), func() error {
		attempts++
		return Classify(permErr)
	})
	if err == nil {
		t.Fatal("Expected error for permanent failure")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for permanent failure, got %d", attempts)
	}
}

func TestDo_AllRetriesExhausted(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastPolicy(), func() error {
		attempts++
		return Classify(errors.New("fetch: connection reset by peer"))
	})
	if err == nil {
		t.Fatal("Expected error after all retries exhausted")
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, fastPolicy(), func() error {
		return Classify(errors.New("timeout"))
	})
	if err == nil {
		t.Fatal("Expected error when context already cancelled")
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		err       string
		transient bool
	}{
		{"unexpected status: 503 Service Unavailable", true},
		{"unexpected status: 500 Internal Server Error", true},
		{"unexpected status: 429 Too Many Requests", true},
		{"fetch: connection refused", true},
		{"fetch: connection reset by peer", true},
		{"dial tcp: i/o timeout", true},
		{"unexpected status: 404 Not Found", false},
		{"unexpected status: 403 Forbidden", false},
		{"create request: invalid URL", false},
	}

	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			got := IsTransient(errors.New(tt.err))
			if got != tt.transient {
				t.Errorf("IsTransient(%q) = %v, want %v", tt.err, got, tt.transient)
			}
		})
	}
}

func TestIsTransient_Nil(t *testing.T) {
	if IsTransient(nil) {
		t.Error("Expected nil error to not be transient")
	}
}

func TestRetryableStatus(t *testing.T) {
	for _, status := range []int{429, 500, 502, 503} {
		if !RetryableStatus(status) {
			t.Errorf("Expected status %d to be retryable", status)
		}
	}
	for _, status := range []int{200, 301, 400, 403, 404} {
		if RetryableStatus(status) {
			t.Errorf("Expected status %d to not be retryable", status)
		}
	}
}

func TestBackoff_Capped(t *testing.T) {
	cfg := model.RetryConfig{InitialInterval: time.Second, MaxInterval: 8 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 8 * time.Second}
	for i, w := range want {
		if got := Backoff(cfg, i); got != w {
			t.Errorf("Backoff(attempt=%d) = %v, want %v", i, got, w)
		}
	}
}
