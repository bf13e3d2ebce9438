package api

import (
	"testing"
	"time"
)

func TestLimiterDefaultsCleanupInterval(t *testing.T) {
	// A config without a cleanup interval must not feed a zero period into
	// the cleanup ticker.
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 5, Burst: 5})
	defer rl.Stop()

	// Give the cleanup goroutine a moment so a bad ticker period would
	// surface here instead of in an unrelated test.
	time.Sleep(20 * time.Millisecond)

	if !rl.Allow("10.0.0.9") {
		t.Error("first request should be within budget")
	}
	if rl.config.CleanupInterval != DefaultRateLimitConfig.CleanupInterval {
		t.Errorf("cleanup interval = %v, want the default %v",
			rl.config.CleanupInterval, DefaultRateLimitConfig.CleanupInterval)
	}
}

func TestLimiterRejectsOverBudget(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             2,
		CleanupInterval:   time.Minute,
	})
	defer rl.Stop()

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("requests within burst should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request past the burst should be rejected")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("a different IP has its own budget")
	}
}
