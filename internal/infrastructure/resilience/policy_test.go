package resilience

import (
	"testing"
	"time"
)

func TestNormalizeBackfillsZeroValues(t *testing.T) {
	cfg := Config{}.normalize()
	def := DefaultConfig()

	if cfg.RetryMaxAttempts != def.RetryMaxAttempts {
		t.Fatalf("expected default attempts, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.RetryInitialBackoff != def.RetryInitialBackoff {
		t.Fatalf("expected default initial backoff, got %v", cfg.RetryInitialBackoff)
	}
	if cfg.RetryMaxBackoff < cfg.RetryInitialBackoff {
		t.Fatalf("max backoff %v below initial %v", cfg.RetryMaxBackoff, cfg.RetryInitialBackoff)
	}
	if cfg.BreakerFailureRatio != def.BreakerFailureRatio {
		t.Fatalf("expected default failure ratio, got %v", cfg.BreakerFailureRatio)
	}
}

func TestNormalizeRaisesMaxBackoffToInitial(t *testing.T) {
	cfg := Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Second,
		RetryMaxBackoff:     100 * time.Millisecond,
		RetryMultiplier:     2.0,
	}.normalize()

	if cfg.RetryMaxBackoff != time.Second {
		t.Fatalf("expected max backoff raised to initial, got %v", cfg.RetryMaxBackoff)
	}
}

func TestAgentPolicyTighterThanPublisher(t *testing.T) {
	agent := AgentConfig()
	publisher := PublisherConfig()

	if agent.RetryMaxAttempts >= publisher.RetryMaxAttempts {
		t.Fatalf("agent retries %d should be fewer than publisher %d",
			agent.RetryMaxAttempts, publisher.RetryMaxAttempts)
	}
	if agent.BreakerOpenTimeout >= publisher.BreakerOpenTimeout {
		t.Fatalf("agent breaker timeout %v should recover faster than publisher %v",
			agent.BreakerOpenTimeout, publisher.BreakerOpenTimeout)
	}
}
