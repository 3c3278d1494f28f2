package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("API_RATE_LIMIT_RPS", "")
	t.Setenv("API_MAX_CONCURRENT", "")

	cfg := Load()
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default api port 8080, got %q", cfg.APIPort)
	}
	if cfg.NATSSubject != "diligence.changes" {
		t.Fatalf("expected default nats subject, got %q", cfg.NATSSubject)
	}
	if cfg.APIRateLimitRPS != 50 {
		t.Fatalf("expected default rate limit 50 rps, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.APIMaxConcurrent != 256 {
		t.Fatalf("expected default max concurrent 256, got %d", cfg.APIMaxConcurrent)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("AGENT_URL", "http://agent.internal:8090")
	t.Setenv("API_RATE_LIMIT_RPS", "12.5")
	t.Setenv("API_BACKPRESSURE_WAIT_MS", "250")

	cfg := Load()
	if cfg.APIPort != "9090" {
		t.Fatalf("expected api port override, got %q", cfg.APIPort)
	}
	if cfg.AgentURL != "http://agent.internal:8090" {
		t.Fatalf("expected agent url override, got %q", cfg.AgentURL)
	}
	if cfg.APIRateLimitRPS != 12.5 {
		t.Fatalf("expected rate limit 12.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.APIBackpressureWaitMS != 250 {
		t.Fatalf("expected backpressure wait 250ms, got %d", cfg.APIBackpressureWaitMS)
	}
}

func TestLoadFallsBackOnUnparsableNumbers(t *testing.T) {
	t.Setenv("API_RATE_LIMIT_BURST", "lots")

	cfg := Load()
	if cfg.APIRateLimitBurst != 100 {
		t.Fatalf("expected fallback burst 100, got %d", cfg.APIRateLimitBurst)
	}
}
