package config

import (
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "host=localhost user=test password=test dbname=test port=5432 sslmode=disable")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CALLBACK_HOST", "gateway.example.com")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", cfg.APIPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.CallbackScheme != "https" {
		t.Errorf("CallbackScheme = %s, want https", cfg.CallbackScheme)
	}
	if cfg.CallbackPort != 443 {
		t.Errorf("CallbackPort = %d, want 443", cfg.CallbackPort)
	}
	if cfg.TenantRateLimitPerSec != 50 {
		t.Errorf("TenantRateLimitPerSec = %d, want 50", cfg.TenantRateLimitPerSec)
	}
	if cfg.BootstrapDelaySeconds != 60 {
		t.Errorf("BootstrapDelaySeconds = %d, want 60", cfg.BootstrapDelaySeconds)
	}
	if cfg.BootstrapPageSize != 200 {
		t.Errorf("BootstrapPageSize = %d, want 200", cfg.BootstrapPageSize)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CALLBACK_SCHEME", "http")
	t.Setenv("CALLBACK_PORT", "8443")
	t.Setenv("DISPATCH_QUEUE_DEPTH", "512")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", cfg.APIPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.DispatchQueueDepth != 512 {
		t.Errorf("DispatchQueueDepth = %d, want 512", cfg.DispatchQueueDepth)
	}
	if got := cfg.CallbackBaseURL(); got != "http://gateway.example.com:8443" {
		t.Errorf("CallbackBaseURL() = %s, want http://gateway.example.com:8443", got)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_DSN", "host=localhost")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing CALLBACK_HOST")
	}
}
