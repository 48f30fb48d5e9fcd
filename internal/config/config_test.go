package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "REDIS_URL", "CACHE_TTL", "RATE_LIMIT_PER_MINUTE",
		"AUTO_MIGRATE", "API_BASE_URL", "CLIENT_TIMEOUT", "ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.RedisURL != "" {
		t.Fatalf("expected cache disabled by default, got %q", cfg.RedisURL)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m cache ttl, got %s", cfg.CacheTTL)
	}
	if cfg.RateLimitPerMinute != 0 {
		t.Fatalf("expected rate limiting off, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.AutoMigrate {
		t.Fatalf("expected auto migrate off")
	}
	if cfg.APIBaseURL != "http://localhost:8080/api" {
		t.Fatalf("unexpected api base url %s", cfg.APIBaseURL)
	}
	if cfg.AllowedOrigins != nil {
		t.Fatalf("expected allow-all origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "60")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("API_BASE_URL", "http://api.local/api/")
	t.Setenv("CLIENT_TIMEOUT", "not-a-duration")

	cfg := Load()
	if cfg.ServerPort != "9090" {
		t.Fatalf("expected 9090, got %s", cfg.ServerPort)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Fatalf("expected 30s, got %s", cfg.CacheTTL)
	}
	if cfg.RateLimitPerMinute != 60 {
		t.Fatalf("expected 60, got %d", cfg.RateLimitPerMinute)
	}
	if !cfg.AutoMigrate {
		t.Fatalf("expected auto migrate on")
	}
	if cfg.APIBaseURL != "http://api.local/api" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.APIBaseURL)
	}
	if cfg.ClientTimeout != 10*time.Second {
		t.Fatalf("expected fallback timeout, got %s", cfg.ClientTimeout)
	}
}

func TestParseOrigins(t *testing.T) {
	got := parseOrigins(" http://a.local , ,http://b.local")
	want := []string{"http://a.local", "http://b.local"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if parseOrigins("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestCacheKeys(t *testing.T) {
	if got := CacheKey.StudentKey(42); got != "student:42" {
		t.Fatalf("unexpected student key %s", got)
	}
	if got := CacheKey.StudentListKey(); got != "students:all" {
		t.Fatalf("unexpected list key %s", got)
	}
	if got := CacheKey.StudentGenerationKey(); got != "students:gen" {
		t.Fatalf("unexpected generation key %s", got)
	}
}
