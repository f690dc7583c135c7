package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/joestump/journey-web/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":3000" {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.HTTP.Addr, ":3000")
	}
	if cfg.Healthz.URL != "http://localhost:8000/healthz" {
		t.Errorf("Healthz.URL = %q", cfg.Healthz.URL)
	}
	if cfg.Guard.LandingPath != "/" || cfg.Guard.RedirectPath != "/journey" {
		t.Errorf("guard paths = %q -> %q, want / -> /journey", cfg.Guard.LandingPath, cfg.Guard.RedirectPath)
	}
	if cfg.Guard.IdleTTL != 30*time.Minute {
		t.Errorf("Guard.IdleTTL = %v, want 30m", cfg.Guard.IdleTTL)
	}
	if cfg.Guard.MaxGuards != 10000 {
		t.Errorf("Guard.MaxGuards = %d, want 10000", cfg.Guard.MaxGuards)
	}
	if cfg.DB.Driver != "sqlite3" {
		t.Errorf("DB.Driver = %q, want sqlite3", cfg.DB.Driver)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("JOURNEY_HTTP_ADDR", ":9090")
	t.Setenv("JOURNEY_HEALTHZ_URL", "http://api.internal/healthz")
	t.Setenv("JOURNEY_GUARD_IDLE_TTL", "5m")
	t.Setenv("JOURNEY_INSECURE_COOKIES", "true")
	t.Setenv("JOURNEY_LOG_FORMAT", "json")
	t.Setenv("JOURNEY_GUARD_MAX_GUARDS", "250")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("HTTP.Addr = %q, want :9090", cfg.HTTP.Addr)
	}
	if cfg.Healthz.URL != "http://api.internal/healthz" {
		t.Errorf("Healthz.URL = %q", cfg.Healthz.URL)
	}
	if cfg.Guard.IdleTTL != 5*time.Minute {
		t.Errorf("Guard.IdleTTL = %v, want 5m", cfg.Guard.IdleTTL)
	}
	if !cfg.InsecureCookies {
		t.Error("InsecureCookies = false, want true")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.Guard.MaxGuards != 250 {
		t.Errorf("Guard.MaxGuards = %d, want 250", cfg.Guard.MaxGuards)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"bad driver", "JOURNEY_DB_DRIVER", "oracle", "JOURNEY_DB_DRIVER"},
		{"bad duration", "JOURNEY_SESSION_LIFETIME", "forever", "JOURNEY_SESSION_LIFETIME"},
		{"negative ttl", "JOURNEY_GUARD_IDLE_TTL", "-1m", "JOURNEY_GUARD_IDLE_TTL"},
		{"relative landing", "JOURNEY_GUARD_LANDING_PATH", "home", "JOURNEY_GUARD_LANDING_PATH"},
		{"zero max guards", "JOURNEY_GUARD_MAX_GUARDS", "0", "JOURNEY_GUARD_MAX_GUARDS"},
		{"redirect loop", "JOURNEY_GUARD_REDIRECT_PATH", "/", "JOURNEY_GUARD_REDIRECT_PATH"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := config.Load()
			if err == nil {
				t.Fatal("Load: nil error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want mention of %s", err, tt.want)
			}
		})
	}
}
