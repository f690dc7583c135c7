package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	Healthz struct {
		URL string
	}
	Guard struct {
		LandingPath   string
		RedirectPath  string
		IdleTTL       time.Duration
		SweepInterval time.Duration
		MaxGuards     int
	}
	Log struct {
		Level  string
		Format string
	}
	SessionLifetime time.Duration
	InsecureCookies bool
}

// Load reads config from a .env file (if any), the environment (JOURNEY_
// prefix) and an optional journey-web.yaml.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("JOURNEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("journey-web")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":3000")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "file:journey-web.db")
	v.SetDefault("healthz.url", "http://localhost:8000/healthz")
	v.SetDefault("guard.landing_path", "/")
	v.SetDefault("guard.redirect_path", "/journey")
	v.SetDefault("guard.idle_ttl", "30m")
	v.SetDefault("guard.sweep_interval", "1m")
	v.SetDefault("guard.max_guards", 10000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("session.lifetime", "24h")
	v.SetDefault("insecure_cookies", false)

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Healthz.URL = v.GetString("healthz.url")
	cfg.Guard.LandingPath = v.GetString("guard.landing_path")
	cfg.Guard.RedirectPath = v.GetString("guard.redirect_path")
	cfg.Guard.MaxGuards = v.GetInt("guard.max_guards")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")

	durations := []struct {
		key string
		env string
		dst *time.Duration
	}{
		{"session.lifetime", "JOURNEY_SESSION_LIFETIME", &cfg.SessionLifetime},
		{"guard.idle_ttl", "JOURNEY_GUARD_IDLE_TTL", &cfg.Guard.IdleTTL},
		{"guard.sweep_interval", "JOURNEY_GUARD_SWEEP_INTERVAL", &cfg.Guard.SweepInterval},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.env, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("%s must be positive", d.env)
		}
		*d.dst = parsed
	}

	switch cfg.DB.Driver {
	case "sqlite3", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("JOURNEY_DB_DRIVER must be sqlite3, mysql, or postgres, got %q", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("JOURNEY_DB_DSN is required")
	}
	if cfg.Healthz.URL == "" {
		return nil, fmt.Errorf("JOURNEY_HEALTHZ_URL is required")
	}
	if !strings.HasPrefix(cfg.Guard.LandingPath, "/") {
		return nil, fmt.Errorf("JOURNEY_GUARD_LANDING_PATH must start with /")
	}
	if !strings.HasPrefix(cfg.Guard.RedirectPath, "/") {
		return nil, fmt.Errorf("JOURNEY_GUARD_REDIRECT_PATH must start with /")
	}
	if cfg.Guard.MaxGuards <= 0 {
		return nil, fmt.Errorf("JOURNEY_GUARD_MAX_GUARDS must be positive")
	}
	if cfg.Guard.LandingPath == cfg.Guard.RedirectPath {
		return nil, fmt.Errorf("JOURNEY_GUARD_REDIRECT_PATH must differ from the landing path")
	}

	return cfg, nil
}
