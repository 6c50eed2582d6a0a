// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration, loaded via Koanf v2 with
// layered sources (highest priority wins): env vars > config file > defaults.
type Config struct {
	DataGov  DataGovConfig  `koanf:"datagov"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Sync     SyncConfig     `koanf:"sync"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DataGovConfig configures the upstream data.gov.in statistics client.
type DataGovConfig struct {
	// BaseURL is the full resource URL of the MGNREGA dataset.
	BaseURL string `koanf:"base_url"`

	// APIKey authenticates requests to data.gov.in. When empty, live fetches
	// fail fast and the deterministic fallback dataset is used instead.
	APIKey string `koanf:"api_key"`

	// Timeout bounds each upstream HTTP call.
	Timeout time.Duration `koanf:"timeout"`

	// PageLimit is the maximum records requested per fetch.
	PageLimit int `koanf:"page_limit"`

	// RatePerSecond and Burst throttle outbound calls to the upstream API.
	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`
}

// DatabaseConfig configures the embedded DuckDB store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// CacheConfig configures the read-through query cache.
type CacheConfig struct {
	// DefaultTTL applies when a query component does not choose its own TTL.
	DefaultTTL time.Duration `koanf:"default_ttl"`

	// DirectoryTTL covers the district directory listings (near-static).
	DirectoryTTL time.Duration `koanf:"directory_ttl"`

	// PerformanceTTL covers per-district performance and comparison queries.
	PerformanceTTL time.Duration `koanf:"performance_ttl"`

	// SummaryTTL covers state-level aggregations.
	SummaryTTL time.Duration `koanf:"summary_ttl"`

	// SweepInterval is how often expired entries are removed in the
	// background. Passive expiry on read is the correctness mechanism;
	// the sweep only reclaims storage.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// SyncConfig configures the data synchronization schedule.
type SyncConfig struct {
	// DailyAt is the local wall-clock time ("HH:MM") of the scheduled
	// daily sync run.
	DailyAt string `koanf:"daily_at"`

	// RunOnStartup runs a blocking sync before the server starts serving.
	RunOnStartup bool `koanf:"run_on_startup"`

	// Timeout bounds one full sync run end to end.
	Timeout time.Duration `koanf:"timeout"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// APIConfig holds request parameter bounds.
type APIConfig struct {
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the host:port listen address.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		DataGov: DataGovConfig{
			BaseURL:       "https://api.data.gov.in/resource/eea94a85-4f1a-4a54-9dd7-fdbfa5101e66",
			APIKey:        "",
			Timeout:       5 * time.Second,
			PageLimit:     1000,
			RatePerSecond: 2,
			Burst:         1,
		},
		Database: DatabaseConfig{
			Path:      "/data/mgnrega.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Cache: CacheConfig{
			DefaultTTL:     60 * time.Minute,
			DirectoryTTL:   60 * time.Minute,
			PerformanceTTL: 30 * time.Minute,
			SummaryTTL:     60 * time.Minute,
			SweepInterval:  5 * time.Minute,
		},
		Sync: SyncConfig{
			DailyAt:      "02:00",
			RunOnStartup: true,
			Timeout:      2 * time.Minute,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		API: APIConfig{
			DefaultLimit: 12,
			MaxLimit:     100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for values that would prevent startup.
func (c *Config) Validate() error {
	if c.DataGov.BaseURL == "" {
		return fmt.Errorf("datagov.base_url must not be empty")
	}
	if c.DataGov.Timeout <= 0 {
		return fmt.Errorf("datagov.timeout must be positive, got %v", c.DataGov.Timeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("cache.default_ttl must be positive, got %v", c.Cache.DefaultTTL)
	}
	if c.API.DefaultLimit < 1 || c.API.MaxLimit < c.API.DefaultLimit {
		return fmt.Errorf("api limits invalid: default=%d max=%d", c.API.DefaultLimit, c.API.MaxLimit)
	}
	if _, err := ParseDailyAt(c.Sync.DailyAt); err != nil {
		return fmt.Errorf("sync.daily_at: %w", err)
	}
	return nil
}

// ParseDailyAt parses an "HH:MM" wall-clock schedule expression and returns
// the offset from midnight.
func ParseDailyAt(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid schedule %q (want HH:MM): %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
