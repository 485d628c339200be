package config

import (
	"time"

	"github.com/tankoni/Crulish-sub003/internal/infra/pressure"
	"github.com/tankoni/Crulish-sub003/internal/infra/telemetry"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig     `yaml:"server"`
	Cache     CacheConfig      `yaml:"cache"`
	Errors    ErrorsConfig     `yaml:"errors"`
	Logging   LoggingConfig    `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
	Pressure  pressure.Config  `yaml:"pressure"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// CacheConfig holds cache sizing and expiry settings.
type CacheConfig struct {
	Capacity      int           `yaml:"capacity"`
	DefaultTTL    time.Duration `yaml:"default_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// ErrorsConfig holds error pipeline settings. Setting ThrottleMaxEvents
// switches throttling from the per-kind interval to a sliding window that
// admits at most that many events per ThrottleWindow.
type ErrorsConfig struct {
	HistoryCapacity   int           `yaml:"history_capacity"`
	ThrottleInterval  time.Duration `yaml:"throttle_interval"`
	ThrottleMaxEvents int           `yaml:"throttle_max_events"`
	ThrottleWindow    time.Duration `yaml:"throttle_window"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
