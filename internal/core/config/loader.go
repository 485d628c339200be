package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/tankoni/Crulish-sub003/internal/core/cache"
	"github.com/tankoni/Crulish-sub003/internal/core/errs"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = cache.DefaultCapacity
	}
	if cfg.Cache.DefaultTTL == 0 {
		cfg.Cache.DefaultTTL = cache.DefaultTTL
	}
	if cfg.Cache.SweepInterval == 0 {
		cfg.Cache.SweepInterval = cache.DefaultSweepInterval
	}
	if cfg.Errors.HistoryCapacity == 0 {
		cfg.Errors.HistoryCapacity = errs.DefaultHistoryCapacity
	}
	if cfg.Errors.ThrottleInterval == 0 {
		cfg.Errors.ThrottleInterval = errs.DefaultThrottleInterval
	}
	if cfg.Errors.ThrottleMaxEvents > 0 && cfg.Errors.ThrottleWindow == 0 {
		cfg.Errors.ThrottleWindow = errs.DefaultThrottleWindow
	}

	return &cfg, nil
}
