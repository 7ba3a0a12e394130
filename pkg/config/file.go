package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML overlay. Durations are written as Go duration
// strings ("720h", "10m").
type fileConfig struct {
	Calendar struct {
		MaxWindow     string `yaml:"max_window"`
		DefaultWindow string `yaml:"default_window"`
		CacheTTL      string `yaml:"cache_ttl"`
	} `yaml:"calendar"`
	Outbox struct {
		PollInterval     string `yaml:"poll_interval"`
		BatchSize        int    `yaml:"batch_size"`
		MaxRetries       int    `yaml:"max_retries"`
		RetentionDays    int    `yaml:"retention_days"`
		CleanupSchedule  string `yaml:"cleanup_schedule"`
		ProcessorEnabled *bool  `yaml:"processor_enabled"`
	} `yaml:"outbox"`
	Breaker struct {
		MaxRequests      uint32 `yaml:"max_requests"`
		Interval         string `yaml:"interval"`
		Timeout          string `yaml:"timeout"`
		FailureThreshold uint32 `yaml:"failure_threshold"`
	} `yaml:"breaker"`
}

// LoadFile loads the environment configuration and overlays the YAML file
// at path. An empty path or a missing file leaves the environment values
// untouched.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.overlay(data); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

func (c *Config) overlay(data []byte) error {
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}

	durations := []struct {
		raw    string
		target *time.Duration
	}{
		{f.Calendar.MaxWindow, &c.Calendar.MaxWindow},
		{f.Calendar.DefaultWindow, &c.Calendar.DefaultWindow},
		{f.Calendar.CacheTTL, &c.Calendar.CacheTTL},
		{f.Outbox.PollInterval, &c.Outbox.PollInterval},
		{f.Breaker.Interval, &c.Breaker.Interval},
		{f.Breaker.Timeout, &c.Breaker.Timeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return err
		}
		*d.target = v
	}

	if f.Outbox.BatchSize > 0 {
		c.Outbox.BatchSize = f.Outbox.BatchSize
	}
	if f.Outbox.MaxRetries > 0 {
		c.Outbox.MaxRetries = f.Outbox.MaxRetries
	}
	if f.Outbox.RetentionDays > 0 {
		c.Outbox.RetentionDays = f.Outbox.RetentionDays
	}
	if f.Outbox.CleanupSchedule != "" {
		c.Outbox.CleanupSchedule = f.Outbox.CleanupSchedule
	}
	if f.Outbox.ProcessorEnabled != nil {
		c.Outbox.ProcessorEnabled = *f.Outbox.ProcessorEnabled
	}
	if f.Breaker.MaxRequests > 0 {
		c.Breaker.MaxRequests = f.Breaker.MaxRequests
	}
	if f.Breaker.FailureThreshold > 0 {
		c.Breaker.FailureThreshold = f.Breaker.FailureThreshold
	}
	return nil
}
