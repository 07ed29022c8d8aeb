package cliconfig

import (
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/feedship/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.FeedsFile != "config.json" {
		t.Errorf("FeedsFile = %v, want config.json", cfg.FeedsFile)
	}
	if cfg.ScheduleAt != "23:59" {
		t.Errorf("ScheduleAt = %v, want 23:59", cfg.ScheduleAt)
	}
	if cfg.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, want 1s", cfg.PollInterval)
	}
	if cfg.Strict {
		t.Error("Strict should default to false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func(mod func(*Config)) Config {
		c := DefaultConfig()
		mod(&c)
		return c
	}

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"defaults", valid(func(*Config) {}), false},
		{"seconds in schedule time", valid(func(c *Config) { c.ScheduleAt = "06:30:15" }), false},
		{"uppercase log level", valid(func(c *Config) { c.LogLevel = "DEBUG" }), false},
		{"bad schedule time", valid(func(c *Config) { c.ScheduleAt = "25:00" }), true},
		{"schedule time without leading zero", valid(func(c *Config) { c.ScheduleAt = "6:30" }), true},
		{"zero poll interval", valid(func(c *Config) { c.PollInterval = 0 }), true},
		{"negative fetch timeout", valid(func(c *Config) { c.FetchTimeout = -time.Second }), true},
		{"zero transfer timeout", valid(func(c *Config) { c.TransferTimeout = 0 }), true},
		{"unknown log level", valid(func(c *Config) { c.LogLevel = "chatty" }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_Validate_Derivations(t *testing.T) {
	c := Config{
		PollInterval:    time.Second,
		FetchTimeout:    time.Second,
		TransferTimeout: time.Second,
		LogLevel:        "Warn",
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if c.FeedsFile != DefaultFeedsFile {
		t.Errorf("FeedsFile = %v, want %v", c.FeedsFile, DefaultFeedsFile)
	}
	if c.ScheduleAt != DefaultScheduleAt {
		t.Errorf("ScheduleAt = %v, want %v", c.ScheduleAt, DefaultScheduleAt)
	}
	if c.LogLevel != "warn" {
		t.Errorf("LogLevel = %v, want warn", c.LogLevel)
	}
}
