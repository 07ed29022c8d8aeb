package cliconfig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/feedship/internal/domain"
	"github.com/bft-labs/feedship/internal/schedule"
	"github.com/bft-labs/feedship/pkg/log"
)

// Defaults.
const (
	DefaultFeedsFile       = "config.json"
	DefaultScheduleAt      = "23:59"
	DefaultPollInterval    = time.Second
	DefaultFetchTimeout    = 60 * time.Second
	DefaultTransferTimeout = 30 * time.Second
	DefaultLogLevel        = "info"
)

// Config is the merged command line configuration.
// Layers apply in order: defaults, TOML file, FEEDSHIP_* env, flags.
type Config struct {
	FeedsFile string
	WorkDir   string
	StateDir  string
	EnvFile   string

	ScheduleAt   string
	PollInterval time.Duration

	FetchTimeout    time.Duration
	TransferTimeout time.Duration
	FTPInsecure     bool

	LogLevel string
	Strict   bool
}

// DefaultConfig returns the built-in settings, the lowest layer.
func DefaultConfig() Config {
	return Config{
		FeedsFile:       DefaultFeedsFile,
		ScheduleAt:      DefaultScheduleAt,
		PollInterval:    DefaultPollInterval,
		FetchTimeout:    DefaultFetchTimeout,
		TransferTimeout: DefaultTransferTimeout,
		LogLevel:        DefaultLogLevel,
	}
}

// Validate fills blanks with defaults and rejects unusable values.
// Errors wrap domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.FeedsFile) == "" {
		c.FeedsFile = DefaultFeedsFile
	}
	if c.ScheduleAt == "" {
		c.ScheduleAt = DefaultScheduleAt
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.LogLevel = strings.ToLower(c.LogLevel)

	if _, err := schedule.ParseTimeOfDay(c.ScheduleAt); err != nil {
		return fmt.Errorf("%w: schedule time %q must be HH:MM or HH:MM:SS", domain.ErrInvalidConfig, c.ScheduleAt)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", domain.ErrInvalidConfig)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("%w: fetch timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.TransferTimeout <= 0 {
		return fmt.Errorf("%w: transfer timeout must be positive", domain.ErrInvalidConfig)
	}
	if !log.ValidLevel(c.LogLevel) {
		return fmt.Errorf("%w: unknown log level %q", domain.ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// layer applies one configuration source underneath the command line.
// Keys are flag names; a key the user passed on the command line is left alone.
// Parse failures are collected and reported together by err.
type layer struct {
	source  string
	changed map[string]bool
	errs    []error
}

func newLayer(source string, changed map[string]bool) *layer {
	return &layer{source: source, changed: changed}
}

func (l *layer) owns(flag, raw string) bool {
	return raw != "" && !l.changed[flag]
}

func (l *layer) str(flag, raw string, dst *string) {
	if l.owns(flag, raw) {
		*dst = raw
	}
}

func (l *layer) dur(flag, raw string, dst *time.Duration) {
	if !l.owns(flag, raw) {
		return
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: %s: %w", l.source, flag, err))
		return
	}
	*dst = d
}

func (l *layer) flag(flag, raw string, dst *bool) {
	if !l.owns(flag, raw) {
		return
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: %s: %w", l.source, flag, err))
		return
	}
	*dst = b
}

// optFlag applies a TOML boolean, where nil means unset.
func (l *layer) optFlag(flag string, v *bool, dst *bool) {
	if v != nil && !l.changed[flag] {
		*dst = *v
	}
}

func (l *layer) err() error {
	return errors.Join(l.errs...)
}
