package feedship

import (
	"fmt"
	"time"

	"github.com/bft-labs/feedship/internal/domain"
	"github.com/bft-labs/feedship/internal/feeds"
	"github.com/bft-labs/feedship/internal/schedule"
)

// Config configures a Runner.
type Config struct {
	// FeedsFile is the JSON or YAML feeds list. Default: config.json.
	FeedsFile string

	// WorkDir holds staged files and the run lock. Default: working directory.
	WorkDir string

	// StateDir, when set, keeps the report of the last run.
	StateDir string

	// EnvFile is an optional dotenv file with FTP credentials.
	EnvFile string

	// ScheduleAt is the daily run time, HH:MM or HH:MM:SS local time. Default: 23:59.
	ScheduleAt string

	// PollInterval is how often the schedule loop checks the clock. Default: 1s.
	PollInterval time.Duration

	// FetchTimeout bounds each HTTP download. Default: 60s.
	FetchTimeout time.Duration

	// TransferTimeout bounds the FTP connection and control replies. Default: 30s.
	TransferTimeout time.Duration

	// FTPInsecure skips FTPS certificate verification.
	FTPInsecure bool

	// WatchFeeds re-validates the feeds file on change while scheduled.
	WatchFeeds bool
}

// SetDefaults fills zero fields with defaults.
func (c *Config) SetDefaults() {
	if c.FeedsFile == "" {
		c.FeedsFile = feeds.DefaultFile
	}
	if c.ScheduleAt == "" {
		c.ScheduleAt = "23:59"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = schedule.DefaultPollInterval
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 60 * time.Second
	}
	if c.TransferTimeout <= 0 {
		c.TransferTimeout = 30 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := schedule.ParseTimeOfDay(c.ScheduleAt); err != nil {
		return fmt.Errorf("%w: schedule time: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}
