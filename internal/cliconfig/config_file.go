package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig is the TOML form of Config. Durations are strings such as "90s".
type FileConfig struct {
	FeedsFile       string `toml:"feeds_file"`
	WorkDir         string `toml:"work_dir"`
	StateDir        string `toml:"state_dir"`
	EnvFile         string `toml:"env_file"`
	ScheduleAt      string `toml:"schedule_at"`
	PollInterval    string `toml:"poll_interval"`
	FetchTimeout    string `toml:"fetch_timeout"`
	TransferTimeout string `toml:"transfer_timeout"`
	FTPInsecure     *bool  `toml:"ftp_insecure"`
	LogLevel        string `toml:"log_level"`
	Strict          *bool  `toml:"strict"`
}

// LoadFileConfig decodes the TOML file at path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, err
	}
	if err := toml.Unmarshal(raw, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath is ~/.feedship/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".feedship", "config.toml")
}

// ApplyFileConfig copies set fields of fc into cfg, skipping flags in changed.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	l := newLayer("config file", changed)

	l.str("feeds", fc.FeedsFile, &cfg.FeedsFile)
	l.str("work-dir", fc.WorkDir, &cfg.WorkDir)
	l.str("state-dir", fc.StateDir, &cfg.StateDir)
	l.str("env-file", fc.EnvFile, &cfg.EnvFile)
	l.str("at", fc.ScheduleAt, &cfg.ScheduleAt)
	l.str("log-level", fc.LogLevel, &cfg.LogLevel)
	l.dur("poll", fc.PollInterval, &cfg.PollInterval)
	l.dur("fetch-timeout", fc.FetchTimeout, &cfg.FetchTimeout)
	l.dur("transfer-timeout", fc.TransferTimeout, &cfg.TransferTimeout)
	l.optFlag("ftp-insecure", fc.FTPInsecure, &cfg.FTPInsecure)
	l.optFlag("strict", fc.Strict, &cfg.Strict)

	return l.err()
}

// FileExists reports whether anything exists at p.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
