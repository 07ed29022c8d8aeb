package cliconfig

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "FEEDSHIP_"

// ApplyEnvConfig reads FEEDSHIP_* variables into cfg, skipping flags in changed.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	l := newLayer("environment", changed)
	env := func(key string) string { return os.Getenv(EnvPrefix + key) }

	l.str("feeds", env("FEEDS_FILE"), &cfg.FeedsFile)
	l.str("work-dir", env("WORK_DIR"), &cfg.WorkDir)
	l.str("state-dir", env("STATE_DIR"), &cfg.StateDir)
	l.str("env-file", env("ENV_FILE"), &cfg.EnvFile)
	l.str("at", env("SCHEDULE_AT"), &cfg.ScheduleAt)
	l.str("log-level", env("LOG_LEVEL"), &cfg.LogLevel)
	l.dur("poll", env("POLL_INTERVAL"), &cfg.PollInterval)
	l.dur("fetch-timeout", env("FETCH_TIMEOUT"), &cfg.FetchTimeout)
	l.dur("transfer-timeout", env("TRANSFER_TIMEOUT"), &cfg.TransferTimeout)
	l.flag("ftp-insecure", env("FTP_INSECURE"), &cfg.FTPInsecure)
	l.flag("strict", env("STRICT"), &cfg.Strict)

	return l.err()
}
