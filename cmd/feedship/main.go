package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/feedship/internal/cliconfig"
	"github.com/bft-labs/feedship/pkg/feedship"
	"github.com/bft-labs/feedship/pkg/log"
)

const (
	modeManual   = "manual"
	modeSchedule = "schedule"
)

const (
	missingModeMsg = "Error: Missing parameter. Use 'manual' or 'schedule'."
	invalidModeMsg = "Invalid Parameter. Use 'manual' or 'schedule'. App is not running."
)

var (
	errMissingMode = errors.New(missingModeMsg)
	errInvalidMode = errors.New(invalidModeMsg)
	errRunFailed   = errors.New("run failed")
)

const longHelp = `Fetch CSV feeds listed in a feeds file, stage each one as <name>.csv,
upload it to an FTP server over explicit TLS and delete the local copy.

Modes:
  manual     run every feed once and exit
  schedule   run every feed daily at the configured time until interrupted

FTPHOST, FTPUSER and FTPPASS are read from the environment or --env-file.`

var exampleUsage = strings.TrimSpace(`
  feedship manual
  feedship --feeds feeds.yaml --work-dir /var/lib/feedship manual --strict
  feedship --config $HOME/.feedship/config.toml --at 02:30 schedule
`)

func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errMissingMode), errors.Is(err, errInvalidMode):
		fmt.Fprintln(stdout, err)
		return 1
	case errors.Is(err, errRunFailed):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "feedship [flags] manual|schedule",
		Short:         "Deliver CSV feeds to an FTPS server, once or on a daily schedule",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", buildVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Mode is checked before anything touches the disk or network.
			if len(args) == 0 {
				return errMissingMode
			}
			mode := args[0]
			if len(args) > 1 || (mode != modeManual && mode != modeSchedule) {
				return errInvalidMode
			}

			if err := layerConfig(cmd.Flags(), &cfg, cfgPath); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := log.NewConsoleLogger(stdout, cfg.LogLevel)
			logger.Debug("configuration",
				log.String("mode", mode),
				log.String("feeds_file", cfg.FeedsFile),
				log.String("work_dir", cfg.WorkDir),
				log.String("state_dir", cfg.StateDir),
				log.String("schedule_at", cfg.ScheduleAt),
				log.Duration("poll_interval", cfg.PollInterval),
				log.Bool("ftp_insecure", cfg.FTPInsecure),
				log.Bool("strict", cfg.Strict))

			runner, err := feedship.New(feedship.Config{
				FeedsFile:       cfg.FeedsFile,
				WorkDir:         cfg.WorkDir,
				StateDir:        cfg.StateDir,
				EnvFile:         cfg.EnvFile,
				ScheduleAt:      cfg.ScheduleAt,
				PollInterval:    cfg.PollInterval,
				FetchTimeout:    cfg.FetchTimeout,
				TransferTimeout: cfg.TransferTimeout,
				FTPInsecure:     cfg.FTPInsecure,
				WatchFeeds:      mode == modeSchedule,
			},
				feedship.WithLogger(logger),
				feedship.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout}),
			)
			if err != nil {
				return fmt.Errorf("create runner: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if mode == modeSchedule {
				return runSchedule(ctx, runner, logger)
			}
			return runManual(ctx, runner, stdout, cfg.Strict)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.feedship/config.toml)")
	root.Flags().StringVar(&cfg.FeedsFile, "feeds", cfg.FeedsFile, "feeds file (JSON or YAML list of {name: {URL, PARAMS}})")
	root.Flags().StringVar(&cfg.WorkDir, "work-dir", cfg.WorkDir, "directory for staged CSV files and the run lock (default: current directory)")
	root.Flags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for the last run report (disabled when empty)")
	root.Flags().StringVar(&cfg.EnvFile, "env-file", cfg.EnvFile, "dotenv file with FTPHOST, FTPUSER and FTPPASS")

	root.Flags().StringVar(&cfg.ScheduleAt, "at", cfg.ScheduleAt, "daily run time in schedule mode (HH:MM, local time)")
	root.Flags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "how often schedule mode checks the clock")
	root.Flags().DurationVar(&cfg.FetchTimeout, "fetch-timeout", cfg.FetchTimeout, "HTTP timeout per feed download")
	root.Flags().DurationVar(&cfg.TransferTimeout, "transfer-timeout", cfg.TransferTimeout, "FTP connect and reply timeout")
	root.Flags().BoolVar(&cfg.FTPInsecure, "ftp-insecure", cfg.FTPInsecure, "skip FTPS certificate verification")
	if err := root.Flags().MarkHidden("ftp-insecure"); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().BoolVar(&cfg.Strict, "strict", cfg.Strict, "exit non-zero from manual mode when any feed fails")

	return root
}

// layerConfig applies the TOML file and FEEDSHIP_* variables beneath the flags
// the user actually passed. An explicit --config must exist.
func layerConfig(flags *pflag.FlagSet, cfg *cliconfig.Config, explicit string) error {
	changed := make(map[string]bool)
	flags.Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	path := explicit
	if path == "" {
		path = cliconfig.DefaultConfigPath()
	}
	switch {
	case path != "" && cliconfig.FileExists(path):
		fc, err := cliconfig.LoadFileConfig(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	case explicit != "":
		return fmt.Errorf("config file %s not found", explicit)
	}
	return cliconfig.ApplyEnvConfig(cfg, changed)
}

func runManual(ctx context.Context, runner *feedship.Runner, stdout io.Writer, strict bool) error {
	report, err := runner.RunOnce(ctx)
	if report != nil {
		fmt.Fprintln(stdout, renderReport(report))
	}
	if !strict {
		return nil
	}
	if err != nil || report == nil || !report.OK() {
		return errRunFailed
	}
	return nil
}

func runSchedule(ctx context.Context, runner *feedship.Runner, logger log.Logger) error {
	err := runner.RunScheduled(ctx)
	if ctx.Err() != nil {
		logger.Info("received signal, stopped")
	}
	return err
}
