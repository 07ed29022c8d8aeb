package feedship

import (
	"context"
	"net/http"
	"sync"

	"github.com/bft-labs/feedship/internal/adapters/env"
	"github.com/bft-labs/feedship/internal/adapters/fs"
	"github.com/bft-labs/feedship/internal/adapters/ftps"
	httpAdapter "github.com/bft-labs/feedship/internal/adapters/http"
	"github.com/bft-labs/feedship/internal/app"
	"github.com/bft-labs/feedship/internal/feeds"
	"github.com/bft-labs/feedship/internal/ports"
	"github.com/bft-labs/feedship/internal/schedule"
	"github.com/bft-labs/feedship/pkg/log"
)

// JobName is the name of the daily job registered by RunScheduled.
const JobName = "feeds"

// Runner delivers the configured feeds, once or on a daily schedule.
type Runner struct {
	config    Config
	logger    log.Logger
	clock     schedule.Clock
	lifecycle *app.Lifecycle
	loader    *feeds.Loader
	pipeline  *app.Pipeline
	lock      *fs.RunLock
	reports   ports.ReportRepository
	creds     ports.CredentialProvider
}

// New creates a Runner. It performs no network I/O.
func New(cfg Config, opts ...Option) (*Runner, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		logger: log.NewNoopLogger(),
		clock:  schedule.SystemClock{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.FetchTimeout}
	}
	if o.credentials == nil && o.dialer == nil {
		p, err := env.NewProvider(cfg.EnvFile)
		if err != nil {
			return nil, err
		}
		o.credentials = p
	}
	if o.dialer == nil {
		o.dialer = ftps.NewDialer(o.credentials, ftps.Config{
			Timeout:            cfg.TransferTimeout,
			InsecureSkipVerify: cfg.FTPInsecure,
		}, o.logger)
	}

	loader := feeds.NewLoader(cfg.FeedsFile, o.logger)
	pipeline := app.NewPipeline(app.PipelineDeps{
		Loader:  loader,
		Dialer:  o.dialer,
		Source:  httpAdapter.NewFeedSource(o.httpClient, o.logger),
		Stager:  fs.NewStager(cfg.WorkDir, o.logger),
		Cleaner: fs.NewCleaner(o.logger),
		Logger:  o.logger,
		Events:  o.eventHandler,
		Now:     o.clock.Now,
	})

	var reports ports.ReportRepository
	if cfg.StateDir != "" {
		reports = fs.NewReportFileRepository(cfg.StateDir)
	}

	return &Runner{
		config:    cfg,
		logger:    o.logger,
		clock:     o.clock,
		lifecycle: app.NewLifecycle(o.logger),
		loader:    loader,
		pipeline:  pipeline,
		lock:      fs.NewRunLock(cfg.WorkDir),
		reports:   reports,
		creds:     o.credentials,
	}, nil
}

// State returns what the runner is doing.
func (r *Runner) State() State {
	return r.lifecycle.State()
}

// RunOnce runs one batch synchronously.
//
// The error is non-nil when the run could not start (another run holds the
// lock) or aborted (feeds file, FTP connection, cancellation). Feed-level
// failures are only in the report.
func (r *Runner) RunOnce(ctx context.Context) (*Report, error) {
	if err := r.lifecycle.Transition(app.StateIdle, app.StateRunning, "RunOnce"); err != nil {
		return nil, err
	}
	defer func() {
		_ = r.lifecycle.Transition(app.StateRunning, app.StateIdle, "run finished")
	}()
	return r.runBatch(ctx)
}

// RunScheduled runs a batch every day at Config.ScheduleAt until ctx is
// cancelled. Run failures are logged and never end the loop.
func (r *Runner) RunScheduled(ctx context.Context) error {
	if err := r.lifecycle.Transition(app.StateIdle, app.StateScheduled, "RunScheduled"); err != nil {
		return err
	}
	defer func() {
		_ = r.lifecycle.Transition(app.StateScheduled, app.StateIdle, "schedule stopped")
	}()

	r.logLastReport(ctx)
	if r.creds != nil {
		if _, err := ftps.ResolveCredentials(r.creds); err != nil {
			r.logger.Warn("FTP credentials are incomplete; scheduled runs will fail until they are set", log.Err(err))
		}
	}

	sched := schedule.New(r.clock, r.logger)
	job, err := sched.Daily(JobName, r.config.ScheduleAt, func(ctx context.Context) error {
		if err := r.lifecycle.Transition(app.StateScheduled, app.StateRunning, "scheduled run"); err != nil {
			return err
		}
		defer func() {
			_ = r.lifecycle.Transition(app.StateRunning, app.StateScheduled, "scheduled run finished")
		}()
		_, err := r.runBatch(ctx)
		return err
	})
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	if r.config.WatchFeeds {
		watcher := feeds.NewWatcher(r.loader, r.logger, 0)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watcher.Run(ctx); err != nil {
				r.logger.Warn("feeds watcher stopped", log.Err(err))
			}
		}()
	}

	r.logger.Info("scheduler started",
		log.String("at", job.At().String()),
		log.Time("next_run", job.NextRun()))

	err = sched.Run(ctx, r.config.PollInterval)
	wg.Wait()
	r.logger.Info("scheduler stopped")
	return err
}

// LastReport returns the report saved by the most recent run, or nil when
// StateDir is unset or no run has finished yet.
func (r *Runner) LastReport(ctx context.Context) (*Report, error) {
	if r.reports == nil {
		return nil, nil
	}
	return r.reports.Load(ctx)
}

func (r *Runner) runBatch(ctx context.Context) (*Report, error) {
	if err := r.lock.TryLock(); err != nil {
		r.logger.Warn("run skipped", log.Err(err))
		return nil, err
	}
	defer func() {
		if err := r.lock.Unlock(); err != nil {
			r.logger.Warn("failed to release run lock", log.Err(err))
		}
	}()

	// Holding the lock, nothing else is writing to the work dir.
	if _, err := fs.SweepTemp(r.config.WorkDir, r.logger); err != nil {
		r.logger.Warn("temp sweep failed", log.Err(err))
	}

	report, err := r.pipeline.Run(ctx)

	if r.reports != nil {
		if serr := r.reports.Save(ctx, report); serr != nil {
			r.logger.Error("failed to save run report", log.Err(serr))
		}
	}
	return report, err
}

func (r *Runner) logLastReport(ctx context.Context) {
	last, err := r.LastReport(ctx)
	if err != nil {
		r.logger.Warn("failed to read last run report", log.Err(err))
		return
	}
	if last == nil {
		return
	}
	fields := []log.Field{
		log.RunID(last.RunID),
		log.Time("finished_at", last.FinishedAt),
		log.Int("delivered", last.Delivered()),
		log.Int("failed", last.Failed()),
	}
	if last.Fatal != nil {
		fields = append(fields, log.String("fatal", last.Fatal.Error()))
	}
	r.logger.Info("last run", fields...)
}
