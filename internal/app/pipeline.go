package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/feedship/internal/domain"
	"github.com/bft-labs/feedship/internal/ports"
	"github.com/bft-labs/feedship/pkg/log"
)

// PipelineDeps are the adapters one run uses.
type PipelineDeps struct {
	Loader  ports.FeedLoader
	Dialer  ports.TransferDialer
	Source  ports.FeedSource
	Stager  ports.Stager
	Cleaner ports.Cleaner
	Logger  log.Logger

	// Events is optional.
	Events EventHandler

	// NewRunID defaults to uuid.NewString.
	NewRunID func() string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Pipeline runs LoadConfig, ConnectTransfer, then Fetch, Stage, Upload and
// Delete for each feed in order.
type Pipeline struct {
	deps PipelineDeps
}

// NewPipeline creates a pipeline.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = log.NewNoopLogger()
	}
	if deps.Events == nil {
		deps.Events = BaseEventHandler{}
	}
	if deps.NewRunID == nil {
		deps.NewRunID = uuid.NewString
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Pipeline{deps: deps}
}

// Run executes one batch.
//
// The returned report is never nil. The error is non-nil only when the run
// aborted (config, connection or cancellation); per-feed failures are in the
// report and do not stop the batch.
func (p *Pipeline) Run(ctx context.Context) (*domain.BatchReport, error) {
	d := p.deps
	report := domain.NewBatchReport(d.NewRunID(), d.Now())
	d.Events.OnRunStart(report.RunID)

	err := p.run(ctx, report)
	report.Fatal = err
	report.FinishedAt = d.Now()

	d.Logger.Info("run finished",
		log.RunID(report.RunID),
		log.Int("delivered", report.Delivered()),
		log.Int("failed", report.Failed()),
		log.Duration("duration", report.Duration()))
	d.Events.OnRunComplete(report)
	return report, err
}

func (p *Pipeline) run(ctx context.Context, report *domain.BatchReport) (err error) {
	d := p.deps
	defer func() {
		if err != nil {
			d.Logger.Error("Error in pipeline", log.Err(err))
		}
	}()

	feeds, err := d.Loader.Load(ctx)
	if err != nil {
		return &domain.RunError{Phase: domain.PhaseLoadConfig, Err: err}
	}
	d.Logger.Debug("feeds loaded", log.RunID(report.RunID), log.Int("feeds", len(feeds)))

	session, err := d.Dialer.Dial(ctx)
	if err != nil {
		return &domain.RunError{Phase: domain.PhaseConnectTransfer, Err: err}
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			d.Logger.Warn("failed to close transfer session", log.Err(cerr))
		}
	}()

	for _, feed := range feeds {
		if cerr := ctx.Err(); cerr != nil {
			return &domain.RunError{Phase: domain.PhaseProcessing, Err: cerr}
		}
		result := p.processFeed(ctx, session, feed)
		report.Add(result)
		d.Events.OnFeedResult(result)
	}
	return nil
}

func (p *Pipeline) processFeed(ctx context.Context, session ports.TransferSession, feed domain.Feed) domain.FeedResult {
	d := p.deps
	start := d.Now()
	result := domain.FeedResult{Feed: feed.Name, File: feed.FileName()}

	fail := func(step domain.Step, err error) domain.FeedResult {
		ferr := domain.NewFeedError(feed.Name, step, err)
		d.Logger.Error(fmt.Sprintf("Error processing %s", feed.Name),
			log.String("step", step.String()),
			log.Err(err))
		result.Status = domain.FeedFailed
		result.Step = step
		result.Err = ferr
		result.Duration = d.Now().Sub(start)
		return result
	}

	d.Logger.Info(fmt.Sprintf("Processing configuration for: %s", feed.Name))

	ds, err := d.Source.Fetch(ctx, feed)
	if err != nil {
		return fail(domain.StepFetch, err)
	}
	result.Rows = ds.Len()

	path, err := d.Stager.Stage(ctx, feed.Name, ds)
	if err != nil {
		return fail(domain.StepStage, err)
	}
	file := filepath.Base(path)
	d.Logger.Info(fmt.Sprintf("%s has been downloaded.", file))

	if err := session.Upload(ctx, path); err != nil {
		// Do not leave the staged copy behind.
		if rerr := d.Cleaner.Remove(ctx, path); rerr != nil {
			d.Logger.Warn("failed to remove staged file after upload error",
				log.Path(path), log.Err(rerr))
		}
		return fail(domain.StepUpload, err)
	}
	d.Logger.Info(fmt.Sprintf("%s has been uploaded to FTP server.", file))

	if err := d.Cleaner.Remove(ctx, path); err != nil {
		if !errors.Is(err, domain.ErrDelete) {
			err = fmt.Errorf("%w: %v", domain.ErrDelete, err)
		}
		result.CleanupErr = domain.NewFeedError(feed.Name, domain.StepDelete, err)
	} else {
		d.Logger.Info(fmt.Sprintf("%s has been deleted.", file))
	}

	result.Status = domain.FeedDelivered
	result.Duration = d.Now().Sub(start)
	return result
}
