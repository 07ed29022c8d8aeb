package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/feedship/internal/domain"
	"github.com/bft-labs/feedship/internal/ports"
	"github.com/bft-labs/feedship/pkg/log"
)

// recorder collects calls from every fake in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+msg)
}

func (l *recordingLogger) Debug(msg string, fields ...log.Field) {}
func (l *recordingLogger) Info(msg string, fields ...log.Field)  { l.log("INF", msg) }
func (l *recordingLogger) Warn(msg string, fields ...log.Field)  { l.log("WRN", msg) }
func (l *recordingLogger) Error(msg string, fields ...log.Field) { l.log("ERR", msg) }

func (l *recordingLogger) count(substr string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

type fakeLoader struct {
	rec   *recorder
	feeds []domain.Feed
	err   error
}

func (f *fakeLoader) Load(ctx context.Context) ([]domain.Feed, error) {
	f.rec.add("load")
	return f.feeds, f.err
}

type fakeSource struct {
	rec  *recorder
	fail map[string]error
}

func (f *fakeSource) Fetch(ctx context.Context, feed domain.Feed) (*domain.Dataset, error) {
	f.rec.add("fetch %s", feed.Name)
	if err := f.fail[feed.Name]; err != nil {
		return nil, err
	}
	return &domain.Dataset{Columns: []string{"a"}, Rows: [][]string{{"1"}, {"2"}}}, nil
}

type fakeStager struct {
	rec  *recorder
	fail map[string]error
}

func (f *fakeStager) Stage(ctx context.Context, name string, ds *domain.Dataset) (string, error) {
	f.rec.add("stage %s", name)
	if err := f.fail[name]; err != nil {
		return "", err
	}
	return "/work/" + name + ".csv", nil
}

type fakeDialer struct {
	rec     *recorder
	err     error
	session *fakeSession
}

func (f *fakeDialer) Dial(ctx context.Context) (ports.TransferSession, error) {
	f.rec.add("dial")
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type fakeSession struct {
	rec      *recorder
	fail     map[string]error
	uploaded []string
}

func (f *fakeSession) Upload(ctx context.Context, path string) error {
	f.rec.add("upload %s", path)
	if err := f.fail[path]; err != nil {
		return err
	}
	f.uploaded = append(f.uploaded, path)
	return nil
}

func (f *fakeSession) Close() error {
	f.rec.add("close")
	return nil
}

type fakeCleaner struct {
	rec  *recorder
	fail map[string]error
}

func (f *fakeCleaner) Remove(ctx context.Context, path string) error {
	f.rec.add("remove %s", path)
	return f.fail[path]
}

type fakeEvents struct {
	BaseEventHandler
	started   []string
	results   []domain.FeedResult
	completed []*domain.BatchReport
}

func (e *fakeEvents) OnRunStart(runID string)               { e.started = append(e.started, runID) }
func (e *fakeEvents) OnFeedResult(r domain.FeedResult)      { e.results = append(e.results, r) }
func (e *fakeEvents) OnRunComplete(rep *domain.BatchReport) { e.completed = append(e.completed, rep) }

type harness struct {
	rec     *recorder
	logger  *recordingLogger
	loader  *fakeLoader
	source  *fakeSource
	stager  *fakeStager
	dialer  *fakeDialer
	session *fakeSession
	cleaner *fakeCleaner
	events  *fakeEvents
}

func newHarness(names ...string) *harness {
	rec := &recorder{}
	h := &harness{
		rec:     rec,
		logger:  &recordingLogger{},
		loader:  &fakeLoader{rec: rec},
		source:  &fakeSource{rec: rec, fail: map[string]error{}},
		stager:  &fakeStager{rec: rec, fail: map[string]error{}},
		session: &fakeSession{rec: rec, fail: map[string]error{}},
		cleaner: &fakeCleaner{rec: rec, fail: map[string]error{}},
		events:  &fakeEvents{},
	}
	h.dialer = &fakeDialer{rec: rec, session: h.session}
	for _, name := range names {
		h.loader.feeds = append(h.loader.feeds, domain.Feed{
			Name:       name,
			Definition: map[string]any{"URL": "http://x/" + name + ".csv", "PARAMS": map[string]any{}},
		})
	}
	return h
}

func (h *harness) pipeline() *Pipeline {
	clock := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	return NewPipeline(PipelineDeps{
		Loader:   h.loader,
		Dialer:   h.dialer,
		Source:   h.source,
		Stager:   h.stager,
		Cleaner:  h.cleaner,
		Logger:   h.logger,
		Events:   h.events,
		NewRunID: func() string { return "run-1" },
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	})
}

func TestPipeline_CallsInOrder(t *testing.T) {
	h := newHarness("sales", "stock")

	report, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"load",
		"dial",
		"fetch sales", "stage sales", "upload /work/sales.csv", "remove /work/sales.csv",
		"fetch stock", "stage stock", "upload /work/stock.csv", "remove /work/stock.csv",
		"close",
	}, h.rec.Calls())

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 2, report.Delivered())
	assert.True(t, report.OK())
	assert.Equal(t, 2, report.Results[0].Rows)
	assert.Equal(t, "sales.csv", report.Results[0].File)
	assert.Positive(t, report.Duration())
}

func TestPipeline_SalesScenarioLogLines(t *testing.T) {
	h := newHarness("sales")

	_, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, h.logger.count("Processing configuration for: sales"))
	assert.Equal(t, 1, h.logger.count("sales.csv has been downloaded."))
	assert.Equal(t, 1, h.logger.count("sales.csv has been uploaded to FTP server."))
	assert.Equal(t, 1, h.logger.count("sales.csv has been deleted."))
	assert.Equal(t, []string{"/work/sales.csv"}, h.session.uploaded)
}

func TestPipeline_FetchFailureSkipsOnlyThatFeed(t *testing.T) {
	h := newHarness("broken", "sales")
	h.source.fail["broken"] = errors.New("404 not found")

	report, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)

	calls := h.rec.Calls()
	assert.NotContains(t, calls, "stage broken")
	assert.NotContains(t, calls, "upload /work/broken.csv")
	assert.Contains(t, calls, "upload /work/sales.csv")

	require.Len(t, report.Results, 2)
	failed := report.Results[0]
	assert.Equal(t, domain.FeedFailed, failed.Status)
	assert.Equal(t, domain.StepFetch, failed.Step)
	assert.ErrorIs(t, failed.Err, domain.ErrFetch)

	var ferr *domain.FeedError
	require.ErrorAs(t, failed.Err, &ferr)
	assert.Equal(t, "broken", ferr.Feed)

	assert.True(t, report.Results[1].Delivered())
	assert.Equal(t, 1, h.logger.count("Error processing broken"))
	assert.False(t, report.OK())
}

func TestPipeline_StageFailure(t *testing.T) {
	h := newHarness("a", "b")
	h.stager.fail["a"] = errors.New("disk full")

	report, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)

	assert.NotContains(t, h.rec.Calls(), "upload /work/a.csv")
	assert.ErrorIs(t, report.Results[0].Err, domain.ErrStage)
	assert.True(t, report.Results[1].Delivered())
}

func TestPipeline_UploadFailureRemovesStagedFile(t *testing.T) {
	h := newHarness("a", "b")
	h.session.fail["/work/a.csv"] = errors.New("553 not allowed")

	report, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)

	calls := h.rec.Calls()
	assert.Equal(t, []string{"upload /work/a.csv", "remove /work/a.csv", "fetch b"}, calls[4:7])

	assert.ErrorIs(t, report.Results[0].Err, domain.ErrUpload)
	assert.Equal(t, 0, h.logger.count("a.csv has been uploaded"))
	assert.Equal(t, 0, h.logger.count("a.csv has been deleted."))
	assert.True(t, report.Results[1].Delivered())
}

func TestPipeline_DeleteFailureIsInvisible(t *testing.T) {
	h := newHarness("a", "b")
	h.cleaner.fail["/work/a.csv"] = fmt.Errorf("%w: permission denied", domain.ErrDelete)

	report, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.OK())
	assert.Equal(t, 2, report.Delivered())
	assert.ErrorIs(t, report.Results[0].CleanupErr, domain.ErrDelete)
	assert.Equal(t, 0, h.logger.count("a.csv has been deleted."))
	assert.Equal(t, 1, h.logger.count("b.csv has been deleted."))
}

func TestPipeline_ConfigErrorMakesNoCalls(t *testing.T) {
	h := newHarness()
	h.loader.err = fmt.Errorf("%w: top level must be a list", domain.ErrConfig)

	report, err := h.pipeline().Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)

	var rerr *domain.RunError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, domain.PhaseLoadConfig, rerr.Phase)

	assert.Equal(t, []string{"load"}, h.rec.Calls())
	assert.Empty(t, report.Results)
	assert.Equal(t, err, report.Fatal)
	assert.Equal(t, 1, h.logger.count("Error in pipeline"))
}

func TestPipeline_ConnectErrorMakesNoFeedCalls(t *testing.T) {
	h := newHarness("a", "b")
	h.dialer.err = fmt.Errorf("%w: missing FTPHOST", domain.ErrTransferConnect)

	report, err := h.pipeline().Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransferConnect)
	assert.Equal(t, []string{"load", "dial"}, h.rec.Calls())
	assert.Empty(t, report.Results)
}

func TestPipeline_CancelledBetweenFeeds(t *testing.T) {
	h := newHarness("a", "b")
	ctx, cancel := context.WithCancel(context.Background())
	p := h.pipeline()
	p.deps.Events = cancelAfterFirst{cancel: cancel}

	report, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, report.Results, 1)
	assert.NotContains(t, h.rec.Calls(), "fetch b")
	assert.Contains(t, h.rec.Calls(), "close")
}

type cancelAfterFirst struct {
	BaseEventHandler
	cancel context.CancelFunc
}

func (c cancelAfterFirst) OnFeedResult(domain.FeedResult) { c.cancel() }

func TestPipeline_Events(t *testing.T) {
	h := newHarness("a", "b")
	h.source.fail["b"] = errors.New("boom")

	report, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"run-1"}, h.events.started)
	require.Len(t, h.events.results, 2)
	assert.True(t, h.events.results[0].Delivered())
	assert.False(t, h.events.results[1].Delivered())
	require.Len(t, h.events.completed, 1)
	assert.Same(t, report, h.events.completed[0])
}

func TestPipeline_EmptyFeedList(t *testing.T) {
	h := newHarness()

	report, err := h.pipeline().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"load", "dial", "close"}, h.rec.Calls())
	assert.True(t, report.OK())
}
