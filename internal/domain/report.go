package domain

import "time"

// FeedStatus is the outcome of one feed.
type FeedStatus string

const (
	FeedDelivered FeedStatus = "delivered"
	FeedFailed    FeedStatus = "failed"
)

// FeedResult is the outcome of processing one feed.
type FeedResult struct {
	Feed   string
	File   string
	Status FeedStatus

	// Step is the failing step when Status is FeedFailed.
	Step Step
	Err  error

	// CleanupErr is set when the upload succeeded but the local copy stayed behind.
	CleanupErr error

	Rows     int
	Duration time.Duration
}

// Delivered reports whether the feed reached the remote server.
func (r FeedResult) Delivered() bool {
	return r.Status == FeedDelivered
}

// BatchReport collects every FeedResult of one run.
type BatchReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	// Fatal is set when the run aborted before or during feed processing.
	Fatal error

	Results []FeedResult
}

// NewBatchReport starts a report for the given run.
func NewBatchReport(runID string, startedAt time.Time) *BatchReport {
	return &BatchReport{RunID: runID, StartedAt: startedAt}
}

// Add appends a feed result.
func (b *BatchReport) Add(r FeedResult) {
	b.Results = append(b.Results, r)
}

// Delivered returns the number of delivered feeds.
func (b *BatchReport) Delivered() int {
	n := 0
	for _, r := range b.Results {
		if r.Delivered() {
			n++
		}
	}
	return n
}

// Failed returns the number of failed feeds.
func (b *BatchReport) Failed() int {
	return len(b.Results) - b.Delivered()
}

// OK reports whether the run finished without a fatal error or failed feed.
func (b *BatchReport) OK() bool {
	return b.Fatal == nil && b.Failed() == 0
}

// Duration returns how long the run took.
func (b *BatchReport) Duration() time.Duration {
	if b.FinishedAt.IsZero() {
		return 0
	}
	return b.FinishedAt.Sub(b.StartedAt)
}
