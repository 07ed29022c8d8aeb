package fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/bft-labs/feedship/internal/domain"
	"github.com/bft-labs/feedship/internal/ports"
)

const reportFileName = "last_run.json"

// ReportFileRepository implements ports.ReportRepository using a JSON file.
type ReportFileRepository struct {
	dir string
}

// NewReportFileRepository creates a repository storing its file in dir.
func NewReportFileRepository(dir string) *ReportFileRepository {
	return &ReportFileRepository{dir: dir}
}

type reportFile struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Fatal      string       `json:"fatal,omitempty"`
	Results    []resultFile `json:"results"`
}

type resultFile struct {
	Feed       string  `json:"feed"`
	File       string  `json:"file"`
	Status     string  `json:"status"`
	Step       string  `json:"step,omitempty"`
	Error      string  `json:"error,omitempty"`
	CleanupErr string  `json:"cleanup_error,omitempty"`
	Rows       int     `json:"rows"`
	Seconds    float64 `json:"seconds"`
}

// Load returns the last saved report, or nil if none exists.
// Errors come back as plain messages; their sentinels are not preserved.
func (r *ReportFileRepository) Load(ctx context.Context) (*domain.BatchReport, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var f reportFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	report := &domain.BatchReport{
		RunID:      f.RunID,
		StartedAt:  f.StartedAt,
		FinishedAt: f.FinishedAt,
		Fatal:      toError(f.Fatal),
	}
	for _, res := range f.Results {
		report.Add(domain.FeedResult{
			Feed:       res.Feed,
			File:       res.File,
			Status:     domain.FeedStatus(res.Status),
			Step:       parseStep(res.Step),
			Err:        toError(res.Error),
			CleanupErr: toError(res.CleanupErr),
			Rows:       res.Rows,
			Duration:   time.Duration(res.Seconds * float64(time.Second)),
		})
	}
	return report, nil
}

// Save persists the report atomically (write to temp file, then rename).
func (r *ReportFileRepository) Save(ctx context.Context, report *domain.BatchReport) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	f := reportFile{
		RunID:      report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Fatal:      errString(report.Fatal),
		Results:    make([]resultFile, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		rf := resultFile{
			Feed:       res.Feed,
			File:       res.File,
			Status:     string(res.Status),
			Error:      errString(res.Err),
			CleanupErr: errString(res.CleanupErr),
			Rows:       res.Rows,
			Seconds:    res.Duration.Seconds(),
		}
		if !res.Delivered() {
			rf.Step = res.Step.String()
		}
		f.Results = append(f.Results, rf)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Path returns the full path to the report file.
func (r *ReportFileRepository) Path() string {
	return filepath.Join(r.dir, reportFileName)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func toError(s string) error {
	if s == "" {
		return nil
	}
	return errors.New(s)
}

func parseStep(s string) domain.Step {
	for _, step := range []domain.Step{domain.StepFetch, domain.StepStage, domain.StepUpload, domain.StepDelete} {
		if step.String() == s {
			return step
		}
	}
	return domain.StepFetch
}

var _ ports.ReportRepository = (*ReportFileRepository)(nil)
