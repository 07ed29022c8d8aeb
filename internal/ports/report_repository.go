package ports

import (
	"context"

	"github.com/bft-labs/feedship/internal/domain"
)

// ReportRepository persists the report of the most recent run.
type ReportRepository interface {
	// Load returns the last saved report.
	// Returns a nil report and nil error if none exists.
	Load(ctx context.Context) (*domain.BatchReport, error)

	// Save replaces the stored report atomically.
	Save(ctx context.Context, report *domain.BatchReport) error
}
