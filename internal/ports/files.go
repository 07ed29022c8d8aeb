package ports

import (
	"context"

	"github.com/bft-labs/feedship/internal/domain"
)

// Stager writes datasets to local CSV files.
type Stager interface {
	// Stage writes ds to <name>.csv, overwriting any existing file, and returns its path.
	// A failed write leaves no file behind.
	Stage(ctx context.Context, name string, ds *domain.Dataset) (string, error)
}

// Cleaner removes staged files.
type Cleaner interface {
	// Remove deletes path. A missing file is not an error.
	// Other failures wrap domain.ErrDelete; callers treat them as non-fatal.
	Remove(ctx context.Context, path string) error
}
