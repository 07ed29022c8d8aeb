package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bft-labs/feedship/internal/domain"
	"github.com/bft-labs/feedship/internal/ports"
	"github.com/bft-labs/feedship/pkg/log"
)

// Cleaner implements ports.Cleaner.
type Cleaner struct {
	logger log.Logger
}

// NewCleaner creates a cleaner.
func NewCleaner(logger log.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Remove deletes path. A file that is already gone is logged and ignored.
func (c *Cleaner) Remove(ctx context.Context, path string) error {
	err := os.Remove(path)
	switch {
	case err == nil:
		c.logger.Debug(fmt.Sprintf("Deleted local file: %s", path))
		return nil
	case errors.Is(err, fs.ErrNotExist):
		c.logger.Warn(fmt.Sprintf("File not found: %s", path))
		return nil
	default:
		c.logger.Error(fmt.Sprintf("Error deleting file %s", path), log.Err(err))
		return fmt.Errorf("%w: %v", domain.ErrDelete, err)
	}
}

// SweepTemp removes staging leftovers (*.csv.tmp) from dir, as left behind by
// a process killed in the middle of a write. It returns the number removed.
func SweepTemp(dir string, logger log.Logger) (int, error) {
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, domain.StagedExt+TempExt) {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			logger.Error("temp sweep: remove failed", log.Path(path), log.Err(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Info("removed stale staging files",
			log.String("dir", dir),
			log.Int("count", removed))
	}
	return removed, nil
}

var _ ports.Cleaner = (*Cleaner)(nil)
