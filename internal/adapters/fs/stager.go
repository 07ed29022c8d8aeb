package fs

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bft-labs/feedship/internal/domain"
	"github.com/bft-labs/feedship/internal/ports"
	"github.com/bft-labs/feedship/internal/tabular"
	"github.com/bft-labs/feedship/pkg/log"
)

// TempExt is appended to a staged file while it is being written.
const TempExt = ".tmp"

// Stager implements ports.Stager in a work directory.
type Stager struct {
	dir    string
	logger log.Logger
}

// NewStager creates a stager writing into dir ("" means the working directory).
func NewStager(dir string, logger log.Logger) *Stager {
	return &Stager{dir: dir, logger: logger}
}

// Stage writes ds to <dir>/<name>.csv through a temporary file.
func (s *Stager) Stage(ctx context.Context, name string, ds *domain.Dataset) (string, error) {
	if err := domain.ValidateName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ds == nil {
		return "", fmt.Errorf("no dataset for %q", name)
	}

	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return "", fmt.Errorf("create work dir: %w", err)
		}
	}

	path := filepath.Join(s.dir, name+domain.StagedExt)
	tmp := path + TempExt

	if err := writeCSV(tmp, ds); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) {
			s.logger.Warn("failed to remove partial file", log.Path(tmp), log.Err(rmErr))
		}
		return "", err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename staged file: %w", err)
	}

	s.logger.Debug("feed staged",
		log.Path(path),
		log.Int("rows", ds.Len()))
	return path, nil
}

func writeCSV(path string, ds *domain.Dataset) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create staged file: %w", err)
	}

	bw := bufio.NewWriter(f)
	if err := tabular.Write(bw, ds); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close staged file: %w", err)
	}
	return nil
}

var _ ports.Stager = (*Stager)(nil)
