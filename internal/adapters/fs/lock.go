package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/bft-labs/feedship/internal/domain"
)

// LockFileName is the advisory lock taken in the work directory for each run.
const LockFileName = ".feedship.lock"

// RunLock serializes runs across processes sharing a work directory.
type RunLock struct {
	lock *flock.Flock
}

// NewRunLock creates the lock for dir without acquiring it.
func NewRunLock(dir string) *RunLock {
	return &RunLock{lock: flock.New(filepath.Join(dir, LockFileName))}
}

// TryLock acquires the lock or returns domain.ErrRunInProgress if it is held.
func (l *RunLock) TryLock() error {
	if dir := filepath.Dir(l.lock.Path()); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create lock dir: %w", err)
		}
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s is held", domain.ErrRunInProgress, l.lock.Path())
	}
	return nil
}

// Unlock releases the lock. The lock file itself is left in place.
func (l *RunLock) Unlock() error {
	return l.lock.Unlock()
}

// Path returns the lock file path.
func (l *RunLock) Path() string {
	return l.lock.Path()
}
