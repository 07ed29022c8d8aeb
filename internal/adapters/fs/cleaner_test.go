package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/feedship/internal/domain"
	"github.com/bft-labs/feedship/pkg/log"
)

func TestCleaner_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.csv")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))

	c := NewCleaner(log.NewNoopLogger())
	require.NoError(t, c.Remove(context.Background(), path))
	assert.NoFileExists(t, path)
}

func TestCleaner_MissingFileIsNotAnError(t *testing.T) {
	c := NewCleaner(log.NewNoopLogger())
	assert.NoError(t, c.Remove(context.Background(), filepath.Join(t.TempDir(), "gone.csv")))
}

func TestCleaner_FailureWrapsErrDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a.csv")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "child"), nil, 0o644))

	err := NewCleaner(log.NewNoopLogger()).Remove(context.Background(), dir)
	assert.ErrorIs(t, err, domain.ErrDelete)
}

func TestSweepTemp(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv.tmp", "b.csv.tmp", "c.csv", "notes.tmp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	n, err := SweepTemp(dir, log.NewNoopLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.NoFileExists(t, filepath.Join(dir, "a.csv.tmp"))
	assert.FileExists(t, filepath.Join(dir, "c.csv"))
	assert.FileExists(t, filepath.Join(dir, "notes.tmp"))
}

func TestSweepTemp_MissingDir(t *testing.T) {
	n, err := SweepTemp(filepath.Join(t.TempDir(), "missing"), log.NewNoopLogger())
	require.NoError(t, err)
	assert.Zero(t, n)
}
