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

func TestStager_Stage(t *testing.T) {
	dir := t.TempDir()
	s := NewStager(dir, log.NewNoopLogger())

	ds := &domain.Dataset{
		Columns: []string{"region", "amount"},
		Rows:    [][]string{{"north", "10"}, {"south, east", "20"}},
	}
	path, err := s.Stage(context.Background(), "sales", ds)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sales.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "region,amount\nnorth,10\n\"south, east\",20\n", string(data))

	_, err = os.Stat(path + TempExt)
	assert.True(t, os.IsNotExist(err))
}

func TestStager_Overwrites(t *testing.T) {
	dir := t.TempDir()
	s := NewStager(dir, log.NewNoopLogger())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("old contents that are longer\n"), 0o644))

	path, err := s.Stage(context.Background(), "a", &domain.Dataset{Columns: []string{"x"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(data))
}

func TestStager_CreatesWorkDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "work")
	path, err := NewStager(dir, log.NewNoopLogger()).Stage(context.Background(), "a", &domain.Dataset{Columns: []string{"x"}})
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestStager_RejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	s := NewStager(dir, log.NewNoopLogger())

	for _, name := range []string{"", "..", "../escape", "a/b", `a\b`} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Stage(context.Background(), name, &domain.Dataset{Columns: []string{"x"}})
			assert.Error(t, err)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStager_FailedWriteLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s := NewStager(dir, log.NewNoopLogger())

	// A directory where the file should go makes the rename fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "blocked.csv"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blocked.csv", "keep"), nil, 0o644))

	_, err := s.Stage(context.Background(), "blocked", &domain.Dataset{Columns: []string{"x"}})
	require.Error(t, err)

	_, err = os.Stat(filepath.Join(dir, "blocked.csv"+TempExt))
	assert.True(t, os.IsNotExist(err))
}
