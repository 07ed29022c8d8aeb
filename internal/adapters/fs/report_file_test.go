package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/feedship/internal/domain"
)

func TestReportFileRepository_LoadMissing(t *testing.T) {
	repo := NewReportFileRepository(t.TempDir())
	report, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestReportFileRepository_SaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	repo := NewReportFileRepository(dir)

	started := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	report := domain.NewBatchReport("run-1", started)
	report.Add(domain.FeedResult{
		Feed: "sales", File: "sales.csv", Status: domain.FeedDelivered,
		Rows: 3, Duration: 1500 * time.Millisecond,
		CleanupErr: errors.New("permission denied"),
	})
	report.Add(domain.FeedResult{
		Feed: "stock", File: "stock.csv", Status: domain.FeedFailed,
		Step: domain.StepUpload, Err: errors.New("550 denied"),
	})
	report.FinishedAt = started.Add(2 * time.Second)

	require.NoError(t, repo.Save(context.Background(), report))
	_, err := os.Stat(repo.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "run-1", got.RunID)
	assert.True(t, got.StartedAt.Equal(started))
	assert.Equal(t, 2*time.Second, got.Duration())
	assert.NoError(t, got.Fatal)
	require.Len(t, got.Results, 2)

	assert.True(t, got.Results[0].Delivered())
	assert.EqualError(t, got.Results[0].CleanupErr, "permission denied")
	assert.Equal(t, 1500*time.Millisecond, got.Results[0].Duration)

	assert.Equal(t, domain.StepUpload, got.Results[1].Step)
	assert.EqualError(t, got.Results[1].Err, "550 denied")
	assert.Equal(t, 1, got.Failed())
}

func TestReportFileRepository_Fatal(t *testing.T) {
	repo := NewReportFileRepository(t.TempDir())
	report := domain.NewBatchReport("run-2", time.Now())
	report.Fatal = errors.New("LoadConfig: bad feeds")

	require.NoError(t, repo.Save(context.Background(), report))
	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.EqualError(t, got.Fatal, "LoadConfig: bad feeds")
	assert.Empty(t, got.Results)
}

func TestReportFileRepository_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, reportFileName), []byte("{"), 0o600))
	_, err := NewReportFileRepository(dir).Load(context.Background())
	assert.Error(t, err)
}
