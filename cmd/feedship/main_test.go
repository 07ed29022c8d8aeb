package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bft-labs/feedship/internal/domain"
	"github.com/bft-labs/feedship/pkg/feedship"
)

// isolate runs the test in an empty directory with no config or credentials.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, key := range []string{"FTPHOST", "FTPUSER", "FTPPASS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no files to be created, found %d (first: %s)", len(entries), entries[0].Name())
	}
}

func TestRun_ModeValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no arguments", nil, missingModeMsg},
		{"flags only", []string{"--strict"}, missingModeMsg},
		{"unknown mode", []string{"daily"}, invalidModeMsg},
		{"wrong case", []string{"Manual"}, invalidModeMsg},
		{"extra argument", []string{"manual", "now"}, invalidModeMsg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)

			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)

			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if got := strings.TrimSpace(stdout.String()); got != tt.want {
				t.Errorf("stdout = %q, want %q", got, tt.want)
			}
			assertEmptyDir(t, dir)
		})
	}
}

func TestRun_InvalidSettings(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--at", "25:00", "manual"}, &stdout, &stderr)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "schedule time") {
		t.Errorf("stderr = %q, want schedule time error", stderr.String())
	}
}

func TestRun_ManualWithBrokenFeeds(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"not": "a list"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"manual"}, &stdout, &stderr); code != 0 {
		t.Errorf("exit code = %d, want 0 without --strict", code)
	}
	if !strings.Contains(stdout.String(), "Error in pipeline") {
		t.Errorf("stdout = %q, want pipeline error", stdout.String())
	}

	stdout.Reset()
	if code := run([]string{"--strict", "manual"}, &stdout, &stderr); code != 1 {
		t.Errorf("exit code = %d, want 1 with --strict", code)
	}
}

func TestRenderReport(t *testing.T) {
	start := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	report := &feedship.Report{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Results: []feedship.FeedResult{
			{Feed: "sales", File: "sales.csv", Status: domain.FeedDelivered, Rows: 12, Duration: time.Second},
			{Feed: "stock", File: "stock.csv", Status: domain.FeedFailed, Step: domain.StepFetch,
				Err: domain.NewFeedError("stock", domain.StepFetch, errors.New("server returned 404"))},
		},
	}

	out := renderReport(report)
	for _, want := range []string{"Feed", "sales.csv", "delivered", "failed (fetch)", "404", "1 delivered, 1 failed in 3s"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReport_Fatal(t *testing.T) {
	report := &feedship.Report{RunID: "run-2", Fatal: errors.New("ConnectTransfer: missing FTPHOST")}

	out := renderReport(report)
	if !strings.Contains(out, "run aborted: ConnectTransfer: missing FTPHOST") {
		t.Errorf("report = %q", out)
	}
}
