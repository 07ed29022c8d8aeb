package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the feedship domain.
// These errors can be checked with errors.Is.
var (
	// ErrConfig is returned when the feeds file is missing, malformed or not a list.
	ErrConfig = errors.New("feedship: invalid feeds config")

	// ErrTransferConnect is returned when the transfer session cannot be opened.
	ErrTransferConnect = errors.New("feedship: transfer connect failed")

	// ErrFetch marks a feed that could not be downloaded or parsed.
	ErrFetch = errors.New("feedship: fetch failed")

	// ErrStage marks a feed whose dataset could not be written locally.
	ErrStage = errors.New("feedship: stage failed")

	// ErrUpload marks a feed whose staged file could not be uploaded.
	ErrUpload = errors.New("feedship: upload failed")

	// ErrDelete marks a staged file that could not be removed after upload.
	ErrDelete = errors.New("feedship: delete failed")

	// ErrRunInProgress is returned when another run holds the run lock.
	ErrRunInProgress = errors.New("feedship: run already in progress")

	// ErrInvalidConfig is returned when settings validation fails.
	ErrInvalidConfig = errors.New("feedship: invalid configuration")
)

// Step names a stage of the per-feed pipeline.
type Step int

const (
	StepFetch Step = iota
	StepStage
	StepUpload
	StepDelete
)

// String returns a human-readable representation of the step.
func (s Step) String() string {
	switch s {
	case StepFetch:
		return "fetch"
	case StepStage:
		return "stage"
	case StepUpload:
		return "upload"
	case StepDelete:
		return "delete"
	default:
		return "unknown"
	}
}

func (s Step) sentinel() error {
	switch s {
	case StepFetch:
		return ErrFetch
	case StepStage:
		return ErrStage
	case StepUpload:
		return ErrUpload
	default:
		return ErrDelete
	}
}

// FeedError records which step failed for which feed.
// errors.Is matches both the step sentinel (ErrFetch, ErrStage, ...) and the cause.
type FeedError struct {
	Feed string
	Step Step
	Err  error
}

// NewFeedError wraps err as a failure of step for the named feed.
func NewFeedError(feed string, step Step, err error) *FeedError {
	return &FeedError{Feed: feed, Step: step, Err: err}
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Step, e.Feed, e.Err)
}

func (e *FeedError) Unwrap() []error {
	return []error{e.Step.sentinel(), e.Err}
}

// Phase names a stage of one pipeline run.
type Phase int

const (
	PhaseLoadConfig Phase = iota
	PhaseConnectTransfer
	PhaseProcessing
	PhaseDone
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseLoadConfig:
		return "LoadConfig"
	case PhaseConnectTransfer:
		return "ConnectTransfer"
	case PhaseProcessing:
		return "Processing"
	case PhaseDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// RunError is a failure that aborted a whole run.
type RunError struct {
	Phase Phase
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
