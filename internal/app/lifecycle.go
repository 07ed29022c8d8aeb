package app

import (
	"fmt"
	"sync"

	"github.com/bft-labs/feedship/internal/domain"
	"github.com/bft-labs/feedship/pkg/log"
)

// State represents what a runner is doing.
type State int

const (
	// StateIdle: nothing running.
	StateIdle State = iota
	// StateScheduled: the schedule loop is waiting for the next run.
	StateScheduled
	// StateRunning: a batch is executing.
	StateRunning
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateScheduled:
		return "Scheduled"
	case StateRunning:
		return "Running"
	default:
		return "Unknown"
	}
}

// Lifecycle guards a runner against overlapping runs within one process.
// The run lock file covers other processes.
type Lifecycle struct {
	mu     sync.RWMutex
	state  State
	logger log.Logger
}

// NewLifecycle creates a lifecycle in StateIdle.
func NewLifecycle(logger log.Logger) *Lifecycle {
	return &Lifecycle{state: StateIdle, logger: logger}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Transition moves from the expected state to newState.
// If the runner is not in from, or a batch is already running, it returns
// domain.ErrRunInProgress and leaves the state unchanged.
func (l *Lifecycle) Transition(from, to State, reason string) error {
	l.mu.Lock()
	current := l.state

	if current != from || !validTransition(from, to) {
		l.mu.Unlock()
		if current != StateIdle {
			return fmt.Errorf("%w: runner is %s", domain.ErrRunInProgress, current)
		}
		return fmt.Errorf("invalid transition %s -> %s", current, to)
	}

	l.state = to
	l.mu.Unlock()

	l.logger.Debug("state transition",
		log.String("from", from.String()),
		log.String("to", to.String()),
		log.String("reason", reason),
	)
	return nil
}

func validTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateRunning || to == StateScheduled
	case StateScheduled:
		return to == StateRunning || to == StateIdle
	case StateRunning:
		return to == StateIdle || to == StateScheduled
	}
	return false
}
