package schedule

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"time"

	"github.com/bft-labs/feedship/pkg/log"
)

// DefaultPollInterval is how often Run checks for due jobs.
const DefaultPollInterval = time.Second

// JobFunc is the work a job performs.
type JobFunc func(ctx context.Context) error

// Job is a daily job registered on a Scheduler.
type Job struct {
	name string
	at   TimeOfDay
	fn   JobFunc

	next    time.Time
	lastRun time.Time
	lastErr error
	runs    int
}

// Name returns the job name.
func (j *Job) Name() string { return j.name }

// At returns the time of day the job runs.
func (j *Job) At() TimeOfDay { return j.at }

// NextRun returns when the job runs next.
func (j *Job) NextRun() time.Time { return j.next }

// LastRun returns when the job last started, or zero.
func (j *Job) LastRun() time.Time { return j.lastRun }

// LastErr returns the error of the last run.
func (j *Job) LastErr() error { return j.lastErr }

// Runs returns how many times the job ran.
func (j *Job) Runs() int { return j.runs }

// Scheduler holds daily jobs. It is not safe for concurrent use; Run and
// RunPending are meant to be driven from one goroutine.
type Scheduler struct {
	clock  Clock
	logger log.Logger
	jobs   []*Job
}

// New creates an empty scheduler. A nil clock means SystemClock.
func New(clock Clock, logger log.Logger) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{clock: clock, logger: logger}
}

// Daily registers fn to run every day at the given "HH:MM[:SS]" time.
func (s *Scheduler) Daily(name, at string, fn JobFunc) (*Job, error) {
	tod, err := ParseTimeOfDay(at)
	if err != nil {
		return nil, fmt.Errorf("job %s: invalid time %q: %w", name, at, err)
	}
	job := &Job{
		name: name,
		at:   tod,
		fn:   fn,
		next: tod.Next(s.clock.Now()),
	}
	s.jobs = append(s.jobs, job)

	s.logger.Info("job scheduled",
		log.String("job", name),
		log.String("at", tod.String()),
		log.Time("next_run", job.next))
	return job, nil
}

// Jobs returns the registered jobs.
func (s *Scheduler) Jobs() []*Job {
	return append([]*Job(nil), s.jobs...)
}

// NextRun returns the earliest next run over all jobs.
func (s *Scheduler) NextRun() (time.Time, bool) {
	if len(s.jobs) == 0 {
		return time.Time{}, false
	}
	next := s.jobs[0].next
	for _, j := range s.jobs[1:] {
		if j.next.Before(next) {
			next = j.next
		}
	}
	return next, true
}

// RunPending runs every job that is due, in order of due time, and returns
// how many ran. Job errors and panics are logged, never returned.
func (s *Scheduler) RunPending(ctx context.Context) int {
	now := s.clock.Now()

	var due []*Job
	for _, j := range s.jobs {
		if !now.Before(j.next) {
			due = append(due, j)
		}
	}
	sort.SliceStable(due, func(a, b int) bool { return due[a].next.Before(due[b].next) })

	ran := 0
	for _, j := range due {
		if ctx.Err() != nil {
			break
		}
		s.runJob(ctx, j)
		ran++
	}
	return ran
}

func (s *Scheduler) runJob(ctx context.Context, j *Job) {
	j.lastRun = s.clock.Now()
	j.runs++

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job %s panicked: %v", j.name, r)
				s.logger.Error("job panicked",
					log.String("job", j.name),
					log.Any("panic", r),
					log.String("stack", string(debug.Stack())))
			}
		}()
		return j.fn(ctx)
	}()
	j.lastErr = err

	// Computed after the run so a long job does not fire twice.
	j.next = j.at.Next(s.clock.Now())

	if err != nil {
		s.logger.Error("job failed",
			log.String("job", j.name),
			log.Err(err),
			log.Time("next_run", j.next))
		return
	}
	s.logger.Debug("job finished",
		log.String("job", j.name),
		log.Time("next_run", j.next))
}

// Run polls for due jobs every interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	for ctx.Err() == nil {
		s.RunPending(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-s.clock.After(interval):
		}
	}
	return nil
}
