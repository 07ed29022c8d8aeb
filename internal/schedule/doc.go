// Package schedule runs jobs once a day at a fixed wall-clock time.
//
// A Scheduler is an explicit value owned by its caller. Missed occurrences
// are not caught up: after a job runs (or when the loop starts late) the
// next run is the first occurrence strictly after the current time.
package schedule
