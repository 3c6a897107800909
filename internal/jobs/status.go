// Package jobs persists asynchronous generation jobs in SQLite and
// owns the job lifecycle state machine.
package jobs

// #region imports
import (
	"fmt"
)

// #endregion

// #region status

// Status is the closed job lifecycle enumeration.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusRunning, StatusSucceeded, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// #endregion status

// #region transition

// transitions holds the legal lifecycle moves: queued → running →
// succeeded | failed. Terminal states never move again.
var transitions = map[Status][]Status{
	StatusQueued:  {StatusRunning},
	StatusRunning: {StatusSucceeded, StatusFailed},
}

// Transition validates a lifecycle move, rejecting anything outside the
// state machine (for example succeeded → running).
func Transition(from, to Status) error {
	if !from.Valid() {
		return fmt.Errorf("jobs: unknown status %q", from)
	}
	if !to.Valid() {
		return fmt.Errorf("jobs: unknown status %q", to)
	}
	for _, allowed := range transitions[from] {
		if to == allowed {
			return nil
		}
	}
	return fmt.Errorf("jobs: illegal transition %s -> %s", from, to)
}

// #endregion transition

// #region job-type

// JobType identifies what a queued job executes.
type JobType string

const (
	// JobGenerate runs the layout generation pipeline.
	JobGenerate JobType = "generate"
)

// #endregion job-type
