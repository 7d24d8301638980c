// Package engine runs an ordered task list across a host set: tasks
// strictly in sequence, hosts within a task in parallel up to a
// concurrency limit. The planner enumerates exactly what the orchestrator
// would execute.
package engine

import "github.com/convoy-sh/convoy/internal/runner"

// Status is the aggregate result of a run.
type Status int

const (
	// StatusSuccess means every (task, host) execution succeeded.
	StatusSuccess Status = iota
	// StatusFailed means at least one execution hard-failed.
	StatusFailed
	// StatusCancelled means the run was interrupted by the operator.
	// Cancellation is a control outcome, not a failure: it never triggers
	// recovery and takes precedence over StatusFailed when both occur.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "success"
	}
}

// Outcome aggregates a whole run.
type Outcome struct {
	Status Status

	// Results holds every finished execution in completion order.
	Results []runner.Result

	// FailedTask and FailedHost identify the first-encountered failure.
	FailedTask string
	FailedHost string

	// ExitCode is the first failure's exit status (0 on success).
	ExitCode int

	// Err carries a run-level error that happened outside task execution,
	// such as a connect failure.
	Err error
}

// ExitStatus maps the outcome to the process exit code: 0 on success,
// 1 on graceful shutdown, otherwise the first failure's status.
func (o *Outcome) ExitStatus() int {
	switch o.Status {
	case StatusSuccess:
		return 0
	case StatusCancelled:
		return 1
	default:
		if o.ExitCode > 0 {
			return o.ExitCode
		}
		return 1
	}
}

// Failed reports whether the run hard-failed (recovery territory).
// Cancelled runs are not failures.
func (o *Outcome) Failed() bool {
	return o.Status == StatusFailed
}
