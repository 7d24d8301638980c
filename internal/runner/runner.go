// Package runner executes a task's commands on a host (or locally) and
// reports the outcome. The engine treats it as an opaque collaborator.
package runner

import (
	"context"

	"github.com/convoy-sh/convoy/internal/host"
	"github.com/convoy-sh/convoy/internal/task"
)

// LocalHost is the host name reported for local (host-less) executions.
const LocalHost = "local"

// Result is the outcome of one (task, host) execution.
type Result struct {
	Task string
	Host string

	// ExitCode is the final exit status: 0 on success, the failing
	// command's status otherwise, -1 when the command couldn't run at all.
	ExitCode int

	// FailedStep is the index of the first failed command, -1 if none.
	FailedStep int

	// Output is the combined captured output of the execution.
	Output string

	// Err is set for transport-level failures (not remote non-zero exits)
	// and for cancellation.
	Err error

	// Cancelled marks an execution interrupted by shutdown.
	Cancelled bool
}

// OK reports whether the execution completed successfully.
func (r Result) OK() bool {
	return !r.Cancelled && r.Err == nil && r.ExitCode == 0
}

// Runner runs tasks on hosts. Connect is called once before the first
// task; sessions are pooled and reused across tasks until Close.
type Runner interface {
	// Connect establishes sessions to every host before execution begins.
	Connect(ctx context.Context, hosts []*host.Host) error

	// Run executes the task on one host. A nil host runs the task locally.
	// It must faithfully report success, failure, or cancellation.
	Run(ctx context.Context, t *task.Task, h *host.Host) Result

	// Close tears down all pooled sessions.
	Close() error
}
