package task

import (
	"fmt"

	"github.com/convoy-sh/convoy/internal/errors"
	"github.com/convoy-sh/convoy/internal/host"
)

// ResolveOptions tune how a command expands into a task list.
type ResolveOptions struct {
	// StartFrom truncates the pipeline to begin at the named task. The
	// name must exist somewhere in the registry; truncating past the end
	// of this command's pipeline yields an empty list, which resolution
	// rejects.
	StartFrom string

	// Hooks enables before/after hook tasks. When false, only primary
	// tasks survive.
	Hooks bool
}

// Resolve turns a command and a host selection into the ordered task list
// a run will execute. It fails before any connection or side effect when
// the list would be empty or when StartFrom names an unregistered task.
func (r *Registry) Resolve(command string, hosts []*host.Host, opts ResolveOptions) ([]*Task, error) {
	pipeline, err := r.Pipeline(command)
	if err != nil {
		return nil, err
	}

	if !opts.Hooks {
		var primaries []*Task
		for _, t := range pipeline {
			if !t.IsHook() {
				primaries = append(primaries, t)
			}
		}
		pipeline = primaries
	}

	if opts.StartFrom != "" {
		// The name must be registered somewhere, even if it is not part
		// of this command's pipeline; an unregistered name is always a
		// configuration error.
		if !r.Has(opts.StartFrom) {
			return nil, errors.New(errors.ErrTask,
				fmt.Sprintf("Unknown task %q for --start-from", opts.StartFrom),
				suggest(opts.StartFrom, r.Names()))
		}
		pipeline = truncateAt(pipeline, opts.StartFrom)
	}

	// Drop tasks no selected host can run. Local tasks need no host and
	// always survive this filter.
	var applicable []*Task
	for _, t := range pipeline {
		if t.Local || len(t.ApplicableHosts(hosts)) > 0 {
			applicable = append(applicable, t)
		}
	}

	if len(applicable) == 0 {
		return nil, errors.New(errors.ErrResolve,
			fmt.Sprintf("No applicable tasks for %q on the selected hosts", command),
			"Check host tags against task 'only' filters, and the --start-from value")
	}

	return applicable, nil
}

// truncateAt drops every task before the first occurrence of name. If name
// does not occur, the result is empty.
func truncateAt(tasks []*Task, name string) []*Task {
	for i, t := range tasks {
		if t.Name == name {
			return tasks[i:]
		}
	}
	return nil
}
