package engine

import (
	"github.com/convoy-sh/convoy/internal/host"
	"github.com/convoy-sh/convoy/internal/runner"
	"github.com/convoy-sh/convoy/internal/task"
)

// Target is one (task, host) execution. A nil Host is a local execution.
type Target struct {
	Task *task.Task
	Host *host.Host
}

// HostName returns the display name for the target's host.
func (t Target) HostName() string {
	if t.Host == nil {
		return runner.LocalHost
	}
	return t.Host.Name
}

// expand returns the executions one task contributes, in host selection
// order. This single enumeration is shared by the planner and the
// orchestrator so a plan is a faithful preview of a run: local tasks get
// one host-less target, once-tasks are reduced to the first applicable
// host, everything else fans out over all applicable hosts.
func expand(t *task.Task, hosts []*host.Host) []Target {
	if t.Local {
		return []Target{{Task: t}}
	}

	applicable := t.ApplicableHosts(hosts)
	if t.Once && len(applicable) > 1 {
		applicable = applicable[:1]
	}

	targets := make([]Target, 0, len(applicable))
	for _, h := range applicable {
		targets = append(targets, Target{Task: t, Host: h})
	}
	return targets
}

// PlanEntry describes one task in a plan.
type PlanEntry struct {
	Task  *task.Task
	Hosts []string
}

// Plan is the dry-run description of a run: which tasks execute where, in
// execution order. Building one performs no connection and no side effect.
type Plan struct {
	Entries []PlanEntry
}

// BuildPlan enumerates the run for tasks over hosts.
func BuildPlan(tasks []*task.Task, hosts []*host.Host) *Plan {
	p := &Plan{}
	for _, t := range tasks {
		entry := PlanEntry{Task: t}
		for _, target := range expand(t, hosts) {
			entry.Hosts = append(entry.Hosts, target.HostName())
		}
		p.Entries = append(p.Entries, entry)
	}
	return p
}

// Pairs flattens the plan into "task/host" strings, in the exact order
// the orchestrator starts executions when running unbounded.
func (p *Plan) Pairs() []string {
	var pairs []string
	for _, e := range p.Entries {
		for _, h := range e.Hosts {
			pairs = append(pairs, e.Task.Name+"/"+h)
		}
	}
	return pairs
}
