package engine

import (
	"context"
	"sync"

	"github.com/convoy-sh/convoy/internal/host"
	"github.com/convoy-sh/convoy/internal/logger"
	"github.com/convoy-sh/convoy/internal/runner"
	"github.com/convoy-sh/convoy/internal/task"
)

// Listener observes run progress. Implementations drive the progress UI;
// callbacks may arrive from multiple goroutines within one task barrier.
type Listener interface {
	RunStarted(tasks []*task.Task, hosts []*host.Host)
	TaskStarted(t *task.Task, hosts []string)
	ExecFinished(res runner.Result)
	TaskFinished(t *task.Task, ok bool)
	RunFinished(o *Outcome)
}

// NoopListener discards all events.
type NoopListener struct{}

func (NoopListener) RunStarted([]*task.Task, []*host.Host) {}
func (NoopListener) TaskStarted(*task.Task, []string)      {}
func (NoopListener) ExecFinished(runner.Result)            {}
func (NoopListener) TaskFinished(*task.Task, bool)         {}
func (NoopListener) RunFinished(*Outcome)                  {}

// Orchestrator executes an ordered task list across a host set.
//
// Execution is barrier-per-task: task N+1 does not start on any host until
// task N has finished on every applicable host. Within a task, hosts run
// in parallel bounded by Limit (0 means all at once). An ordinary failure
// lets in-flight siblings finish and stops at the barrier; cancelling the
// context stops everything as soon as possible.
type Orchestrator struct {
	runner   runner.Runner
	log      logger.Logger
	listener Listener

	// Limit bounds concurrent (task, host) executions within one barrier.
	Limit int
}

// NewOrchestrator wires an orchestrator around a runner.
func NewOrchestrator(r runner.Runner, limit int, log logger.Logger, listener Listener) *Orchestrator {
	if log == nil {
		log = logger.Default()
	}
	if listener == nil {
		listener = NoopListener{}
	}
	return &Orchestrator{runner: r, log: log, listener: listener, Limit: limit}
}

// Run connects to the hosts once, executes each task in order, and
// aggregates the results. Connections are reused across tasks and torn
// down before returning.
func (o *Orchestrator) Run(ctx context.Context, tasks []*task.Task, hosts []*host.Host) *Outcome {
	outcome := &Outcome{Status: StatusSuccess}
	o.listener.RunStarted(tasks, hosts)
	defer func() { o.listener.RunFinished(outcome) }()

	remote := remoteHosts(tasks, hosts)
	o.log.Debug("connecting to %d hosts", len(remote))
	if err := o.runner.Connect(ctx, remote); err != nil {
		if ctx.Err() != nil {
			outcome.Status = StatusCancelled
		} else {
			outcome.Status = StatusFailed
			outcome.ExitCode = 1
		}
		outcome.Err = err
		return outcome
	}
	defer o.runner.Close()

	for _, t := range tasks {
		if ctx.Err() != nil {
			outcome.Status = StatusCancelled
			break
		}

		o.runTask(ctx, t, hosts, outcome)

		if ctx.Err() != nil {
			outcome.Status = StatusCancelled
		}
		if outcome.Status != StatusSuccess {
			break
		}
	}

	return outcome
}

// runTask executes one task across its targets and waits for the barrier.
func (o *Orchestrator) runTask(ctx context.Context, t *task.Task, hosts []*host.Host, outcome *Outcome) {
	targets := expand(t, hosts)
	if len(targets) == 0 {
		return
	}

	names := make([]string, 0, len(targets))
	for _, target := range targets {
		names = append(names, target.HostName())
	}
	o.listener.TaskStarted(t, names)
	o.log.Debug("task %s on %d targets", t.Name, len(targets))

	var sem chan struct{}
	if o.Limit > 0 {
		sem = make(chan struct{}, o.Limit)
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok = true
	)

	for _, target := range targets {
		wg.Add(1)
		go func(target Target) {
			defer wg.Done()

			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					res := runner.Result{
						Task:       target.Task.Name,
						Host:       target.HostName(),
						ExitCode:   -1,
						FailedStep: -1,
						Cancelled:  true,
						Err:        ctx.Err(),
					}
					o.record(res, outcome, &mu, &ok)
					return
				}
			}

			res := o.runner.Run(ctx, target.Task, target.Host)
			o.record(res, outcome, &mu, &ok)
		}(target)
	}

	// Barrier: every applicable host must finish (or fail) before the
	// next task may start anywhere.
	wg.Wait()

	o.listener.TaskFinished(t, ok)
}

// record folds one execution result into the aggregate under the mutex.
// The first-encountered failure wins; cancellation upgrades the status
// regardless of earlier failures.
func (o *Orchestrator) record(res runner.Result, outcome *Outcome, mu *sync.Mutex, ok *bool) {
	mu.Lock()
	outcome.Results = append(outcome.Results, res)

	if res.Cancelled {
		outcome.Status = StatusCancelled
		*ok = false
	} else if !res.OK() {
		*ok = false
		if outcome.Status == StatusSuccess {
			outcome.Status = StatusFailed
			outcome.FailedTask = res.Task
			outcome.FailedHost = res.Host
			outcome.ExitCode = res.ExitCode
		}
	}
	mu.Unlock()

	o.listener.ExecFinished(res)
}

// remoteHosts returns the hosts that at least one task will actually run
// on, preserving selection order. Hosts no task touches are not dialed.
func remoteHosts(tasks []*task.Task, hosts []*host.Host) []*host.Host {
	needed := make(map[string]bool)
	for _, t := range tasks {
		for _, target := range expand(t, hosts) {
			if target.Host != nil {
				needed[target.Host.Name] = true
			}
		}
	}

	var out []*host.Host
	for _, h := range hosts {
		if needed[h.Name] {
			out = append(out, h)
		}
	}
	return out
}
