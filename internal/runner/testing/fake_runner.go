// Package testing provides a scripted in-memory Runner for exercising the
// engine without SSH.
package testing

import (
	"context"
	"sync"
	"time"

	"github.com/convoy-sh/convoy/internal/host"
	"github.com/convoy-sh/convoy/internal/runner"
	"github.com/convoy-sh/convoy/internal/task"
)

// FakeRunner implements runner.Runner with scripted per-(task, host)
// results. It records every call in order and tracks concurrency so tests
// can assert barrier and limit behavior.
type FakeRunner struct {
	ConnectErr error

	// Delay makes every Run take this long, so executions overlap and
	// concurrency accounting is observable.
	Delay time.Duration

	mu           sync.Mutex
	failures     map[string]int
	errs         map[string]error
	calls        []string
	connected    []string
	closed       bool
	inFlight     int
	maxInFlight  int
	activeTasks  map[string]int
	taskOverlap  bool
}

// NewFakeRunner creates an empty fake where every execution succeeds.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		failures:    make(map[string]int),
		errs:        make(map[string]error),
		activeTasks: make(map[string]int),
	}
}

func key(taskName, hostName string) string {
	return taskName + "/" + hostName
}

// Fail scripts a non-zero exit for the given task on the given host.
// Use runner.LocalHost for local tasks.
func (f *FakeRunner) Fail(taskName, hostName string, exitCode int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[key(taskName, hostName)] = exitCode
}

// FailErr scripts a transport-level error for the given execution.
func (f *FakeRunner) FailErr(taskName, hostName string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[key(taskName, hostName)] = err
}

// Connect implements runner.Runner.
func (f *FakeRunner) Connect(ctx context.Context, hosts []*host.Host) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ConnectErr != nil {
		return f.ConnectErr
	}
	for _, h := range hosts {
		f.connected = append(f.connected, h.Name)
	}
	return nil
}

// Run implements runner.Runner.
func (f *FakeRunner) Run(ctx context.Context, t *task.Task, h *host.Host) runner.Result {
	hostName := runner.LocalHost
	if h != nil {
		hostName = h.Name
	}

	f.mu.Lock()
	f.calls = append(f.calls, key(t.Name, hostName))
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.activeTasks[t.Name]++
	if len(f.activeTasks) > 1 {
		f.taskOverlap = true
	}
	delay := f.Delay
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.activeTasks[t.Name]--
		if f.activeTasks[t.Name] == 0 {
			delete(f.activeTasks, t.Name)
		}
		f.mu.Unlock()
	}()

	res := runner.Result{Task: t.Name, Host: hostName, FailedStep: -1}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			res.Cancelled = true
			res.Err = ctx.Err()
			res.ExitCode = -1
			return res
		}
	} else if ctx.Err() != nil {
		res.Cancelled = true
		res.Err = ctx.Err()
		res.ExitCode = -1
		return res
	}

	f.mu.Lock()
	code, failed := f.failures[key(t.Name, hostName)]
	err := f.errs[key(t.Name, hostName)]
	f.mu.Unlock()

	if err != nil {
		res.ExitCode = -1
		res.FailedStep = 0
		res.Err = err
		return res
	}
	if failed {
		res.ExitCode = code
		res.FailedStep = 0
	}
	return res
}

// Close implements runner.Runner.
func (f *FakeRunner) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Calls returns every execution in start order, as "task/host" keys.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Connected returns the host names passed to Connect.
func (f *FakeRunner) Connected() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.connected))
	copy(out, f.connected)
	return out
}

// Closed reports whether Close was called.
func (f *FakeRunner) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// MaxConcurrent returns the highest number of simultaneous executions
// observed.
func (f *FakeRunner) MaxConcurrent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// TaskOverlap reports whether executions of two different tasks were ever
// in flight at the same time.
func (f *FakeRunner) TaskOverlap() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.taskOverlap
}
