package engine

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/convoy-sh/convoy/internal/config"
	"github.com/convoy-sh/convoy/internal/host"
	"github.com/convoy-sh/convoy/internal/logger"
	"github.com/convoy-sh/convoy/internal/runner"
	runnertesting "github.com/convoy-sh/convoy/internal/runner/testing"
	"github.com/convoy-sh/convoy/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHost(name string, tags ...string) *host.Host {
	return &host.Host{Name: name, SSH: []string{name}, Tags: tags, Settings: config.NewOverlay(nil)}
}

func threeHosts() []*host.Host {
	return []*host.Host{
		newHost("db1", "db"),
		newHost("web1", "web"),
		newHost("web2", "web"),
	}
}

func deployTasks() []*task.Task {
	return []*task.Task{
		{Name: "build", Commands: []string{"make build"}, Local: true},
		{Name: "upload", Commands: []string{"rsync"}},
		{Name: "migrate", Commands: []string{"./migrate"}, Only: []string{"db"}, Once: true},
		{Name: "release", Commands: []string{"./release.sh"}},
	}
}

func run(t *testing.T, fake *runnertesting.FakeRunner, limit int, tasks []*task.Task, hosts []*host.Host) *Outcome {
	t.Helper()
	o := NewOrchestrator(fake, limit, logger.Noop(), nil)
	return o.Run(context.Background(), tasks, hosts)
}

func TestRunAllSucceed(t *testing.T) {
	fake := runnertesting.NewFakeRunner()
	outcome := run(t, fake, 0, deployTasks(), threeHosts())

	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, 0, outcome.ExitStatus())
	assert.True(t, fake.Closed())

	// build: local once; upload/release: all three; migrate: once on db1.
	assert.Len(t, outcome.Results, 1+3+1+3)
}

func TestTaskBarrierNoOverlap(t *testing.T) {
	fake := runnertesting.NewFakeRunner()
	fake.Delay = 10 * time.Millisecond

	outcome := run(t, fake, 0, deployTasks(), threeHosts())

	require.Equal(t, StatusSuccess, outcome.Status)
	assert.False(t, fake.TaskOverlap(),
		"no execution of a later task may start while an earlier task is in flight")

	// Calls are grouped by task, in task order.
	var order []string
	for _, call := range fake.Calls() {
		name := strings.SplitN(call, "/", 2)[0]
		if len(order) == 0 || order[len(order)-1] != name {
			order = append(order, name)
		}
	}
	assert.Equal(t, []string{"build", "upload", "migrate", "release"}, order)
}

func TestLimitBoundsConcurrency(t *testing.T) {
	fake := runnertesting.NewFakeRunner()
	fake.Delay = 10 * time.Millisecond

	outcome := run(t, fake, 2, []*task.Task{
		{Name: "release", Commands: []string{"./release.sh"}},
	}, threeHosts())

	require.Equal(t, StatusSuccess, outcome.Status)
	assert.LessOrEqual(t, fake.MaxConcurrent(), 2)
}

func TestOutcomeInvariantUnderLimit(t *testing.T) {
	for _, limit := range []int{0, 1, 2, 5} {
		fake := runnertesting.NewFakeRunner()
		fake.Fail("release", "web2", 7)

		outcome := run(t, fake, limit, deployTasks(), threeHosts())

		assert.Equal(t, StatusFailed, outcome.Status, "limit %d", limit)
		assert.Equal(t, "release", outcome.FailedTask, "limit %d", limit)
		assert.Equal(t, 7, outcome.ExitCode, "limit %d", limit)
		assert.Equal(t, 7, outcome.ExitStatus(), "limit %d", limit)
	}
}

func TestOnceRunsOnFirstApplicableHost(t *testing.T) {
	for i := 0; i < 5; i++ {
		fake := runnertesting.NewFakeRunner()
		run(t, fake, 0, []*task.Task{
			{Name: "migrate", Commands: []string{"./migrate"}, Once: true},
		}, threeHosts())

		assert.Equal(t, []string{"migrate/db1"}, fake.Calls(),
			"once-task host selection must be deterministic")
	}
}

func TestLocalTaskRunsExactlyOnce(t *testing.T) {
	fake := runnertesting.NewFakeRunner()
	run(t, fake, 0, []*task.Task{
		{Name: "build", Commands: []string{"make build"}, Local: true},
	}, threeHosts())

	assert.Equal(t, []string{"build/local"}, fake.Calls())
	assert.Empty(t, fake.Connected(), "local-only runs must not dial any host")
}

func TestFailureStopsAtBarrier(t *testing.T) {
	fake := runnertesting.NewFakeRunner()
	fake.Delay = 10 * time.Millisecond
	fake.Fail("upload", "web1", 3)

	outcome := run(t, fake, 0, deployTasks(), threeHosts())

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Equal(t, "upload", outcome.FailedTask)
	assert.Equal(t, "web1", outcome.FailedHost)

	calls := fake.Calls()
	// In-flight siblings finish: all three upload executions happen.
	uploads := 0
	for _, c := range calls {
		require.NotContains(t, c, "migrate/", "no task after the failed barrier may start")
		require.NotContains(t, c, "release/", "no task after the failed barrier may start")
		if strings.HasPrefix(c, "upload/") {
			uploads++
		}
	}
	assert.Equal(t, 3, uploads)
}

func TestSiblingFailuresKeepFirstEncountered(t *testing.T) {
	fake := runnertesting.NewFakeRunner()
	fake.Fail("release", "web1", 3)
	fake.Fail("release", "web2", 5)

	outcome := run(t, fake, 1, []*task.Task{
		{Name: "release", Commands: []string{"./release.sh"}},
	}, threeHosts())

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Equal(t, "release", outcome.FailedTask)
	// Whichever failure completed first is the one reported; it must be
	// one of the scripted ones, never overwritten by the later one.
	assert.Contains(t, []int{3, 5}, outcome.ExitCode)
	if outcome.FailedHost == "web1" {
		assert.Equal(t, 3, outcome.ExitCode)
	}
	if outcome.FailedHost == "web2" {
		assert.Equal(t, 5, outcome.ExitCode)
	}
}

func TestCancellationStopsEverything(t *testing.T) {
	fake := runnertesting.NewFakeRunner()
	fake.Delay = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	o := NewOrchestrator(fake, 0, logger.Noop(), nil)
	outcome := o.Run(ctx, deployTasks(), threeHosts())

	assert.Equal(t, StatusCancelled, outcome.Status)
	assert.Equal(t, 1, outcome.ExitStatus())

	for _, c := range fake.Calls() {
		assert.NotContains(t, c, "release/", "cancellation must not start later tasks")
	}
}

func TestCancellationTakesPrecedenceOverFailure(t *testing.T) {
	fake := runnertesting.NewFakeRunner()
	fake.Delay = 50 * time.Millisecond
	fake.Fail("upload", "web1", 3)

	ctx, cancel := context.WithCancel(context.Background())
	o := NewOrchestrator(fake, 0, logger.Noop(), nil)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	outcome := o.Run(ctx, []*task.Task{
		{Name: "upload", Commands: []string{"rsync"}},
	}, threeHosts())

	assert.Equal(t, StatusCancelled, outcome.Status)
	assert.Equal(t, 1, outcome.ExitStatus())
}

func TestConnectFailureAbortsRun(t *testing.T) {
	fake := runnertesting.NewFakeRunner()
	fake.ConnectErr = assert.AnError

	outcome := run(t, fake, 0, deployTasks(), threeHosts())

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.ErrorIs(t, outcome.Err, assert.AnError)
	assert.Empty(t, fake.Calls(), "no task may run when connect fails")
}

func TestPlanMatchesExecution(t *testing.T) {
	hostSets := map[string][]*host.Host{
		"all":      threeHosts(),
		"web only": {newHost("web1", "web"), newHost("web2", "web")},
		"single":   {newHost("db1", "db")},
	}

	for name, hosts := range hostSets {
		t.Run(name, func(t *testing.T) {
			tasks := deployTasks()
			plan := BuildPlan(tasks, hosts)

			fake := runnertesting.NewFakeRunner()
			outcome := run(t, fake, 0, tasks, hosts)
			require.Equal(t, StatusSuccess, outcome.Status)

			planned := plan.Pairs()
			executed := fake.Calls()
			sort.Strings(planned)
			sort.Strings(executed)
			assert.Equal(t, planned, executed,
				"the plan must enumerate exactly what the orchestrator executes")
		})
	}
}

func TestListenerReceivesEvents(t *testing.T) {
	fake := runnertesting.NewFakeRunner()
	events := &recordingListener{}

	o := NewOrchestrator(fake, 0, logger.Noop(), events)
	outcome := o.Run(context.Background(), []*task.Task{
		{Name: "release", Commands: []string{"./release.sh"}},
	}, threeHosts())

	require.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, 1, events.runStarted)
	assert.Equal(t, []string{"release"}, events.tasksStarted)
	assert.Equal(t, 3, events.ExecsFinished())
	assert.Equal(t, 1, events.runFinished)
}

type recordingListener struct {
	mu            sync.Mutex
	runStarted    int
	tasksStarted  []string
	execsFinished int
	runFinished   int
}

func (l *recordingListener) RunStarted([]*task.Task, []*host.Host) { l.runStarted++ }
func (l *recordingListener) TaskStarted(t *task.Task, _ []string) {
	l.tasksStarted = append(l.tasksStarted, t.Name)
}
func (l *recordingListener) ExecFinished(runner.Result) {
	l.mu.Lock()
	l.execsFinished++
	l.mu.Unlock()
}
func (l *recordingListener) TaskFinished(*task.Task, bool) {}
func (l *recordingListener) RunFinished(*Outcome)          { l.runFinished++ }

func (l *recordingListener) ExecsFinished() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.execsFinished
}
