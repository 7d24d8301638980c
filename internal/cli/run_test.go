package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/convoy-sh/convoy/internal/logger"
	"github.com/convoy-sh/convoy/internal/runner"
	rtesting "github.com/convoy-sh/convoy/internal/runner/testing"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deployConfigYAML = `version: 1
hosts:
  web1:
    ssh: [web1.internal]
    dir: /srv/app
tasks:
  - name: release
    commands: ["./release.sh"]
  - name: rollback
    commands: ["./rollback.sh"]
    hidden: true
  - name: verify
    commands: ["./verify.sh"]
    after: rollback
    hidden: true
commands:
  deploy: [release]
recover:
  deploy: rollback
`

// execRun invokes the run command against a scripted transport. The
// script callback configures the n-th runner handed out (0 = main run,
// 1 = recovery run); every runner created is returned for inspection.
func execRun(t *testing.T, command string, script func(n int, f *rtesting.FakeRunner)) ([]*rtesting.FakeRunner, error) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, ".convoy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(deployConfigYAML), 0o644))

	origNew, origConfig := newRunner, configFlag
	t.Cleanup(func() {
		newRunner, configFlag = origNew, origConfig
		runHostsFlag, runTagsFlag, runOverrideFlag = nil, nil, nil
		runLimitFlag, runNoHooksFlag, runPlanFlag, runStartFrom = 0, false, false, ""
	})
	configFlag = path

	var fakes []*rtesting.FakeRunner
	newRunner = func(log logger.Logger) runner.Runner {
		f := rtesting.NewFakeRunner()
		script(len(fakes), f)
		fakes = append(fakes, f)
		return f
	}

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := runCommand(cmd, command)
	return fakes, err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var ec *exitCodeError
	require.True(t, stderrors.As(err, &ec), "expected an exit-code error, got %v", err)
	return ec.code
}

func TestRunSuccessUsesOneRunnerAndNoRecovery(t *testing.T) {
	fakes, err := execRun(t, "deploy", func(n int, f *rtesting.FakeRunner) {})

	require.NoError(t, err)
	require.Len(t, fakes, 1)
	assert.Equal(t, []string{"release/web1"}, fakes[0].Calls())
	assert.True(t, fakes[0].Closed())
}

func TestRunFailureReportsOriginalExitStatusAfterRecoverySucceeds(t *testing.T) {
	fakes, err := execRun(t, "deploy", func(n int, f *rtesting.FakeRunner) {
		if n == 0 {
			f.Fail("release", "web1", 7)
		}
	})

	// The recovery run succeeded, but the exit status is still the
	// original failure's.
	assert.Equal(t, 7, exitCode(t, err))

	require.Len(t, fakes, 2)
	assert.Equal(t, []string{"release/web1"}, fakes[0].Calls())
	// Recovery resolves fresh under the run's hook policy: the rollback
	// task plus its after-hook.
	assert.Equal(t, []string{"rollback/web1", "verify/web1"}, fakes[1].Calls())
}

func TestRunFailedRecoveryDoesNotCascadeOrChangeStatus(t *testing.T) {
	fakes, err := execRun(t, "deploy", func(n int, f *rtesting.FakeRunner) {
		if n == 0 {
			f.Fail("release", "web1", 7)
		} else {
			f.Fail("rollback", "web1", 9)
		}
	})

	assert.Equal(t, 7, exitCode(t, err))

	// Exactly two runs: the failed rollback triggers no further recovery.
	require.Len(t, fakes, 2)
	assert.Equal(t, []string{"rollback/web1"}, fakes[1].Calls())
}

func TestRunNoHooksAppliesToRecovery(t *testing.T) {
	runNoHooksFlag = true
	fakes, err := execRun(t, "deploy", func(n int, f *rtesting.FakeRunner) {
		if n == 0 {
			f.Fail("release", "web1", 3)
		}
	})

	assert.Equal(t, 3, exitCode(t, err))
	require.Len(t, fakes, 2)
	assert.Equal(t, []string{"rollback/web1"}, fakes[1].Calls())
}
