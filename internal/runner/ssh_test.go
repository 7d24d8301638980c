package runner

import (
	"context"
	"testing"
	"time"

	"github.com/convoy-sh/convoy/internal/config"
	"github.com/convoy-sh/convoy/internal/errors"
	"github.com/convoy-sh/convoy/internal/host"
	"github.com/convoy-sh/convoy/internal/logger"
	"github.com/convoy-sh/convoy/internal/task"
	"github.com/convoy-sh/convoy/pkg/sshutil"
	sshtesting "github.com/convoy-sh/convoy/pkg/sshutil/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHost(name string, ssh ...string) *host.Host {
	return &host.Host{Name: name, SSH: ssh, Settings: config.NewOverlay(nil)}
}

// withMock installs a pre-connected mock client for the host.
func withMock(r *SSHRunner, hostName string) *sshtesting.MockClient {
	mock := sshtesting.NewMockClient(hostName)
	r.clients[hostName] = mock
	return mock
}

func TestRunExecutesCommandsInOrder(t *testing.T) {
	r := NewSSHRunner(logger.Noop())
	mock := withMock(r, "web1")

	tk := &task.Task{Name: "release", Commands: []string{"make build", "make release"}}
	res := r.Run(context.Background(), tk, newTestHost("web1"))

	require.True(t, res.OK())
	assert.Equal(t, -1, res.FailedStep)

	log := mock.ExecLog()
	require.Len(t, log, 2)
	assert.Contains(t, log[0], "make build")
	assert.Contains(t, log[1], "make release")
}

func TestRunStopsAtFirstFailingStep(t *testing.T) {
	r := NewSSHRunner(logger.Noop())
	mock := withMock(r, "web1")
	mock.SetCommandResponse("make build", sshtesting.CommandResponse{ExitCode: 2, Stderr: "build broke\n"})

	tk := &task.Task{Name: "release", Commands: []string{"make build", "make release"}}
	res := r.Run(context.Background(), tk, newTestHost("web1"))

	assert.False(t, res.OK())
	assert.Equal(t, 2, res.ExitCode)
	assert.Equal(t, 0, res.FailedStep)
	assert.Contains(t, res.Output, "build broke")
	assert.Len(t, mock.ExecLog(), 1, "second step must not run")
}

func TestRunWithoutConnection(t *testing.T) {
	r := NewSSHRunner(logger.Noop())

	tk := &task.Task{Name: "release", Commands: []string{"true"}}
	res := r.Run(context.Background(), tk, newTestHost("web1"))

	assert.Equal(t, -1, res.ExitCode)
	assert.True(t, errors.IsCode(res.Err, errors.ErrSSH))
}

func TestRunCancelled(t *testing.T) {
	r := NewSSHRunner(logger.Noop())
	mock := withMock(r, "web1")
	mock.SetCommandResponse("sleep", sshtesting.CommandResponse{Delay: 5 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	tk := &task.Task{Name: "wait", Commands: []string{"sleep 60"}}
	res := r.Run(ctx, tk, newTestHost("web1"))

	assert.True(t, res.Cancelled)
	assert.False(t, res.OK())
}

func TestConnectTriesCandidatesInOrder(t *testing.T) {
	r := NewSSHRunner(logger.Noop())

	var attempts []string
	r.dial = func(h string, _ time.Duration) (*sshutil.Client, error) {
		attempts = append(attempts, h)
		if h == "web1-backup" {
			// A zero-value client is enough here; only pooling is under test.
			return &sshutil.Client{Host: h, Address: h + ":22"}, nil
		}
		return nil, errors.New(errors.ErrSSH, "no route", "")
	}

	err := r.Connect(context.Background(), []*host.Host{
		newTestHost("web1", "web1-primary", "web1-backup"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"web1-primary", "web1-backup"}, attempts)

	r.mu.Lock()
	_, ok := r.clients["web1"]
	r.mu.Unlock()
	assert.True(t, ok)
}

func TestConnectAllCandidatesFail(t *testing.T) {
	r := NewSSHRunner(logger.Noop())
	r.dial = func(h string, _ time.Duration) (*sshutil.Client, error) {
		return nil, errors.New(errors.ErrSSH, "no route", "")
	}

	err := r.Connect(context.Background(), []*host.Host{newTestHost("web1", "web1.example.com")})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSSH))
}

func TestConnectNoCandidates(t *testing.T) {
	r := NewSSHRunner(logger.Noop())
	err := r.Connect(context.Background(), []*host.Host{newTestHost("web1")})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSSH))
}

func TestCloseReleasesClients(t *testing.T) {
	r := NewSSHRunner(logger.Noop())
	mock := withMock(r, "web1")

	require.NoError(t, r.Close())
	assert.True(t, mock.Closed())

	r.mu.Lock()
	assert.Empty(t, r.clients)
	r.mu.Unlock()
}

func TestRunLocalTask(t *testing.T) {
	r := NewSSHRunner(logger.Noop())

	tk := &task.Task{Name: "build", Local: true, Commands: []string{"true"}}
	res := r.Run(context.Background(), tk, nil)

	assert.True(t, res.OK())
	assert.Equal(t, LocalHost, res.Host)
}

func TestRunLocalTaskFailure(t *testing.T) {
	r := NewSSHRunner(logger.Noop())

	tk := &task.Task{Name: "build", Local: true, Commands: []string{"true", "exit 3"}}
	res := r.Run(context.Background(), tk, nil)

	assert.False(t, res.OK())
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, 1, res.FailedStep)
}
