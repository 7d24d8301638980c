package runner

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/convoy-sh/convoy/internal/errors"
	"github.com/convoy-sh/convoy/internal/host"
	"github.com/convoy-sh/convoy/internal/logger"
	"github.com/convoy-sh/convoy/internal/task"
	"github.com/convoy-sh/convoy/pkg/sshutil"
)

// DialTimeout bounds each SSH connection attempt.
const DialTimeout = 10 * time.Second

// dialFunc matches sshutil.Dial; replaceable in tests.
type dialFunc func(host string, timeout time.Duration) (*sshutil.Client, error)

// SSHRunner executes tasks over pooled SSH connections, one per host,
// established up front and reused for every task in the run.
type SSHRunner struct {
	log  logger.Logger
	dial dialFunc

	mu      sync.Mutex
	clients map[string]sshutil.SSHClient
}

// NewSSHRunner creates a runner that connects via sshutil.
func NewSSHRunner(log logger.Logger) *SSHRunner {
	if log == nil {
		log = logger.Default()
	}
	return &SSHRunner{
		log:  log,
		dial: func(h string, timeout time.Duration) (*sshutil.Client, error) { return sshutil.Dial(h, timeout) },
		clients: make(map[string]sshutil.SSHClient),
	}
}

// Connect dials every host in parallel. Each host's SSH candidates are
// tried in order until one succeeds; the first host that exhausts its
// candidates fails the whole connect.
func (r *SSHRunner) Connect(ctx context.Context, hosts []*host.Host) error {
	var wg sync.WaitGroup
	errs := make([]error, len(hosts))

	for i, h := range hosts {
		wg.Add(1)
		go func(i int, h *host.Host) {
			defer wg.Done()
			client, err := r.dialHost(h)
			if err != nil {
				errs[i] = err
				return
			}
			r.mu.Lock()
			r.clients[h.Name] = client
			r.mu.Unlock()
		}(i, h)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		r.Close()
		return err
	}

	for _, err := range errs {
		if err != nil {
			r.Close()
			return err
		}
	}
	return nil
}

// dialHost tries each SSH candidate for the host in order.
func (r *SSHRunner) dialHost(h *host.Host) (sshutil.SSHClient, error) {
	if len(h.SSH) == 0 {
		return nil, errors.New(errors.ErrSSH,
			fmt.Sprintf("Host %q has no ssh targets configured", h.Name),
			"Add an ssh entry for the host in the config file")
	}

	var lastErr error
	for _, candidate := range h.SSH {
		r.log.Debug("dialing %s via %s", h.Name, candidate)
		client, err := r.dial(candidate, DialTimeout)
		if err == nil {
			r.log.Debug("connected to %s at %s", h.Name, client.GetAddress())
			return client, nil
		}
		r.log.Debug("dial %s failed: %v", candidate, err)
		lastErr = err
	}
	return nil, errors.WrapWithCode(lastErr, errors.ErrSSH,
		fmt.Sprintf("Couldn't connect to host %q", h.Name),
		"Every ssh candidate failed; try connecting manually: ssh "+h.SSH[0])
}

// Run executes the task's commands in sequence on the host, stopping at
// the first failure. A nil host runs the task locally.
func (r *SSHRunner) Run(ctx context.Context, t *task.Task, h *host.Host) Result {
	if h == nil {
		return runLocal(ctx, t)
	}

	res := Result{Task: t.Name, Host: h.Name, FailedStep: -1}

	r.mu.Lock()
	client, ok := r.clients[h.Name]
	r.mu.Unlock()
	if !ok {
		res.ExitCode = -1
		res.Err = errors.New(errors.ErrSSH,
			fmt.Sprintf("No connection for host %q", h.Name),
			"This is an internal error - hosts are connected before execution")
		return res
	}

	var out bytes.Buffer
	for i, cmd := range t.Commands {
		if err := ctx.Err(); err != nil {
			res.Cancelled = true
			res.Err = err
			res.ExitCode = -1
			res.Output = out.String()
			return res
		}

		line := buildCommand(cmd, h)
		r.log.Debug("[%s] %s", h.Name, line)

		exitCode, err := client.ExecStream(ctx, line, &out, &out)
		if err != nil {
			res.FailedStep = i
			res.ExitCode = -1
			res.Err = err
			res.Cancelled = ctx.Err() != nil
			res.Output = out.String()
			return res
		}
		if exitCode != 0 {
			res.FailedStep = i
			res.ExitCode = exitCode
			res.Output = out.String()
			return res
		}
	}

	res.Output = out.String()
	return res
}

// Close tears down every pooled connection.
func (r *SSHRunner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, client := range r.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.clients, name)
	}
	return firstErr
}
