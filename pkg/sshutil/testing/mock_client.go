// Package testing provides a scripted mock of the sshutil client for
// tests that exercise SSH-dependent code without real connections.
package testing

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// CommandResponse scripts the result for a command pattern.
type CommandResponse struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
	// Delay simulates remote execution time before the result is returned.
	Delay time.Duration
}

// MockClient implements sshutil.SSHClient with scripted responses.
// Responses are matched by substring against the executed command; the
// first registered pattern that matches wins. Unmatched commands succeed
// with empty output.
type MockClient struct {
	mu        sync.Mutex
	host      string
	closed    bool
	patterns  []string
	responses map[string]CommandResponse
	execLog   []string
}

// NewMockClient creates a mock client for the given host name.
func NewMockClient(host string) *MockClient {
	return &MockClient{
		host:      host,
		responses: make(map[string]CommandResponse),
	}
}

// SetCommandResponse scripts the response for commands containing pattern.
func (m *MockClient) SetCommandResponse(pattern string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.responses[pattern]; !ok {
		m.patterns = append(m.patterns, pattern)
	}
	m.responses[pattern] = resp
}

// ExecLog returns every command executed so far, in order.
func (m *MockClient) ExecLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.execLog))
	copy(out, m.execLog)
	return out
}

// Closed reports whether Close was called.
func (m *MockClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockClient) lookup(cmd string) CommandResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execLog = append(m.execLog, cmd)
	for _, p := range m.patterns {
		if strings.Contains(cmd, p) {
			return m.responses[p]
		}
	}
	return CommandResponse{}
}

// Exec implements sshutil.SSHClient.
func (m *MockClient) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	resp := m.lookup(cmd)
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	if resp.Err != nil {
		return nil, nil, -1, resp.Err
	}
	return []byte(resp.Stdout), []byte(resp.Stderr), resp.ExitCode, nil
}

// ExecStream implements sshutil.SSHClient, honoring ctx cancellation
// during the scripted delay.
func (m *MockClient) ExecStream(ctx context.Context, cmd string, stdout, stderr io.Writer) (exitCode int, err error) {
	resp := m.lookup(cmd)

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-ctx.Done():
			return -1, ctx.Err()
		}
	} else if ctx.Err() != nil {
		return -1, ctx.Err()
	}

	if resp.Err != nil {
		return -1, resp.Err
	}
	if resp.Stdout != "" {
		fmt.Fprint(stdout, resp.Stdout)
	}
	if resp.Stderr != "" {
		fmt.Fprint(stderr, resp.Stderr)
	}
	return resp.ExitCode, nil
}

// Close implements sshutil.SSHClient.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GetHost implements sshutil.SSHClient.
func (m *MockClient) GetHost() string {
	return m.host
}

// GetAddress implements sshutil.SSHClient.
func (m *MockClient) GetAddress() string {
	return m.host + ":22"
}
