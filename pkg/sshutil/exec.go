package sshutil

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/convoy-sh/convoy/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Exec runs a command on the remote host and returns the output.
// Exit code is -1 if the command couldn't be executed at all.
func (c *Client) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	session, err := c.NewSession()
	if err != nil {
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try reconnecting.")
	}
	defer session.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	exitCode, err = runSession(session, cmd)
	if err != nil {
		return nil, nil, -1, err
	}
	return stdoutBuf.Bytes(), stderrBuf.Bytes(), exitCode, nil
}

// ExecStream runs a command and streams output to the provided writers.
// Cancelling ctx tears down the session, which terminates the remote
// command. Exit code is -1 if the command couldn't be executed at all.
func (c *Client) ExecStream(ctx context.Context, cmd string, stdout, stderr io.Writer) (exitCode int, err error) {
	session, err := c.NewSession()
	if err != nil {
		return -1, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try reconnecting.")
	}
	defer session.Close()

	session.Stdout = stdout
	session.Stderr = stderr

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			// Closing the session is the only portable way to interrupt a
			// remote command; SIGINT delivery over SSH is unreliable.
			session.Close()
		case <-done:
		}
	}()

	exitCode, err = runSession(session, cmd)
	close(done)

	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	return exitCode, err
}

// runSession runs cmd on an already-wired session and normalizes exit
// status handling: a remote non-zero exit is a result, not an error.
func runSession(session *ssh.Session, cmd string) (int, error) {
	err := session.Run(cmd)
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*ssh.ExitError); ok {
		return exitErr.ExitStatus(), nil
	}
	return -1, errors.WrapWithCode(err, errors.ErrExec,
		fmt.Sprintf("Failed to execute command: %s", cmd),
		"Check if the command exists on the remote host.")
}
