package runner

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/convoy-sh/convoy/internal/errors"
	"github.com/convoy-sh/convoy/internal/task"
)

// runLocal executes a task's commands on the operator machine through the
// user's shell, so pipes and redirects behave as they would interactively.
func runLocal(ctx context.Context, t *task.Task) Result {
	res := Result{Task: t.Name, Host: LocalHost, FailedStep: -1}

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
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

		command := exec.CommandContext(ctx, shell, "-c", cmd)
		command.Stdout = &out
		command.Stderr = &out

		if runErr := command.Run(); runErr != nil {
			if ctx.Err() != nil {
				res.Cancelled = true
				res.Err = ctx.Err()
				res.ExitCode = -1
				res.FailedStep = i
				res.Output = out.String()
				return res
			}
			if exitErr, ok := runErr.(*exec.ExitError); ok {
				res.FailedStep = i
				res.ExitCode = exitErr.ExitCode()
				res.Output = out.String()
				return res
			}
			res.FailedStep = i
			res.ExitCode = -1
			res.Err = errors.WrapWithCode(runErr, errors.ErrExec,
				"Couldn't run the command locally",
				"Make sure the command exists and is executable.")
			res.Output = out.String()
			return res
		}
	}

	res.Output = out.String()
	return res
}
