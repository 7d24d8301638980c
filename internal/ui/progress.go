package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/convoy-sh/convoy/internal/engine"
	"github.com/convoy-sh/convoy/internal/host"
	"github.com/convoy-sh/convoy/internal/runner"
	"github.com/convoy-sh/convoy/internal/task"
	"github.com/convoy-sh/convoy/internal/util"
)

// LineProgress is a plain line-per-event engine listener, used when
// stdout is not a TTY (CI, pipes) or when the live view is disabled.
type LineProgress struct {
	mu  sync.Mutex
	out io.Writer
}

// NewLineProgress creates a listener writing to out.
func NewLineProgress(out io.Writer) *LineProgress {
	return &LineProgress{out: out}
}

func (p *LineProgress) RunStarted(tasks []*task.Task, hosts []*host.Host) {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(hosts))
	for _, h := range hosts {
		names = append(names, h.Name)
	}
	fmt.Fprintf(p.out, "%d %s on %s\n",
		len(tasks), util.Pluralize(len(tasks), "task", "tasks"), util.JoinOrNone(names))
}

func (p *LineProgress) TaskStarted(t *task.Task, hosts []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s %s %s\n",
		infoStyle.Render(SymbolProgress), t.Name,
		mutedStyle.Render("on"), util.JoinOrNone(hosts))
}

func (p *LineProgress) ExecFinished(res runner.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case res.Cancelled:
		fmt.Fprintf(p.out, "  %s %s/%s cancelled\n", warnStyle.Render(SymbolSkipped), res.Task, res.Host)
	case res.OK():
		fmt.Fprintf(p.out, "  %s %s/%s\n", successStyle.Render(SymbolSuccess), res.Task, res.Host)
	default:
		fmt.Fprintf(p.out, "  %s %s/%s (exit %d)\n", errorStyle.Render(SymbolFail), res.Task, res.Host, res.ExitCode)
	}
}

func (p *LineProgress) TaskFinished(t *task.Task, ok bool) {}

func (p *LineProgress) RunFinished(o *engine.Outcome) {}
