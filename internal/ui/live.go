package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/convoy-sh/convoy/internal/engine"
	"github.com/convoy-sh/convoy/internal/host"
	"github.com/convoy-sh/convoy/internal/runner"
	"github.com/convoy-sh/convoy/internal/task"
)

// SpinnerFrames defines the animation frames (◐ ◓ ◑ ◒) shared by the
// live view and standalone spinners.
var SpinnerFrames = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 10,
}

type execState int

const (
	execPending execState = iota
	execRunning
	execPassed
	execFailed
	execCancelled
)

type execRow struct {
	task  string
	host  string
	state execState
}

// Bubble Tea messages fed by the engine listener.
type taskStartedMsg struct {
	name  string
	hosts []string
}
type execFinishedMsg struct{ res runner.Result }
type runFinishedMsg struct{}

// liveModel renders one row per (task, host) execution of the current
// barrier, animated while in flight.
type liveModel struct {
	spinner spinner.Model
	rows    []execRow
	done    bool
}

func newLiveModel() liveModel {
	sp := spinner.New()
	sp.Spinner = SpinnerFrames
	sp.Style = lipgloss.NewStyle().Foreground(ColorSecondary)
	return liveModel{spinner: sp}
}

func (m liveModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskStartedMsg:
		m.rows = nil
		for _, h := range msg.hosts {
			m.rows = append(m.rows, execRow{task: msg.name, host: h, state: execRunning})
		}
		return m, nil

	case execFinishedMsg:
		for i := range m.rows {
			if m.rows[i].task == msg.res.Task && m.rows[i].host == msg.res.Host {
				switch {
				case msg.res.Cancelled:
					m.rows[i].state = execCancelled
				case msg.res.OK():
					m.rows[i].state = execPassed
				default:
					m.rows[i].state = execFailed
				}
			}
		}
		return m, nil

	case runFinishedMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m liveModel) View() string {
	if m.done || len(m.rows) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(boldStyle.Render(m.rows[0].task))
	b.WriteString("\n")
	for _, row := range m.rows {
		var sym string
		switch row.state {
		case execRunning:
			sym = m.spinner.View()
		case execPassed:
			sym = successStyle.Render(SymbolSuccess)
		case execFailed:
			sym = errorStyle.Render(SymbolFail)
		case execCancelled:
			sym = warnStyle.Render(SymbolSkipped)
		default:
			sym = mutedStyle.Render(SymbolPending)
		}
		fmt.Fprintf(&b, "  %s %s\n", sym, row.host)
	}
	return b.String()
}

// LiveProgress drives a Bubble Tea view from engine events. Use on a TTY;
// falls back should be handled by the caller via NewLineProgress.
type LiveProgress struct {
	program *tea.Program
	doneCh  chan struct{}
}

// NewLiveProgress starts the live view in the background.
func NewLiveProgress() *LiveProgress {
	p := tea.NewProgram(newLiveModel())
	lp := &LiveProgress{program: p, doneCh: make(chan struct{})}
	go func() {
		defer close(lp.doneCh)
		// Run returns when the model quits on runFinishedMsg.
		_, _ = p.Run()
	}()
	return lp
}

func (p *LiveProgress) RunStarted(tasks []*task.Task, hosts []*host.Host) {}

func (p *LiveProgress) TaskStarted(t *task.Task, hosts []string) {
	p.program.Send(taskStartedMsg{name: t.Name, hosts: hosts})
}

func (p *LiveProgress) ExecFinished(res runner.Result) {
	p.program.Send(execFinishedMsg{res: res})
}

func (p *LiveProgress) TaskFinished(t *task.Task, ok bool) {}

func (p *LiveProgress) RunFinished(o *engine.Outcome) {
	p.program.Send(runFinishedMsg{})
	// Wait for the final frame so the summary prints below it.
	<-p.doneCh
}
