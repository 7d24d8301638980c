package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Spinner is a standalone animated status line for one-off operations
// (connection probes, file writes) outside a Bubble Tea program.
type Spinner struct {
	mu       sync.Mutex
	label    string
	frame    int
	start    time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	output   func(string)
	running  bool
	lastLine string
}

// NewSpinner creates a spinner with the given label, printing to stdout.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		label:  label,
		output: func(s string) { fmt.Print(s) },
	}
}

// SetOutput redirects the spinner's output, for tests.
func (s *Spinner) SetOutput(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = fn
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.start = time.Now()
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.render()
	go s.animate()
}

// Success stops the spinner with a success mark.
func (s *Spinner) Success() {
	s.stop()
	s.final(successStyle.Render(SymbolSuccess))
}

// Fail stops the spinner with a failure mark.
func (s *Spinner) Fail() {
	s.stop()
	s.final(errorStyle.Render(SymbolFail))
}

func (s *Spinner) stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	<-s.doneCh
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(SpinnerFrames.Frames)
			s.mu.Unlock()
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := fmt.Sprintf("%s %s...", infoStyle.Render(SpinnerFrames.Frames[s.frame]), s.label)
	s.clearLocked()
	s.output(line)
	s.lastLine = line
}

func (s *Spinner) final(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := time.Since(s.start).Seconds()
	s.clearLocked()
	s.output(fmt.Sprintf("%s %s %s\n", symbol, s.label,
		mutedStyle.Render(fmt.Sprintf("%.1fs", elapsed))))
	s.lastLine = ""
}

func (s *Spinner) clearLocked() {
	if s.lastLine != "" {
		s.output("\r" + strings.Repeat(" ", len([]rune(s.lastLine))) + "\r")
	} else {
		s.output("\r")
	}
}
