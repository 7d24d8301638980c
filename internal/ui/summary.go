package ui

import (
	"fmt"
	"strings"

	"github.com/convoy-sh/convoy/internal/doctor"
	"github.com/convoy-sh/convoy/internal/engine"
	"github.com/convoy-sh/convoy/internal/util"
)

// RenderOutcome formats the end-of-run summary: a status line, and on
// failure the first failing execution with its captured output.
func RenderOutcome(o *engine.Outcome) string {
	var b strings.Builder

	succeeded := 0
	for _, res := range o.Results {
		if res.OK() {
			succeeded++
		}
	}

	switch o.Status {
	case engine.StatusSuccess:
		b.WriteString(successStyle.Render(fmt.Sprintf("%s %d/%d executions succeeded",
			SymbolSuccess, succeeded, len(o.Results))))
		b.WriteString("\n")
	case engine.StatusCancelled:
		b.WriteString(warnStyle.Render(fmt.Sprintf("%s run cancelled (%d/%d executions finished)",
			SymbolSkipped, succeeded, len(o.Results))))
		b.WriteString("\n")
	default:
		b.WriteString(errorStyle.Render(fmt.Sprintf("%s %s failed on %s",
			SymbolFail, o.FailedTask, o.FailedHost)))
		b.WriteString("\n")

		if out := failureOutput(o); out != "" {
			b.WriteString(mutedStyle.Render(indent(out, "  ")))
			if !strings.HasSuffix(out, "\n") {
				b.WriteString("\n")
			}
		}
	}

	if o.Err != nil {
		b.WriteString(o.Err.Error())
	}

	return b.String()
}

// failureOutput returns the captured output of the first-encountered
// failure.
func failureOutput(o *engine.Outcome) string {
	for _, res := range o.Results {
		if res.Task == o.FailedTask && res.Host == o.FailedHost {
			return res.Output
		}
	}
	return ""
}

// RenderChecks formats doctor results grouped as they came, one line per
// finding, with suggestions indented under warnings and failures.
func RenderChecks(results []doctor.CheckResult) string {
	var b strings.Builder

	warned, failed := 0, 0
	for _, res := range results {
		switch res.Status {
		case doctor.StatusPass:
			b.WriteString(fmt.Sprintf("  %s %s\n", successStyle.Render(SymbolSuccess), res.Message))
		case doctor.StatusWarn:
			warned++
			b.WriteString(fmt.Sprintf("  %s %s\n", warnStyle.Render("!"), res.Message))
		default:
			failed++
			b.WriteString(fmt.Sprintf("  %s %s\n", errorStyle.Render(SymbolFail), res.Message))
		}
		if res.Status != doctor.StatusPass && res.Suggestion != "" {
			b.WriteString(mutedStyle.Render(indent(res.Suggestion, "    ")))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if failed == 0 && warned == 0 {
		b.WriteString(successStyle.Render("All checks passed"))
	} else {
		b.WriteString(fmt.Sprintf("%d %s, %d %s",
			failed, util.Pluralize(failed, "failure", "failures"),
			warned, util.Pluralize(warned, "warning", "warnings")))
	}
	b.WriteString("\n")

	return b.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
