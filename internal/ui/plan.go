package ui

import (
	"fmt"
	"strings"

	"github.com/convoy-sh/convoy/internal/engine"
	"github.com/convoy-sh/convoy/internal/util"
)

// RenderPlan formats a dry-run plan: one numbered line per task with the
// hosts it would run on, in execution order.
func RenderPlan(plan *engine.Plan) string {
	var b strings.Builder

	b.WriteString(boldStyle.Render("Plan"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf(" (%d %s)\n",
		len(plan.Entries), util.Pluralize(len(plan.Entries), "task", "tasks"))))

	for i, entry := range plan.Entries {
		marker := ""
		switch {
		case entry.Task.Local:
			marker = mutedStyle.Render(" [local]")
		case entry.Task.Once:
			marker = mutedStyle.Render(" [once]")
		}
		if entry.Task.IsHook() {
			marker += mutedStyle.Render(fmt.Sprintf(" [%s %s]", entry.Task.Role, entry.Task.HookTarget))
		}

		b.WriteString(fmt.Sprintf("  %s %s%s %s %s\n",
			mutedStyle.Render(fmt.Sprintf("%d.", i+1)),
			entry.Task.Name,
			marker,
			mutedStyle.Render("→"),
			infoStyle.Render(util.JoinOrNone(entry.Hosts))))
	}

	return b.String()
}
