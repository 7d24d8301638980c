package runner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/convoy-sh/convoy/internal/host"
)

// buildCommand assembles the shell line for one task command on a host:
// exported settings, cd to the host's working directory, then the command,
// joined with && so any part failing fails the whole line.
func buildCommand(cmd string, h *host.Host) string {
	var parts []string

	if h != nil && h.Dir != "" {
		parts = append(parts, fmt.Sprintf("cd %s", shellQuote(h.Dir)))
	}

	prefix := ""
	if h != nil {
		prefix = envPrefix(h.Settings.Resolved())
	}
	parts = append(parts, prefix+cmd)

	return strings.Join(parts, " && ")
}

// envPrefix renders settings as shell exports so task commands can read
// them as environment variables. Keys are sorted for deterministic lines.
func envPrefix(settings map[string]string) string {
	if len(settings) == 0 {
		return ""
	}
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "export %s=%s; ", strings.ToUpper(k), shellQuote(settings[k]))
	}
	return b.String()
}

// shellQuote wraps s in single quotes, escaping embedded single quotes so
// the value survives the remote shell verbatim.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
