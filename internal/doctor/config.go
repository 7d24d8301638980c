package doctor

import (
	"fmt"
	"os"
	"strings"

	"github.com/convoy-sh/convoy/internal/config"
	"github.com/convoy-sh/convoy/pkg/sshutil"
)

// ConfigFileCheck verifies a config file exists and parses.
type ConfigFileCheck struct {
	Path string // explicit --config value, may be empty
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return "CONFIG" }

func (c *ConfigFileCheck) Run() []CheckResult {
	path, err := config.Find(c.Path)
	if err != nil {
		return []CheckResult{{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Cannot locate config file",
			Suggestion: err.Error(),
		}}
	}
	if path == "" {
		return []CheckResult{{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "No config file found",
			Suggestion: "Run 'convoy init' to create " + config.ConfigFileName,
		}}
	}
	if _, err := config.Load(path); err != nil {
		return []CheckResult{{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Config file found but failed to parse: " + path,
			Suggestion: err.Error(),
		}}
	}
	return []CheckResult{{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Config file: " + path,
	}}
}

// ConfigSchemaCheck validates the loaded config's structure.
type ConfigSchemaCheck struct {
	Config *config.Config
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return "CONFIG" }

func (c *ConfigSchemaCheck) Run() []CheckResult {
	if err := c.Config.Validate(); err != nil {
		return []CheckResult{{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Config validation failed",
			Suggestion: err.Error(),
		}}
	}
	return []CheckResult{{
		Name:   c.Name(),
		Status: StatusPass,
		Message: fmt.Sprintf("%d hosts, %d tasks, %d commands",
			len(c.Config.Hosts), len(c.Config.Tasks), len(c.Config.Commands)),
	}}
}

// HostTargetsCheck verifies every host has ssh candidates and flags
// aliases that resolve neither as a hostname nor via ~/.ssh/config.
type HostTargetsCheck struct {
	Config *config.Config
}

func (c *HostTargetsCheck) Name() string     { return "host_ssh_targets" }
func (c *HostTargetsCheck) Category() string { return "SSH" }

func (c *HostTargetsCheck) Run() []CheckResult {
	known := make(map[string]bool)
	if entries, err := sshutil.ParseSSHConfig(); err == nil {
		for _, e := range entries {
			known[e.Alias] = true
		}
	}

	var results []CheckResult
	for name, hc := range c.Config.Hosts {
		if len(hc.SSH) == 0 {
			results = append(results, CheckResult{
				Name:       c.Name(),
				Status:     StatusFail,
				Message:    fmt.Sprintf("Host %q has no ssh targets", name),
				Suggestion: "Add an ssh entry for the host",
			})
			continue
		}
		for _, candidate := range hc.SSH {
			if looksLikeAlias(candidate) && !known[candidate] {
				results = append(results, CheckResult{
					Name:       c.Name(),
					Status:     StatusWarn,
					Message:    fmt.Sprintf("Host %q uses alias %q not present in ~/.ssh/config", name, candidate),
					Suggestion: "Add the alias to ~/.ssh/config or use user@hostname",
				})
			}
		}
	}

	if len(results) == 0 {
		results = append(results, CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "All hosts have ssh targets",
		})
	}
	return results
}

// looksLikeAlias reports whether the candidate is a bare alias rather than
// a hostname, user@host, or host:port form.
func looksLikeAlias(candidate string) bool {
	return !strings.ContainsAny(candidate, "@.:")
}

// SSHAgentCheck verifies an SSH agent is reachable.
type SSHAgentCheck struct{}

func (c *SSHAgentCheck) Name() string     { return "ssh_agent" }
func (c *SSHAgentCheck) Category() string { return "SSH" }

func (c *SSHAgentCheck) Run() []CheckResult {
	if os.Getenv("SSH_AUTH_SOCK") == "" {
		return []CheckResult{{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No SSH agent detected",
			Suggestion: "Start one with: eval $(ssh-agent) && ssh-add",
		}}
	}
	return []CheckResult{{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "SSH agent socket present",
	}}
}
