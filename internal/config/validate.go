package config

import (
	"fmt"

	"github.com/convoy-sh/convoy/internal/errors"
	"github.com/convoy-sh/convoy/internal/util"
)

// Validate checks the config for structural problems. It returns the first
// error found; advisory findings (like settings-key typos) are the doctor's
// job, not validation failures.
func (c *Config) Validate() error {
	if c.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Config version %d is newer than supported version %d", c.Version, CurrentConfigVersion),
			"Upgrade convoy to a release that supports this config version")
	}

	if c.Limit < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("limit must be >= 0, got %d", c.Limit),
			"Use 0 for unbounded concurrency")
	}

	seen := make(map[string]bool, len(c.Tasks))
	for _, t := range c.Tasks {
		if t.Name == "" {
			return errors.New(errors.ErrConfig,
				"Task with empty name",
				"Give every task a unique name")
		}
		if seen[t.Name] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Duplicate task name %q", t.Name),
				"Task names must be unique")
		}
		seen[t.Name] = true

		if err := c.validateTask(t); err != nil {
			return err
		}
	}

	// Hook targets must exist; a dangling before/after would silently
	// never run.
	for _, t := range c.Tasks {
		for _, target := range []string{t.Before, t.After} {
			if target == "" {
				continue
			}
			if !seen[target] {
				return errors.New(errors.ErrConfig,
					fmt.Sprintf("Task %q hooks onto unknown task %q", t.Name, target),
					c.suggestTask(target))
			}
		}
	}

	for cmd, taskNames := range c.Commands {
		if len(taskNames) == 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Command %q has no tasks", cmd),
				"List at least one task name under the command")
		}
		for _, name := range taskNames {
			if !seen[name] {
				return errors.New(errors.ErrConfig,
					fmt.Sprintf("Command %q references unknown task %q", cmd, name),
					c.suggestTask(name))
			}
		}
	}

	for cmd, name := range c.Recover {
		if !c.runnable(cmd) {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Recovery entry for unknown command %q", cmd),
				"Recovery keys must name a defined command or a non-hook task")
		}
		if !seen[name] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Recovery for command %q references unknown task %q", cmd, name),
				c.suggestTask(name))
		}
	}

	return nil
}

func (c *Config) validateTask(t TaskConfig) error {
	if t.Once && t.Local {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Task %q sets both once and local", t.Name),
			"Local tasks already run exactly once; drop the once flag")
	}
	if t.Local && len(t.Only) > 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Task %q is local but restricts hosts with only", t.Name),
			"Local tasks run without a host; remove the only list")
	}
	if len(t.Commands) == 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Task %q has no commands", t.Name),
			"List at least one shell command under the task")
	}
	if t.Before != "" && t.After != "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Task %q sets both before and after", t.Name),
			"A hook attaches to exactly one position; split it into two tasks")
	}
	return nil
}

// runnable reports whether name can be passed to `convoy run`: a defined
// command, or a non-hook task (bare task names run as one-task pipelines).
func (c *Config) runnable(name string) bool {
	if _, ok := c.Commands[name]; ok {
		return true
	}
	for _, t := range c.Tasks {
		if t.Name == name {
			return t.Before == "" && t.After == ""
		}
	}
	return false
}

// TaskNames returns all registered task names in registration order.
func (c *Config) TaskNames() []string {
	names := make([]string, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		names = append(names, t.Name)
	}
	return names
}

func (c *Config) suggestTask(name string) string {
	similar := util.SuggestSimilar(name, c.TaskNames())
	if len(similar) > 0 {
		return "Did you mean: " + util.JoinOrNone(similar)
	}
	return "Run 'convoy tasks' to list available tasks"
}
