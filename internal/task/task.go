// Package task holds the task registry and the resolver that turns a
// command into the ordered list of tasks a run will execute.
package task

import (
	"fmt"

	"github.com/convoy-sh/convoy/internal/config"
	"github.com/convoy-sh/convoy/internal/errors"
	"github.com/convoy-sh/convoy/internal/host"
	"github.com/convoy-sh/convoy/internal/util"
)

// Role classifies a task's position in a pipeline.
type Role int

const (
	RolePrimary Role = iota
	RoleBefore
	RoleAfter
)

func (r Role) String() string {
	switch r {
	case RoleBefore:
		return "before"
	case RoleAfter:
		return "after"
	default:
		return "primary"
	}
}

// Task is a named, immutable unit of work. Registered once at startup from
// config and referenced by name for the rest of the process.
type Task struct {
	Name        string
	Description string
	Commands    []string
	Only        []string
	Once        bool
	Local       bool
	Hidden      bool

	// Role and HookTarget describe hook placement: a RoleBefore task runs
	// immediately before HookTarget, a RoleAfter task immediately after.
	Role       Role
	HookTarget string
}

// IsHook reports whether the task is a before or after hook.
func (t *Task) IsHook() bool {
	return t.Role != RolePrimary
}

// ApplicableHosts returns the hosts from the selection this task applies
// to, preserving selection order. An empty Only list means every host
// applies. Local tasks have no host context and always return nil.
func (t *Task) ApplicableHosts(hosts []*host.Host) []*host.Host {
	if t.Local {
		return nil
	}
	if len(t.Only) == 0 {
		return hosts
	}
	var out []*host.Host
	for _, h := range hosts {
		for _, token := range t.Only {
			if h.Matches(token) {
				out = append(out, h)
				break
			}
		}
	}
	return out
}

// Registry is the immutable set of registered tasks and command pipelines,
// built once from config at startup.
type Registry struct {
	tasks    []*Task
	byName   map[string]*Task
	commands map[string][]string
}

// NewRegistry builds a registry from validated config. Registration order
// follows the config's task list, which fixes hook interleaving positions.
func NewRegistry(cfg *config.Config) (*Registry, error) {
	r := &Registry{
		byName:   make(map[string]*Task, len(cfg.Tasks)),
		commands: make(map[string][]string, len(cfg.Commands)),
	}

	for _, tc := range cfg.Tasks {
		t := &Task{
			Name:        tc.Name,
			Description: tc.Description,
			Commands:    tc.Commands,
			Only:        tc.Only,
			Once:        tc.Once,
			Local:       tc.Local,
			Hidden:      tc.Hidden,
		}
		switch {
		case tc.Before != "":
			t.Role = RoleBefore
			t.HookTarget = tc.Before
		case tc.After != "":
			t.Role = RoleAfter
			t.HookTarget = tc.After
		}
		if _, dup := r.byName[t.Name]; dup {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Duplicate task name %q", t.Name),
				"Task names must be unique")
		}
		r.tasks = append(r.tasks, t)
		r.byName[t.Name] = t
	}

	for cmd, names := range cfg.Commands {
		r.commands[cmd] = names
	}

	return r, nil
}

// Get returns the task registered under name.
func (r *Registry) Get(name string) (*Task, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Has reports whether name is registered anywhere in the registry.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Names returns every registered task name in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tasks))
	for _, t := range r.tasks {
		names = append(names, t.Name)
	}
	return names
}

// All returns every registered task in registration order.
func (r *Registry) All() []*Task {
	out := make([]*Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// Visible returns non-hidden tasks in registration order, for listings.
func (r *Registry) Visible() []*Task {
	var out []*Task
	for _, t := range r.tasks {
		if !t.Hidden {
			out = append(out, t)
		}
	}
	return out
}

// CommandNames returns the names of all defined commands.
func (r *Registry) CommandNames() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	return names
}

// Pipeline expands a command into its fully-ordered task sequence: for each
// primary task, its before-hooks (registration order), then the task, then
// its after-hooks. A bare task name that is not a command expands to a
// single-task pipeline with that task's hooks.
func (r *Registry) Pipeline(command string) ([]*Task, error) {
	names, ok := r.commands[command]
	if !ok {
		if t, found := r.byName[command]; found && !t.IsHook() {
			names = []string{t.Name}
		} else {
			candidates := append(r.CommandNames(), r.Names()...)
			return nil, errors.New(errors.ErrTask,
				fmt.Sprintf("Unknown command or task %q", command),
				suggest(command, candidates))
		}
	}

	var pipeline []*Task
	for _, name := range names {
		primary := r.byName[name]
		pipeline = append(pipeline, r.hooksFor(name, RoleBefore)...)
		pipeline = append(pipeline, primary)
		pipeline = append(pipeline, r.hooksFor(name, RoleAfter)...)
	}
	return pipeline, nil
}

func (r *Registry) hooksFor(target string, role Role) []*Task {
	var hooks []*Task
	for _, t := range r.tasks {
		if t.Role == role && t.HookTarget == target {
			hooks = append(hooks, t)
		}
	}
	return hooks
}

func suggest(input string, candidates []string) string {
	similar := util.SuggestSimilar(input, candidates)
	if len(similar) > 0 {
		return "Did you mean: " + util.JoinOrNone(similar)
	}
	return "Run 'convoy tasks' to list available tasks"
}
