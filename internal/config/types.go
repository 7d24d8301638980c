package config

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .convoy.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Limit is the default concurrency bound for task execution across
	// hosts. 0 means unbounded (all applicable hosts at once).
	Limit int `yaml:"limit" mapstructure:"limit"`

	// Settings holds global configuration values available to every host.
	Settings map[string]string `yaml:"settings" mapstructure:"settings"`

	// Hosts maps host names to their connection settings.
	Hosts map[string]HostConfig `yaml:"hosts" mapstructure:"hosts"`

	// Tasks is the ordered task registry. Order matters: it defines hook
	// interleaving positions, so tasks are a list rather than a map.
	Tasks []TaskConfig `yaml:"tasks" mapstructure:"tasks"`

	// Commands maps a command name to its ordered sequence of primary
	// task names (e.g., deploy: [build, release]).
	Commands map[string][]string `yaml:"commands" mapstructure:"commands"`

	// Recover maps a command name to the task run after a hard failure
	// of that command. At most one entry per command; last wins.
	Recover map[string]string `yaml:"recover" mapstructure:"recover"`

	// GlobalOverlay is the ordered view of Settings with definition
	// sites, built by the loader's yaml pass. Not part of the schema.
	GlobalOverlay *Overlay `yaml:"-" mapstructure:"-"`

	// HostOverlays holds each host's own settings overlay, parented to
	// GlobalOverlay. Not part of the schema.
	HostOverlays map[string]*Overlay `yaml:"-" mapstructure:"-"`
}

// HostConfig defines a deployment target and its connection settings.
type HostConfig struct {
	// SSH connection strings, tried in order until one succeeds.
	// Can be: hostname, user@hostname, or SSH config alias.
	SSH []string `yaml:"ssh" mapstructure:"ssh"`

	// Dir is the working directory on the remote where task commands run.
	// Supports variable expansion: ${PROJECT}, ${USER}, ${HOME}.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Tags for host applicability filtering (task `only:` lists and the
	// --tag selection flag).
	Tags []string `yaml:"tags" mapstructure:"tags"`

	// Settings is this host's configuration overlay, layered over the
	// global settings.
	Settings map[string]string `yaml:"settings" mapstructure:"settings"`
}

// TaskConfig defines a named task in the registry.
type TaskConfig struct {
	// Name identifies the task. Unique across the registry.
	Name string `yaml:"name" mapstructure:"name"`

	// Description shown in `convoy tasks`.
	Description string `yaml:"description" mapstructure:"description"`

	// Commands are the ordered shell steps the task runs on each host.
	Commands []string `yaml:"commands" mapstructure:"commands"`

	// Only restricts the task to hosts matching any listed tag or name.
	// Empty means the task applies to every selected host.
	Only []string `yaml:"only" mapstructure:"only"`

	// Once makes the task run on exactly one representative host
	// (the first applicable in selection order) instead of all of them.
	Once bool `yaml:"once" mapstructure:"once"`

	// Local makes the task run on the operator machine, exactly once,
	// without any remote host context.
	Local bool `yaml:"local" mapstructure:"local"`

	// Hidden excludes the task from default listings. Hidden tasks can
	// still be scheduled (as hooks or recovery tasks).
	Hidden bool `yaml:"hidden" mapstructure:"hidden"`

	// Before names a task this one runs immediately before, as a hook.
	Before string `yaml:"before" mapstructure:"before"`

	// After names a task this one runs immediately after, as a hook.
	After string `yaml:"after" mapstructure:"after"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:      CurrentConfigVersion,
		Limit:        0,
		Settings:     make(map[string]string),
		Hosts:        make(map[string]HostConfig),
		Commands:     make(map[string][]string),
		Recover:      make(map[string]string),
		HostOverlays: make(map[string]*Overlay),
	}
}
