package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/convoy-sh/convoy/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".convoy.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/convoy"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'convoy init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	cfg, err := parseConfig(v, path)
	if err != nil {
		return nil, err
	}

	// Second pass over the raw YAML: viper flattens mappings and loses
	// both declaration order and line numbers, which the typo detector
	// needs for its ordered scan and source context.
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to re-read config file for settings scan",
			"Check file permissions on "+path)
	}
	if err := attachOverlays(cfg, raw, path); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .convoy.yaml in current directory
// 3. .convoy.yaml in parent directories (stops at git root or home)
// 4. ~/.config/convoy/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	// 1. Explicit path takes precedence
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	// 2. Current directory
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	// 3. Walk up to parent directories
	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		if home != "" && parent == home {
			// Don't go above home directory
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		// Stop at git root
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			break
		}
	}

	// 4. Global config
	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults if not found.
// This is useful for commands like 'convoy init' that should work without existing config.
func LoadOrDefault() (*Config, error) {
	path, err := Find("")
	if err != nil {
		return nil, err
	}

	if path == "" {
		cfg := DefaultConfig()
		cfg.BuildOverlays()
		return cfg, nil
	}

	return Load(path)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	// Expand variables in host directories
	for name, host := range cfg.Hosts {
		host.Dir = Expand(host.Dir)
		cfg.Hosts[name] = host
	}

	return cfg, nil
}

// BuildOverlays constructs GlobalOverlay and HostOverlays from the plain
// Settings maps when no YAML source is available (defaults, tests).
// Keys are sorted for a deterministic entry order; configs loaded from a
// file get document order and definition sites via attachOverlays instead.
func (c *Config) BuildOverlays() {
	global := NewOverlay(nil)
	for _, key := range sortedKeys(c.Settings) {
		global.Set(key, c.Settings[key], Site{})
	}
	c.GlobalOverlay = global

	c.HostOverlays = make(map[string]*Overlay, len(c.Hosts))
	for name, host := range c.Hosts {
		overlay := NewOverlay(global)
		for _, key := range sortedKeys(host.Settings) {
			overlay.Set(key, host.Settings[key], Site{})
		}
		c.HostOverlays[name] = overlay
	}
}

// HostOverlay returns the settings overlay for the named host, or an empty
// overlay parented to the global settings if the host defines none.
func (c *Config) HostOverlay(name string) *Overlay {
	if o, ok := c.HostOverlays[name]; ok {
		return o
	}
	return NewOverlay(c.GlobalOverlay)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
