// Package host resolves deployment targets from configuration and
// selection criteria.
package host

import (
	"sort"

	"github.com/convoy-sh/convoy/internal/config"
)

// Host is one resolved deployment target. Settings layers the host's own
// configuration over the global settings; overrides applied before a run
// become own values on this overlay.
type Host struct {
	Name     string
	SSH      []string
	Dir      string
	Tags     []string
	Settings *config.Overlay
}

// HasTag reports whether the host carries the given tag.
func (h *Host) HasTag(tag string) bool {
	for _, t := range h.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Matches reports whether the host matches a selector token, which may be
// either the host's name or one of its tags.
func (h *Host) Matches(token string) bool {
	return h.Name == token || h.HasTag(token)
}

// All returns every configured host in deterministic name order.
func All(cfg *config.Config) []*Host {
	names := make([]string, 0, len(cfg.Hosts))
	for name := range cfg.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)

	hosts := make([]*Host, 0, len(names))
	for _, name := range names {
		hc := cfg.Hosts[name]
		hosts = append(hosts, &Host{
			Name:     name,
			SSH:      hc.SSH,
			Dir:      hc.Dir,
			Tags:     hc.Tags,
			Settings: cfg.HostOverlay(name),
		})
	}
	return hosts
}
