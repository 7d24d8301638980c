package host

import (
	"fmt"
	"strings"

	"github.com/convoy-sh/convoy/internal/config"
	"github.com/convoy-sh/convoy/internal/errors"
	"github.com/convoy-sh/convoy/internal/util"
)

// Select resolves the target host set from name and tag criteria. Empty
// criteria select every configured host. The result is unique by name and
// ordered deterministically (sorted by name), which also fixes the
// representative host chosen for once-tasks across runs.
func Select(cfg *config.Config, names, tags []string) ([]*Host, error) {
	all := All(cfg)

	if len(names) == 0 && len(tags) == 0 {
		if len(all) == 0 {
			return nil, errors.New(errors.ErrSelect,
				"No hosts configured",
				"Add hosts to the config file, or run 'convoy init'")
		}
		return all, nil
	}

	var selected []*Host
	for _, h := range all {
		if matchesAny(h, names) || matchesTags(h, tags) {
			selected = append(selected, h)
		}
	}

	if len(selected) == 0 {
		criteria := append(append([]string{}, names...), tags...)
		return nil, errors.New(errors.ErrSelect,
			"No hosts matched: "+util.JoinOrNone(criteria),
			"Check host names and tags with 'convoy hosts'")
	}

	return selected, nil
}

func matchesAny(h *Host, names []string) bool {
	for _, n := range names {
		if h.Name == n {
			return true
		}
	}
	return false
}

func matchesTags(h *Host, tags []string) bool {
	for _, t := range tags {
		if h.HasTag(t) {
			return true
		}
	}
	return false
}

// ApplyOverrides applies key=value overrides to every selected host's own
// settings overlay. Last write wins per key, and each override is applied
// identically to all hosts. Overrides happen before execution begins;
// overlays are read-only afterwards.
func ApplyOverrides(hosts []*Host, overrides []string) error {
	for _, raw := range overrides {
		key, value, ok := strings.Cut(raw, "=")
		if !ok || key == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Invalid override %q", raw),
				"Overrides must be key=value")
		}
		for _, h := range hosts {
			h.Settings.Set(key, value, config.Site{})
		}
	}
	return nil
}
