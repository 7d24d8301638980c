package doctor

import (
	"fmt"
	"strings"

	"github.com/convoy-sh/convoy/internal/config"
	"github.com/convoy-sh/convoy/internal/host"
	"github.com/convoy-sh/convoy/internal/util"
)

// TypoPair is one suspected near-duplicate key pair.
type TypoPair struct {
	A config.Entry
	B config.Entry
	// Scope names where the pair was found ("settings", or a host name).
	Scope string
}

// ScanOverlays compares every own key of a at index i against every own
// key of b at a strictly later index j. The j > i pairing is asymmetric
// and depends on each overlay's declaration order; it avoids reporting a
// pair twice and avoids self-comparison, at the cost of missing some
// pairs for unlucky declaration orders. Only pairs at edit distance
// exactly 1 are reported: distance 0 is a legitimate override, distance 2+
// is assumed intentional.
func ScanOverlays(a, b *config.Overlay) []TypoPair {
	aEntries := a.OwnEntries()
	bEntries := b.OwnEntries()

	var pairs []TypoPair
	for i, ae := range aEntries {
		for j := i + 1; j < len(bEntries); j++ {
			be := bEntries[j]
			if util.LevenshteinDistance(ae.Key, be.Key) == 1 {
				pairs = append(pairs, TypoPair{A: ae, B: be})
			}
		}
	}
	return pairs
}

// KeyTypoCheck scans settings keys for near-duplicates: the global
// settings against themselves, and each selected host's own settings
// against the global settings. Hosts are never compared to each other.
type KeyTypoCheck struct {
	Config *config.Config
	Hosts  []*host.Host
}

func (c *KeyTypoCheck) Name() string     { return "settings_key_typos" }
func (c *KeyTypoCheck) Category() string { return "CONFIG" }

func (c *KeyTypoCheck) Run() []CheckResult {
	var pairs []TypoPair

	global := c.Config.GlobalOverlay
	for _, p := range ScanOverlays(global, global) {
		p.Scope = "settings"
		pairs = append(pairs, p)
	}

	for _, h := range c.Hosts {
		for _, p := range ScanOverlays(h.Settings, global) {
			p.Scope = h.Name
			pairs = append(pairs, p)
		}
	}

	if len(pairs) == 0 {
		return []CheckResult{{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No near-duplicate settings keys",
		}}
	}

	results := make([]CheckResult, 0, len(pairs))
	for _, p := range pairs {
		results = append(results, CheckResult{
			Name:   c.Name(),
			Status: StatusWarn,
			Message: fmt.Sprintf("Keys %q and %q differ by one character (%s)",
				p.A.Key, p.B.Key, p.Scope),
			Suggestion: typoSuggestion(p),
		})
	}
	return results
}

func typoSuggestion(p TypoPair) string {
	var b strings.Builder
	b.WriteString("One of these is probably a typo.")
	if !p.A.Site.IsZero() {
		fmt.Fprintf(&b, "\n  %s defined at %s:%d", p.A.Key, p.A.Site.File, p.A.Site.Line)
	}
	if !p.B.Site.IsZero() {
		fmt.Fprintf(&b, "\n  %s defined at %s:%d", p.B.Key, p.B.Site.File, p.B.Site.Line)
	}
	return b.String()
}
