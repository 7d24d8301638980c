package host

import (
	"testing"

	"github.com/convoy-sh/convoy/internal/config"
	"github.com/convoy-sh/convoy/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Settings["deploy_path"] = "/srv/app"
	cfg.Hosts = map[string]config.HostConfig{
		"web2": {SSH: []string{"web2.example.com"}, Tags: []string{"web"}},
		"web1": {SSH: []string{"web1.example.com"}, Tags: []string{"web"}},
		"db1":  {SSH: []string{"db1.example.com"}, Tags: []string{"db"}},
	}
	cfg.BuildOverlays()
	return cfg
}

func hostNames(hosts []*Host) []string {
	names := make([]string, 0, len(hosts))
	for _, h := range hosts {
		names = append(names, h.Name)
	}
	return names
}

func TestSelectAllSorted(t *testing.T) {
	hosts, err := Select(testConfig(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"db1", "web1", "web2"}, hostNames(hosts))
}

func TestSelectByName(t *testing.T) {
	hosts, err := Select(testConfig(), []string{"web1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"web1"}, hostNames(hosts))
}

func TestSelectByTag(t *testing.T) {
	hosts, err := Select(testConfig(), nil, []string{"web"})
	require.NoError(t, err)
	assert.Equal(t, []string{"web1", "web2"}, hostNames(hosts))
}

func TestSelectNameAndTagUnion(t *testing.T) {
	hosts, err := Select(testConfig(), []string{"db1"}, []string{"web"})
	require.NoError(t, err)
	assert.Equal(t, []string{"db1", "web1", "web2"}, hostNames(hosts))
}

func TestSelectNoMatch(t *testing.T) {
	_, err := Select(testConfig(), []string{"ghost"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSelect))
}

func TestSelectNoHostsConfigured(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BuildOverlays()
	_, err := Select(cfg, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSelect))
}

func TestSelectDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		hosts, err := Select(testConfig(), nil, []string{"web"})
		require.NoError(t, err)
		assert.Equal(t, []string{"web1", "web2"}, hostNames(hosts))
	}
}

func TestApplyOverrides(t *testing.T) {
	hosts, err := Select(testConfig(), nil, []string{"web"})
	require.NoError(t, err)

	err = ApplyOverrides(hosts, []string{"deploy_path=/opt/app", "branch=main", "branch=release"})
	require.NoError(t, err)

	for _, h := range hosts {
		v, ok := h.Settings.Get("deploy_path")
		assert.True(t, ok)
		assert.Equal(t, "/opt/app", v)

		// Last write wins
		v, ok = h.Settings.Get("branch")
		assert.True(t, ok)
		assert.Equal(t, "release", v)
	}
}

func TestApplyOverridesInvalid(t *testing.T) {
	hosts, err := Select(testConfig(), nil, nil)
	require.NoError(t, err)

	assert.Error(t, ApplyOverrides(hosts, []string{"no-equals"}))
	assert.Error(t, ApplyOverrides(hosts, []string{"=value"}))
}
