package runner

import (
	"testing"

	"github.com/convoy-sh/convoy/internal/config"
	"github.com/convoy-sh/convoy/internal/host"
	"github.com/stretchr/testify/assert"
)

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/srv/app", "'/srv/app'"},
		{"path with spaces", "'path with spaces'"},
		{"it's", `'it'\''s'`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, shellQuote(tt.in))
	}
}

func TestBuildCommandWithDirAndSettings(t *testing.T) {
	overlay := config.NewOverlay(nil)
	overlay.Set("deploy_path", "/srv/app", config.Site{})
	overlay.Set("branch", "main", config.Site{})

	h := &host.Host{Name: "web1", Dir: "/srv/app", Settings: overlay}

	got := buildCommand("make release", h)
	assert.Equal(t,
		"cd '/srv/app' && export BRANCH='main'; export DEPLOY_PATH='/srv/app'; make release",
		got)
}

func TestBuildCommandNoDir(t *testing.T) {
	h := &host.Host{Name: "web1", Settings: config.NewOverlay(nil)}
	assert.Equal(t, "make release", buildCommand("make release", h))
}

func TestBuildCommandNilHost(t *testing.T) {
	assert.Equal(t, "make build", buildCommand("make build", nil))
}

func TestEnvPrefixIncludesInheritedSettings(t *testing.T) {
	global := config.NewOverlay(nil)
	global.Set("restart_cmd", "systemctl restart app", config.Site{})

	own := config.NewOverlay(global)
	own.Set("deploy_path", "/opt/app", config.Site{})

	prefix := envPrefix(own.Resolved())
	assert.Contains(t, prefix, "export DEPLOY_PATH='/opt/app';")
	assert.Contains(t, prefix, "export RESTART_CMD='systemctl restart app';")
}
