package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlayGetFallsBackToParent(t *testing.T) {
	global := NewOverlay(nil)
	global.Set("deploy_path", "/srv/app", Site{})
	global.Set("restart_cmd", "systemctl restart app", Site{})

	host := NewOverlay(global)
	host.Set("deploy_path", "/opt/app", Site{})

	v, ok := host.Get("deploy_path")
	assert.True(t, ok)
	assert.Equal(t, "/opt/app", v)

	v, ok = host.Get("restart_cmd")
	assert.True(t, ok)
	assert.Equal(t, "systemctl restart app", v)

	_, ok = host.Get("missing")
	assert.False(t, ok)
}

func TestOverlayOwnEntriesExcludesInherited(t *testing.T) {
	global := NewOverlay(nil)
	global.Set("a", "1", Site{})

	host := NewOverlay(global)
	host.Set("b", "2", Site{})
	host.Set("c", "3", Site{})

	entries := host.OwnEntries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Key)
	assert.Equal(t, "c", entries[1].Key)
}

func TestOverlaySetKeepsPositionOnOverwrite(t *testing.T) {
	o := NewOverlay(nil)
	o.Set("first", "1", Site{Line: 1})
	o.Set("second", "2", Site{Line: 2})
	o.Set("first", "updated", Site{Line: 9})

	entries := o.OwnEntries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Key)
	assert.Equal(t, "updated", entries[0].Value)
	assert.Equal(t, 9, entries[0].Site.Line)
	assert.Equal(t, "second", entries[1].Key)
}

func TestOverlayNilSafe(t *testing.T) {
	var o *Overlay
	_, ok := o.Get("anything")
	assert.False(t, ok)
	assert.Nil(t, o.OwnEntries())
	assert.Equal(t, 0, o.Len())
	assert.Nil(t, o.Parent())
}
