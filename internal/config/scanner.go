package config

import (
	"fmt"

	"github.com/convoy-sh/convoy/internal/errors"
	"gopkg.in/yaml.v3"
)

// attachOverlays walks the raw YAML document and rebuilds the settings
// overlays with declaration order and line numbers preserved. viper's
// Unmarshal already populated the flat Settings maps; this pass only adds
// the ordered, sited view.
func attachOverlays(cfg *Config, raw []byte, path string) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to parse config file",
			"Check the YAML syntax in "+path)
	}

	root := documentRoot(&doc)
	if root == nil {
		cfg.BuildOverlays()
		return nil
	}

	global := NewOverlay(nil)
	if node := mappingValue(root, "settings"); node != nil {
		if err := scanSettings(global, node, path); err != nil {
			return err
		}
	}
	cfg.GlobalOverlay = global

	cfg.HostOverlays = make(map[string]*Overlay, len(cfg.Hosts))
	if hostsNode := mappingValue(root, "hosts"); hostsNode != nil && hostsNode.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(hostsNode.Content); i += 2 {
			name := hostsNode.Content[i].Value
			overlay := NewOverlay(global)
			if node := mappingValue(hostsNode.Content[i+1], "settings"); node != nil {
				if err := scanSettings(overlay, node, path); err != nil {
					return err
				}
			}
			cfg.HostOverlays[name] = overlay
		}
	}

	// Hosts that omit a settings block still get an empty overlay so the
	// typo scan iterates every host uniformly.
	for name := range cfg.Hosts {
		if _, ok := cfg.HostOverlays[name]; !ok {
			cfg.HostOverlays[name] = NewOverlay(global)
		}
	}

	return nil
}

// scanSettings copies a settings mapping node into an overlay, keeping
// document order and recording each key's line.
func scanSettings(overlay *Overlay, node *yaml.Node, path string) error {
	if node.Kind != yaml.MappingNode {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("settings must be a mapping (line %d)", node.Line),
			"Write settings as 'key: value' pairs")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]
		overlay.Set(keyNode.Value, valNode.Value, Site{File: path, Line: keyNode.Line})
	}
	return nil
}

// documentRoot unwraps the document node to its top-level mapping.
func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	return doc
}

// mappingValue returns the value node for key in a mapping, or nil.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
