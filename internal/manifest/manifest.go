// Package manifest models the info.yml metadata file found at the root
// of every realized bundle.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Setting describes one entry of a bundle's configuration schema.
type Setting struct {
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Default     any    `yaml:"default_value"`
	AllowsEmpty bool   `yaml:"allows_empty"`
}

// Manifest is the structured metadata for one bundle version. At
// minimum it carries the configuration schema; the remaining fields
// are descriptive.
type Manifest struct {
	DisplayName         string             `yaml:"display_name"`
	Description         string             `yaml:"description"`
	Configuration       map[string]Setting `yaml:"configuration"`
	RequiresCoreVersion string             `yaml:"requires_core_version"`
	SupportedEngines    []string           `yaml:"supported_engines"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}
