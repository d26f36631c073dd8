package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes the config to the user's config directory so the viewer
// comes back up with the same window and model transform next run.
func (c *Config) Save() error {
	return c.SaveTo(filepath.Join(ConfigDir(), configFileName))
}

// SaveTo writes the config to a specific path, creating the parent
// directory when needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
