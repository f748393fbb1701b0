package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes the config to the user's config directory and returns the path.
func (c *Config) Save() (string, error) {
	path := DefaultPath()
	return path, c.SaveTo(path)
}

// DefaultPath returns the config file location inside ConfigDir.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// SaveTo writes the config to a specific path.
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
