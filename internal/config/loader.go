package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the configuration file looked up in the current
	// directory.
	DefaultConfigFile = "dirmirror.yaml"

	// xdgConfigFile is the configuration file name inside XDGConfigDir.
	xdgConfigFile = "config.yaml"
)

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrConfigUnreadable is returned when the configuration file exists but
	// cannot be read.
	ErrConfigUnreadable = errors.New("configuration file unreadable")
)

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound. Other read
// failures wrap ErrConfigUnreadable.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrConfigUnreadable, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for dirmirror.yaml in the current directory
// 3. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := []string{DefaultConfigFile, filepath.Join(XDGConfigDir(), xdgConfigFile)}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Load resolves the configuration file and applies it onto c.
//
// An explicit path that does not exist or cannot be read is an error. When
// no path is given and no readable file is found, the defaults stay in
// place and an unreadable file is recorded in IgnoredConfigFile. A file that
// is read but cannot be parsed is always an error. It returns the path that
// was applied, or "" when none was.
func (c *Config) Load() (string, error) {
	explicit := c.ConfigFilePath != ""
	path := FindConfigFile(c.ConfigFilePath)

	if path == "" {
		if explicit {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, c.ConfigFilePath)
		}
		return "", nil
	}

	f, err := LoadConfigFile(path)
	if err != nil {
		if !explicit && errors.Is(err, ErrConfigUnreadable) {
			c.IgnoredConfigFile = path
			return "", nil
		}
		return "", fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	c.Apply(f)
	return path, nil
}
