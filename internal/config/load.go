package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// configFileName is the file Load searches for and Save writes back.
const configFileName = "config.yaml"

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./" + configFileName,
		filepath.Join(ConfigDir(), configFileName),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "NyaDeskPet")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "NyaDeskPet")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "nyadeskpet")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "nyadeskpet")
	}
}

// defaultCorePath returns the platform-specific Cubism core library name.
func defaultCorePath() string {
	switch runtime.GOOS {
	case "darwin":
		return "libLive2DCubismCore.dylib"
	case "windows":
		return "Live2DCubismCore.dll"
	default:
		return "libLive2DCubismCore.so"
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
