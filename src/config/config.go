// Package config loads and validates proxy configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Backend identifiers used throughout the proxy.
const (
	BackendSvelte     = "svelte"
	BackendTypeScript = "typescript"
)

// Config contains backend language server configuration
type Config struct {
	Backends map[string]*ServerConfig `yaml:"backends"`
}

// ServerConfig contains configuration for a single backend language server
type ServerConfig struct {
	Command               string      `yaml:"command"`
	Args                  []string    `yaml:"args"`
	WorkingDir            string      `yaml:"working_dir,omitempty"`
	InitializationOptions interface{} `yaml:"initialization_options,omitempty"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validateConfig checks that both backends are configured with a command.
func validateConfig(config *Config) error {
	if config.Backends == nil {
		return fmt.Errorf("backends configuration is required")
	}

	for _, backend := range []string{BackendSvelte, BackendTypeScript} {
		serverConfig, ok := config.Backends[backend]
		if !ok {
			return fmt.Errorf("backend %s is required", backend)
		}
		if serverConfig.Command == "" {
			return fmt.Errorf("command is required for backend %s", backend)
		}
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".svelte-proxy-lsp", "config.yaml")
}

// GetDefaultConfig returns the default configuration for both backends
func GetDefaultConfig() *Config {
	return &Config{
		Backends: map[string]*ServerConfig{
			BackendSvelte: {
				Command: "svelteserver",
				Args:    []string{"--stdio"},
			},
			BackendTypeScript: {
				Command: "typescript-language-server",
				Args:    []string{"--stdio"},
			},
		},
	}
}
