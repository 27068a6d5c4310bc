package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NotNil(t, cfg.Backends[BackendSvelte])
	require.NotNil(t, cfg.Backends[BackendTypeScript])
	assert.Equal(t, "svelteserver", cfg.Backends[BackendSvelte].Command)
	assert.Equal(t, "typescript-language-server", cfg.Backends[BackendTypeScript].Command)
}

func TestLoadConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	original := GetDefaultConfig()
	original.Backends[BackendTypeScript].InitializationOptions = map[string]interface{}{
		"plugins": []interface{}{map[string]interface{}{"name": "typescript-svelte-plugin"}},
	}
	require.NoError(t, SaveConfig(original, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, original.Backends[BackendSvelte].Command, loaded.Backends[BackendSvelte].Command)
	assert.NotNil(t, loaded.Backends[BackendTypeScript].InitializationOptions)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		yaml string
	}{
		{"no backends", "backends:\n"},
		{"missing typescript", "backends:\n  svelte:\n    command: svelteserver\n"},
		{"empty command", "backends:\n  svelte:\n    command: svelteserver\n  typescript:\n    command: \"\"\n"},
		{"not yaml", "{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}
