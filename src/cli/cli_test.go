package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datstarkey/svelte-proxy-lsp/src/config"
)

func TestLoadConfigurationExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(config.GetDefaultConfig(), path))

	configPath = path
	defer func() { configPath = "" }()

	cfg, err := loadConfiguration()
	require.NoError(t, err)
	assert.Contains(t, cfg.Backends, config.BackendSvelte)
	assert.Contains(t, cfg.Backends, config.BackendTypeScript)
}

func TestLoadConfigurationExplicitPathMissing(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "nope.yaml")
	defer func() { configPath = "" }()

	_, err := loadConfiguration()
	assert.Error(t, err)
}

func TestLoadConfigurationFallsBackToDefaults(t *testing.T) {
	// Point HOME at an empty directory so no default config file is found.
	t.Setenv("HOME", t.TempDir())
	configPath = ""

	cfg, err := loadConfiguration()
	require.NoError(t, err)
	assert.Equal(t, "svelteserver", cfg.Backends[config.BackendSvelte].Command)
	assert.Equal(t, "typescript-language-server", cfg.Backends[config.BackendTypeScript].Command)
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0644))

	configPath = path
	configForce = false
	defer func() { configPath = "" }()

	err := runConfigInit(nil, nil)
	assert.Error(t, err)

	configForce = true
	defer func() { configForce = false }()
	require.NoError(t, runConfigInit(nil, nil))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Contains(t, cfg.Backends, config.BackendSvelte)
}
