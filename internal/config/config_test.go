package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "stub", cfg.Refiner.Mode)
	assert.Equal(t, "memory", cfg.Limiter.Kind)
	assert.Equal(t, 200, cfg.Pipeline.DPI)
	assert.Equal(t, 5, cfg.Pipeline.Concurrency)
	assert.Equal(t, 2.0, cfg.Pipeline.RPS)
	assert.Equal(t, "1920x1080", cfg.Pipeline.Resolution)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
refiner:
  mode: gemini
  model: image-editor-2
pipeline:
  dpi: 300
  rps: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Refiner.Mode)
	assert.Equal(t, "image-editor-2", cfg.Refiner.Model)
	assert.Equal(t, 300, cfg.Pipeline.DPI)
	assert.Equal(t, 0.5, cfg.Pipeline.RPS)
	// Untouched fields keep their defaults.
	assert.Equal(t, 5, cfg.Pipeline.Concurrency)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("refiner:\n  mode: stub\n"), 0o644))

	t.Setenv("REFINER_MODE", "gemini")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("REFINE_CONCURRENCY", "9")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Refiner.Mode)
	assert.Equal(t, "test-key", cfg.Refiner.APIKey)
	assert.Equal(t, 9, cfg.Pipeline.Concurrency)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
