package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
world:
  seed: 999
  chunk_radius: 6
camera:
  move_speed: 30
  fov: 80
trace_path: /tmp/trace.jsonl.zst
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(999), cfg.World.Seed)
	assert.Equal(t, 6, cfg.World.ChunkRadius)
	assert.Equal(t, float32(30), cfg.Camera.MoveSpeed)
	assert.Equal(t, "/tmp/trace.jsonl.zst", cfg.TracePath)
	// Untouched sections keep defaults.
	assert.Equal(t, Default().Window, cfg.Window)
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	path := writeConfig(t, "window: [not a mapping")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	for _, contents := range []string{
		"world:\n  chunk_radius: 0\n",
		"camera:\n  move_speed: -1\n",
		"camera:\n  fov: 5\n",
		"window:\n  width: 0\n",
	} {
		path := writeConfig(t, contents)
		_, err := Load(path)
		assert.Error(t, err, "config %q should be rejected", contents)
	}
}
