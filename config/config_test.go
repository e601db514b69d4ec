package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 114, cfg.Width)
	assert.Equal(t, 64, cfg.Height)
	assert.Equal(t, 20, cfg.FPS)
	assert.Equal(t, "concrete.db", cfg.DB)
	assert.Equal(t, "nearest", cfg.Scale)
	assert.False(t, cfg.Flip)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, File), []byte("width: 32\nheight: 16\nflip: true\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 16, cfg.Height)
	assert.Equal(t, 20, cfg.FPS)
	assert.True(t, cfg.Flip)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("CONCRETE_FPS", "10")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.FPS)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, File), []byte("width: -1\n"), 0o644))

	_, err := Load(dir)
	assert.ErrorIs(t, err, errInvalid)
}

func TestDump(t *testing.T) {
	cfg := Config{Width: 114, Height: 64, FPS: 20, DB: "x.db", Processed: "out", Scale: "bilinear"}

	var b bytes.Buffer
	require.NoError(t, Dump(&b, cfg))

	var got Config
	require.NoError(t, yaml.Unmarshal(b.Bytes(), &got))
	assert.Equal(t, cfg, got)
	assert.Contains(t, b.String(), "width: 114")
}
