package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FLUX_API_URL", "")
	return home
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	setHome(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/api", cfg.APIURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.NoPersist)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	setHome(t)

	cfg := Default()
	cfg.APIURL = "https://crm.example.com/api"
	cfg.LogLevel = "debug"
	cfg.NoPersist = true
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFillsMissingFields(t *testing.T) {
	home := setHome(t)

	dir := filepath.Join(home, ".flux")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("log_level: warn\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "http://localhost:3000/api", cfg.APIURL)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadEnvOverride(t *testing.T) {
	setHome(t)
	t.Setenv("FLUX_API_URL", "http://staging.example.com/api")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://staging.example.com/api", cfg.APIURL)
}

func TestLoadMalformedFile(t *testing.T) {
	home := setHome(t)

	dir := filepath.Join(home, ".flux")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("api_url: [not a scalar\n"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, Set(&cfg, "api_url", "http://other.example.com/api"))
	require.NoError(t, Set(&cfg, "no_persist", "true"))

	got, err := Get(cfg, "api_url")
	require.NoError(t, err)
	assert.Equal(t, "http://other.example.com/api", got)

	got, err = Get(cfg, "no_persist")
	require.NoError(t, err)
	assert.Equal(t, "true", got)

	_, err = Get(cfg, "bogus")
	assert.Error(t, err)
	assert.Error(t, Set(&cfg, "bogus", "x"))
}

func TestPathUnderHome(t *testing.T) {
	home := setHome(t)

	path, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".flux", "config.yaml"), path)
}
