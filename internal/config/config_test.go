package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "funnel.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "configs/scoring.yaml", cfg.Scoring.ConfigPath)
	assert.Equal(t, 8, cfg.Rescore.MaxConcurrent)
	assert.Equal(t, 50.0, cfg.Rescore.SavesPerSecond)
	assert.Equal(t, 30, cfg.Funnel.SummaryWindowDays)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FUNNEL_STORE_DRIVER", "postgres")
	t.Setenv("FUNNEL_STORE_DATABASE_URL", "postgres://localhost/funnel")
	t.Setenv("FUNNEL_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/funnel", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	raw := []byte("store:\n  driver: postgres\nrescore:\n  max_concurrent: 2\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), raw, 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 2, cfg.Rescore.MaxConcurrent)
	// Untouched keys keep their defaults.
	assert.Equal(t, 30, cfg.Funnel.SummaryWindowDays)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "loudest", Format: "json"})
	require.Error(t, err)
}
