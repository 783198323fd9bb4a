package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8188", cfg.Listen)
	assert.True(t, filepath.IsAbs(cfg.UserDirectory))
	assert.Equal(t, "user", filepath.Base(cfg.UserDirectory))
	assert.False(t, cfg.MultiUser)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Empty(t, cfg.ConfigFile)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "userdata.yaml")
	content := `
listen: ":9000"
user_directory: ` + filepath.Join(dir, "data") + `
multi_user: true
environment: production
allowed_origins:
  - https://app.example.com
shutdown_timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.UserDirectory)
	assert.True(t, cfg.MultiUser)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://app.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("USERDATA_MULTI_USER", "true")
	t.Setenv("USERDATA_USER_DIRECTORY", dir)
	t.Setenv("USERDATA_ALLOWED_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.True(t, cfg.MultiUser)
	assert.Equal(t, dir, cfg.UserDirectory)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsEmptyListen(t *testing.T) {
	v := viper.New()
	v.Set(KeyListen, "  ")
	_, err := Load(v, "")
	assert.Error(t, err)
}
