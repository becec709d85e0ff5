package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PLANTEE_SYSTEM_WORKER_DIR", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PLANTEE_ASSISTANT_API_KEY", "")
	t.Setenv("PLANTEE_SYSTEM_ENV", "")

	cfg := LoadConfig("")

	assert.Equal(t, EnvProduction, cfg.System.Env)
	assert.False(t, cfg.IsDevelopment(), "error detail stays hidden unless development is set explicitly")

	assert.Equal(t, 5000, cfg.Web.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Web.CorsOrigin)
	assert.Equal(t, "10M", cfg.Web.BodyLimit)
	assert.True(t, cfg.Orders.CompensateOnFailure)
	assert.Empty(t, cfg.Assistant.APIKey)
	assert.DirExists(t, cfg.GetDataDir())
	assert.DirExists(t, cfg.GetLogDir())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "plantee.yml")
	content := []byte(`
system:
  workdir: ` + dir + `
  env: development
web:
  port: 8080
database:
  type: sqlite
orders:
  compensate_on_failure: false
`)
	require.NoError(t, os.WriteFile(cfile, content, 0o600))

	t.Setenv("PLANTEE_WEB_PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PLANTEE_ASSISTANT_API_KEY", "")

	cfg := LoadConfig(cfile)

	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.False(t, cfg.Orders.CompensateOnFailure)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "test-key", cfg.Assistant.APIKey)
	// untouched sections keep their defaults
	assert.Equal(t, "gemini-2.0-flash", cfg.Assistant.Model)
}

func TestDefaultIsACopy(t *testing.T) {
	cfg := Default()
	cfg.Web.Port = 1

	assert.Equal(t, 5000, DefaultAppConfig.Web.Port)
}
