package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "localhost:8082", cfg.HTTPServer.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.ReadTimeout)
	assert.Equal(t, 5*time.Second, cfg.HTTPServer.ShutdownTimeout)
	assert.Equal(t, config.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, ":memory:", cfg.Storage.Path)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
env: prod
http_server:
  address: ":9090"
  read_timeout: 3s
storage:
  driver: sqlite
  path: students.db
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, ":9090", cfg.HTTPServer.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTPServer.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.WriteTimeout)
	assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "students.db", cfg.Storage.Path)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "env: dev\nhttp_server:\n  address: \":9090\"\n")
	t.Setenv("HTTP_SERVER_ADDR", ":7070")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPServer.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "does not exist")
	})

	t.Run("unknown env", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "env: qa\n"))
		assert.ErrorContains(t, err, "invalid config")
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "storage:\n  driver: postgres\n"))
		assert.ErrorContains(t, err, "invalid config")
	})
}
