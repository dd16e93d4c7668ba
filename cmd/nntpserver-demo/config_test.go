package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJSONConfig(t *testing.T) {
	f, err := os.CreateTemp("", "nntpserver-*.json")
	require.NoError(t, err)
	defer os.Remove(f.Name())

	_, err = f.WriteString(`{
  "backend": "hn",
  "listen_address": "0.0.0.0:1190",
  "require_secure_auth": true,
  "max_line_length": 4096,
  "idle_timeout_seconds": 30,
  "log_level": "debug"
}`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg, err := LoadConfig(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "hn", cfg.Backend)
	assert.Equal(t, "0.0.0.0:1190", cfg.ListenAddress)
	assert.True(t, cfg.RequireSecureAuth)
	assert.Equal(t, 4096, cfg.MaxLineLength)
	assert.Equal(t, 30*1000*1000*1000, int(cfg.idleTimeout()))
}

func TestLoadEnvConfig(t *testing.T) {
	f, err := os.CreateTemp("", "nntpserver-*.env")
	require.NoError(t, err)
	defer os.Remove(f.Name())

	_, err = f.WriteString(`
# comment line
NNTPSERVER_BACKEND=static
NNTPSERVER_LISTEN_ADDRESS=127.0.0.1:9119
NNTPSERVER_REQUIRE_SECURE_AUTH=true
NNTPSERVER_MAX_LINE_LENGTH=8192
`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg, err := LoadConfig(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "static", cfg.Backend)
	assert.Equal(t, "127.0.0.1:9119", cfg.ListenAddress)
	assert.True(t, cfg.RequireSecureAuth)
	assert.Equal(t, 8192, cfg.MaxLineLength)
}

func TestLoadConfigErrorsOnMissingExplicitPath(t *testing.T) {
	t.Setenv("NNTPSERVER_CONFIG", "")
	cfg, err := LoadConfig("/nonexistent/path/that/should/not/exist.json")
	require.Error(t, err)
	_ = cfg
}

func TestDefaultConfigWhenNoPathGiven(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "static", cfg.Backend)
	assert.Equal(t, "127.0.0.1:1190", cfg.ListenAddress)
}
