package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvPort, EnvGinMode, EnvDevMode, EnvDataDir, EnvProxyURL, EnvDirectFetch,
		EnvFetchTimeout, EnvUserAgent, EnvRateLimit, EnvRateBurst,
		EnvLogLevel, EnvLogFormat, EnvLogFile,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.Fetch.Timeout)
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "metasight.yaml")
	content := `
port: "9090"
dev_mode: true
fetch:
  direct: true
  timeout: 5s
  user_agent: "custom/2.0"
rate_limit:
  requests_per_second: 10
  burst: 20
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.True(t, cfg.Fetch.Direct)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "custom/2.0", cfg.Fetch.UserAgent)
	assert.Equal(t, 10.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Equal(t, "json", cfg.Log.Format)
	// untouched keys keep their defaults
	assert.Equal(t, "data", cfg.DataDir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "metasight.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9090\"\n"), 0o644))

	t.Setenv(EnvPort, "7070")
	t.Setenv(EnvFetchTimeout, "30s")
	t.Setenv(EnvDirectFetch, "true")
	t.Setenv(EnvLogFile, "/tmp/metasight-test.log")
	t.Setenv(EnvDevMode, "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.True(t, cfg.Fetch.Direct)
	assert.True(t, cfg.Log.File.Enabled)
	assert.Equal(t, "/tmp/metasight-test.log", cfg.Log.File.Path)
	assert.True(t, cfg.DevMode)
}

func TestLoadInvalidEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvFetchTimeout, "soon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvFetchTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "default is valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = "abc" }, wantErr: "port"},
		{name: "port out of range", mutate: func(c *Config) { c.Port = "70000" }, wantErr: "port"},
		{name: "bad gin mode", mutate: func(c *Config) { c.GinMode = "prod" }, wantErr: "gin_mode"},
		{name: "zero timeout", mutate: func(c *Config) { c.Fetch.Timeout = 0 }, wantErr: "fetch.timeout"},
		{name: "no proxy", mutate: func(c *Config) { c.Fetch.ProxyURL = "" }, wantErr: "proxy_url"},
		{name: "no proxy but direct", mutate: func(c *Config) { c.Fetch.ProxyURL = ""; c.Fetch.Direct = true }},
		{name: "zero burst", mutate: func(c *Config) { c.RateLimit.Burst = 0 }, wantErr: "rate_limit"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
		{name: "file without path", mutate: func(c *Config) { c.Log.File.Enabled = true; c.Log.File.Path = "" }, wantErr: "log.file.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFetchOptions(t *testing.T) {
	cfg := Default()
	cfg.Fetch.Direct = true

	opts := cfg.FetchOptions()
	assert.True(t, opts.Direct)
	assert.Equal(t, cfg.Fetch.ProxyURL, opts.ProxyURL)
	assert.Equal(t, cfg.Fetch.Timeout, opts.Timeout)
}
