package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/simplecmr/pkg/integrations/cmr"
)

// isolate points the default paths at an empty directory and clears the
// environment overrides.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)
	for _, k := range []string{
		"SIMPLECMR_BASE_URL", "SIMPLECMR_CACHE", "SIMPLECMR_CACHE_TTL", "SIMPLECMR_MAX_WORKERS",
		"REDIS_ADDR", "EARTHDATA_USERNAME", "EARTHDATA_PASSWORD",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, cmr.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, BackendFile, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_CACHE_HOME"), "simplecmr"), cfg.Cache.Dir)
	assert.Equal(t, cmr.DefaultMaxWorkers, cfg.Fetch.MaxWorkers)
	assert.Equal(t, cmr.DefaultAuthHost, cfg.Earthdata.AuthHost)
}

func TestLoad_toml(t *testing.T) {
	isolate(t)

	cfg, err := Load("testdata/valid.toml")
	require.NoError(t, err)
	assert.Equal(t, cmr.UATBaseURL, cfg.BaseURL)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 64, cfg.Cache.MemorySize)
	assert.Equal(t, "alice", cfg.Earthdata.Username)
	assert.Equal(t, "secret", cfg.Earthdata.Password)
	assert.Equal(t, 4, cfg.Fetch.MaxWorkers)
	assert.Equal(t, "/data/granules", cfg.Fetch.Dir)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"https://example.org"}, cfg.Server.AllowedOrigins)
	// Untouched keys keep their defaults.
	assert.Equal(t, cmr.DefaultAuthHost, cfg.Earthdata.AuthHost)
}

func TestLoad_yaml(t *testing.T) {
	isolate(t)

	cfg, err := Load("testdata/valid.yaml")
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, "bob", cfg.Earthdata.Username)
	assert.Equal(t, 3, cfg.Fetch.MaxWorkers)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_defaultPath(t *testing.T) {
	isolate(t)

	path := DefaultPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[fetch]\nmax_workers = 7\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Fetch.MaxWorkers)
}

func TestLoad_envOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("EARTHDATA_USERNAME", "env-user")
	t.Setenv("EARTHDATA_PASSWORD", "env-pass")
	t.Setenv("SIMPLECMR_CACHE", "none")
	t.Setenv("SIMPLECMR_BASE_URL", "http://localhost:3003")
	t.Setenv("SIMPLECMR_MAX_WORKERS", "5")

	cfg, err := Load("testdata/valid.toml")
	require.NoError(t, err)
	assert.Equal(t, "env-user", cfg.Earthdata.Username)
	assert.Equal(t, "env-pass", cfg.Earthdata.Password)
	assert.Equal(t, BackendNone, cfg.Cache.Backend)
	assert.Equal(t, "http://localhost:3003", cfg.BaseURL)
	assert.Equal(t, 5, cfg.Fetch.MaxWorkers)
}

func TestLoad_errors(t *testing.T) {
	isolate(t)

	_, err := Load("testdata/nonexistent.toml")
	assert.Error(t, err, "missing explicit file")

	_, err = Load("testdata/invalid.toml")
	assert.ErrorContains(t, err, "cache.backend")

	_, err = Load("testdata/malformed.yaml")
	assert.ErrorContains(t, err, "parsing")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Cache.Backend = BackendRedis
	assert.ErrorContains(t, cfg.Validate(), "redis_addr")

	cfg = Defaults()
	cfg.BaseURL = "ftp://cmr"
	assert.ErrorContains(t, cfg.Validate(), "base_url")

	assert.NoError(t, Defaults().Validate())
}
