// Package config loads simplecmr settings from TOML or YAML files and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/simplecmr/pkg/integrations/cmr"
)

const appName = "simplecmr"

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config is the root configuration.
type Config struct {
	BaseURL   string          `toml:"base_url" yaml:"base_url"`
	Cache     CacheConfig     `toml:"cache" yaml:"cache"`
	Earthdata EarthdataConfig `toml:"earthdata" yaml:"earthdata"`
	Fetch     FetchConfig     `toml:"fetch" yaml:"fetch"`
	Server    ServerConfig    `toml:"server" yaml:"server"`
}

// CacheConfig describes the search response cache.
type CacheConfig struct {
	Backend    string        `toml:"backend" yaml:"backend"`
	TTL        time.Duration `toml:"ttl" yaml:"ttl"`
	Dir        string        `toml:"dir" yaml:"dir"`
	RedisAddr  string        `toml:"redis_addr" yaml:"redis_addr"`
	MemorySize int           `toml:"memory_size" yaml:"memory_size"`
}

// EarthdataConfig holds download credentials.
type EarthdataConfig struct {
	Username string `toml:"username" yaml:"username"`
	Password string `toml:"password" yaml:"password"`
	AuthHost string `toml:"auth_host" yaml:"auth_host"`
}

// FetchConfig describes granule download defaults.
type FetchConfig struct {
	MaxWorkers int    `toml:"max_workers" yaml:"max_workers"`
	Dir        string `toml:"dir" yaml:"dir"`
}

// ServerConfig describes the HTTP proxy started by "serve".
type ServerConfig struct {
	Addr            string        `toml:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `toml:"allowed_origins" yaml:"allowed_origins"`
}

// Defaults returns a Config with default values.
func Defaults() *Config {
	return &Config{
		BaseURL: cmr.DefaultBaseURL,
		Cache: CacheConfig{
			Backend:    BackendFile,
			TTL:        cmr.DefaultTTL,
			Dir:        defaultCacheDir(),
			MemorySize: 512,
		},
		Earthdata: EarthdataConfig{
			AuthHost: cmr.DefaultAuthHost,
		},
		Fetch: FetchConfig{
			MaxWorkers: cmr.DefaultMaxWorkers,
			Dir:        ".",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/simplecmr/config.toml, falling back
// to ~/.config.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

func defaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", appName)
}

// Load reads the config file at path, applies environment overrides and
// validates the result. The format follows the extension: .yaml and .yml
// are YAML, anything else is TOML.
//
// An empty path loads DefaultPath if it exists and defaults otherwise.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = DefaultPath()
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		_, err = toml.Decode(string(data), cfg)
	}
	if err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	var errs []string

	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		errs = append(errs, "base_url must be an http(s) URL")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendMemory, BackendRedis, BackendNone:
	default:
		errs = append(errs, fmt.Sprintf("cache.backend %q must be one of file, memory, redis, none", c.Cache.Backend))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, "cache.ttl must not be negative")
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		errs = append(errs, "cache.redis_addr is required for the redis backend")
	}
	if c.Cache.Backend == BackendMemory && c.Cache.MemorySize < 1 {
		errs = append(errs, "cache.memory_size must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// applyEnvOverrides reads environment variables over file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SIMPLECMR_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("SIMPLECMR_CACHE"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("SIMPLECMR_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("EARTHDATA_USERNAME"); v != "" {
		cfg.Earthdata.Username = v
	}
	if v := os.Getenv("EARTHDATA_PASSWORD"); v != "" {
		cfg.Earthdata.Password = v
	}
	if v := os.Getenv("SIMPLECMR_MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Fetch.MaxWorkers = n
		}
	}
}
