// Package cli implements the simplecmr command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/simplecmr/internal/config"
	"github.com/matzehuels/simplecmr/pkg/buildinfo"
	"github.com/matzehuels/simplecmr/pkg/cache"
	"github.com/matzehuels/simplecmr/pkg/integrations/cmr"
	"github.com/matzehuels/simplecmr/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "simplecmr"

// statusOut receives user-facing status lines. Results go to stdout.
var statusOut io.Writer = os.Stderr

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath  string
	metricsFile string
	cfg         *config.Config
	registry    *prometheus.Registry
	hooks       *runHooks
}

// runHooks records metrics, counts cache hits so commands can report
// whether a response was served from the cache, and forwards download
// completions to onFetch.
type runHooks struct {
	*observability.Prometheus
	hits    atomic.Int64
	fetched atomic.Int64
	onFetch func(done int64) // set only while no downloads run
}

func (h *runHooks) OnCacheHit(ctx context.Context, ns string) {
	h.hits.Add(1)
	h.Prometheus.OnCacheHit(ctx, ns)
}

func (h *runHooks) OnFetchComplete(ctx context.Context, rawURL string, n int64, d time.Duration, err error) {
	done := h.fetched.Add(1)
	h.Prometheus.OnFetchComplete(ctx, rawURL, n, d, err)
	if h.onFetch != nil {
		h.onFetch(done)
	}
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "simplecmr searches NASA's Common Metadata Repository",
		Long: `simplecmr searches NASA's Common Metadata Repository (CMR) for collections
and granules, prints or saves the results as JSON or CSV, and downloads granule
data files with Earthdata Login credentials.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.writeMetrics()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/simplecmr/config.toml)")
	root.PersistentFlags().StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(c.collectionsCommand())
	root.AddCommand(c.granulesCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads configuration, tags the logger with a run id and registers
// the metric hooks. It runs before every subcommand.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger, _ := runLogger(c.Logger)
	cmd.SetContext(withLogger(cmd.Context(), logger))

	c.registry = prometheus.NewRegistry()
	c.hooks = &runHooks{Prometheus: observability.NewPrometheus(c.registry)}
	observability.SetSearchHooks(c.hooks)
	observability.SetCacheHooks(c.hooks)
	observability.SetFetchHooks(c.hooks)

	logger.Debug("config loaded", "base_url", cfg.BaseURL, "cache", cfg.Cache.Backend)
	return nil
}

func (c *CLI) writeMetrics() error {
	if c.metricsFile == "" || c.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(c.metricsFile, c.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func (c *CLI) cacheHits() int64 {
	if c.hooks == nil {
		return 0
	}
	return c.hooks.hits.Load()
}

// watchFetches calls fn with the running count of finished downloads.
// Nil stops watching.
func (c *CLI) watchFetches(fn func(done int64)) {
	if c.hooks == nil {
		return
	}
	c.hooks.fetched.Store(0)
	c.hooks.onFetch = fn
}

// config returns the loaded configuration, or defaults before setup ran.
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		return config.Defaults()
	}
	return c.cfg
}

// =============================================================================
// Client Factory
// =============================================================================

// newClient creates a CMR client over the configured cache backend. An
// empty baseURL uses the configured one. The returned close function
// releases the cache.
func (c *CLI) newClient(ctx context.Context, baseURL string, noCache bool) (*cmr.Client, func() error, error) {
	cfg := c.config()
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}
	backend, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, nil, err
	}
	client := cmr.NewClient(backend, cfg.Cache.TTL,
		cmr.WithBaseURL(baseURL),
		cmr.WithKeyer(cache.NewScopedKeyer(nil, cacheScope(baseURL))),
		cmr.WithLogger(loggerFromContext(ctx)),
	)
	return client, backend.Close, nil
}

func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendMemory:
		return cache.NewMemoryCache(cfg.MemorySize, cfg.TTL), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, nil
	default:
		if cfg.Dir == "" {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		return fc, nil
	}
}

// cacheScope prefixes cache keys with the CMR host so that entries from
// different environments stay apart in a shared backend.
func cacheScope(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host + ":"
}

// cacheDir returns the file cache directory, $XDG_CACHE_HOME/simplecmr
// unless the config names another.
func (c *CLI) cacheDir() string {
	return c.config().Cache.Dir
}
