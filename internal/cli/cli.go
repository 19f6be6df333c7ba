// Package cli implements the archlog command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archlog/pkg/buildinfo"
	"github.com/matzehuels/archlog/pkg/cache"
	"github.com/matzehuels/archlog/pkg/changelog"
	"github.com/matzehuels/archlog/pkg/config"
	"github.com/matzehuels/archlog/pkg/hosting"
	"github.com/matzehuels/archlog/pkg/httputil"
	"github.com/matzehuels/archlog/pkg/integrations"
	"github.com/matzehuels/archlog/pkg/integrations/archlinux"
	"github.com/matzehuels/archlog/pkg/observability"
	"github.com/matzehuels/archlog/pkg/tags"
)

// appName is the application name used for directories and display.
const appName = "archlog"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the engine and HTTP
// hooks log every event.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		h := &logHooks{logger: c.Logger}
		observability.SetEngineHooks(h)
		observability.SetHTTPHooks(h)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "archlog shows what changed in your pending Arch Linux upgrades",
		Long: `archlog lists the packages checkupdates reports, finds their upstream
repositories and collects the packaging and upstream commits between the
installed and the available version of each one.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/archlog/config.toml)")

	root.AddCommand(c.changelogCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// =============================================================================
// Runtime
// =============================================================================

// runtime is the wiring shared by every run of a command: one cache, one set
// of hosting backends and one retry policy.
type runtime struct {
	cfg    config.Config
	cache  cache.Cache
	hosts  *hosting.Hosts
	lookup *archlinux.Client
	logger *log.Logger
}

func (c *CLI) newRuntime(ctx context.Context, cfg config.Config, noCache bool) (*runtime, error) {
	backend, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}

	policy := httputil.NewPolicy(httputil.NewHostGate())
	policy.Attempts = cfg.RetryAttempts
	httpClient := integrations.NewHTTPClient()

	hosts := hosting.New(hosting.Options{
		Cache:       backend,
		TTL:         cfg.CacheTTL.Duration,
		HTTPClient:  httpClient,
		Policy:      policy,
		GitHubToken: cfg.GitHubToken,
		GitLabToken: cfg.GitLabToken,
		Tokens:      cfg.Tokens,
		PageSize:    cfg.PageSize,
	})
	lookup := archlinux.NewClient(backend, cache.TTLMetadata,
		integrations.WithHTTPClient(httpClient), integrations.WithPolicy(policy))

	return &runtime{cfg: cfg, cache: backend, hosts: hosts, lookup: lookup, logger: c.Logger}, nil
}

// engine returns a fresh engine; its memo lives as long as the engine.
func (r *runtime) engine() *changelog.Engine {
	return changelog.NewEngine(r.hosts,
		changelog.WithLookup(r.lookup, r.cfg.Repositories),
		changelog.WithResolver(&tags.Resolver{Scorer: tags.Levenshtein, Cutoff: r.cfg.FuzzyCutoff}),
		changelog.WithTimeout(r.cfg.PackageTimeout.Duration),
		changelog.WithLogger(r.logger),
	)
}

func (r *runtime) Close() error {
	return r.cache.Close()
}

// newCache picks Redis when configured, the file cache otherwise.
func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		return cache.NewRedisCache(ctx, cfg.RedisURL, "")
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/archlog/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
