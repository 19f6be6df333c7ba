// Package config loads archlog's settings.
//
// Settings come from three layers, later ones winning: built-in defaults,
// the TOML file at [Path], and the GITHUB_TOKEN / GITLAB_TOKEN environment
// variables. Command-line flags are applied by the caller on top.
//
//	repositories = ["core", "extra", "multilib"]
//	workers = 8
//	package_timeout = "90s"
//	github_token = "ghp_..."
//
//	[tokens]
//	"gitlab.gnome.org" = "glpat-..."
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/archlog/pkg/cache"
	"github.com/matzehuels/archlog/pkg/changelog"
	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/httputil"
	"github.com/matzehuels/archlog/pkg/integrations/archlinux"
	"github.com/matzehuels/archlog/pkg/tags"
)

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Config holds every setting.
type Config struct {
	Repositories   []string          `toml:"repositories"`
	Workers        int               `toml:"workers"`
	PackageTimeout Duration          `toml:"package_timeout"`
	FuzzyCutoff    int               `toml:"fuzzy_cutoff"`
	PageSize       int               `toml:"page_size"`
	RetryAttempts  int               `toml:"retry_attempts"`
	GitHubToken    string            `toml:"github_token"`
	GitLabToken    string            `toml:"gitlab_token"`
	Tokens         map[string]string `toml:"tokens"` // per-host GitLab tokens
	ChangelogDir   string            `toml:"changelog_dir"`
	CacheTTL       Duration          `toml:"cache_ttl"`
	RedisURL       string            `toml:"redis_url"`
	MongoURI       string            `toml:"mongo_uri"`
	MongoDatabase  string            `toml:"mongo_database"`
}

// Duration is a time.Duration written as a string ("90s", "2m").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	dir := ""
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, "archlog", "changelog")
	}
	return Config{
		Repositories:   append([]string(nil), archlinux.DefaultRepositories...),
		Workers:        changelog.DefaultWorkers,
		PackageTimeout: Duration{changelog.DefaultTimeout},
		FuzzyCutoff:    tags.DefaultCutoff,
		RetryAttempts:  httputil.DefaultAttempts,
		ChangelogDir:   dir,
		CacheTTL:       Duration{cache.TTLHTTP},
	}
}

// Path returns $XDG_CONFIG_HOME/archlog/config.toml, falling back to
// ~/.config/archlog/config.toml.
func Path() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "archlog", FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "archlog", FileName), nil
}

// Load reads the file at path over the defaults and applies the environment.
// An empty path means [Path]. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "locate config file")
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	default:
		if undec := md.Undecoded(); len(undec) > 0 {
			return cfg, errs.New(errs.ErrCodeInvalidConfig, "%s: unknown key %q", path, undec[0].String())
		}
	}

	cfg.applyEnv(os.Getenv)
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("GITHUB_TOKEN"); v != "" {
		c.GitHubToken = v
	}
	if v := getenv("GITLAB_TOKEN"); v != "" {
		c.GitLabToken = v
	}
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Workers <= 0:
		return errs.New(errs.ErrCodeInvalidConfig, "workers must be positive, got %d", c.Workers)
	case c.FuzzyCutoff < 1 || c.FuzzyCutoff > 100:
		return errs.New(errs.ErrCodeInvalidConfig, "fuzzy_cutoff must be within 1-100, got %d", c.FuzzyCutoff)
	case c.PackageTimeout.Duration <= 0:
		return errs.New(errs.ErrCodeInvalidConfig, "package_timeout must be positive, got %s", c.PackageTimeout)
	case c.PageSize < 0 || c.PageSize > 100:
		return errs.New(errs.ErrCodeInvalidConfig, "page_size must be within 0-100, got %d", c.PageSize)
	case c.RetryAttempts < 1:
		return errs.New(errs.ErrCodeInvalidConfig, "retry_attempts must be at least 1, got %d", c.RetryAttempts)
	case len(c.Repositories) == 0:
		return errs.New(errs.ErrCodeInvalidConfig, "repositories must not be empty")
	}
	return nil
}

// String renders the config as TOML with tokens masked.
func (c Config) String() string {
	c.GitHubToken, c.GitLabToken = mask(c.GitHubToken), mask(c.GitLabToken)
	if len(c.Tokens) > 0 {
		masked := make(map[string]string, len(c.Tokens))
		for host, tok := range c.Tokens {
			masked[host] = mask(tok)
		}
		c.Tokens = masked
	}
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
