package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/archlog/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITLAB_TOKEN", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.Workers != def.Workers || cfg.FuzzyCutoff != 70 || cfg.PackageTimeout.Duration != 2*time.Minute {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
	if strings.Join(cfg.Repositories, ",") != "core,extra,multilib" {
		t.Errorf("Repositories = %v", cfg.Repositories)
	}
	if !strings.HasSuffix(cfg.ChangelogDir, filepath.Join("archlog", "changelog")) {
		t.Errorf("ChangelogDir = %s", cfg.ChangelogDir)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITLAB_TOKEN", "")
	path := writeConfig(t, `
repositories = ["core-testing", "extra-testing"]
workers = 8
package_timeout = "90s"
fuzzy_cutoff = 80
github_token = "from-file"
cache_ttl = "1h"
redis_url = "redis://localhost:6379/0"

[tokens]
"gitlab.gnome.org" = "gnome"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 8 || cfg.FuzzyCutoff != 80 || cfg.PackageTimeout.Duration != 90*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.CacheTTL.Duration != time.Hour || cfg.RedisURL == "" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Tokens["gitlab.gnome.org"] != "gnome" || cfg.GitHubToken != "from-file" {
		t.Errorf("tokens = %v %q", cfg.Tokens, cfg.GitHubToken)
	}
	if cfg.RetryAttempts != Default().RetryAttempts {
		t.Errorf("unset key should keep its default, got %d", cfg.RetryAttempts)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "from-env")
	t.Setenv("GITLAB_TOKEN", "lab-env")
	cfg, err := Load(writeConfig(t, `github_token = "from-file"`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GitHubToken != "from-env" || cfg.GitLabToken != "lab-env" {
		t.Errorf("tokens = %q %q", cfg.GitHubToken, cfg.GitLabToken)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `workers = `},
		{"unknown key", `wrokers = 3`},
		{"bad duration", `package_timeout = "soon"`},
		{"zero workers", `workers = 0`},
		{"cutoff too high", `fuzzy_cutoff = 101`},
		{"cutoff zero", `fuzzy_cutoff = 0`},
		{"no repositories", `repositories = []`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errs.Is(err, errs.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join("/tmp/xdg", "archlog", "config.toml") {
		t.Errorf("Path = %s", p)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	p, _ = Path()
	home, _ := os.UserHomeDir()
	if p != filepath.Join(home, ".config", "archlog", "config.toml") {
		t.Errorf("Path = %s", p)
	}
}

func TestStringMasksTokens(t *testing.T) {
	cfg := Default()
	cfg.GitHubToken = "ghp_secret"
	cfg.Tokens = map[string]string{"gitlab.gnome.org": "glpat_secret"}
	s := cfg.String()
	if strings.Contains(s, "secret") {
		t.Errorf("String leaks a token:\n%s", s)
	}
	if !strings.Contains(s, `package_timeout = "2m0s"`) {
		t.Errorf("String = \n%s", s)
	}
}
