package archlinux

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/archlog/pkg/cache"
	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/forge"
	"github.com/matzehuels/archlog/pkg/integrations"
)

const (
	// DefaultBaseURL is the archlinux.org web site serving the package search.
	DefaultBaseURL = "https://archlinux.org"
	// PackagingBaseURL hosts the packaging (PKGBUILD) repositories.
	PackagingBaseURL = "https://gitlab.archlinux.org"
	// PackagingGroup is the GitLab group holding one project per pkgbase.
	PackagingGroup = "archlinux/packaging/packages"
)

// DefaultRepositories are the stable official repositories.
var DefaultRepositories = []string{"core", "extra", "multilib"}

// Package is the packaging metadata of one binary package.
type Package struct {
	Name        string `json:"pkgname"`
	Base        string `json:"pkgbase"`
	Repo        string `json:"repo"`
	Arch        string `json:"arch"`
	Version     string `json:"pkgver"`
	Release     string `json:"pkgrel"`
	Epoch       int    `json:"epoch"`
	URL         string `json:"url"`
	Description string `json:"pkgdesc"`
}

// Client queries the archlinux.org package search.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a metadata client for archlinux.org.
func NewClient(backend cache.Cache, cacheTTL time.Duration, opts ...integrations.Option) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "archlinux:", cacheTTL, nil, opts...),
		baseURL: DefaultBaseURL,
	}
}

type searchResponse struct {
	Results []Package `json:"results"`
}

// Lookup returns the metadata of name restricted to the enabled repositories.
// A package present in several enabled repositories (typically a stable and a
// testing repository enabled together) is an AMBIGUOUS_SOURCE error.
func (c *Client) Lookup(ctx context.Context, name string, repositories []string) (*Package, error) {
	if err := errs.ValidatePackageName(name); err != nil {
		return nil, err
	}
	if len(repositories) == 0 {
		repositories = DefaultRepositories
	}

	var resp searchResponse
	err := c.Cached(ctx, "search:"+name, false, &resp, func() error {
		return c.Get(ctx, c.baseURL+"/packages/search/json/?name="+integrations.QueryEscape(name), &resp)
	})
	if err != nil {
		return nil, err
	}

	var matches []Package
	seenRepo := map[string]bool{}
	for _, p := range resp.Results {
		if p.Name != name || !slices.Contains(repositories, p.Repo) {
			continue
		}
		if !seenRepo[p.Repo] {
			seenRepo[p.Repo] = true
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return nil, errs.New(errs.ErrCodePackageNotFound, "%s not found in %s", name, strings.Join(repositories, ", "))
	case 1:
		p := matches[0]
		if p.Base == "" {
			p.Base = p.Name
		}
		return &p, nil
	default:
		repos := make([]string, 0, len(matches))
		for _, m := range matches {
			repos = append(repos, m.Repo)
		}
		return nil, errs.New(errs.ErrCodeAmbiguousSource,
			"%s is available in %s; enable either the stable or the testing repositories", name, strings.Join(repos, " and "))
	}
}

// FullVersion returns [epoch:]pkgver-pkgrel.
func (p *Package) FullVersion() string {
	v := p.Version + "-" + p.Release
	if p.Epoch > 0 {
		v = fmt.Sprintf("%d:%s", p.Epoch, v)
	}
	return v
}

var (
	plusBetweenWords = regexp.MustCompile(`([a-zA-Z0-9]+)\+([a-zA-Z]+)`)
	invalidPathChars = regexp.MustCompile(`[^a-zA-Z0-9_\-.]`)
	repeatedDashes   = regexp.MustCompile(`[_\-]{2,}`)
)

// ProjectName maps a pkgbase to its GitLab project name the way the Arch
// packaging tooling does: "dvd+rw-tools" → "dvd-rw-tools", "gtk2+" →
// "gtk2plus", "mysql++" → "mysqlplusplus", "tree" → "unix-tree".
func ProjectName(pkgbase string) string {
	if pkgbase == "tree" {
		return "unix-tree"
	}
	s := plusBetweenWords.ReplaceAllString(pkgbase, "$1-$2")
	s = strings.ReplaceAll(s, "+", "plus")
	s = invalidPathChars.ReplaceAllString(s, "-")
	return repeatedDashes.ReplaceAllString(s, "-")
}

// PackagingRef returns the packaging repository of pkgbase.
func PackagingRef(pkgbase string) forge.Ref {
	return forge.Ref{
		Kind:    forge.KindGitLabSelfHosted,
		BaseURL: PackagingBaseURL,
		Project: PackagingGroup + "/" + ProjectName(pkgbase),
	}
}
