// Package hosting builds and shares the hosting backends of a run.
//
// [Hosts] is the [forge.Opener] handed to the source locator and the
// changelog engine. It creates one backend per host on first use; all of them
// share the cache backend, the HTTP client and the retry policy, so that a
// rate limit seen by one worker blocks the others on the same host.
package hosting

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/archlog/pkg/cache"
	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/forge"
	"github.com/matzehuels/archlog/pkg/httputil"
	"github.com/matzehuels/archlog/pkg/integrations"
	"github.com/matzehuels/archlog/pkg/integrations/cgit"
	"github.com/matzehuels/archlog/pkg/integrations/github"
	"github.com/matzehuels/archlog/pkg/integrations/gitlab"
)

// Options configures the backends.
type Options struct {
	Cache       cache.Cache       // nil disables response caching
	TTL         time.Duration     // response cache TTL (default cache.TTLHTTP)
	HTTPClient  *http.Client      // nil uses integrations.NewHTTPClient
	Policy      *httputil.Policy  // nil uses httputil.NewPolicy with a fresh gate
	GitHubToken string            // github.com
	GitLabToken string            // gitlab.com
	Tokens      map[string]string // extra GitLab tokens by host
	PageSize    int               // 0 keeps integrations.DefaultPageSize
}

// Hosts is a lazily populated set of backends keyed by kind and base URL.
type Hosts struct {
	opts     Options
	mu       sync.Mutex
	backends map[string]forge.Backend
}

// New creates an empty set.
func New(opts Options) *Hosts {
	if opts.TTL <= 0 {
		opts.TTL = cache.TTLHTTP
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = integrations.NewHTTPClient()
	}
	if opts.Policy == nil {
		opts.Policy = httputil.NewPolicy(httputil.NewHostGate())
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	return &Hosts{opts: opts, backends: make(map[string]forge.Backend)}
}

// Open returns the backend for ref, creating it on first use.
func (h *Hosts) Open(ref forge.Ref) (forge.Backend, error) {
	if !ref.Resolved() {
		return nil, errs.New(errs.ErrCodeResolution, "reference is unresolved")
	}
	base := strings.TrimRight(ref.BaseURL, "/")
	key := string(ref.Kind) + "|" + base

	h.mu.Lock()
	defer h.mu.Unlock()
	if b, ok := h.backends[key]; ok {
		return b, nil
	}
	b, err := h.build(ref.Kind, base)
	if err != nil {
		return nil, err
	}
	h.backends[key] = b
	return b, nil
}

// Register installs b for kind and base, replacing any existing backend.
func (h *Hosts) Register(kind forge.Kind, base string, b forge.Backend) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.backends[string(kind)+"|"+strings.TrimRight(base, "/")] = b
}

// Len reports how many backends have been created.
func (h *Hosts) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.backends)
}

func (h *Hosts) build(kind forge.Kind, base string) (forge.Backend, error) {
	opts := []integrations.Option{
		integrations.WithHTTPClient(h.opts.HTTPClient),
		integrations.WithPolicy(h.opts.Policy),
	}
	switch kind {
	case forge.KindGitHub:
		if base != github.DefaultWebURL {
			return nil, errs.New(errs.ErrCodeUnsupported, "GitHub Enterprise is not supported: %s", base)
		}
		if h.opts.GitHubToken != "" {
			opts = append(opts, integrations.WithKeyer(scopedKeyer(h.opts.GitHubToken)))
		}
		c := github.NewClient(h.opts.Cache, h.opts.GitHubToken, h.opts.TTL, opts...)
		c.SetPageSize(h.opts.PageSize)
		return c, nil

	case forge.KindGitLab, forge.KindGitLabSelfHosted:
		token := h.opts.Tokens[integrations.Host(base)]
		if kind == forge.KindGitLab && token == "" {
			token = h.opts.GitLabToken
		}
		if token != "" {
			opts = append(opts, integrations.WithKeyer(scopedKeyer(token)))
		}
		c := gitlab.NewClient(h.opts.Cache, base, token, h.opts.TTL, opts...)
		c.SetPageSize(h.opts.PageSize)
		return c, nil

	case forge.KindCgit:
		return cgit.NewClient(h.opts.Cache, base, h.opts.TTL, opts...), nil
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "no backend for %s %s", kind, base)
}

// scopedKeyer keeps authenticated responses apart from anonymous ones.
func scopedKeyer(token string) cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), "auth:"+cache.Hash([]byte(token))[:12]+":")
}
