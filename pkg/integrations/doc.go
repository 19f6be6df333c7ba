// Package integrations provides the shared HTTP client used by archlog's
// forge adapters.
//
// # Overview
//
// Each hosting backend has its own subpackage:
//
//   - [github]: GitHub REST API
//   - [gitlab]: GitLab REST API v4 (gitlab.com and self-hosted instances)
//   - [cgit]: cgit web frontends, scraped as HTML
//   - [archlinux]: archlinux.org package search (packaging metadata)
//
// # Shared Infrastructure
//
// [Client] wraps net/http with response caching through [cache.Cache] and
// one retry policy ([httputil.Policy]) that classifies every status:
// 5xx and connection errors are retried, rate-limit responses wait for their
// reset, and everything else is returned as a typed error.
//
// Adapters embed *Client:
//
//	type Client struct {
//	    *integrations.Client
//	    baseURL string
//	}
//
// [github]: github.com/matzehuels/archlog/pkg/integrations/github
// [gitlab]: github.com/matzehuels/archlog/pkg/integrations/gitlab
// [cgit]: github.com/matzehuels/archlog/pkg/integrations/cgit
// [archlinux]: github.com/matzehuels/archlog/pkg/integrations/archlinux
// [cache.Cache]: github.com/matzehuels/archlog/pkg/cache.Cache
// [httputil.Policy]: github.com/matzehuels/archlog/pkg/httputil.Policy
package integrations
