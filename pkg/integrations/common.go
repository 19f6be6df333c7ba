package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const httpTimeout = 30 * time.Second

// DefaultPageSize is the number of items requested per page from paginated
// forge endpoints.
const DefaultPageSize = 100

var (
	// ErrNotFound is returned when a repository, tag or file doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for forge
// requests. Redirects are followed.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git@gitlab.com:", "https://gitlab.com/",
	"git://", "https://",
)

// NormalizeRepoURL converts various repository URL formats to canonical HTTPS
// form. It handles git@, git:// and git+ prefixes and removes .git suffixes
// and trailing slashes. Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	s = strings.TrimSuffix(s, "/")
	return strings.TrimSuffix(s, ".git")
}

// PathEscape percent-encodes s as a single path segment, including slashes.
// GitLab addresses projects this way ("group%2Fproject").
func PathEscape(s string) string { return url.PathEscape(s) }

// QueryEscape percent-encodes s for use in a query string.
func QueryEscape(s string) string { return url.QueryEscape(s) }

// Host returns the lowercased host of rawURL, or "" when it does not parse.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
