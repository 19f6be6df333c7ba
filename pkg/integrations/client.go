package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/archlog/pkg/cache"
	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/httputil"
	"github.com/matzehuels/archlog/pkg/observability"
)

// maxBodySize bounds every response body read by the client.
const maxBodySize = 16 << 20

// Client provides shared HTTP functionality for all forge adapters.
// It handles response caching, retry and rate-limit classification, and
// common request headers.
//
// All methods are safe for concurrent use.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
	policy    *httputil.Policy
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithPolicy sets the retry policy. Adapters of one run share a policy so
// they share its [httputil.HostGate].
func WithPolicy(p *httputil.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithKeyer sets the cache key scheme.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) { c.keyer = k }
}

// NewClient creates a Client that caches under namespace with ttl.
// Headers are applied to all requests; pass nil if none are needed.
// A nil backend disables caching.
func NewClient(backend cache.Cache, namespace string, ttl time.Duration, headers map[string]string, opts ...Option) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	c := &Client{
		http:      NewHTTPClient(),
		cache:     backend,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.policy == nil {
		c.policy = httputil.NewPolicy(nil)
	}
	return c
}

// Cached returns the value stored under key or executes fetch and caches the
// result. If refresh is true the cache is bypassed. fetch must populate v.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	k := c.keyer.HTTPKey(c.namespace, key)
	if !refresh {
		if err := cache.GetJSON(ctx, c.cache, "http", k, v); err == nil {
			return nil
		}
	}
	if err := fetch(); err != nil {
		return err
	}
	_ = cache.SetJSON(ctx, c.cache, "http", k, v, c.ttl)
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	return c.GetWithHeaders(ctx, rawURL, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with
// defaults. Request-specific headers override client defaults.
func (c *Client) GetWithHeaders(ctx context.Context, rawURL string, headers map[string]string, v any) error {
	_, err := c.do(ctx, http.MethodGet, rawURL, headers, func(body io.Reader) error {
		return json.NewDecoder(body).Decode(v)
	})
	return err
}

// GetPage performs a JSON GET and also returns the response headers, which
// carry pagination links such as GitLab's X-Next-Page.
func (c *Client) GetPage(ctx context.Context, rawURL string, v any) (http.Header, error) {
	return c.do(ctx, http.MethodGet, rawURL, nil, func(body io.Reader) error {
		return json.NewDecoder(body).Decode(v)
	})
}

// GetText performs an HTTP GET request and returns the body as a string.
func (c *Client) GetText(ctx context.Context, rawURL string) (string, error) {
	var text string
	_, err := c.do(ctx, http.MethodGet, rawURL, nil, func(body io.Reader) error {
		data, err := io.ReadAll(body)
		text = string(data)
		return err
	})
	return text, err
}

// Probe checks that rawURL answers with a success status. It sends HEAD and
// falls back to GET when the server rejects HEAD with 405.
func (c *Client) Probe(ctx context.Context, rawURL string) error {
	_, err := c.do(ctx, http.MethodHead, rawURL, nil, nil)
	if errors.Is(err, errMethodNotAllowed) {
		_, err = c.do(ctx, http.MethodGet, rawURL, nil, func(io.Reader) error { return nil })
	}
	return err
}

// do sends one logical request through the retry policy. read consumes the
// body inside the retried function so decode errors from truncated bodies are
// treated like transport failures.
func (c *Client) do(ctx context.Context, method, rawURL string, headers map[string]string, read func(io.Reader) error) (http.Header, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidURL, err, "parse %q", rawURL)
	}

	var respHeader http.Header
	err = c.policy.Do(ctx, u.Host, func() error {
		h, err := c.once(ctx, method, u, headers, read)
		respHeader = h
		return err
	})
	return respHeader, err
}

func (c *Client) once(ctx context.Context, method string, u *url.URL, headers map[string]string, read func(io.Reader) error) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, u.Host, u.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp, u.Host); err != nil {
		return resp.Header, err
	}
	if read == nil {
		return resp.Header, nil
	}
	if err := read(io.LimitReader(resp.Body, maxBodySize)); err != nil {
		return resp.Header, httputil.Retryable(fmt.Errorf("%w: read %s: %v", ErrNetwork, u.Redacted(), err))
	}
	return resp.Header, nil
}

var errMethodNotAllowed = errors.New("method not allowed")

// checkStatus classifies a response status:
//   - 2xx: success
//   - 401: UNAUTHORIZED
//   - 403/429 with rate-limit headers: [errs.RateLimitedError]
//   - 403: FORBIDDEN
//   - 404: [ErrNotFound]
//   - 5xx: retryable [ErrNetwork]
func checkStatus(resp *http.Response, host string) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return errs.New(errs.ErrCodeUnauthorized, "%s rejected the credentials", host)
	case code == http.StatusForbidden || code == http.StatusTooManyRequests:
		if reset, ok := httputil.ParseRateLimit(code, resp.Header, time.Now()); ok {
			return &errs.RateLimitedError{Host: host, ResetAt: reset}
		}
		return errs.New(errs.ErrCodeForbidden, "%s denied access (status %d)", host, code)
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusMethodNotAllowed:
		return errMethodNotAllowed
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
