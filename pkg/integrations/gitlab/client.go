package gitlab

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/archlog/pkg/cache"
	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/forge"
	"github.com/matzehuels/archlog/pkg/integrations"
)

// DefaultBaseURL is gitlab.com.
const DefaultBaseURL = "https://gitlab.com"

// maxPages stops pagination on servers that never stop returning X-Next-Page.
const maxPages = 200

// Client is a [forge.Backend] for one GitLab instance.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL  string
	apiURL   string
	kind     forge.Kind
	pageSize int
}

// NewClient creates a GitLab API client for the instance at baseURL
// (scheme://host). An empty baseURL selects gitlab.com.
//
// Parameters:
//   - backend: Cache backend for HTTP response caching (nil disables caching)
//   - baseURL: Instance web root, e.g. https://gitlab.archlinux.org
//   - token: GitLab personal access token (empty string for unauthenticated)
//   - cacheTTL: How long responses are cached
func NewClient(backend cache.Cache, baseURL, token string, cacheTTL time.Duration, opts ...integrations.Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var headers map[string]string
	if token != "" {
		headers = map[string]string{"PRIVATE-TOKEN": token}
	}

	kind := forge.KindGitLabSelfHosted
	if integrations.Host(baseURL) == "gitlab.com" {
		kind = forge.KindGitLab
	}

	return &Client{
		Client:   integrations.NewClient(backend, "gitlab:"+integrations.Host(baseURL)+":", cacheTTL, headers, opts...),
		baseURL:  baseURL,
		apiURL:   baseURL + "/api/v4",
		kind:     kind,
		pageSize: integrations.DefaultPageSize,
	}
}

// SetPageSize overrides the per_page parameter (1-100).
func (c *Client) SetPageSize(n int) {
	if n > 0 && n <= 100 {
		c.pageSize = n
	}
}

// Kind reports gitlab for gitlab.com and gitlab-selfhosted otherwise.
func (c *Client) Kind() forge.Kind { return c.kind }

// BaseURL returns the instance web root.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) projectURL(project string) string {
	return c.apiURL + "/projects/" + integrations.PathEscape(strings.Trim(project, "/"))
}

// ListTags returns the project's tags ordered by their commit date, oldest
// first. Pagination follows the X-Next-Page header.
func (c *Client) ListTags(ctx context.Context, project string) ([]string, error) {
	if err := errs.ValidateProjectPath(project); err != nil {
		return nil, err
	}

	var names []string
	err := c.Cached(ctx, "tags:"+project, false, &names, func() error {
		names = nil
		next := "1"
		for i := 0; next != "" && i < maxPages; i++ {
			var batch []tagResponse
			u := fmt.Sprintf("%s/repository/tags?order_by=updated&sort=asc&per_page=%d&page=%s",
				c.projectURL(project), c.pageSize, next)
			h, err := c.GetPage(ctx, u, &batch)
			if err != nil {
				return wrapNotFound(err, c.baseURL, project)
			}
			for _, t := range batch {
				names = append(names, t.Name)
			}
			next = strings.TrimSpace(h.Get("X-Next-Page"))
			if _, err := strconv.Atoi(next); err != nil {
				next = ""
			}
		}
		return nil
	})
	return names, err
}

// CommitsBetween uses the repository compare endpoint. GitLab returns the
// commits oldest first and reports each by its title.
func (c *Client) CommitsBetween(ctx context.Context, project, from, to string) ([]forge.Commit, error) {
	if err := errs.ValidateProjectPath(project); err != nil {
		return nil, err
	}

	key := "compare:" + project + ":" + from + "..." + to
	var commits []forge.Commit
	err := c.Cached(ctx, key, false, &commits, func() error {
		var resp compareResponse
		u := fmt.Sprintf("%s/repository/compare?from=%s&to=%s",
			c.projectURL(project), url.QueryEscape(from), url.QueryEscape(to))
		if err := c.Get(ctx, u, &resp); err != nil {
			return wrapNotFound(err, c.baseURL, project)
		}
		commits = make([]forge.Commit, 0, len(resp.Commits))
		for _, rc := range resp.Commits {
			commits = append(commits, forge.Commit{Message: rc.Title, URL: rc.WebURL})
		}
		return nil
	})
	return commits, err
}

// FetchFile returns the raw content of path at ref.
func (c *Client) FetchFile(ctx context.Context, project, path, ref string) (string, error) {
	if err := errs.ValidateProjectPath(project); err != nil {
		return "", err
	}

	var content string
	key := "file:" + project + ":" + ref + ":" + path
	err := c.Cached(ctx, key, false, &content, func() error {
		u := fmt.Sprintf("%s/repository/files/%s/raw?ref=%s",
			c.projectURL(project), integrations.PathEscape(strings.TrimPrefix(path, "/")), url.QueryEscape(ref))
		text, err := c.GetText(ctx, u)
		if err != nil {
			return wrapNotFound(err, c.baseURL, project+"/"+path)
		}
		content = text
		return nil
	})
	return content, err
}

// Probe checks that the project exists and is visible.
func (c *Client) Probe(ctx context.Context, project string) error {
	if err := errs.ValidateProjectPath(project); err != nil {
		return err
	}
	return c.Client.Probe(ctx, c.projectURL(project))
}

// CompareURL returns the web comparison link.
func (c *Client) CompareURL(project, from, to string) string {
	return forge.JoinURL(c.kind, c.RepoURL(project), from, to)
}

// RepoURL returns the web URL of project.
func (c *Client) RepoURL(project string) string {
	return c.baseURL + "/" + strings.Trim(project, "/")
}

func wrapNotFound(err error, base, what string) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return fmt.Errorf("%w: %s/%s", err, base, what)
	}
	return err
}

var (
	_ forge.Backend = (*Client)(nil)
	_ forge.Prober  = (*Client)(nil)
)

type tagResponse struct {
	Name string `json:"name"`
}

type compareResponse struct {
	Commits []struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		WebURL string `json:"web_url"`
	} `json:"commits"`
}
