package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/archlog/pkg/cache"
	"github.com/matzehuels/archlog/pkg/forge"
	"github.com/matzehuels/archlog/pkg/integrations"
)

const (
	// DefaultAPIURL is the public GitHub REST endpoint.
	DefaultAPIURL = "https://api.github.com"
	// DefaultWebURL is the public GitHub web host.
	DefaultWebURL = "https://github.com"
)

// Client is a [forge.Backend] for github.com.
//
// Unauthenticated clients are limited to 60 requests per hour, which a
// single run over a few dozen packages can exhaust. Pass a token to raise the
// limit to 5000.
type Client struct {
	*integrations.Client
	apiURL   string
	webURL   string
	pageSize int
}

// NewClient creates a GitHub client. Pass an empty token for anonymous access.
func NewClient(backend cache.Cache, token string, cacheTTL time.Duration, opts ...integrations.Option) *Client {
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:   integrations.NewClient(backend, "github:", cacheTTL, headers, opts...),
		apiURL:   DefaultAPIURL,
		webURL:   DefaultWebURL,
		pageSize: integrations.DefaultPageSize,
	}
}

// SetPageSize overrides the per_page parameter (1-100).
func (c *Client) SetPageSize(n int) {
	if n > 0 && n <= 100 {
		c.pageSize = n
	}
}

// ListTags returns all tags of owner/repo. The API sorts them by name,
// descending; pages are collected and reversed. The order is not
// chronological, so upstream lists are matched against, never walked.
func (c *Client) ListTags(ctx context.Context, project string) ([]string, error) {
	if err := ValidateProject(project); err != nil {
		return nil, err
	}

	var names []string
	err := c.Cached(ctx, "tags:"+project, false, &names, func() error {
		names = nil
		for page := 1; ; page++ {
			var batch []tagResponse
			u := fmt.Sprintf("%s/repos/%s/tags?per_page=%d&page=%d", c.apiURL, project, c.pageSize, page)
			if err := c.Get(ctx, u, &batch); err != nil {
				return wrapNotFound(err, project)
			}
			for _, t := range batch {
				names = append(names, t.Name)
			}
			if len(batch) < c.pageSize {
				break
			}
		}
		slices.Reverse(names)
		return nil
	})
	return names, err
}

// CommitsBetween returns the commits of the from...to comparison, oldest
// first. Messages are reduced to their subject line.
func (c *Client) CommitsBetween(ctx context.Context, project, from, to string) ([]forge.Commit, error) {
	if err := ValidateProject(project); err != nil {
		return nil, err
	}

	key := "compare:" + project + ":" + from + "..." + to
	var commits []forge.Commit
	err := c.Cached(ctx, key, false, &commits, func() error {
		commits = nil
		for page := 1; ; page++ {
			var resp compareResponse
			u := fmt.Sprintf("%s/repos/%s/compare/%s...%s?per_page=%d&page=%d",
				c.apiURL, project, url.PathEscape(from), url.PathEscape(to), c.pageSize, page)
			if err := c.Get(ctx, u, &resp); err != nil {
				return wrapNotFound(err, project)
			}
			for _, rc := range resp.Commits {
				commits = append(commits, forge.Commit{Message: subject(rc.Commit.Message), URL: rc.HTMLURL})
			}
			if len(resp.Commits) < c.pageSize || len(commits) >= resp.TotalCommits {
				break
			}
		}
		return nil
	})
	return commits, err
}

// FetchFile returns path at ref using the contents API.
func (c *Client) FetchFile(ctx context.Context, project, path, ref string) (string, error) {
	if err := ValidateProject(project); err != nil {
		return "", err
	}

	var content string
	key := "file:" + project + ":" + ref + ":" + path
	err := c.Cached(ctx, key, false, &content, func() error {
		var resp contentResponse
		u := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s", c.apiURL, project,
			strings.TrimPrefix(path, "/"), url.QueryEscape(ref))
		if err := c.Get(ctx, u, &resp); err != nil {
			return wrapNotFound(err, project+"/"+path)
		}
		if resp.Type != "" && resp.Type != "file" {
			return fmt.Errorf("%w: %s is a %s", integrations.ErrNotFound, path, resp.Type)
		}
		if resp.Encoding != "base64" {
			content = resp.Content
			return nil
		}
		data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		content = string(data)
		return nil
	})
	return content, err
}

// Probe checks that the repository exists.
func (c *Client) Probe(ctx context.Context, project string) error {
	if err := ValidateProject(project); err != nil {
		return err
	}
	return c.Client.Probe(ctx, c.apiURL+"/repos/"+project)
}

// CompareURL returns the web comparison link.
func (c *Client) CompareURL(project, from, to string) string {
	return forge.JoinURL(forge.KindGitHub, c.RepoURL(project), from, to)
}

// RepoURL returns https://github.com/<project>.
func (c *Client) RepoURL(project string) string {
	return c.webURL + "/" + strings.Trim(project, "/")
}

func wrapNotFound(err error, what string) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return fmt.Errorf("%w: github %s", err, what)
	}
	return err
}

func subject(msg string) string {
	line, _, _ := strings.Cut(msg, "\n")
	return strings.TrimSpace(line)
}

var (
	_ forge.Backend = (*Client)(nil)
	_ forge.Prober  = (*Client)(nil)
)

type tagResponse struct {
	Name string `json:"name"`
}

type compareResponse struct {
	TotalCommits int              `json:"total_commits"`
	Commits      []commitResponse `json:"commits"`
}

type commitResponse struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Message string `json:"message"`
	} `json:"commit"`
}

type contentResponse struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}
