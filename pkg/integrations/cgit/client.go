package cgit

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/archlog/pkg/cache"
	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/forge"
	"github.com/matzehuels/archlog/pkg/integrations"
)

// maxLogPages bounds how far a range log is followed.
const maxLogPages = 40

// Client scrapes a cgit web frontend. cgit has no API, so every capability
// is backed by one HTML or plain-text page of the repository.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a scraper for the cgit instance at baseURL
// (e.g. https://git.kernel.org).
func NewClient(backend cache.Cache, baseURL string, cacheTTL time.Duration, opts ...integrations.Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		Client:  integrations.NewClient(backend, "cgit:"+integrations.Host(baseURL)+":", cacheTTL, nil, opts...),
		baseURL: baseURL,
	}
}

// ListTags scrapes refs/tags. cgit lists newest first; the result is
// reversed so the oldest tag comes first.
func (c *Client) ListTags(ctx context.Context, project string) ([]string, error) {
	if err := errs.ValidateProjectPath(project); err != nil {
		return nil, err
	}

	var names []string
	err := c.Cached(ctx, "tags:"+project, false, &names, func() error {
		page, err := c.GetText(ctx, c.RepoURL(project)+"/refs/tags")
		if err != nil {
			return wrapNotFound(err, project)
		}
		names, err = parseTags(strings.NewReader(page))
		if err != nil {
			return err
		}
		slices.Reverse(names)
		return nil
	})
	return names, err
}

// CommitsBetween scrapes log/?qt=range&q=from..to, following the pager.
func (c *Client) CommitsBetween(ctx context.Context, project, from, to string) ([]forge.Commit, error) {
	if err := errs.ValidateProjectPath(project); err != nil {
		return nil, err
	}

	key := "log:" + project + ":" + from + ".." + to
	var commits []forge.Commit
	err := c.Cached(ctx, key, false, &commits, func() error {
		commits = nil
		next := c.RepoURL(project) + "/log/?qt=range&q=" + url.QueryEscape(from+".."+to)
		for i := 0; next != "" && i < maxLogPages; i++ {
			pageURL := next
			page, err := c.GetText(ctx, pageURL)
			if err != nil {
				return wrapNotFound(err, project)
			}
			batch, nextHref, err := parseLog(strings.NewReader(page))
			if err != nil {
				return err
			}
			for _, e := range batch {
				commits = append(commits, forge.Commit{Message: e.subject, URL: c.resolve(pageURL, e.href)})
			}
			next = ""
			if nextHref != "" {
				next = c.resolve(pageURL, nextHref)
			}
		}
		slices.Reverse(commits)
		return nil
	})
	return commits, err
}

// FetchFile reads plain/<path>?h=<ref>.
func (c *Client) FetchFile(ctx context.Context, project, path, ref string) (string, error) {
	if err := errs.ValidateProjectPath(project); err != nil {
		return "", err
	}

	var content string
	key := "file:" + project + ":" + ref + ":" + path
	err := c.Cached(ctx, key, false, &content, func() error {
		u := fmt.Sprintf("%s/plain/%s?h=%s", c.RepoURL(project), strings.TrimPrefix(path, "/"), url.QueryEscape(ref))
		text, err := c.GetText(ctx, u)
		if err != nil {
			return wrapNotFound(err, project+"/"+path)
		}
		content = text
		return nil
	})
	return content, err
}

// Probe requests the repository summary page.
func (c *Client) Probe(ctx context.Context, project string) error {
	if err := errs.ValidateProjectPath(project); err != nil {
		return err
	}
	return c.Client.Probe(ctx, c.RepoURL(project)+"/")
}

// CompareURL links the range log, cgit's closest equivalent of a compare view.
func (c *Client) CompareURL(project, from, to string) string {
	return forge.JoinURL(forge.KindCgit, c.RepoURL(project), from, to)
}

// RepoURL returns the repository root.
func (c *Client) RepoURL(project string) string {
	return c.baseURL + "/" + strings.Trim(project, "/")
}

// resolve turns an href from page into an absolute URL.
func (c *Client) resolve(page, href string) string {
	base, err := url.Parse(page)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func wrapNotFound(err error, what string) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return fmt.Errorf("%w: cgit %s", err, what)
	}
	return err
}

var (
	_ forge.Backend = (*Client)(nil)
	_ forge.Prober  = (*Client)(nil)
)
