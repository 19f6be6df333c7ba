// Package forge defines the capability set every hosting backend offers and
// the value types that flow between the source locator, the tag resolver and
// the changelog engine.
//
// A [Backend] is bound to one host (github.com, gitlab.com, gitlab.gnome.org,
// git.kernel.org, ...). Projects are addressed by their path on that host.
package forge

import (
	"context"
	"strings"
)

// Kind identifies a hosting family.
type Kind string

const (
	// KindGitHub is github.com.
	KindGitHub Kind = "github"
	// KindGitLab is gitlab.com.
	KindGitLab Kind = "gitlab"
	// KindGitLabSelfHosted is any other GitLab instance (gitlab.archlinux.org,
	// gitlab.gnome.org, invent.kde.org, ...).
	KindGitLabSelfHosted Kind = "gitlab-selfhosted"
	// KindCgit is a cgit web frontend serving plain git trees.
	KindCgit Kind = "cgit"
	// KindUnresolved means no repository could be located.
	KindUnresolved Kind = "unresolved"
)

// Ref locates a repository.
type Ref struct {
	Kind    Kind   `json:"kind"`
	BaseURL string `json:"base_url"` // scheme://host, no trailing slash
	Project string `json:"project"`  // path on the host, no leading slash
}

// Unresolved is the zero-information reference.
var Unresolved = Ref{Kind: KindUnresolved}

// Resolved reports whether r points at a repository.
func (r Ref) Resolved() bool {
	return r.Kind != "" && r.Kind != KindUnresolved && r.Project != ""
}

// URL returns the web URL of the repository.
func (r Ref) URL() string {
	if !r.Resolved() {
		return ""
	}
	return strings.TrimSuffix(r.BaseURL, "/") + "/" + strings.Trim(r.Project, "/")
}

func (r Ref) String() string {
	if !r.Resolved() {
		return string(KindUnresolved)
	}
	return string(r.Kind) + ":" + r.URL()
}

// Commit is one entry of a changelog.
type Commit struct {
	Message string `json:"commit message"`
	URL     string `json:"commit URL"`
}

// Backend is the capability set of a hosting backend.
type Backend interface {
	// ListTags returns the project's tag names. Packaging backends list
	// them oldest first; upstream order is backend-defined.
	ListTags(ctx context.Context, project string) ([]string, error)

	// CommitsBetween returns the commits reachable from to but not from
	// from, oldest first.
	CommitsBetween(ctx context.Context, project, from, to string) ([]Commit, error)

	// FetchFile returns the content of path at ref. A missing file yields an
	// error matching integrations.ErrNotFound.
	FetchFile(ctx context.Context, project, path, ref string) (string, error)

	// CompareURL is the web link comparing from and to.
	CompareURL(project, from, to string) string

	// RepoURL is the web URL of the project.
	RepoURL(project string) string
}

// Prober checks repository availability cheaply.
type Prober interface {
	Probe(ctx context.Context, project string) error
}

// Opener returns the backend serving a reference.
type Opener interface {
	Open(ref Ref) (Backend, error)
}

// OpenerFunc adapts a function to [Opener].
type OpenerFunc func(ref Ref) (Backend, error)

// Open calls f(ref).
func (f OpenerFunc) Open(ref Ref) (Backend, error) { return f(ref) }
