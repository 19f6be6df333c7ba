package locate

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/matzehuels/archlog/pkg/forge"
)

// KDECategories are the invent.kde.org groups applications live under.
var KDECategories = []string{
	"plasma", "frameworks", "utilities", "libraries", "system",
	"graphics", "accessibility", "education", "games",
}

const (
	githubBase = "https://github.com"
	gitlabBase = "https://gitlab.com"
	kdeBase    = "https://invent.kde.org"
	gnomeBase  = "https://gitlab.gnome.org"
)

// Self-hosted GitLab instances whose host does not start with "gitlab.".
var selfHostedGitLab = map[string]bool{
	"invent.kde.org":    true,
	"salsa.debian.org":  true,
	"code.videolan.org": true,
	"framagit.org":      true,
	"source.puri.sm":    true,
}

// cgit frontends.
var cgitHosts = map[string]bool{
	"git.kernel.org":    true,
	"git.zx2c4.com":     true,
	"git.netfilter.org": true,
	"git.tukaani.org":   true,
}

var urlPattern = regexp.MustCompile(`(?:git\+)?((?:https?|git)://[^\s'"]+)`)

// CleanURL extracts the repository URL from a packaging source string. It
// accepts raw .SRCINFO lines and PKGBUILD source entries:
//
//	+	source = git+https://gitlab.winehq.org/wine/wine.git?signed#tag=wine-10.13
//	expat::git+https://github.com/libexpat/libexpat?signed#tag=R_2_7_0
//
// and strips the name:: and git+ prefixes, query and fragment, a .git suffix,
// GitLab /-/ suffixes and GitHub /archive/, /releases/ and /tags paths. It
// returns "" when s holds no URL.
func CleanURL(s string) string {
	u, ok := parse(s)
	if !ok {
		return ""
	}
	segs := repoSegments(u)
	for i, seg := range segs {
		segs[i] = strings.TrimSuffix(seg, ".git")
	}
	return u.Scheme + "://" + u.Host + joinPath(segs)
}

// ParseURL classifies a URL by hosting family. ok is false for hosts this
// package cannot map to a repository. kde.org pages other than invent.kde.org
// need a category and are detected with IsKDE instead.
func ParseURL(s string) (ref forge.Ref, ok bool) {
	u, ok := parse(s)
	if !ok {
		return forge.Unresolved, false
	}
	segs := repoSegments(u)
	host := u.Host
	base := "https://" + host

	switch {
	case host == "github.com":
		if len(segs) < 2 {
			return forge.Unresolved, false
		}
		return forge.Ref{Kind: forge.KindGitHub, BaseURL: githubBase, Project: trimGit(segs[0]) + "/" + trimGit(segs[1])}, true

	case strings.HasSuffix(host, ".github.io"):
		owner := strings.TrimSuffix(host, ".github.io")
		name := host
		if len(segs) > 0 {
			name = trimGit(segs[0])
		}
		return forge.Ref{Kind: forge.KindGitHub, BaseURL: githubBase, Project: owner + "/" + name}, true

	case host == "download.gnome.org":
		// /sources/<name>/<series>/...
		if len(segs) < 2 || segs[0] != "sources" {
			return forge.Unresolved, false
		}
		return forge.Ref{Kind: forge.KindGitLabSelfHosted, BaseURL: gnomeBase, Project: "GNOME/" + segs[1]}, true

	case host == "gitlab.com":
		if len(segs) < 2 {
			return forge.Unresolved, false
		}
		return forge.Ref{Kind: forge.KindGitLab, BaseURL: gitlabBase, Project: strings.Join(trimAll(segs), "/")}, true

	case strings.HasPrefix(host, "gitlab.") || selfHostedGitLab[host]:
		if len(segs) < 2 {
			return forge.Unresolved, false
		}
		return forge.Ref{Kind: forge.KindGitLabSelfHosted, BaseURL: base, Project: strings.Join(trimAll(segs), "/")}, true

	case cgitHosts[host] || (len(segs) > 2 && segs[0] == "pub" && segs[1] == "scm"):
		if len(segs) == 0 {
			return forge.Unresolved, false
		}
		return forge.Ref{Kind: forge.KindCgit, BaseURL: base, Project: strings.Join(segs, "/")}, true
	}
	return forge.Unresolved, false
}

// IsKDE reports whether s is a kde.org page that is not itself a repository
// (apps.kde.org/ark, kde.org/plasma-desktop, community.kde.org/Frameworks).
func IsKDE(s string) bool {
	u, ok := parse(s)
	if !ok {
		return false
	}
	return (u.Host == "kde.org" || strings.HasSuffix(u.Host, ".kde.org")) && u.Host != "invent.kde.org"
}

// KDECategory returns the first KDE category named in s.
func KDECategory(s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, c := range KDECategories {
		if strings.Contains(lower, c) {
			return c, true
		}
	}
	return "", false
}

// KDERef is the invent.kde.org repository for name in category.
func KDERef(category, name string) forge.Ref {
	return forge.Ref{Kind: forge.KindGitLabSelfHosted, BaseURL: kdeBase, Project: category + "/" + name}
}

// IsVCSSource reports whether a source entry is fetched with git.
func IsVCSSource(s string) bool {
	return strings.Contains(s, "git+") || strings.Contains(s, "git://") ||
		strings.Contains(strings.SplitN(s, "#", 2)[0], ".git")
}

func parse(s string) (*url.URL, bool) {
	m := urlPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	raw := m[1]
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, false
	}
	u.Host = strings.ToLower(u.Host)
	if u.Scheme == "git" || u.Scheme == "http" {
		u.Scheme = "https"
	}
	return u, true
}

// repoSegments returns the path segments naming the repository, stripping
// web suffixes.
func repoSegments(u *url.URL) []string {
	var segs []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	for i, s := range segs {
		if s == "-" {
			segs = segs[:i]
			break
		}
	}
	switch {
	case u.Host == "github.com":
		if len(segs) > 2 {
			segs = segs[:2]
		}
	case cgitHosts[u.Host] || (len(segs) > 2 && segs[0] == "pub" && segs[1] == "scm"):
		// cgit pages hang below the .git tree: .../linux.git/tag/?h=v6.1
		for i, s := range segs {
			if strings.HasSuffix(s, ".git") {
				segs = segs[:i+1]
				break
			}
		}
	default:
		if n := len(segs); n > 0 && segs[n-1] == "tags" {
			segs = segs[:n-1]
		}
	}
	return segs
}

func trimGit(s string) string { return strings.TrimSuffix(s, ".git") }

func trimAll(segs []string) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = trimGit(s)
	}
	return out
}

func joinPath(segs []string) string {
	if len(segs) == 0 {
		return ""
	}
	return "/" + strings.Join(segs, "/")
}
