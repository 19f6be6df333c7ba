// Package version parses pacman version strings and normalizes repository
// tag names so that they can be compared with them.
//
// A pacman version is [epoch:]pkgver[-pkgrel]. Arch packaging repositories tag
// each release with the same string except that the epoch separator is a
// dash, because ':' is not allowed in git refs:
//
//	1:1.16.5-2   (pacman)
//	1-1.16.5-2   (packaging tag)
package version

import (
	"strconv"
	"strings"
)

// Tag is a version split into its distro parts.
type Tag struct {
	Raw      string // as given
	Epoch    int    // 0 when absent
	Upstream string // pkgver
	Release  string // pkgrel, "" when absent
}

// Parse splits a pacman version or packaging tag. It never fails: anything it
// cannot split is kept whole in Upstream.
func Parse(raw string) Tag {
	t := Tag{Raw: raw}
	s := strings.TrimSpace(raw)

	if e, rest, ok := strings.Cut(s, ":"); ok && isDigits(e) {
		t.Epoch, _ = strconv.Atoi(e)
		s = rest
	} else if parts := strings.Split(s, "-"); len(parts) == 3 && isDigits(parts[0]) && isRelease(parts[2]) {
		// packaging tag with epoch: 1-1.16.5-2
		t.Epoch, _ = strconv.Atoi(parts[0])
		s = parts[1] + "-" + parts[2]
	}

	if i := strings.LastIndex(s, "-"); i > 0 && isRelease(s[i+1:]) {
		t.Release = s[i+1:]
		s = s[:i]
	}
	t.Upstream = s
	return t
}

// String renders the pacman form.
func (t Tag) String() string {
	s := t.Upstream
	if t.Release != "" {
		s += "-" + t.Release
	}
	if t.Epoch > 0 {
		s = strconv.Itoa(t.Epoch) + ":" + s
	}
	return s
}

// PackagingTag renders the packaging repository tag form (epoch joined with
// a dash).
func (t Tag) PackagingTag() string {
	return strings.Replace(t.String(), ":", "-", 1)
}

// Main returns [epoch:]pkgver without the release. Two versions with the same
// Main differ only in packaging.
func (t Tag) Main() string {
	if t.Epoch > 0 {
		return strconv.Itoa(t.Epoch) + ":" + t.Upstream
	}
	return t.Upstream
}

// PackagingTag converts a pacman version to its packaging tag.
func PackagingTag(v string) string {
	return Parse(v).PackagingTag()
}

// SameUpstream reports whether a and b share epoch and pkgver.
func SameUpstream(a, b string) bool {
	return Parse(a).Main() == Parse(b).Main()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isRelease matches pkgrel: digits with an optional .digits suffix (2, 2.1).
func isRelease(s string) bool {
	a, b, ok := strings.Cut(s, ".")
	if !ok {
		return isDigits(a)
	}
	return isDigits(a) && isDigits(b)
}

// Normalized is the comparable form of t.Raw, see Normalize.
func (t Tag) Normalized(project string) string {
	return Normalize(t.Raw, project)
}
