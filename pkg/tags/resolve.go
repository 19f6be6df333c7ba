// Package tags maps version strings to repository tags and walks the
// releases between two of them.
//
// Repositories rarely tag releases with the exact pacman version: curl tags
// curl-8_14_1 for 8.14.1-1, KDE tags v6.1.3 for 1:6.1.3-1. A [Resolver]
// normalizes both sides (see version.Normalize) and falls back to fuzzy
// scoring when no tag matches exactly.
package tags

import (
	"github.com/agnivade/levenshtein"

	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/version"
)

// DefaultCutoff is the minimum fuzzy score a tag needs to be accepted.
const DefaultCutoff = 70

// Scorer rates the similarity of two normalized versions from 0 to 100.
type Scorer interface {
	Score(a, b string) int
}

// ScorerFunc adapts a function to [Scorer].
type ScorerFunc func(a, b string) int

// Score calls f(a, b).
func (f ScorerFunc) Score(a, b string) int { return f(a, b) }

// Levenshtein is the default [Scorer]: 100 * (1 - distance / longer length).
var Levenshtein Scorer = ScorerFunc(func(a, b string) int {
	n := max(len([]rune(a)), len([]rune(b)))
	if n == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (n - d) / n
})

// Match is the outcome of resolving one version against a tag list.
type Match struct {
	Target   string // version asked for
	Tag      string // best candidate, "" when the list is empty
	Index    int    // position of Tag in the list, -1 when none
	Score    int    // 0-100
	Exact    bool
	Accepted bool
}

// Resolver maps versions to tags.
type Resolver struct {
	Scorer Scorer // nil uses Levenshtein
	Cutoff int    // 0 uses DefaultCutoff
}

// NewResolver creates a resolver with the default scorer and cutoff.
func NewResolver() *Resolver {
	return &Resolver{Scorer: Levenshtein, Cutoff: DefaultCutoff}
}

// Resolve finds the tag for target in tags. project (owner/name or just
// name) lets tag prefixes like <name>- be stripped.
//
// Matching runs in three passes, first hit wins:
//
//  1. the tag equals target or its packaging tag form (1:2.0-1 → 1-2.0-1)
//  2. the normalized tag equals the normalized target
//  3. the highest fuzzy score, if it reaches the cutoff; ties go to the tag
//     closest to the target in version order (see version.Closer), then to
//     the earlier tag
//
// A failed resolution returns the best candidate with Accepted false and a
// TAG_NOT_FOUND error.
func (r *Resolver) Resolve(tags []string, target, project string) (Match, error) {
	m := Match{Target: target, Index: -1}
	if len(tags) == 0 {
		return m, errs.New(errs.ErrCodeTagNotFound, "no tags to match %s against", target)
	}

	packaging := version.PackagingTag(target)
	for i, tag := range tags {
		if tag == target || tag == packaging {
			return accept(m, tags, i), nil
		}
	}

	want := version.Normalize(target, project)
	normalized := make([]string, len(tags))
	for i, tag := range tags {
		normalized[i] = version.Normalize(tag, project)
		if normalized[i] == want {
			return accept(m, tags, i), nil
		}
	}

	best, bestScore := -1, -1
	for i, n := range normalized {
		score := r.scorer().Score(want, n)
		if score > bestScore || (score == bestScore && version.Closer(want, n, normalized[best])) {
			best, bestScore = i, score
		}
	}
	m.Tag, m.Index, m.Score = tags[best], best, bestScore
	if bestScore < r.cutoff() {
		return m, errs.New(errs.ErrCodeTagNotFound,
			"no tag matches %s (closest %s scored %d, need %d)", target, m.Tag, bestScore, r.cutoff())
	}
	m.Accepted = true
	return m, nil
}

// Exact finds target in tags by its raw or packaging tag form only: 1:2.0-1
// matches 1:2.0-1 or 1-2.0-1, never 1-2.0-2 or 1-2.0. It is the lookup for
// packaging repositories, where every pkgrel has its own tag.
func Exact(tags []string, target string) (Match, error) {
	m := Match{Target: target, Index: -1}
	packaging := version.PackagingTag(target)
	for i, tag := range tags {
		if tag == target || tag == packaging {
			return accept(m, tags, i), nil
		}
	}
	return m, errs.New(errs.ErrCodeTagNotFound, "no tag %s among %d tags", packaging, len(tags))
}

func accept(m Match, tags []string, i int) Match {
	m.Tag, m.Index, m.Score, m.Exact, m.Accepted = tags[i], i, 100, true, true
	return m
}

func (r *Resolver) scorer() Scorer {
	if r.Scorer == nil {
		return Levenshtein
	}
	return r.Scorer
}

func (r *Resolver) cutoff() int {
	if r.Cutoff <= 0 {
		return DefaultCutoff
	}
	return r.Cutoff
}
