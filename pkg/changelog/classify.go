package changelog

import (
	"context"
	"errors"

	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/forge"
	"github.com/matzehuels/archlog/pkg/tags"
	"github.com/matzehuels/archlog/pkg/version"
)

// Sides are the two repositories a package's steps are read from.
type Sides struct {
	Packaging        forge.Backend
	PackagingProject string

	// Upstream is nil when the upstream repository is not usable.
	Upstream     forge.Backend
	UpstreamRef  forge.Ref
	UpstreamTags []string

	// Pin returns the upstream tag the packaging pins at a packaging tag
	// (the #tag= fragment of its VCS source), or "".
	Pin func(ctx context.Context, packagingTag string) string
}

// Classifier turns walked packaging steps into release steps.
type Classifier struct {
	Resolver *tags.Resolver
}

// Classify compares the origin versions at both ends of w. An unchanged
// origin is a minor release. A changed one is a major release whose upstream
// commits are collected on s.Upstream; when that fails the step keeps the
// no-upstream-changelog marker and the cause in Err.
func (c *Classifier) Classify(ctx context.Context, s Sides, w tags.Step) Step {
	step := Step{
		VersionTag:     w.To,
		From:           w.From,
		Degraded:       w.Degraded,
		CompareURLArch: s.Packaging.CompareURL(s.PackagingProject, w.From, w.To),
	}

	commits, err := s.Packaging.CommitsBetween(ctx, s.PackagingProject, w.From, w.To)
	if err != nil {
		step.Err = errs.Wrap(errs.ErrCodeResolution, err, "packaging commits %s...%s", w.From, w.To)
	}
	step.ArchCommits = commits

	from, to := c.origin(ctx, s, w.From), c.origin(ctx, s, w.To)
	project := s.UpstreamRef.Project
	if version.Normalize(from, project) == version.Normalize(to, project) {
		step.ReleaseType = Minor
		step.Origin = OriginNotApplicable
		return step
	}

	step.ReleaseType = Major
	step.Origin = OriginMissing
	if s.Upstream == nil {
		return step
	}

	resolver := c.Resolver
	if resolver == nil {
		resolver = tags.NewResolver()
	}
	fromMatch, ferr := resolver.Resolve(s.UpstreamTags, from, project)
	toMatch, terr := resolver.Resolve(s.UpstreamTags, to, project)
	if ferr != nil || terr != nil {
		step.Err = errors.Join(step.Err, ferr, terr)
		return step
	}
	step.CompareURLOrigin = s.Upstream.CompareURL(project, fromMatch.Tag, toMatch.Tag)
	if fromMatch.Tag == toMatch.Tag {
		return step
	}

	upstream, err := s.Upstream.CommitsBetween(ctx, project, fromMatch.Tag, toMatch.Tag)
	if err != nil {
		step.Err = errors.Join(step.Err, errs.Wrap(errs.ErrCodeResolution, err,
			"upstream commits %s...%s", fromMatch.Tag, toMatch.Tag))
		return step
	}
	if len(upstream) > 0 {
		step.OriginCommits = upstream
		step.Origin = OriginCommits
	}
	return step
}

// origin is the upstream version a packaging tag builds.
func (c *Classifier) origin(ctx context.Context, s Sides, packagingTag string) string {
	if s.Pin != nil {
		if pin := s.Pin(ctx, packagingTag); pin != "" {
			return pin
		}
	}
	return version.Parse(packagingTag).Upstream
}
