// Package locate finds the upstream repository of a package.
//
// Candidates come from three places, in order: the version-check descriptor
// (.nvchecker.toml), the VCS source entries of .SRCINFO and the declared
// upstream url. The first candidate that maps to a known hosting family and
// answers an availability probe wins.
//
//	loc := locate.New(hosts)
//	ref, err := loc.Locate(ctx, "curl", md)
//	if !ref.Resolved() {
//		// err says why
//	}
package locate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/forge"
)

// Metadata is what the packaging repository says about the upstream.
type Metadata struct {
	DeclaredURL string   // PKGBUILD url
	SourceURLs  []string // .SRCINFO source entries
	Descriptor  string   // .nvchecker.toml content
}

// Locator resolves packages to repositories.
type Locator struct {
	opener forge.Opener
	probe  bool
}

// Option configures a Locator.
type Option func(*Locator)

// WithoutProbe accepts the first candidate without checking availability.
func WithoutProbe() Option {
	return func(l *Locator) { l.probe = false }
}

// New creates a Locator that probes candidates through opener.
func New(opener forge.Opener, opts ...Option) *Locator {
	l := &Locator{opener: opener, probe: opener != nil}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns the repository of the package base name. The returned Ref is
// always usable; when it is unresolved err explains why (RESOLUTION_FAILED
// or AMBIGUOUS_SOURCE).
func (l *Locator) Locate(ctx context.Context, name string, md Metadata) (forge.Ref, error) {
	var tried []string

	ref, ok, err := FromDescriptor(md.Descriptor, name)
	if err != nil {
		tried = append(tried, err.Error())
	} else if ok {
		perr := l.check(ctx, ref)
		if perr == nil {
			return ref, nil
		}
		tried = append(tried, fmt.Sprintf("%s: %v", ref, perr))
	}

	for _, raw := range candidates(md) {
		if err := ctx.Err(); err != nil {
			return forge.Unresolved, err
		}
		if IsKDE(raw) {
			ref, err := l.locateKDE(ctx, name, raw)
			if err == nil {
				return ref, nil
			}
			if errs.Is(err, errs.ErrCodeAmbiguousSource) {
				return forge.Unresolved, err
			}
			tried = append(tried, err.Error())
			continue
		}
		ref, ok := ParseURL(raw)
		if !ok {
			continue
		}
		if err := l.check(ctx, ref); err != nil {
			tried = append(tried, fmt.Sprintf("%s: %v", ref, err))
			continue
		}
		return ref, nil
	}

	msg := "no repository found for " + name
	if len(tried) > 0 {
		msg += " (" + strings.Join(tried, "; ") + ")"
	}
	return forge.Unresolved, errs.New(errs.ErrCodeResolution, "%s", msg)
}

// candidates lists the URLs to try: VCS sources first, then other sources
// on a forge, then the declared url.
func candidates(md Metadata) []string {
	var vcs, other []string
	for _, s := range md.SourceURLs {
		if IsVCSSource(s) {
			vcs = append(vcs, s)
		} else {
			other = append(other, s)
		}
	}
	out := append(vcs, other...)
	if md.DeclaredURL != "" {
		out = append(out, md.DeclaredURL)
	}
	return out
}

// locateKDE maps a kde.org page to invent.kde.org. A category named in the
// URL is tried first; otherwise every category is probed and exactly one
// must answer.
func (l *Locator) locateKDE(ctx context.Context, name, raw string) (forge.Ref, error) {
	if c, ok := KDECategory(raw); ok {
		ref := KDERef(c, name)
		if err := l.check(ctx, ref); err == nil {
			return ref, nil
		}
	}
	if !l.probe {
		return forge.Unresolved, errs.New(errs.ErrCodeResolution, "no KDE category in %s", raw)
	}

	var (
		mu   sync.Mutex
		hits []forge.Ref
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range KDECategories {
		ref := KDERef(c, name)
		g.Go(func() error {
			if l.check(gctx, ref) == nil {
				mu.Lock()
				hits = append(hits, ref)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	switch len(hits) {
	case 0:
		return forge.Unresolved, errs.New(errs.ErrCodeResolution, "no KDE repository for %s", name)
	case 1:
		return hits[0], nil
	default:
		names := make([]string, len(hits))
		for i, h := range hits {
			names[i] = h.URL()
		}
		sort.Strings(names)
		return forge.Unresolved, errs.New(errs.ErrCodeAmbiguousSource,
			"%s found in several KDE groups: %s", name, strings.Join(names, ", "))
	}
}

// check probes ref when probing is enabled.
func (l *Locator) check(ctx context.Context, ref forge.Ref) error {
	if !l.probe {
		return nil
	}
	b, err := l.opener.Open(ref)
	if err != nil {
		return err
	}
	if p, ok := b.(forge.Prober); ok {
		return p.Probe(ctx, ref.Project)
	}
	return nil
}
