package changelog

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archlog/pkg/cache"
	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/forge"
	"github.com/matzehuels/archlog/pkg/integrations"
	"github.com/matzehuels/archlog/pkg/integrations/archlinux"
	"github.com/matzehuels/archlog/pkg/locate"
	"github.com/matzehuels/archlog/pkg/observability"
	"github.com/matzehuels/archlog/pkg/tags"
	"github.com/matzehuels/archlog/pkg/version"
)

// DefaultTimeout bounds the work spent on one package.
const DefaultTimeout = 2 * time.Minute

// defaultBranch is read when the available version has no packaging tag yet.
const defaultBranch = "main"

// Lookup fetches packaging metadata for a binary package name.
type Lookup interface {
	Lookup(ctx context.Context, name string, repositories []string) (*archlinux.Package, error)
}

// Engine resolves the changelog of one package at a time. Repository
// references, tag lists and packaging files are memoized for the lifetime of
// the Engine, so one Engine should serve one run.
//
// An Engine is safe for concurrent use.
type Engine struct {
	opener     forge.Opener
	locator    *locate.Locator
	lookup     Lookup
	resolver   *tags.Resolver
	classifier *Classifier
	repos      []string
	timeout    time.Duration
	logger     *log.Logger
	keyer      cache.Keyer
	packaging  func(base string) forge.Ref

	refs     *cache.Memo[located]
	tagLists *cache.Memo[[]string]
	files    *cache.Memo[string]
}

type located struct {
	Ref forge.Ref
	Err error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLookup resolves package bases and upstream urls through l.
func WithLookup(l Lookup, repositories []string) Option {
	return func(e *Engine) {
		e.lookup = l
		if len(repositories) > 0 {
			e.repos = repositories
		}
	}
}

// WithLocator replaces the default locator (which probes through the
// Engine's opener).
func WithLocator(l *locate.Locator) Option {
	return func(e *Engine) { e.locator = l }
}

// WithResolver sets the tag resolver (scorer and cutoff).
func WithResolver(r *tags.Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

// WithTimeout sets the per-package deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPackagingRef maps a package base to its packaging repository. The
// default is archlinux.PackagingRef.
func WithPackagingRef(fn func(base string) forge.Ref) Option {
	return func(e *Engine) { e.packaging = fn }
}

// NewEngine creates an engine opening backends through opener.
func NewEngine(opener forge.Opener, opts ...Option) *Engine {
	e := &Engine{
		opener:    opener,
		resolver:  tags.NewResolver(),
		repos:     archlinux.DefaultRepositories,
		timeout:   DefaultTimeout,
		logger:    log.New(io.Discard),
		keyer:     cache.NewDefaultKeyer(),
		packaging: archlinux.PackagingRef,
		refs:      cache.NewMemo[located]("ref"),
		tagLists:  cache.NewMemo[[]string]("tags"),
		files:     cache.NewMemo[string]("file"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.locator == nil {
		e.locator = locate.New(opener)
	}
	e.refs.Timeout, e.tagLists.Timeout, e.files.Timeout = e.timeout, e.timeout, e.timeout
	e.classifier = &Classifier{Resolver: e.resolver}
	return e
}

// Resolve produces the entry of pkg. It never returns an error: problems are
// recorded on the entry and its steps.
func (e *Engine) Resolve(ctx context.Context, pkg Package) Entry {
	start := time.Now()
	hooks := observability.Engine()
	hooks.OnPackageStart(ctx, pkg.Name)

	pctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	entry := e.resolve(pctx, pkg)
	if entry.Err != nil && errors.Is(entry.Err, context.DeadlineExceeded) && ctx.Err() == nil {
		entry = Failed(entry.Package, entry.Source,
			errs.Wrap(errs.ErrCodeTimeout, entry.Err, "%s exceeded %s", pkg.Name, e.timeout))
	}

	elapsed := time.Since(start)
	hooks.OnPackageComplete(ctx, pkg.Name, string(entry.Status), len(entry.Steps), elapsed, entry.Err)

	logger := e.logger.With("package", pkg.Name, "duration", elapsed.Round(time.Millisecond))
	switch entry.Status {
	case StatusResolved:
		logger.Info("resolved", "steps", len(entry.Steps), "source", entry.Source.String())
	case StatusUnresolved:
		logger.Warn("unresolved", "err", entry.Err)
	default:
		logger.Error("failed", "err", entry.Err)
	}
	return entry
}

func (e *Engine) resolve(ctx context.Context, pkg Package) Entry {
	if err := validate(pkg); err != nil {
		return Failed(pkg, forge.Unresolved, err)
	}

	declared := ""
	if e.lookup != nil {
		info, err := e.lookup.Lookup(ctx, pkg.Name, e.repos)
		if errs.Is(err, errs.ErrCodeAmbiguousSource) || errs.Is(err, errs.ErrCodePackageNotFound) {
			return Unresolved(pkg, err)
		}
		if err != nil {
			return Failed(pkg, forge.Unresolved, err)
		}
		if pkg.Base == "" {
			pkg.Base = info.Base
		}
		if pkg.Description == "" {
			pkg.Description = info.Description
		}
		declared = info.URL
	}
	logger := e.logger.With("package", pkg.Name)

	packRef := e.packaging(pkg.BaseName())
	packB, err := e.opener.Open(packRef)
	if err != nil {
		return Failed(pkg, forge.Unresolved, err)
	}
	packTags, err := e.listTags(ctx, packRef, packB)
	if err != nil {
		return Failed(pkg, forge.Unresolved, errs.Wrap(errs.ErrCodeResolution, err, "packaging tags of %s", pkg.BaseName()))
	}

	current, cerr := tags.Exact(packTags, pkg.CurrentVersion)
	next, nerr := tags.Exact(packTags, pkg.NewVersion)
	if cerr != nil {
		logger.Debug("installed version has no packaging tag", "version", pkg.CurrentVersion, "err", cerr)
	}
	if nerr != nil {
		logger.Debug("available version has no packaging tag", "version", pkg.NewVersion, "err", nerr)
	}

	metaRef := defaultBranch
	if next.Accepted {
		metaRef = next.Tag
	}
	md := e.metadata(ctx, packRef, packB, metaRef)
	if md.DeclaredURL == "" {
		md.DeclaredURL = declared
	}

	upRef, locErr := e.locate(ctx, pkg.BaseName(), md)
	if !upRef.Resolved() {
		if locErr == nil {
			locErr = errs.New(errs.ErrCodeResolution, "no upstream repository for %s", pkg.BaseName())
		}
		if ctx.Err() != nil {
			return Failed(pkg, forge.Unresolved, errors.Join(locErr, ctx.Err()))
		}
		return Unresolved(pkg, locErr)
	}
	logger.Debug("located upstream", "kind", upRef.Kind, "project", upRef.Project)

	walked, err := tags.Walk(packTags, current, next)
	if err != nil {
		return Failed(pkg, upRef, err)
	}

	sides := Sides{
		Packaging:        packB,
		PackagingProject: packRef.Project,
		UpstreamRef:      upRef,
		Pin: func(ctx context.Context, tag string) string {
			pin, _ := locate.ParseSrcInfo(e.file(ctx, packRef, packB, locate.SrcInfoFile, tag)).TagPin()
			return pin
		},
	}
	if upB, err := e.opener.Open(upRef); err != nil {
		logger.Warn("upstream backend unavailable", "kind", upRef.Kind, "err", err)
	} else if upTags, err := e.listTags(ctx, upRef, upB); err != nil {
		logger.Warn("upstream tags unavailable", "project", upRef.Project, "err", err)
	} else {
		sides.Upstream, sides.UpstreamTags = upB, upTags
	}

	hooks := observability.Engine()
	steps := make([]Step, 0, len(walked))
	for _, w := range walked {
		if err := ctx.Err(); err != nil {
			return Failed(pkg, upRef, err)
		}
		if w.Degraded {
			w.From, w.To = version.PackagingTag(w.From), version.PackagingTag(w.To)
		}
		step := e.classifier.Classify(ctx, sides, w)
		if step.Err != nil {
			logger.Warn("incomplete step", "tag", step.VersionTag, "err", step.Err)
		}
		logger.Debug("step", "tag", step.VersionTag, "type", step.ReleaseType,
			"arch", len(step.ArchCommits), "origin", len(step.OriginCommits))
		hooks.OnStepResolved(ctx, pkg.Name, step.VersionTag, string(step.ReleaseType))
		steps = append(steps, step)
	}
	return Resolved(pkg, upRef, steps)
}

func validate(pkg Package) error {
	if err := errs.ValidatePackageName(pkg.Name); err != nil {
		return err
	}
	if err := errs.ValidateVersion(pkg.CurrentVersion); err != nil {
		return err
	}
	return errs.ValidateVersion(pkg.NewVersion)
}

// metadata reads .SRCINFO and .nvchecker.toml at ref.
func (e *Engine) metadata(ctx context.Context, ref forge.Ref, b forge.Backend, at string) locate.Metadata {
	info := locate.ParseSrcInfo(e.file(ctx, ref, b, locate.SrcInfoFile, at))
	return info.Metadata(e.file(ctx, ref, b, locate.DescriptorFile, at))
}

// locate memoizes the located reference by package base, unresolved
// outcomes included.
func (e *Engine) locate(ctx context.Context, base string, md locate.Metadata) (forge.Ref, error) {
	l, err := e.refs.Do(ctx, base, func(ctx context.Context) (located, error) {
		ref, err := e.locator.Locate(ctx, base, md)
		if ctx.Err() != nil {
			return located{}, ctx.Err()
		}
		return located{Ref: ref, Err: err}, nil
	})
	if err != nil {
		return forge.Unresolved, err
	}
	return l.Ref, l.Err
}

func (e *Engine) listTags(ctx context.Context, ref forge.Ref, b forge.Backend) ([]string, error) {
	key := e.keyer.ProjectKey(string(ref.Kind), ref.BaseURL, ref.Project)
	return e.tagLists.Do(ctx, key, func(ctx context.Context) ([]string, error) {
		return b.ListTags(ctx, ref.Project)
	})
}

// file returns the content of path at ref, "" when it does not exist or
// cannot be read.
func (e *Engine) file(ctx context.Context, ref forge.Ref, b forge.Backend, path, at string) string {
	key := e.keyer.ProjectKey(string(ref.Kind), ref.BaseURL, ref.Project) + "@" + at + ":" + path
	content, err := e.files.Do(ctx, key, func(ctx context.Context) (string, error) {
		content, err := b.FetchFile(ctx, ref.Project, path, at)
		if errors.Is(err, integrations.ErrNotFound) {
			return "", nil
		}
		return content, err
	})
	if err != nil {
		e.logger.Debug("read packaging file", "project", ref.Project, "path", path, "ref", at, "err", err)
		return ""
	}
	return content
}
