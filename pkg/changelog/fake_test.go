package changelog

import (
	"context"
	"fmt"
	"time"

	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/forge"
	"github.com/matzehuels/archlog/pkg/integrations"
	"github.com/matzehuels/archlog/pkg/locate"
)

const (
	packBase = "https://pack.test"
	upBase   = "https://github.com"
)

// memForge is an in-memory forge.Backend.
type memForge struct {
	kind    forge.Kind
	base    string
	tags    map[string][]string
	commits map[string][]forge.Commit // project|from..to
	files   map[string]string         // project@ref:path
	block   bool                      // block until the context ends
}

func newMemForge(kind forge.Kind, base string) *memForge {
	return &memForge{
		kind:    kind,
		base:    base,
		tags:    map[string][]string{},
		commits: map[string][]forge.Commit{},
		files:   map[string]string{},
	}
}

func (m *memForge) wait(ctx context.Context) error {
	if !m.block {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *memForge) ListTags(ctx context.Context, project string) ([]string, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	t, ok := m.tags[project]
	if !ok {
		return nil, fmt.Errorf("%s: %w", project, integrations.ErrNotFound)
	}
	return t, nil
}

func (m *memForge) CommitsBetween(_ context.Context, project, from, to string) ([]forge.Commit, error) {
	c, ok := m.commits[project+"|"+from+".."+to]
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "compare %s...%s", from, to)
	}
	return c, nil
}

func (m *memForge) FetchFile(_ context.Context, project, path, ref string) (string, error) {
	f, ok := m.files[project+"@"+ref+":"+path]
	if !ok {
		return "", integrations.ErrNotFound
	}
	return f, nil
}

func (m *memForge) CompareURL(project, from, to string) string {
	return forge.JoinURL(m.kind, m.RepoURL(project), from, to)
}

func (m *memForge) RepoURL(project string) string { return m.base + "/" + project }

func (m *memForge) addCommits(project, from, to string, msgs ...string) {
	var out []forge.Commit
	for _, msg := range msgs {
		out = append(out, forge.Commit{Message: msg, URL: m.base + "/" + project + "/commit/" + msg})
	}
	m.commits[project+"|"+from+".."+to] = out
}

// world is a packaging forge plus one upstream forge.
type world struct {
	pack *memForge
	up   *memForge
}

func newWorld() *world {
	return &world{
		pack: newMemForge(forge.KindGitLabSelfHosted, packBase),
		up:   newMemForge(forge.KindGitHub, upBase),
	}
}

func (w *world) packaging(base string) forge.Ref {
	return forge.Ref{Kind: forge.KindGitLabSelfHosted, BaseURL: packBase, Project: "packages/" + base}
}

// srcinfo stores a .SRCINFO for base at tag pointing at upstreamURL.
func (w *world) srcinfo(base, tag, upstreamURL, source string) {
	content := "pkgbase = " + base + "\n\turl = " + upstreamURL + "\n"
	if source != "" {
		content += "\tsource = " + source + "\n"
	}
	content += "\npkgname = " + base + "\n"
	w.pack.files["packages/"+base+"@"+tag+":"+locate.SrcInfoFile] = content
}

func (w *world) engine(opts ...Option) *Engine {
	opener := forge.OpenerFunc(func(ref forge.Ref) (forge.Backend, error) {
		switch ref.BaseURL {
		case packBase:
			return w.pack, nil
		case upBase:
			return w.up, nil
		}
		return nil, errs.New(errs.ErrCodeUnsupported, "no backend for %s", ref.BaseURL)
	})
	base := []Option{
		WithPackagingRef(w.packaging),
		WithLocator(locate.New(nil)),
		WithTimeout(5 * time.Second),
	}
	return NewEngine(opener, append(base, opts...)...)
}
