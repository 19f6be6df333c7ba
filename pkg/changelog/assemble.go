package changelog

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/archlog/pkg/forge"
)

// Document is the run-level output: entries keyed by package name. JSON
// encoding sorts the keys.
type Document map[string]Entry

// NewDocument collects entries. A later entry for the same name wins.
func NewDocument(entries []Entry) Document {
	doc := make(Document, len(entries))
	for _, e := range entries {
		doc[e.Name] = e
	}
	return doc
}

type entryJSON struct {
	Base     string     `json:"base package"`
	Current  string     `json:"current version"`
	New      string     `json:"new version"`
	Versions []stepJSON `json:"versions"`
}

type stepJSON struct {
	VersionTag    string        `json:"version-tag"`
	ReleaseType   ReleaseType   `json:"release-type"`
	CompareArch   string        `json:"compare-url-tags-arch"`
	CompareOrigin string        `json:"compare-url-tags-origin"`
	Changelog     changelogJSON `json:"changelog"`
}

type changelogJSON struct {
	Arch   []forge.Commit `json:"changelog Arch package"`
	Origin any            `json:"changelog origin package"`
}

// MarshalJSON renders the entry in the changelog file schema. Unresolved and
// failed entries keep the shape with an empty version list.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{
		Base:     "-",
		Current:  e.CurrentVersion,
		New:      e.NewVersion,
		Versions: []stepJSON{},
	}
	if e.Base != "" && e.Base != e.Name {
		out.Base = e.Base
	}
	if e.Status == StatusResolved {
		for _, s := range e.Steps {
			out.Versions = append(out.Versions, s.render())
		}
	}
	// HTML escaping is left to the outer encoder.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (s Step) render() stepJSON {
	out := stepJSON{
		VersionTag:    s.VersionTag,
		ReleaseType:   s.ReleaseType,
		CompareArch:   s.CompareURLArch,
		CompareOrigin: s.CompareURLOrigin,
		Changelog:     changelogJSON{Arch: nonNil(s.ArchCommits)},
	}
	switch s.Origin {
	case OriginNotApplicable:
		out.CompareOrigin = NotApplicable
		out.Changelog.Origin = []string{NotApplicable}
	case OriginMissing:
		if out.CompareOrigin == "" {
			out.CompareOrigin = NoUpstreamChangelog
		}
		out.Changelog.Origin = []string{NoUpstreamChangelog}
	default:
		out.Changelog.Origin = nonNil(s.OriginCommits)
	}
	return out
}

func nonNil(c []forge.Commit) []forge.Commit {
	if c == nil {
		return []forge.Commit{}
	}
	return c
}
