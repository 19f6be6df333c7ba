// Package changelog resolves what changed between two versions of a package.
//
// For a [Package] with an installed and an available version, the [Engine]
//
//  1. locates the upstream repository (package locate),
//  2. maps both versions to packaging repository tags (package tags),
//  3. walks every intermediate packaging release,
//  4. classifies each step as a packaging-only (minor) or upstream (major)
//     release, and
//  5. collects the packaging and upstream commits of each step.
//
// The [Runner] does this for a batch of packages on a bounded worker pool.
// Entries render to the run-level JSON document with [NewDocument].
package changelog

import (
	"github.com/matzehuels/archlog/pkg/forge"
)

// Strings written in place of an upstream commit list.
const (
	NotApplicable       = "- Not applicable, minor release -"
	NoUpstreamChangelog = "- ERROR: Couldn't find origin changelog. Check the logs for further information -"
)

// Package is one upgradable package.
type Package struct {
	Name           string `json:"name"`
	Base           string `json:"base,omitempty"` // pkgbase when it differs from Name
	CurrentVersion string `json:"current"`
	NewVersion     string `json:"new"`
	Description    string `json:"description,omitempty"`
}

// BaseName returns Base, or Name when no base is known.
func (p Package) BaseName() string {
	if p.Base != "" {
		return p.Base
	}
	return p.Name
}

// ReleaseType classifies a step.
type ReleaseType string

const (
	// Minor is a packaging-only release: the upstream version is unchanged.
	Minor ReleaseType = "minor"
	// Major moves the upstream version.
	Major ReleaseType = "major"
)

// Origin says what OriginCommits of a step holds.
type Origin int

const (
	// OriginCommits means the upstream commit list is populated.
	OriginCommits Origin = iota
	// OriginNotApplicable marks a minor release.
	OriginNotApplicable
	// OriginMissing marks a major release whose upstream commits could not be
	// retrieved.
	OriginMissing
)

// Step is one packaging release between the installed and the available
// version.
type Step struct {
	VersionTag  string // packaging tag this step arrives at
	From        string // packaging tag this step leaves
	ReleaseType ReleaseType

	ArchCommits   []forge.Commit
	OriginCommits []forge.Commit
	Origin        Origin

	CompareURLArch   string
	CompareURLOrigin string // "" for minor releases

	// Degraded marks a direct step taken because the installed or the
	// available version has no packaging tag.
	Degraded bool

	// Err holds the non-fatal problem that left part of the step empty.
	Err error
}

// Status is the outcome of resolving one package.
type Status string

const (
	StatusResolved   Status = "resolved"
	StatusUnresolved Status = "unresolved"
	StatusFailed     Status = "failed"
)

// Entry is the changelog of one package.
type Entry struct {
	Package
	Source forge.Ref
	Steps  []Step
	Status Status
	Err    error
}

// Resolved assembles the entry of a located package.
func Resolved(pkg Package, source forge.Ref, steps []Step) Entry {
	return Entry{Package: pkg, Source: source, Steps: steps, Status: StatusResolved}
}

// Unresolved is the entry of a package whose repository was not found.
func Unresolved(pkg Package, err error) Entry {
	return Entry{Package: pkg, Source: forge.Unresolved, Status: StatusUnresolved, Err: err}
}

// Failed is the entry of a package that could not be processed.
func Failed(pkg Package, source forge.Ref, err error) Entry {
	return Entry{Package: pkg, Source: source, Status: StatusFailed, Err: err}
}
