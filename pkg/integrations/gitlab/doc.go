// Package gitlab implements the [forge.Backend] capability set on top of the
// GitLab REST API v4.
//
// One [Client] serves one instance: gitlab.com or a self-hosted server such
// as gitlab.archlinux.org (where the Arch packaging repositories live),
// gitlab.gnome.org, gitlab.freedesktop.org or invent.kde.org. Projects are
// addressed by their URL-encoded full path:
//
//	GET /api/v4/projects/archlinux%2Fpackaging%2Fpackages%2Fmesa/repository/tags
//
// Arch packaging tags encode the package version with the epoch separator
// written as a dash ("1:25.0.4-1" is tagged "1-25.0.4-1").
//
// [forge.Backend]: github.com/matzehuels/archlog/pkg/forge.Backend
package gitlab
