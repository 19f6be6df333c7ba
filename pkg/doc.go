// Package pkg holds the libraries behind archlog, an Arch Linux upgrade
// changelog tool.
//
// # Overview
//
// For every package with a pending upgrade, archlog finds the packaging
// repository and the upstream repository, maps the installed and the
// available version to tags in both, and collects the commits in between.
//
//	checkupdates   →  [inventory]
//	                      ↓
//	archlinux.org  →  [integrations/archlinux]  (pkgbase, upstream url)
//	                      ↓
//	.SRCINFO, .nvchecker.toml  →  [locate]      (upstream forge.Ref)
//	                      ↓
//	tag lists      →  [tags]  with  [version]   (resolve, walk)
//	                      ↓
//	[changelog]  Engine, Runner, Document       (classify steps, assemble)
//	                      ↓
//	[sink]       dated JSON file, MongoDB
//
// # Forges
//
// [forge] defines the Backend capability set and the Ref value. GitHub,
// GitLab (gitlab.com and self-hosted) and cgit implement it under
// [integrations]; [hosting] builds one backend per host and shares the
// [cache], HTTP client and [httputil] retry policy between them.
//
// # Ambient
//
// [errors] carries the error codes every layer reports, [config] loads the
// TOML settings and [observability] exposes hooks the CLI logs from.
//
// [inventory]: https://pkg.go.dev/github.com/matzehuels/archlog/pkg/inventory
// [integrations/archlinux]: https://pkg.go.dev/github.com/matzehuels/archlog/pkg/integrations/archlinux
// [locate]: https://pkg.go.dev/github.com/matzehuels/archlog/pkg/locate
// [tags]: https://pkg.go.dev/github.com/matzehuels/archlog/pkg/tags
// [version]: https://pkg.go.dev/github.com/matzehuels/archlog/pkg/version
// [changelog]: https://pkg.go.dev/github.com/matzehuels/archlog/pkg/changelog
// [sink]: https://pkg.go.dev/github.com/matzehuels/archlog/pkg/sink
// [forge]: https://pkg.go.dev/github.com/matzehuels/archlog/pkg/forge
// [integrations]: https://pkg.go.dev/github.com/matzehuels/archlog/pkg/integrations
// [hosting]: https://pkg.go.dev/github.com/matzehuels/archlog/pkg/hosting
// [cache]: https://pkg.go.dev/github.com/matzehuels/archlog/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/archlog/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/archlog/pkg/errors
// [config]: https://pkg.go.dev/github.com/matzehuels/archlog/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/archlog/pkg/observability
package pkg
