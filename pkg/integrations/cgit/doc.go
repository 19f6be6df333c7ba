// Package cgit implements the [forge.Backend] capability set by scraping
// cgit web frontends such as git.kernel.org.
//
// Pages used:
//
//   - <repo>/refs/tags: tag list
//   - <repo>/log/?qt=range&q=<from>..<to>: commits of a range, paged by [next]
//   - <repo>/plain/<path>?h=<ref>: raw file content
//
// HTML is parsed with golang.org/x/net/html.
//
// [forge.Backend]: github.com/matzehuels/archlog/pkg/forge.Backend
package cgit
