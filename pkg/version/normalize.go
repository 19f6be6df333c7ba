package version

import (
	"regexp"
	"strings"
)

// Prefixes stripped from tag names before comparison, longest first.
var tagPrefixes = []string{"release-", "release_", "version-", "ver-", "rel-", "r_", "r-", "v."}

var (
	separators   = strings.NewReplacer("_", ".", "-", ".", "+", ".")
	leadingV     = regexp.MustCompile(`^v(\d)`)
	repeatedDots = regexp.MustCompile(`\.{2,}`)
)

// Normalize maps a tag name or version string to a comparable form:
//
//   - lowercase
//   - a <project>- / <project>_ prefix is removed (curl-8_14_1 → 8_14_1)
//   - release-/RELEASE_/R_/v prefixes are removed
//   - epoch and package release are removed (1:2.0-3 → 2.0)
//   - '_', '-' and '+' become '.'
//
// project may be empty.
func Normalize(s, project string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.LastIndex(project, "/"); i >= 0 {
		project = project[i+1:]
	}
	project = strings.ToLower(project)

	if project != "" {
		for _, sep := range []string{"-", "_", "."} {
			if rest, ok := strings.CutPrefix(s, project+sep); ok && rest != "" {
				s = rest
				break
			}
		}
	}
	for _, p := range tagPrefixes {
		if rest, ok := strings.CutPrefix(s, p); ok && rest != "" {
			s = rest
			break
		}
	}
	s = leadingV.ReplaceAllString(s, "$1")

	t := Parse(s)
	s = separators.Replace(t.Upstream)
	s = repeatedDots.ReplaceAllString(s, ".")
	return strings.Trim(s, ".")
}
