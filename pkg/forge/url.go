package forge

import "strings"

// JoinURL builds a compare link for kind with trailing-slash normalization:
//
//	gitlab, gitlab-selfhosted: <repo>/-/compare/<from>...<to>
//	github:                    <repo>/compare/<from>...<to>
//	cgit:                      <repo>/log/?qt=range&q=<from>..<to>
//
// It returns "" for unresolved references.
func JoinURL(kind Kind, repoURL, from, to string) string {
	repo := strings.TrimRight(repoURL, "/")
	if repo == "" {
		return ""
	}
	switch kind {
	case KindGitHub:
		return repo + "/compare/" + from + "..." + to
	case KindGitLab, KindGitLabSelfHosted:
		return repo + "/-/compare/" + from + "..." + to
	case KindCgit:
		return repo + "/log/?qt=range&q=" + from + ".." + to
	default:
		return ""
	}
}
