package locate

import (
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/forge"
)

// DescriptorFile is the version-check descriptor kept next to the PKGBUILD.
const DescriptorFile = ".nvchecker.toml"

// descriptorEntry is the subset of an nvchecker table naming a repository.
type descriptorEntry struct {
	Source string `toml:"source"`
	GitHub string `toml:"github"`
	GitLab string `toml:"gitlab"`
	Host   string `toml:"host"`
	Git    string `toml:"git"`
	URL    string `toml:"url"`
}

// FromDescriptor reads the table named key from nvchecker content and returns
// the repository it declares. ok is false when the table is missing or names
// no repository on a known forge.
func FromDescriptor(content, key string) (ref forge.Ref, ok bool, err error) {
	if strings.TrimSpace(content) == "" {
		return forge.Unresolved, false, nil
	}
	var doc map[string]descriptorEntry
	if err := toml.Unmarshal([]byte(content), &doc); err != nil {
		return forge.Unresolved, false, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse %s", DescriptorFile)
	}
	entry, found := doc[key]
	if !found {
		return forge.Unresolved, false, nil
	}
	ref, ok = entry.ref()
	return ref, ok, nil
}

func (e descriptorEntry) ref() (forge.Ref, bool) {
	switch {
	case e.Source == "github" && e.GitHub != "":
		return forge.Ref{Kind: forge.KindGitHub, BaseURL: githubBase, Project: strings.Trim(e.GitHub, "/")}, true

	case e.Source == "gitlab" && e.GitLab != "":
		host := strings.ToLower(strings.TrimSpace(e.Host))
		if host == "" || host == "gitlab.com" {
			return forge.Ref{Kind: forge.KindGitLab, BaseURL: gitlabBase, Project: strings.Trim(e.GitLab, "/")}, true
		}
		return forge.Ref{Kind: forge.KindGitLabSelfHosted, BaseURL: "https://" + host, Project: strings.Trim(e.GitLab, "/")}, true

	case e.Git != "":
		return ParseURL(e.Git)

	case e.URL != "":
		// Only trusted when it points at a forge; regex sources usually
		// scrape a download page.
		return ParseURL(e.URL)
	}
	return forge.Unresolved, false
}
