package github

import (
	"regexp"
	"strings"

	errs "github.com/matzehuels/archlog/pkg/errors"
)

// Regex patterns for GitHub resource validation.
var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ParseProject splits "owner/repo" and validates both parts.
func ParseProject(project string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(project, "/")
	if !ok || strings.Contains(repo, "/") {
		return "", "", errs.New(errs.ErrCodeInvalidInput, "invalid GitHub project %q: use owner/repo", project)
	}
	if !validOwner.MatchString(owner) {
		return "", "", errs.New(errs.ErrCodeInvalidInput, "invalid GitHub owner %q", owner)
	}
	if !validRepo.MatchString(repo) || repo == "." || repo == ".." {
		return "", "", errs.New(errs.ErrCodeInvalidInput, "invalid GitHub repository %q", repo)
	}
	return owner, repo, nil
}

// ValidateProject reports whether project is a well-formed "owner/repo".
func ValidateProject(project string) error {
	_, _, err := ParseProject(project)
	return err
}
