package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// packageNameRegex matches pacman package names: lowercase alphanumerics
// and @._+- where the name may not start with a hyphen or a dot.
var packageNameRegex = regexp.MustCompile(`^[a-z0-9@_+][a-z0-9@._+-]*$`)

// versionRegex matches a full pacman version string ([epoch:]pkgver[-pkgrel]).
var versionRegex = regexp.MustCompile(`^([0-9]+:)?[A-Za-z0-9._+~]+(-[0-9]+(\.[0-9]+)?)?$`)

// ValidatePackageName validates a package name for safety and correctness.
//
// The rules follow makepkg:
//   - No empty names
//   - Maximum length of 256 characters
//   - Lowercase alphanumerics and @ . _ + - only
//   - Must not start with a hyphen or dot
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	if !packageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid package name: %q", name)
	}

	return nil
}

// ValidateVersion validates a pacman version string such as "1:2.3.4-1".
func ValidateVersion(v string) error {
	if v == "" {
		return New(ErrCodeInvalidInput, "version cannot be empty")
	}
	if !versionRegex.MatchString(v) {
		return New(ErrCodeInvalidInput, "invalid version: %q", v)
	}
	return nil
}

// ValidateProjectPath validates a forge project path ("owner/repo",
// "group/sub/project"). It prevents path traversal and absolute paths.
func ValidateProjectPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "project path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "project path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "project path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidInput, "project path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "project path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidInput, "project path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https) and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidURL, "URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidURL, err, "malformed URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidURL, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidURL, "URL has no host")
	}

	return nil
}
