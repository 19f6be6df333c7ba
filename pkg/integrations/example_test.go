package integrations_test

import (
	"fmt"

	"github.com/matzehuels/archlog/pkg/integrations"
)

func ExampleNormalizeRepoURL() {
	fmt.Println(integrations.NormalizeRepoURL("git@github.com:curl/curl.git"))
	fmt.Println(integrations.NormalizeRepoURL("git://git.kernel.org/pub/scm/git/git.git"))
	fmt.Println(integrations.NormalizeRepoURL("git+https://gitlab.gnome.org/GNOME/glib.git"))
	// Output:
	// https://github.com/curl/curl
	// https://git.kernel.org/pub/scm/git/git
	// https://gitlab.gnome.org/GNOME/glib
}

func ExamplePathEscape() {
	// GitLab project IDs are URL-encoded paths
	fmt.Println(integrations.PathEscape("archlinux/packaging/packages/linux"))
	// Output:
	// archlinux%2Fpackaging%2Fpackages%2Flinux
}

func Example_errors() {
	fmt.Println("ErrNotFound:", integrations.ErrNotFound)
	fmt.Println("ErrNetwork:", integrations.ErrNetwork)
	// Output:
	// ErrNotFound: resource not found
	// ErrNetwork: network error
}
