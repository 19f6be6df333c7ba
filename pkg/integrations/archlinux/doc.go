// Package archlinux reads packaging metadata from archlinux.org and maps
// package bases to their packaging repositories on gitlab.archlinux.org.
//
//	client := archlinux.NewClient(backend, time.Hour)
//	pkg, err := client.Lookup(ctx, "curl", []string{"core", "extra"})
//	ref := archlinux.PackagingRef(pkg.Base)
//	// ref.URL() == "https://gitlab.archlinux.org/archlinux/packaging/packages/curl"
package archlinux
