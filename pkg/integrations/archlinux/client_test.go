package archlinux

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/archlog/pkg/cache"
	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/integrations"
)

const searchBody = `{"version":2,"limit":250,"valid":true,"results":[
 {"pkgname":"linux","pkgbase":"linux","repo":"core","arch":"x86_64","pkgver":"6.15.1.arch1","pkgrel":"1","epoch":0,
  "url":"https://github.com/archlinux/linux","pkgdesc":"The Linux kernel and modules"},
 {"pkgname":"linux","pkgbase":"linux","repo":"core-testing","arch":"x86_64","pkgver":"6.15.2.arch1","pkgrel":"1","epoch":0,
  "url":"https://github.com/archlinux/linux","pkgdesc":"The Linux kernel and modules"}
]}`

func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	c := NewClient(cache.NewNullCache(), time.Hour, integrations.WithHTTPClient(server.Client()))
	c.baseURL = server.URL
	return c
}

func newServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/packages/search/json/" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("name") == "linux" {
			w.Write([]byte(searchBody))
			return
		}
		w.Write([]byte(`{"results":[]}`))
	}))
}

func TestLookup(t *testing.T) {
	server := newServer(t)
	defer server.Close()

	pkg, err := testClient(t, server).Lookup(context.Background(), "linux", []string{"core", "extra"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if pkg.Repo != "core" || pkg.Base != "linux" || pkg.URL != "https://github.com/archlinux/linux" {
		t.Errorf("Lookup = %+v", pkg)
	}
	if pkg.FullVersion() != "6.15.1.arch1-1" {
		t.Errorf("FullVersion = %q", pkg.FullVersion())
	}
}

func TestLookupAmbiguous(t *testing.T) {
	server := newServer(t)
	defer server.Close()

	_, err := testClient(t, server).Lookup(context.Background(), "linux", []string{"core", "core-testing"})
	if !errs.Is(err, errs.ErrCodeAmbiguousSource) {
		t.Errorf("err = %v, want AMBIGUOUS_SOURCE", err)
	}
}

func TestLookupNotFound(t *testing.T) {
	server := newServer(t)
	defer server.Close()

	_, err := testClient(t, server).Lookup(context.Background(), "does-not-exist", nil)
	if !errs.Is(err, errs.ErrCodePackageNotFound) {
		t.Errorf("err = %v, want PACKAGE_NOT_FOUND", err)
	}
}

func TestFullVersionEpoch(t *testing.T) {
	p := Package{Version: "1.16.5", Release: "2", Epoch: 1}
	if got := p.FullVersion(); got != "1:1.16.5-2" {
		t.Errorf("FullVersion = %q", got)
	}
}

func TestProjectName(t *testing.T) {
	tests := map[string]string{
		"curl":         "curl",
		"gtk2+":        "gtk2plus",
		"mysql++":      "mysqlplusplus",
		"dvd+rw-tools": "dvd-rw-tools",
		"tree":         "unix-tree",
		"libsigc++":    "libsigcplusplus",
		"foo__bar":     "foo-bar",
		"lib32-mesa":   "lib32-mesa",
	}
	for in, want := range tests {
		if got := ProjectName(in); got != want {
			t.Errorf("ProjectName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPackagingRef(t *testing.T) {
	ref := PackagingRef("mesa")
	if got := ref.URL(); got != "https://gitlab.archlinux.org/archlinux/packaging/packages/mesa" {
		t.Errorf("URL = %q", got)
	}
}
