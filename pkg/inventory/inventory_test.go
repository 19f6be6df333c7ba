package inventory

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/archlog/pkg/changelog"
	errs "github.com/matzehuels/archlog/pkg/errors"
)

func TestParse(t *testing.T) {
	input := `
curl 8.14.0-1 -> 8.14.1-1
linux 6.9.1.arch1-1 -> 6.9.2.arch1-1 [ignored]

expat 2.6.4-1 -> 2.7.0-1
  bluez-libs 5.82-1 -> 5.82-2
`
	got, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []changelog.Package{
		{Name: "curl", CurrentVersion: "8.14.0-1", NewVersion: "8.14.1-1"},
		{Name: "expat", CurrentVersion: "2.6.4-1", NewVersion: "2.7.0-1"},
		{Name: "bluez-libs", CurrentVersion: "5.82-1", NewVersion: "5.82-2"},
	}
	if len(got) != len(want) {
		t.Fatalf("Parse = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pkg[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []string{
		"curl 8.14.0-1",
		"curl 8.14.0-1 => 8.14.1-1",
		"curl 1 -> 2 extra",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(strings.NewReader(in))
			if !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("Parse(%q) err = %v, want INVALID_INPUT", in, err)
			}
		})
	}
}

func TestRun(t *testing.T) {
	pkgs, err := Run(context.Background(), "sh", "-c", "echo 'zstd 1.5.6-1 -> 1.5.7-1'")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(pkgs) != 1 || pkgs[0].Name != "zstd" {
		t.Errorf("Run = %v", pkgs)
	}
}

func TestRunNothingToUpgrade(t *testing.T) {
	pkgs, err := Run(context.Background(), "sh", "-c", "exit 2")
	if err != nil || len(pkgs) != 0 {
		t.Errorf("Run = %v, %v; want empty list", pkgs, err)
	}
}

func TestRunFailure(t *testing.T) {
	_, err := Run(context.Background(), "sh", "-c", "echo 'cannot lock db' >&2; exit 1")
	if err == nil || !strings.Contains(err.Error(), "cannot lock db") {
		t.Errorf("err = %v", err)
	}
}

func TestFilter(t *testing.T) {
	pkgs := []changelog.Package{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	if got := Filter(pkgs, nil); len(got) != 3 {
		t.Errorf("Filter(nil) = %v", got)
	}
	got := Filter(pkgs, []string{"c", "a", "x"})
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("Filter = %v", got)
	}
}

func ExampleParse() {
	pkgs, _ := Parse(strings.NewReader("curl 8.14.0-1 -> 8.14.1-1\n"))
	for _, p := range pkgs {
		fmt.Println(p.Name, p.CurrentVersion, p.NewVersion)
	}
	// Output: curl 8.14.0-1 8.14.1-1
}
