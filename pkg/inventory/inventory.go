// Package inventory lists the packages with a pending upgrade.
//
// The input is the output of checkupdates(8) or pacman -Qu, one package per
// line:
//
//	curl 8.14.0-1 -> 8.14.1-1
//	linux 6.9.1.arch1-1 -> 6.9.2.arch1-1 [ignored]
package inventory

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"github.com/matzehuels/archlog/pkg/changelog"
	errs "github.com/matzehuels/archlog/pkg/errors"
)

// DefaultCommand is the command run by [Checkupdates].
var DefaultCommand = []string{"checkupdates"}

// Parse reads upgrade lines from r. Blank lines and lines marked [ignored]
// are skipped. A malformed line is an INVALID_INPUT error naming its number.
func Parse(r io.Reader) ([]changelog.Package, error) {
	var pkgs []changelog.Package
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasSuffix(line, "[ignored]") {
			continue
		}
		f := strings.Fields(line)
		if len(f) != 4 || f[2] != "->" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "line %d: want \"name old -> new\", got %q", n, line)
		}
		pkgs = append(pkgs, changelog.Package{Name: f[0], CurrentVersion: f[1], NewVersion: f[3]})
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read upgrade list")
	}
	return pkgs, nil
}

// Checkupdates runs [DefaultCommand] and parses its output. checkupdates
// exits 2 when nothing is upgradable; that is an empty list, not an error.
func Checkupdates(ctx context.Context) ([]changelog.Package, error) {
	return Run(ctx, DefaultCommand[0], DefaultCommand[1:]...)
}

// Run executes name with args and parses its standard output.
func Run(ctx context.Context, name string, args ...string) ([]changelog.Package, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) && exit.ExitCode() == 2 && stdout.Len() == 0 {
			return nil, nil
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "%s: %s", name, msg)
	}
	return Parse(&stdout)
}

// Filter keeps the packages whose name is in names, in pkgs order. An empty
// names keeps everything.
func Filter(pkgs []changelog.Package, names []string) []changelog.Package {
	if len(names) == 0 {
		return pkgs
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []changelog.Package
	for _, p := range pkgs {
		if want[p.Name] {
			out = append(out, p)
		}
	}
	return out
}
