package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/archlog/pkg/changelog"
	"github.com/matzehuels/archlog/pkg/config"
	"github.com/matzehuels/archlog/pkg/forge"
	"github.com/matzehuels/archlog/pkg/sink"
)

// captureOut redirects status output for the duration of a test.
func captureOut(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })
	return &buf
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := map[string]bool{"changelog": false, "serve": false, "cache": false, "config": false, "completion": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing command %q", name)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"completion", "bash"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "archlog") {
		t.Error("bash completion should mention archlog")
	}
}

func TestConfigCommand(t *testing.T) {
	buf := captureOut(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("workers = 6\ngithub_token = \"secret\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"--config", path, "config"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if !strings.Contains(got, "workers = 6") || strings.Contains(got, "secret") {
		t.Errorf("output = %s", got)
	}
}

func TestChangelogOptionsApply(t *testing.T) {
	cfg := config.Default()
	changelogOptions{output: "/tmp/out", workers: 9, timeout: time.Second}.apply(&cfg)
	if cfg.ChangelogDir != "/tmp/out" || cfg.Workers != 9 || cfg.PackageTimeout.Duration != time.Second {
		t.Errorf("cfg = %+v", cfg)
	}

	cfg = config.Default()
	changelogOptions{}.apply(&cfg)
	if cfg.Workers != config.Default().Workers {
		t.Error("zero flags should keep the config")
	}
}

func TestReadInventoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "updates")
	if err := os.WriteFile(path, []byte("curl 1-1 -> 2-1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	pkgs, err := readInventory(context.Background(), path)
	if err != nil || len(pkgs) != 1 || pkgs[0].Name != "curl" {
		t.Errorf("readInventory = %v, %v", pkgs, err)
	}
	if _, err := readInventory(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestStreamWriter(t *testing.T) {
	var buf bytes.Buffer
	pkg := changelog.Package{Name: "curl", CurrentVersion: "1-1", NewVersion: "2-1"}
	w, closeWriter, err := newWriter(context.Background(), config.Default(), true)
	if err != nil {
		t.Fatal(err)
	}
	defer closeWriter()
	if _, ok := fileSink(w); ok {
		t.Error("--stdout should not write a file")
	}

	sw := streamWriter{&buf}
	err = sw.Write(context.Background(), sinkRun(changelog.Unresolved(pkg, errors.New("x"))))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\"curl\": {\n        \"base package\": \"-\"") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestPrintEntry(t *testing.T) {
	buf := captureOut(t)
	pkg := changelog.Package{Name: "expat", CurrentVersion: "2.6.4-1", NewVersion: "2.7.0-1"}
	src := forge.Ref{Kind: forge.KindGitHub, BaseURL: "https://github.com", Project: "libexpat/libexpat"}

	printEntry(1, 12, changelog.Resolved(pkg, src, []changelog.Step{
		{ReleaseType: changelog.Major}, {ReleaseType: changelog.Minor},
	}))
	printEntry(2, 12, changelog.Unresolved(pkg, nil))
	printEntry(3, 12, changelog.Failed(pkg, src, errors.New("TIMEOUT: expat exceeded 2m0s")))

	got := buf.String()
	for _, want := range []string{"[ 1/12]", "2 releases", "1 major", "no upstream repository", "exceeded 2m0s"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	buf := captureOut(t)
	printSummary(changelog.Summary{
		Resolved:   []string{"a", "b"},
		Unresolved: []string{"c", "d", "e", "f", "g", "h", "i"},
		Failed:     []string{"z"},
	})
	got := buf.String()
	if !strings.Contains(got, "c, d, e, f, g (+2)") || !strings.Contains(got, "unresolved") {
		t.Errorf("output = %s", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{0: "0 B", 1023: "1023 B", 2048: "2.0 KiB", 5 << 20: "5.0 MiB"}
	for n, want := range tests {
		if got := formatBytes(n); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestDirUsage(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "ab"), 0o755)
	os.WriteFile(filepath.Join(dir, "ab", "1.json"), []byte("1234"), 0o600)
	os.WriteFile(filepath.Join(dir, "ab", "2.json"), []byte("56"), 0o600)

	n, size, err := dirUsage(dir)
	if err != nil || n != 2 || size != 6 {
		t.Errorf("dirUsage = %d, %d, %v", n, size, err)
	}
	if n, _, err := dirUsage(filepath.Join(dir, "missing")); err != nil || n != 0 {
		t.Errorf("missing dir = %d, %v", n, err)
	}
}

func sinkRun(entries ...changelog.Entry) sink.Run {
	return sink.Run{ID: "test", Started: time.Now(), Entries: entries}
}
