package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/archlog/pkg/changelog"
)

// FileSuffix ends every changelog file name.
const FileSuffix = "-changelog.json"

// JSONFile writes the run document to <Dir>/<YYYY-MM-DD>-changelog.json.
// A second run on the same day replaces the file.
type JSONFile struct {
	Dir string

	now func() time.Time
}

// NewJSONFile creates the sink. An empty dir is ~/archlog/changelog.
func NewJSONFile(dir string) (*JSONFile, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, "archlog", "changelog")
	}
	return &JSONFile{Dir: dir, now: time.Now}, nil
}

// Path is the file a run started at t is written to.
func (f *JSONFile) Path(t time.Time) string {
	return filepath.Join(f.Dir, t.Format(time.DateOnly)+FileSuffix)
}

// Write encodes the document with four-space indentation and without HTML
// escaping, then moves it into place.
func (f *JSONFile) Write(_ context.Context, run Run) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("create changelog dir: %w", err)
	}
	data, err := Encode(changelog.NewDocument(run.Entries))
	if err != nil {
		return err
	}

	t := run.Started
	if t.IsZero() {
		t = f.now()
	}
	path := f.Path(t)
	tmp, err := os.CreateTemp(f.Dir, ".changelog-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write changelog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write changelog: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Encode renders doc the way changelog files are written.
func Encode(doc changelog.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode changelog: %w", err)
	}
	return buf.Bytes(), nil
}

var _ Writer = (*JSONFile)(nil)
