// Package sink persists the entries of a run.
//
// [JSONFile] writes the dated changelog document the CLI produces by
// default. [Mongo] stores one document per package for later querying.
// [Multi] writes to several sinks at once.
package sink

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/archlog/pkg/changelog"
)

// Run is one batch of resolved packages.
type Run struct {
	ID      string
	Started time.Time
	Entries []changelog.Entry
}

// NewRun stamps entries with a fresh run id.
func NewRun(started time.Time, entries []changelog.Entry) Run {
	return Run{ID: uuid.NewString(), Started: started, Entries: entries}
}

// Writer persists a run.
type Writer interface {
	Write(ctx context.Context, run Run) error
}

// Multi writes to every writer and joins their errors. A failing writer does
// not stop the others.
type Multi []Writer

func (m Multi) Write(ctx context.Context, run Run) error {
	var errs []error
	for _, w := range m {
		if err := w.Write(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
