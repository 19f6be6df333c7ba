package changelog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/archlog/pkg/forge"
)

// DefaultWorkers is the number of packages resolved concurrently.
const DefaultWorkers = 4

// Resolver is the per-package operation a Runner schedules; *Engine
// implements it.
type Resolver interface {
	Resolve(ctx context.Context, pkg Package) Entry
}

// Summary counts the outcomes of a run.
type Summary struct {
	Resolved   []string      `json:"resolved"`
	Unresolved []string      `json:"unresolved"`
	Failed     []string      `json:"failed"`
	Duration   time.Duration `json:"duration"`
}

// Total is the number of packages in the run.
func (s Summary) Total() int {
	return len(s.Resolved) + len(s.Unresolved) + len(s.Failed)
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d resolved, %d unresolved, %d failed", len(s.Resolved), len(s.Unresolved), len(s.Failed))
	if len(s.Unresolved) > 0 {
		fmt.Fprintf(&b, "\nunresolved: %s", strings.Join(s.Unresolved, ", "))
	}
	if len(s.Failed) > 0 {
		fmt.Fprintf(&b, "\nfailed: %s", strings.Join(s.Failed, ", "))
	}
	return b.String()
}

// Runner resolves a batch of packages on a bounded worker pool.
type Runner struct {
	resolver Resolver
	workers  int
	logger   *log.Logger
	progress func(done, total int, e Entry)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets the pool size.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithRunnerLogger sets the logger for run-level messages.
func WithRunnerLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProgress calls fn after every finished package. Calls are serialized.
func WithProgress(fn func(done, total int, e Entry)) RunnerOption {
	return func(r *Runner) { r.progress = fn }
}

// NewRunner creates a runner around resolver.
func NewRunner(resolver Resolver, opts ...RunnerOption) *Runner {
	r := &Runner{resolver: resolver, workers: DefaultWorkers, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run resolves pkgs and returns their entries in input order. A failing
// package never stops the batch. When ctx is canceled no new package starts,
// the remaining ones are reported failed and ctx.Err() is returned.
func (r *Runner) Run(ctx context.Context, pkgs []Package) ([]Entry, Summary, error) {
	start := time.Now()
	entries := make([]Entry, len(pkgs))
	done := make(chan int, len(pkgs))

	g := new(errgroup.Group)
	g.SetLimit(r.workers)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		n := 0
		for i := range done {
			n++
			if r.progress != nil {
				r.progress(n, len(pkgs), entries[i])
			}
		}
	}()

	for i, pkg := range pkgs {
		if ctx.Err() != nil {
			entries[i] = Failed(pkg, forge.Unresolved, ctx.Err())
			continue
		}
		i, pkg := i, pkg
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				entries[i] = Failed(pkg, forge.Unresolved, err)
			} else {
				entries[i] = r.resolver.Resolve(ctx, pkg)
			}
			done <- i
			return nil
		})
	}
	_ = g.Wait()
	close(done)
	<-finished

	sum := Summary{Duration: time.Since(start)}
	for _, e := range entries {
		switch e.Status {
		case StatusResolved:
			sum.Resolved = append(sum.Resolved, e.Name)
		case StatusUnresolved:
			sum.Unresolved = append(sum.Unresolved, e.Name)
		default:
			sum.Failed = append(sum.Failed, e.Name)
		}
	}
	r.logger.Debug("run finished", "packages", len(pkgs), "duration", sum.Duration.Round(time.Millisecond))
	return entries, sum, ctx.Err()
}
