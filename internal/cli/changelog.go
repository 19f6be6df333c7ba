package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archlog/pkg/changelog"
	"github.com/matzehuels/archlog/pkg/config"
	"github.com/matzehuels/archlog/pkg/inventory"
	"github.com/matzehuels/archlog/pkg/sink"
)

// changelogOptions holds the flags of the changelog command.
type changelogOptions struct {
	from    string
	output  string
	stdout  bool
	print   bool
	pick    bool
	noCache bool
	workers int
	timeout time.Duration
}

// changelogCommand creates the changelog command.
func (c *CLI) changelogCommand() *cobra.Command {
	var opts changelogOptions

	cmd := &cobra.Command{
		Use:   "changelog [package...]",
		Short: "Collect the changelogs of pending upgrades",
		Long: `Collect the packaging and upstream changelogs of every package with a
pending upgrade, as reported by checkupdates. Naming packages restricts the
run to them.

The result is written to <changelog_dir>/<YYYY-MM-DD>-changelog.json and, when
mongo_uri is configured, to MongoDB.`,
		Example: `  archlog changelog
  archlog changelog curl expat
  archlog changelog --select
  pacman -Qu | archlog changelog --from - --stdout`,
		Aliases: []string{"log"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(&cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runChangelog(cmd.Context(), cfg, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.from, "from", "", "read the upgrade list from a file (- for stdin) instead of running checkupdates")
	f.StringVarP(&opts.output, "output", "o", "", "changelog directory (overrides changelog_dir)")
	f.BoolVar(&opts.stdout, "stdout", false, "write the JSON document to stdout instead of a file")
	f.BoolVarP(&opts.print, "print", "p", false, "print every release step")
	f.BoolVarP(&opts.pick, "select", "s", false, "choose packages interactively")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the response cache")
	f.IntVarP(&opts.workers, "workers", "w", 0, "packages resolved concurrently (overrides workers)")
	f.DurationVar(&opts.timeout, "timeout", 0, "per-package deadline (overrides package_timeout)")

	return cmd
}

func (o changelogOptions) apply(cfg *config.Config) {
	if o.output != "" {
		cfg.ChangelogDir = o.output
	}
	if o.workers != 0 {
		cfg.Workers = o.workers
	}
	if o.timeout != 0 {
		cfg.PackageTimeout.Duration = o.timeout
	}
}

func (c *CLI) runChangelog(ctx context.Context, cfg config.Config, opts changelogOptions, names []string) error {
	logger := loggerFromContext(ctx)
	if opts.stdout {
		out = os.Stderr
	}

	pkgs, err := readInventory(ctx, opts.from)
	if err != nil {
		return err
	}
	pkgs = inventory.Filter(pkgs, names)
	if opts.pick && len(pkgs) > 0 {
		if pkgs, err = selectPackages(pkgs); err != nil {
			return err
		}
	}
	if len(pkgs) == 0 {
		printInfo("Nothing to upgrade")
		return nil
	}

	rt, err := c.newRuntime(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer rt.Close()

	writer, closeWriter, err := newWriter(ctx, cfg, opts.stdout)
	if err != nil {
		return err
	}
	defer closeWriter()

	spin := newSpinner(ctx, fmt.Sprintf("Resolving %d packages", len(pkgs)))
	runner := changelog.NewRunner(rt.engine(),
		changelog.WithWorkers(cfg.Workers),
		changelog.WithRunnerLogger(logger),
		changelog.WithProgress(func(done, total int, e changelog.Entry) {
			spin.Pause(func() { printEntry(done, total, e) })
			spin.Update("Resolving packages [%d/%d]", done, total)
		}),
	)

	started := time.Now()
	prog := newProgress(logger)
	spin.Start()
	entries, sum, runErr := runner.Run(ctx, pkgs)
	spin.Stop()
	prog.done(fmt.Sprintf("Resolved %d packages", sum.Total()))

	if opts.print {
		for _, e := range entries {
			if len(e.Steps) == 0 {
				continue
			}
			printInfo("%s %s", StyleTitle.Render(e.Name), StyleDim.Render(e.Source.URL()))
			for _, s := range e.Steps {
				printStep(s)
			}
		}
	}

	printSummary(sum)
	if runErr != nil {
		return runErr
	}

	run := sink.NewRun(started, entries)
	if err := writer.Write(ctx, run); err != nil {
		return fmt.Errorf("write changelog: %w", err)
	}
	if f, ok := fileSink(writer); ok && !opts.stdout {
		printSuccess("Changelog written")
		printFile(f.Path(started))
	}
	logger.Debug("run stored", "run", run.ID)
	return nil
}

// readInventory reads the upgrade list from path, stdin for "-", or
// checkupdates when path is empty.
func readInventory(ctx context.Context, path string) ([]changelog.Package, error) {
	switch path {
	case "":
		spin := newSpinner(ctx, "Checking for upgrades")
		spin.Start()
		defer spin.Stop()
		return inventory.Checkupdates(ctx)
	case "-":
		return inventory.Parse(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upgrade list: %w", err)
	}
	defer f.Close()
	return inventory.Parse(f)
}

// newWriter assembles the configured sinks.
func newWriter(ctx context.Context, cfg config.Config, stdout bool) (sink.Writer, func(), error) {
	var w sink.Multi
	closers := []func(){}

	if stdout {
		w = append(w, streamWriter{os.Stdout})
	} else {
		f, err := sink.NewJSONFile(cfg.ChangelogDir)
		if err != nil {
			return nil, nil, err
		}
		w = append(w, f)
	}
	if cfg.MongoURI != "" {
		m, err := sink.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		w = append(w, m)
		closers = append(closers, func() { _ = m.Close(context.Background()) })
	}
	return w, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}

func fileSink(w sink.Writer) (*sink.JSONFile, bool) {
	for _, s := range w.(sink.Multi) {
		if f, ok := s.(*sink.JSONFile); ok {
			return f, true
		}
	}
	return nil, false
}

// streamWriter writes the document to an io.Writer.
type streamWriter struct {
	w io.Writer
}

func (s streamWriter) Write(_ context.Context, run sink.Run) error {
	data, err := sink.Encode(changelog.NewDocument(run.Entries))
	if err != nil {
		return err
	}
	_, err = s.w.Write(data)
	return err
}
