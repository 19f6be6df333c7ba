package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archlog/pkg/changelog"
	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/sink"
)

// maxBatch bounds the packages of one /v1/changelogs request.
const maxBatch = 500

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve changelogs over HTTP",
		Long: `Serve changelogs over HTTP.

  GET  /healthz          liveness
  POST /v1/changelog     {"name":"curl","current":"8.14.0-1","new":"8.14.1-1"}
  POST /v1/changelogs    [{"name":...}, ...]

Responses carry the run id in the X-Run-Id header.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			rt, err := c.newRuntime(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer rt.Close()

			var writer sink.Writer
			if cfg.MongoURI != "" {
				m, err := sink.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
				if err != nil {
					return err
				}
				defer m.Close(context.Background())
				writer = m
			}

			srv := &server{
				resolver: func() changelog.Resolver { return rt.engine() },
				workers:  cfg.Workers,
				writer:   writer,
				logger:   c.Logger,
			}
			return listen(ctx, addr, srv.routes(), c.Logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")
	return cmd
}

// server answers changelog requests. Every request gets its own resolver so
// memoized lookups never outlive a request.
type server struct {
	resolver func() changelog.Resolver
	workers  int
	writer   sink.Writer // optional
	logger   *log.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/v1", func(r chi.Router) {
		r.Post("/changelog", s.handleOne)
		r.Post("/changelogs", s.handleBatch)
	})
	return r
}

func (s *server) handleOne(w http.ResponseWriter, r *http.Request) {
	var pkg changelog.Package
	if err := json.NewDecoder(r.Body).Decode(&pkg); err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode package"))
		return
	}
	entries, ok := s.run(w, r, []changelog.Package{pkg})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, entries[0])
}

func (s *server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var pkgs []changelog.Package
	if err := json.NewDecoder(r.Body).Decode(&pkgs); err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode packages"))
		return
	}
	if len(pkgs) > maxBatch {
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "at most %d packages per request, got %d", maxBatch, len(pkgs)))
		return
	}
	entries, ok := s.run(w, r, pkgs)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, changelog.NewDocument(entries))
}

// run resolves pkgs, stores the run and sets the run id header. It reports
// false after writing an error response.
func (s *server) run(w http.ResponseWriter, r *http.Request, pkgs []changelog.Package) ([]changelog.Entry, bool) {
	ctx := r.Context()
	started := time.Now()
	entries, _, err := changelog.NewRunner(s.resolver(), changelog.WithWorkers(s.workers)).Run(ctx, pkgs)
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeTimeout, err, "request ended"))
		return nil, false
	}

	run := sink.Run{ID: uuid.NewString(), Started: started, Entries: entries}
	w.Header().Set("X-Run-Id", run.ID)
	if s.writer != nil {
		if err := s.writer.Write(ctx, run); err != nil {
			s.logger.Error("store run", "run", run.ID, "err", err)
		}
	}
	return entries, true
}

func (s *server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidPackage:
		status = http.StatusBadRequest
	case errs.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}
	writeJSON(w, status, map[string]string{"code": string(errs.GetCode(err)), "error": errs.UserMessage(err)})
}

// listen serves h on addr until ctx ends, then shuts down gracefully.
func listen(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
