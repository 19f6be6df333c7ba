package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Resolved 42 packages (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports engine and HTTP events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnPackageStart(_ context.Context, pkg string) {
	h.logger.Debug("start", "package", pkg)
}

func (h *logHooks) OnPackageComplete(_ context.Context, pkg, status string, steps int, d time.Duration, err error) {
	h.logger.Debug("complete", "package", pkg, "status", status, "steps", steps, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnStepResolved(_ context.Context, pkg, tag, releaseType string) {
	h.logger.Debug("release", "package", pkg, "tag", tag, "type", releaseType)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "host", host, "path", path, "err", err)
}

func (h *logHooks) OnRateLimited(_ context.Context, host string, wait time.Duration) {
	h.logger.Warn("rate limited", "host", host, "wait", wait.Round(time.Second))
}
