package httputil

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// HostGate records, per host, the time until which requests must not be
// sent. Workers sharing a gate stop hammering a forge as soon as any one of
// them sees a rate-limit response.
type HostGate struct {
	mu    sync.Mutex
	until map[string]time.Time
}

// NewHostGate returns an empty gate.
func NewHostGate() *HostGate {
	return &HostGate{until: make(map[string]time.Time)}
}

// Block marks host unavailable until t. An earlier t never shortens an
// existing block.
func (g *HostGate) Block(host string, t time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.until == nil {
		g.until = make(map[string]time.Time)
	}
	if cur, ok := g.until[host]; !ok || t.After(cur) {
		g.until[host] = t
	}
}

// BlockedUntil reports whether host is blocked at now and until when.
// Expired blocks are dropped.
func (g *HostGate) BlockedUntil(host string, now time.Time) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.until[host]
	if !ok {
		return time.Time{}, false
	}
	if !now.Before(t) {
		delete(g.until, host)
		return time.Time{}, false
	}
	return t, true
}

// ParseRateLimit inspects a 403 or 429 response for rate-limit headers and
// returns the reset time. ok is false when the response is an ordinary
// authorization failure.
//
// Recognized headers:
//   - GitHub: X-RateLimit-Remaining, X-RateLimit-Reset (unix seconds)
//   - GitLab: RateLimit-Remaining, RateLimit-Reset (unix seconds)
//   - Retry-After: delay in seconds or an HTTP date
//
// A 429 always counts as a limit; a zero reset means "unknown".
func ParseRateLimit(status int, h http.Header, now time.Time) (reset time.Time, ok bool) {
	if status != http.StatusForbidden && status != http.StatusTooManyRequests {
		return time.Time{}, false
	}

	if ra := strings.TrimSpace(h.Get("Retry-After")); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			return now.Add(time.Duration(secs) * time.Second), true
		}
		if t, err := http.ParseTime(ra); err == nil {
			return t, true
		}
	}

	for _, prefix := range []string{"X-RateLimit-", "RateLimit-"} {
		if strings.TrimSpace(h.Get(prefix+"Remaining")) != "0" {
			continue
		}
		if secs, err := strconv.ParseInt(strings.TrimSpace(h.Get(prefix+"Reset")), 10, 64); err == nil {
			return time.Unix(secs, 0), true
		}
		return time.Time{}, true
	}

	return time.Time{}, status == http.StatusTooManyRequests
}
