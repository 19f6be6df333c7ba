package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsAndUpdates(t *testing.T) {
	var buf syncBuffer
	s := newSpinnerTo(context.Background(), &buf, "Resolving changelogs")
	s.Start()
	time.Sleep(120 * time.Millisecond)
	s.Update("[%d/%d] %s", 1, 3, "curl")
	time.Sleep(120 * time.Millisecond)
	s.Stop()

	got := buf.String()
	if !strings.Contains(got, "Resolving changelogs") || !strings.Contains(got, "[1/3] curl") {
		t.Errorf("output = %q", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Error("Stop should clear the line")
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerTo(ctx, &syncBuffer{}, "waiting")
	s.Start()
	cancel()
	time.Sleep(50 * time.Millisecond)
	if !s.Cancelled() {
		t.Error("spinner should be cancelled with its context")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerTo(context.Background(), &syncBuffer{}, "stop")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerPause(t *testing.T) {
	var buf syncBuffer
	s := newSpinnerTo(context.Background(), &buf, "spin")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Pause(func() { buf.Write([]byte("line\n")) })
	s.Stop()
	if !strings.Contains(buf.String(), "\rline\n") {
		t.Errorf("output = %q, want a cleared line before the printed one", buf.String())
	}
}
