package changelog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/archlog/pkg/forge"
)

type resolverFunc func(ctx context.Context, pkg Package) Entry

func (f resolverFunc) Resolve(ctx context.Context, pkg Package) Entry { return f(ctx, pkg) }

func statusByName(pkg Package) Entry {
	switch pkg.Name {
	case "gone":
		return Unresolved(pkg, errors.New("no repository"))
	case "bad":
		return Failed(pkg, forge.Unresolved, errors.New("boom"))
	}
	return Resolved(pkg, forge.Ref{Kind: forge.KindGitHub, BaseURL: "https://github.com", Project: "x/" + pkg.Name}, nil)
}

func TestRunnerOrderAndSummary(t *testing.T) {
	var running, peak atomic.Int32
	res := resolverFunc(func(ctx context.Context, pkg Package) Entry {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Duration(len(pkg.Name)) * time.Millisecond)
		running.Add(-1)
		return statusByName(pkg)
	})

	pkgs := []Package{{Name: "curl"}, {Name: "gone"}, {Name: "bad"}, {Name: "linux"}, {Name: "a"}, {Name: "zstd"}}
	var mu sync.Mutex
	var calls int
	r := NewRunner(res, WithWorkers(2), WithProgress(func(done, total int, _ Entry) {
		mu.Lock()
		calls++
		mu.Unlock()
		if total != len(pkgs) {
			t.Errorf("total = %d", total)
		}
	}))

	entries, sum, err := r.Run(context.Background(), pkgs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, e := range entries {
		if e.Name != pkgs[i].Name {
			t.Errorf("entries[%d] = %s, want %s", i, e.Name, pkgs[i].Name)
		}
	}
	if len(sum.Resolved) != 4 || len(sum.Unresolved) != 1 || len(sum.Failed) != 1 || sum.Total() != 6 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Unresolved[0] != "gone" || sum.Failed[0] != "bad" {
		t.Errorf("summary names = %+v", sum)
	}
	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
	}
	if calls != len(pkgs) {
		t.Errorf("progress calls = %d", calls)
	}
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var called atomic.Bool
	r := NewRunner(resolverFunc(func(ctx context.Context, pkg Package) Entry {
		called.Store(true)
		return statusByName(pkg)
	}))

	entries, sum, err := r.Run(ctx, []Package{{Name: "a"}, {Name: "b"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if called.Load() {
		t.Error("no package should start after cancellation")
	}
	if len(entries) != 2 || len(sum.Failed) != 2 {
		t.Errorf("entries = %v, summary = %+v", entries, sum)
	}
}

func TestSummaryString(t *testing.T) {
	s := Summary{Resolved: []string{"a"}, Unresolved: []string{"b"}, Failed: []string{"c", "d"}}
	want := "1 resolved, 1 unresolved, 2 failed\nunresolved: b\nfailed: c, d"
	if s.String() != want {
		t.Errorf("String = %q", s.String())
	}
}
