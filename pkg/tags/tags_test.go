package tags

import (
	"fmt"
	"testing"

	errs "github.com/matzehuels/archlog/pkg/errors"
)

func TestResolveClosestTag(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		tags    []string
		project string
		want    string
		exact   bool
	}{
		{"plain", "48.0", []string{"47.0", "48.alpha", "48.0", "48.1"}, "", "48.0", true},
		{"package release", "48.0-1", []string{"47.0", "48.alpha", "48.0", "48.1"}, "", "48.0", true},
		{"v prefix", "6.15.0-1", []string{"v6.14.0", "v6.15.0-rc1", "v6.15.0", "v6.15.1"}, "", "v6.15.0", true},
		{"project prefix", "8.14.1-1", []string{"curl-8_14_0", "curl-8_14_1"}, "curl/curl", "curl-8_14_1", true},
		{"epoch packaging tag", "1:1.16.5-2", []string{"1-1.16.5-1", "1-1.16.5-2"}, "", "1-1.16.5-2", true},
		{"fuzzy", "2.7.0", []string{"2.5.0", "2.6.0", "2.7.0a"}, "", "2.7.0a", false},
		{"fuzzy tie prefers shared prefix", "10.12", []string{"11.12", "10.13"}, "", "10.13", false},
		{"fuzzy tie prefers closer version", "1.5.18", []string{"1.5.11", "1.5.19"}, "", "1.5.19", false},
		{"fuzzy tie falls back to list order", "1.5.18", []string{"1.5.17", "1.5.19"}, "", "1.5.17", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewResolver().Resolve(tt.tags, tt.target, tt.project)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if m.Tag != tt.want || m.Exact != tt.exact || !m.Accepted {
				t.Errorf("Resolve = %+v, want %s (exact %v)", m, tt.want, tt.exact)
			}
			if tt.tags[m.Index] != m.Tag {
				t.Errorf("Index %d does not point at %s", m.Index, m.Tag)
			}
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	list := []string{"v2.39.9", "v2.40.1", "v2.40.3", "v2.41.0", "v2.40.3rc"}
	first, err := NewResolver().Resolve(list, "2.40.2", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for i := 0; i < 50; i++ {
		m, err := NewResolver().Resolve(list, "2.40.2", "")
		if err != nil || m != first {
			t.Fatalf("call %d = %+v, %v, want %+v", i, m, err, first)
		}
	}
}

func TestExact(t *testing.T) {
	tests := []struct {
		name   string
		target string
		tags   []string
		want   string
	}{
		{"raw", "1.10.1-1", []string{"1.10.0-1", "1.10.1-1"}, "1.10.1-1"},
		{"epoch", "1:1.16.5-2", []string{"1-1.16.5-1", "1-1.16.5-2"}, "1-1.16.5-2"},
		{"untagged release", "1.10.2-1", []string{"1.10.0-1", "1.10.1-1"}, ""},
		{"untagged rebuild", "15.2-3", []string{"15.2-1", "15.2-2"}, ""},
		{"pkgrel is significant", "15.2-1", []string{"15.2-2", "15.2"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Exact(tt.tags, tt.target)
			if tt.want == "" {
				if !errs.Is(err, errs.ErrCodeTagNotFound) || m.Accepted || m.Index != -1 {
					t.Errorf("Exact = %+v, %v, want TAG_NOT_FOUND", m, err)
				}
				return
			}
			if err != nil || m.Tag != tt.want || !m.Exact || tt.tags[m.Index] != tt.want {
				t.Errorf("Exact = %+v, %v, want %s", m, err, tt.want)
			}
		})
	}
}

func TestExactMissWalksDegraded(t *testing.T) {
	list := []string{"15.2-1", "15.2-2"}
	current, _ := Exact(list, "15.2-2")
	next, _ := Exact(list, "15.2-3")
	steps, err := Walk(list, current, next)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(steps) != 1 || !steps[0].Degraded || steps[0].From != "15.2-2" || steps[0].To != "15.2-3" {
		t.Errorf("Walk = %+v", steps)
	}
}

func TestResolveNoMatch(t *testing.T) {
	for _, target := range []string{"4.0", "3.5"} {
		m, err := NewResolver().Resolve([]string{"1.0", "2.0", "3.0"}, target, "")
		if !errs.Is(err, errs.ErrCodeTagNotFound) {
			t.Errorf("Resolve(%s) err = %v, want TAG_NOT_FOUND", target, err)
		}
		if m.Accepted {
			t.Errorf("Resolve(%s) accepted %s", target, m.Tag)
		}
	}
	if _, err := NewResolver().Resolve(nil, "1.0", ""); !errs.Is(err, errs.ErrCodeTagNotFound) {
		t.Errorf("empty list err = %v", err)
	}
}

func TestResolveCustomScorer(t *testing.T) {
	r := &Resolver{Scorer: ScorerFunc(func(a, b string) int {
		if b == "9.9" {
			return 90
		}
		return 0
	})}
	m, err := r.Resolve([]string{"1.0", "9.9"}, "5.0", "")
	if err != nil || m.Tag != "9.9" {
		t.Errorf("Resolve = %+v, %v", m, err)
	}

	r.Cutoff = 95
	if _, err := r.Resolve([]string{"1.0", "9.9"}, "5.0", ""); err == nil {
		t.Error("cutoff 95 should reject score 90")
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 100},
		{"1.0", "1.0", 100},
		{"4.0", "3.0", 66},
		{"2.7.0", "2.7.0a", 83},
	}
	for _, tt := range tests {
		if got := Levenshtein.Score(tt.a, tt.b); got != tt.want {
			t.Errorf("Score(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func match(list []string, i int) Match {
	return Match{Target: list[i], Tag: list[i], Index: i, Score: 100, Exact: true, Accepted: true}
}

func TestWalk(t *testing.T) {
	list := []string{"1.0-1", "1.0-2", "1.1-1", "1.2-1"}
	tests := []struct {
		name string
		i, j int
		want []Step
	}{
		{"same tag", 1, 1, nil},
		{"adjacent", 0, 1, []Step{{From: "1.0-1", To: "1.0-2"}}},
		{"intermediate releases", 0, 3, []Step{
			{From: "1.0-1", To: "1.0-2"},
			{From: "1.0-2", To: "1.1-1"},
			{From: "1.1-1", To: "1.2-1"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps, err := Walk(list, match(list, tt.i), match(list, tt.j))
			if err != nil {
				t.Fatalf("Walk: %v", err)
			}
			if fmt.Sprint(steps) != fmt.Sprint(tt.want) {
				t.Errorf("Walk = %v, want %v", steps, tt.want)
			}
		})
	}
}

func TestWalkInconsistentOrder(t *testing.T) {
	list := []string{"1.0-1", "1.1-1"}
	_, err := Walk(list, match(list, 1), match(list, 0))
	if !errs.Is(err, errs.ErrCodeInconsistentTags) {
		t.Errorf("err = %v, want INCONSISTENT_TAG_ORDER", err)
	}
}

func TestWalkDegraded(t *testing.T) {
	list := []string{"1.0-1", "1.1-1"}
	missing := Match{Target: "1.2-1", Index: -1}
	steps, err := Walk(list, match(list, 0), missing)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(steps) != 1 || !steps[0].Degraded || steps[0].From != "1.0-1" || steps[0].To != "1.2-1" {
		t.Errorf("Walk = %+v", steps)
	}
}

func ExampleWalk() {
	list := []string{"c", "a", "b", "n"}
	current := Match{Tag: "c", Index: 0, Accepted: true}
	next := Match{Tag: "n", Index: 3, Accepted: true}
	steps, _ := Walk(list, current, next)
	for _, s := range steps {
		fmt.Println(s.From, "->", s.To)
	}
	// Output:
	// c -> a
	// a -> b
	// b -> n
}
