package tags

import (
	errs "github.com/matzehuels/archlog/pkg/errors"
)

// Step is one consecutive pair of tags.
type Step struct {
	From, To string
	// Degraded marks a direct step taken because one end could not be
	// placed in the tag list.
	Degraded bool
}

// Walk returns the steps from current to next through every intermediate
// tag of the chronological list, oldest first. It returns no steps when both
// resolve to the same tag and INCONSISTENT_TAG_ORDER when next precedes
// current.
//
// If either match was not accepted, Walk returns a single degraded step
// current → next built from the matched tags, or the targets when unmatched.
func Walk(list []string, current, next Match) ([]Step, error) {
	if !placed(list, current) || !placed(list, next) {
		return []Step{{From: endpoint(current), To: endpoint(next), Degraded: true}}, nil
	}
	i, j := current.Index, next.Index
	switch {
	case i == j:
		return nil, nil
	case j < i:
		return nil, errs.New(errs.ErrCodeInconsistentTags,
			"%s (position %d) comes after %s (position %d)", list[i], i, list[j], j)
	}
	steps := make([]Step, 0, j-i)
	for k := i; k < j; k++ {
		steps = append(steps, Step{From: list[k], To: list[k+1]})
	}
	return steps, nil
}

func placed(list []string, m Match) bool {
	return m.Accepted && m.Index >= 0 && m.Index < len(list) && list[m.Index] == m.Tag
}

func endpoint(m Match) string {
	if m.Accepted && m.Tag != "" {
		return m.Tag
	}
	return m.Target
}
