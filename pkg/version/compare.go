package version

import (
	"math/big"
	"strings"
	"unicode"
)

// Compare orders two pkgver strings like pacman's vercmp: the strings are
// split into alternating runs of digits and letters, digits compare
// numerically, and a numeric run is newer than an alphabetic one. A version
// with extra trailing segments is newer unless the extra segment is
// alphabetic (1.0 > 1.0rc1).
//
// It returns -1, 0 or +1.
func Compare(a, b string) int {
	if a == b {
		return 0
	}
	sa, sb := Segments(a), Segments(b)
	for i := 0; i < len(sa) && i < len(sb); i++ {
		if c := compareSegment(sa[i], sb[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(sa) == len(sb):
		return 0
	case len(sa) > len(sb):
		if isAlpha(sa[len(sb)]) {
			return -1
		}
		return 1
	default:
		if isAlpha(sb[len(sa)]) {
			return 1
		}
		return -1
	}
}

// Segments splits s into runs of digits and runs of letters; every other
// character is a separator.
func Segments(s string) []string {
	var out []string
	var cur strings.Builder
	var curDigit bool
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			if cur.Len() > 0 && !curDigit {
				flush()
			}
			curDigit = true
			cur.WriteRune(r)
		case unicode.IsLetter(r):
			if cur.Len() > 0 && curDigit {
				flush()
			}
			curDigit = false
			cur.WriteRune(unicode.ToLower(r))
		default:
			flush()
		}
	}
	flush()
	return out
}

// Closer reports whether a is strictly closer to target than b in version
// order. More shared leading segments win; at the first segment where they
// part from target, the smaller numeric distance wins. A missing or
// alphabetic segment is farther than any numeric one. When both contain all
// of target, the one with fewer extra segments wins.
func Closer(target, a, b string) bool {
	st, sa, sb := Segments(target), Segments(a), Segments(b)
	pa, pb := commonSegments(st, sa), commonSegments(st, sb)
	if pa != pb {
		return pa > pb
	}
	k := pa
	if k >= len(st) {
		return len(sa) < len(sb)
	}
	da, db := distance(st[k], sa, k), distance(st[k], sb, k)
	switch {
	case da == nil:
		return false
	case db == nil:
		return true
	}
	return da.Cmp(db) < 0
}

func commonSegments(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && compareSegment(a[n], b[n]) == 0 {
		n++
	}
	return n
}

// distance is |segs[k] - want| for numeric segments, nil otherwise.
func distance(want string, segs []string, k int) *big.Int {
	if k >= len(segs) {
		return nil
	}
	w, ok := new(big.Int).SetString(want, 10)
	if !ok {
		return nil
	}
	v, ok := new(big.Int).SetString(segs[k], 10)
	if !ok {
		return nil
	}
	return v.Sub(v, w).Abs(v)
}

func compareSegment(a, b string) int {
	ad, bd := !isAlpha(a), !isAlpha(b)
	switch {
	case ad && bd:
		a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			if len(a) < len(b) {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	case ad:
		return 1
	case bd:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

func isAlpha(seg string) bool {
	return seg != "" && unicode.IsLetter([]rune(seg)[0])
}
