// pkg/math/intervals.go

package math

import (
	"fmt"
	gomath "math"
	"strings"
)

///////////////////////////////////////////////////////////////////////////
// Interval

// Interval is a closed interval [Low, Up] of reals. Low > Up denotes the
// empty interval.
type Interval struct {
	Low, Up float64
}

var EmptyInterval = Interval{Low: gomath.Inf(1), Up: gomath.Inf(-1)}

func (i Interval) IsEmpty() bool {
	return i.Low > i.Up
}

// InCC reports closed-closed membership.
func (i Interval) InCC(x float64) bool {
	return i.Low <= x && x <= i.Up
}

// InOO reports open-open membership.
func (i Interval) InOO(x float64) bool {
	return i.Low < x && x < i.Up
}

func (i Interval) String() string {
	return fmt.Sprintf("[%.4f, %.4f]", i.Low, i.Up)
}

// ToPVS renders the interval as a PVS record with prec decimal digits.
func (i Interval) ToPVS(prec int) string {
	return fmt.Sprintf("(# lb := %.*f, ub := %.*f #)", prec, i.Low, prec, i.Up)
}

///////////////////////////////////////////////////////////////////////////
// IntervalSet

// IntervalSet is a union of disjoint closed intervals, kept sorted by
// lower bound. The Almost variants merge endpoints that are equal to
// within the package tolerance, so that abutting cells from a discrete
// sweep coalesce instead of accumulating hairline gaps.
type IntervalSet struct {
	ivs []Interval
}

func (s *IntervalSet) Clear() {
	s.ivs = s.ivs[:0]
}

func (s *IntervalSet) Size() int {
	return len(s.ivs)
}

func (s *IntervalSet) IsEmpty() bool {
	return len(s.ivs) == 0
}

func (s *IntervalSet) Interval(i int) Interval {
	if i < 0 || i >= len(s.ivs) {
		return EmptyInterval
	}
	return s.ivs[i]
}

func (s *IntervalSet) Intervals() []Interval {
	return s.ivs
}

func (s *IntervalSet) In(x float64) bool {
	for _, iv := range s.ivs {
		if iv.InCC(x) {
			return true
		}
	}
	return false
}

// Union adds interval iv to the set, merging overlapping intervals.
func (s *IntervalSet) Union(iv Interval) {
	if iv.IsEmpty() {
		return
	}
	out := make([]Interval, 0, len(s.ivs)+1)
	inserted := false
	for _, cur := range s.ivs {
		switch {
		case cur.Up < iv.Low:
			out = append(out, cur)
		case iv.Up < cur.Low:
			if !inserted {
				out = append(out, iv)
				inserted = true
			}
			out = append(out, cur)
		default: // overlap; grow iv
			iv.Low = Min(iv.Low, cur.Low)
			iv.Up = Max(iv.Up, cur.Up)
		}
	}
	if !inserted {
		out = append(out, iv)
	}
	s.ivs = out
}

// UnionSet unions every interval of t into s.
func (s *IntervalSet) UnionSet(t *IntervalSet) {
	for _, iv := range t.ivs {
		s.Union(iv)
	}
}

// AlmostAdd unions [low, up], also merging with intervals whose endpoints
// almost-equal the new bounds.
func (s *IntervalSet) AlmostAdd(low, up float64) {
	if AlmostEquals(low, up) {
		return
	}
	out := make([]Interval, 0, len(s.ivs)+1)
	iv := Interval{low, up}
	inserted := false
	for _, cur := range s.ivs {
		switch {
		case AlmostLess(cur.Up, iv.Low):
			out = append(out, cur)
		case AlmostLess(iv.Up, cur.Low):
			if !inserted {
				out = append(out, iv)
				inserted = true
			}
			out = append(out, cur)
		default:
			iv.Low = Min(iv.Low, cur.Low)
			iv.Up = Max(iv.Up, cur.Up)
		}
	}
	if !inserted {
		out = append(out, iv)
	}
	s.ivs = out
}

// AlmostIntersect intersects s with t in place, dropping slivers whose
// endpoints almost coincide.
func (s *IntervalSet) AlmostIntersect(t *IntervalSet) {
	var out []Interval
	for _, a := range s.ivs {
		for _, b := range t.ivs {
			low := Max(a.Low, b.Low)
			up := Min(a.Up, b.Up)
			if low <= up && !AlmostEquals(low, up) {
				out = append(out, Interval{low, up})
			}
		}
	}
	s.ivs = out
}

// Complement returns [low, up] minus s.
func (s *IntervalSet) Complement(low, up float64) IntervalSet {
	var out IntervalSet
	l := low
	for _, iv := range s.ivs {
		if iv.Up < low || iv.Low > up {
			continue
		}
		if l < iv.Low {
			out.Union(Interval{Low: l, Up: Min(iv.Low, up)})
		}
		l = Max(l, iv.Up)
	}
	if l < up {
		out.Union(Interval{Low: l, Up: up})
	}
	return out
}

func (s *IntervalSet) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, iv := range s.ivs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(iv.String())
	}
	sb.WriteString("}")
	return sb.String()
}

///////////////////////////////////////////////////////////////////////////
// Integerval

// Integerval is a closed integer interval, the unit of output of the
// discrete band search.
type Integerval struct {
	Lb, Ub int
}

func (i Integerval) String() string {
	return fmt.Sprintf("[%d,%d]", i.Lb, i.Ub)
}
