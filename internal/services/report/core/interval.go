// Package core implements the uptime reconstruction engine: pure,
// I/O-free operations over polls, schedules, and time windows.
package core

import (
	"sort"
	"time"
)

// Interval is a half-open [Start, End) pair of UTC instants.
// The zero value is not valid; construct with NewInterval.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds a half-open interval, normalizing both endpoints to UTC.
// Intervals where End <= Start carry zero duration and are treated as empty.
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start.UTC(), End: end.UTC()}
}

// Empty reports whether the interval has no positive duration.
func (iv Interval) Empty() bool { return !iv.End.After(iv.Start) }

// Duration returns the non-negative length of the interval.
func (iv Interval) Duration() time.Duration {
	if iv.Empty() {
		return 0
	}
	return iv.End.Sub(iv.Start)
}

// Clip restricts iv to the bounds of w, returning (clipped, ok).
// ok is false when the intersection is empty.
func (iv Interval) Clip(w Interval) (Interval, bool) {
	start := iv.Start
	if w.Start.After(start) {
		start = w.Start
	}
	end := iv.End
	if w.End.Before(end) {
		end = w.End
	}
	out := Interval{Start: start, End: end}
	return out, !out.Empty()
}

// Overlap returns the duration shared by a and b; never negative.
func Overlap(a, b Interval) time.Duration {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

// MergeSorted unions a sequence of intervals already sorted by Start,
// absorbing any interval whose Start does not strictly exceed the running
// End (touching intervals merge). The result is pairwise disjoint, sorted,
// and covers the same point-set as the input union.
func MergeSorted(seq []Interval) []Interval {
	out := make([]Interval, 0, len(seq))
	for _, iv := range seq {
		if iv.Empty() {
			continue
		}
		n := len(out)
		if n > 0 && !iv.Start.After(out[n-1].End) {
			if iv.End.After(out[n-1].End) {
				out[n-1].End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// SortByStart sorts intervals ascending by Start, stable for ties.
func SortByStart(seq []Interval) {
	sort.SliceStable(seq, func(i, j int) bool { return seq[i].Start.Before(seq[j].Start) })
}
