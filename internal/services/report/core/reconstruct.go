package core

import (
	"time"

	"storewatch/internal/services/report/domain"
)

// StatusInterval is a half-open time range attributed a single status by
// reconstruction. Non-overlapping within a store.
type StatusInterval struct {
	Interval
	Status domain.Status
}

// Reconstruct turns a time-ordered sequence of polls into non-overlapping
// StatusIntervals clipped to the extended window [window.Start-margin,
// window.End+margin], using the midpoint-interpolation rule: each poll owns
// the half-open span between the midpoints to its neighbors, with the first
// and last poll extended by margin at the open ends.
//
// polls must already be sorted ascending by TimestampUTC; a non-monotonic
// sequence is a programming error and is not detected here.
func Reconstruct(polls []domain.Poll, window Interval, margin time.Duration) []StatusInterval {
	n := len(polls)
	if n == 0 {
		return nil
	}

	extended := Interval{
		Start: window.Start.Add(-margin),
		End:   window.End.Add(margin),
	}

	out := make([]StatusInterval, 0, n)
	for i := 0; i < n; i++ {
		var start, end time.Time
		if i == 0 {
			start = polls[0].TimestampUTC.Add(-margin)
		} else {
			start = midpoint(polls[i-1].TimestampUTC, polls[i].TimestampUTC)
		}
		if i == n-1 {
			end = polls[n-1].TimestampUTC.Add(margin)
		} else {
			end = midpoint(polls[i].TimestampUTC, polls[i+1].TimestampUTC)
		}

		raw := Interval{Start: start, End: end}
		clipped, ok := raw.Clip(extended)
		if !ok {
			continue
		}
		out = append(out, StatusInterval{Interval: clipped, Status: polls[i].Status})
	}
	return out
}

func midpoint(a, b time.Time) time.Time {
	return a.Add(b.Sub(a) / 2)
}
