// Package fold groups consecutive non-matching segments into fold runs.
package fold

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/Hanaasagi/filterlines/pkg/segment"
)

// Predicate classifies segment text
type Predicate interface {
	Test(text string) bool
}

// Run is a maximal group of consecutive non-matching segments collapsed
// into one region. Segments are in text order.
type Run struct {
	Segments []segment.Segment
	Start    int
	End      int
}

// Len returns the number of segments folded by the run
func (r Run) Len() int {
	return len(r.Segments)
}

// Contains reports whether offset lies inside the folded region
func (r Run) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

func (r Run) String() string {
	return fmt.Sprintf("Run{start:%d,end:%d,segments:%d}", r.Start, r.End, len(r.Segments))
}

// newRun builds a run from segments collected last to first. The region
// starts as an empty anchor at the end of the last segment and grows to
// cover every member.
func newRun(reversed []segment.Segment) Run {
	members := slices.Clone(reversed)
	slices.Reverse(members)

	start, end := members[len(members)-1].End, members[len(members)-1].End
	for _, s := range members {
		start = min(start, s.Start)
		end = max(end, s.End)
	}

	return Run{Segments: members, Start: start, End: end}
}

// Fold walks segments from last to first and returns the fold runs in the
// order they were closed, which is the last run in the text first.
func Fold(segments []segment.Segment, pred Predicate) []Run {
	var runs []Run
	var pending []segment.Segment

	for i := len(segments) - 1; i >= 0; i-- {
		s := segments[i]
		matched := pred.Test(s.Text)

		if matched && len(pending) > 0 {
			runs = append(runs, newRun(pending))
			pending = pending[:0]
		} else if !matched {
			pending = append(pending, s)
		}
	}

	if len(pending) > 0 {
		runs = append(runs, newRun(pending))
	}

	return runs
}

// Sorted returns a copy of runs ordered by start offset
func Sorted(runs []Run) []Run {
	sorted := slices.Clone(runs)
	slices.SortFunc(sorted, func(a, b Run) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return sorted
}

// MarkerFunc produces the text that replaces a folded region
type MarkerFunc func(Run) string

// CountMarker returns a MarkerFunc formatting the number of folded
// segments with format, e.g. "⋯ %d folded". A format without %d is used
// verbatim.
func CountMarker(format string) MarkerFunc {
	if !strings.Contains(format, "%d") {
		return func(Run) string { return format }
	}
	return func(r Run) string {
		return fmt.Sprintf(format, r.Len())
	}
}

// Render replaces every run's region in text with its marker.
func Render(text string, runs []Run, marker MarkerFunc) string {
	var sb strings.Builder
	sb.Grow(len(text))

	pos := 0
	for _, r := range Sorted(runs) {
		if r.Start < pos {
			// overlapping runs are never produced by Fold
			continue
		}
		sb.WriteString(text[pos:r.Start])
		sb.WriteString(marker(r))
		pos = r.End
	}
	sb.WriteString(text[pos:])

	return sb.String()
}
