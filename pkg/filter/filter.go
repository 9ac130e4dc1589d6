// Package filter keeps or deletes segments according to a predicate.
package filter

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/Hanaasagi/filterlines/pkg/segment"
)

// Mode selects where filter results go
type Mode int

const (
	// NewBuffer collects the kept segments into a new text
	NewBuffer Mode = iota
	// InPlace computes the segments to delete from the source
	InPlace
)

func (m Mode) String() string {
	if m == InPlace {
		return "in-place"
	}
	return "new-buffer"
}

// Predicate classifies segment text
type Predicate interface {
	Test(text string) bool
}

// Deleter removes a byte range from a mutable document
type Deleter interface {
	DeleteRange(start, end int)
}

// Result is the outcome of one filter operation.
type Result struct {
	Mode Mode
	// Text holds the kept segments in NewBuffer mode
	Text string
	// Deletions holds the spans to remove in InPlace mode, ordered by
	// descending start offset
	Deletions []segment.Segment
	Kept      int
	Total     int
}

// Empty reports whether no segment satisfied the predicate
func (r Result) Empty() bool {
	return r.Kept == 0
}

// Filter applies pred to every segment.
//
// In NewBuffer mode kept segments are concatenated in source order, each
// followed by a newline unless separatorActive is set. In InPlace mode the
// segments are visited last to first and every rejected one is recorded
// with its full span.
func Filter(segments []segment.Segment, pred Predicate, mode Mode, separatorActive bool) Result {
	result := Result{Mode: mode, Total: len(segments)}

	if mode == InPlace {
		for i := len(segments) - 1; i >= 0; i-- {
			s := segments[i]
			if pred.Test(s.Text) {
				result.Kept++
				continue
			}
			result.Deletions = append(result.Deletions, s)
		}
		return result
	}

	var sb strings.Builder
	for _, s := range segments {
		if !pred.Test(s.Text) {
			continue
		}
		result.Kept++
		sb.WriteString(s.Text)
		if !separatorActive {
			sb.WriteByte('\n')
		}
	}
	result.Text = sb.String()

	return result
}

// sortDescending returns a copy of deletions ordered by descending start.
func sortDescending(deletions []segment.Segment) []segment.Segment {
	sorted := slices.Clone(deletions)
	slices.SortFunc(sorted, func(a, b segment.Segment) int {
		return cmp.Compare(b.Start, a.Start)
	})
	return sorted
}

// Validate checks that deletions can be applied one after another without
// one deletion shifting the offsets of a later one.
func Validate(deletions []segment.Segment, size int) error {
	for i, d := range deletions {
		if d.Start < 0 || d.FullEnd < d.Start || d.FullEnd > size {
			return fmt.Errorf("deletion %d out of range: [%d, %d) in %d bytes", i, d.Start, d.FullEnd, size)
		}
		if i > 0 && d.FullEnd > deletions[i-1].Start {
			return fmt.Errorf("deletion %d [%d, %d) overlaps or follows deletion %d", i, d.Start, d.FullEnd, i-1)
		}
	}
	return nil
}

// Apply removes the full span of every deletion from text.
func Apply(text string, deletions []segment.Segment) (string, error) {
	sorted := sortDescending(deletions)
	if err := Validate(sorted, len(text)); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(len(text))

	pos := 0
	for i := len(sorted) - 1; i >= 0; i-- {
		d := sorted[i]
		sb.WriteString(text[pos:d.Start])
		pos = d.FullEnd
	}
	sb.WriteString(text[pos:])

	return sb.String(), nil
}

// ApplyTo deletes every span from doc, last span in the text first.
func ApplyTo(doc Deleter, deletions []segment.Segment) {
	for _, d := range sortDescending(deletions) {
		doc.DeleteRange(d.Start, d.FullEnd)
	}
}

// ZeroMatchesMessage is the informational text shown in place of an empty
// result.
func ZeroMatchesMessage(needle string, caseSensitive bool) string {
	sensitivity := "(not case-sensitive)"
	if caseSensitive {
		sensitivity = "(case-sensitive)"
	}
	return fmt.Sprintf("Filtering for \"%s\" %s\n\n0 matches\n", needle, sensitivity)
}
