// Package segment splits a text buffer into ordered segments, either by line
// boundaries or by a custom separator regex.
package segment

import (
	"fmt"
	"iter"
	"regexp"
)

// DefaultSeparator matches the same boundaries as line mode.
const DefaultSeparator = `(\n|\r\n|\r)`

// Segment is a half-open range [Start, End) into the source text.
// FullEnd extends the range over the line terminator in line mode and
// equals End in separator mode.
type Segment struct {
	Start   int
	End     int
	FullEnd int
	Text    string
}

// Len returns the length of the segment content
func (s Segment) Len() int {
	return s.End - s.Start
}

// String returns a string representation of the segment
func (s Segment) String() string {
	return fmt.Sprintf("Segment{start:%d,end:%d,full:%d,text:%q}", s.Start, s.End, s.FullEnd, s.Text)
}

// Lines yields the lines of text, recognizing \n, \r\n and \r.
// A terminator at the very end of the text does not open an empty line.
func Lines(text string) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		start := 0
		for i := 0; i < len(text); i++ {
			c := text[i]
			if c != '\n' && c != '\r' {
				continue
			}

			full := i + 1
			if c == '\r' && full < len(text) && text[full] == '\n' {
				full++
			}

			if !yield(Segment{Start: start, End: i, FullEnd: full, Text: text[start:i]}) {
				return
			}
			start = full
			i = full - 1
		}

		if start < len(text) {
			yield(Segment{Start: start, End: len(text), FullEnd: len(text), Text: text[start:]})
		}
	}
}

// Split yields the chunks of text delimited by sep.
//
// While no separator was seen at offset 0, every chunk keeps the separator
// that ends it. A separator at offset 0 switches to tail mode, where each
// chunk starts at a separator and runs up to the next one. Matches adjacent
// to the previous match emit nothing.
func Split(text string, sep *regexp.Regexp) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		emit := func(start, end int) bool {
			return yield(Segment{Start: start, End: end, FullEnd: end, Text: text[start:end]})
		}

		pos := 0
		prevStart := 0
		fromBegin := false

		for _, m := range sep.FindAllStringIndex(text, -1) {
			switch {
			case pos < m[0] && !fromBegin:
				if !emit(pos, m[1]) {
					return
				}
			case fromBegin:
				if !emit(prevStart, m[0]) {
					return
				}
			case m[0] == 0:
				fromBegin = true
			}
			pos = m[1]
			prevStart = m[0]
		}

		if pos < len(text) {
			if fromBegin {
				emit(prevStart, len(text))
			} else {
				emit(pos, len(text))
			}
		}
	}
}

// Collect drains a segment sequence into a slice.
func Collect(seq iter.Seq[Segment]) []Segment {
	var segments []Segment
	for s := range seq {
		segments = append(segments, s)
	}
	return segments
}

// Texts returns the text of every segment.
func Texts(segments []Segment) []string {
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return texts
}
