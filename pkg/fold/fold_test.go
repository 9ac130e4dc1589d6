package fold

import (
	"testing"

	"github.com/Hanaasagi/filterlines/pkg/matcher"
	"github.com/Hanaasagi/filterlines/pkg/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(text string) []segment.Segment {
	return segment.Collect(segment.Lines(text))
}

func literal(pattern string, invert bool) *matcher.Predicate {
	return matcher.MustCompile(matcher.SearchSpec{Pattern: pattern, Kind: matcher.Literal, Invert: invert})
}

func TestFold_TwoRunsAroundMatch(t *testing.T) {
	text := "foo\nbar\nbaz\n"
	runs := Fold(lines(text), literal("bar", false))
	require.Len(t, runs, 2)

	// discovered from the end of the text
	assert.Equal(t, "baz", text[runs[0].Start:runs[0].End])
	assert.Equal(t, "foo", text[runs[1].Start:runs[1].End])

	for _, r := range runs {
		require.Len(t, r.Segments, 1)
		assert.NotEqual(t, "bar", r.Segments[0].Text)
	}
}

func TestFold_Cases(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		needle string
		invert bool
		want   [][2]int // regions in text order
	}{
		{
			name:   "everything matches",
			text:   "a\na\n",
			needle: "a",
			want:   nil,
		},
		{
			name:   "nothing matches",
			text:   "x\ny\nz",
			needle: "a",
			want:   [][2]int{{0, 5}},
		},
		{
			name:   "consecutive misses merge",
			text:   "keep\nx\ny\nkeep\nz\n",
			needle: "keep",
			want:   [][2]int{{5, 8}, {14, 15}},
		},
		{
			name:   "inverted search",
			text:   "keep\nx\nkeep\n",
			needle: "keep",
			invert: true,
			want:   [][2]int{{0, 4}, {7, 11}},
		},
		{
			name:   "empty line folds to an anchor",
			text:   "keep\n\nkeep",
			needle: "keep",
			want:   [][2]int{{5, 5}},
		},
		{
			name:   "empty text",
			text:   "",
			needle: "a",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := Sorted(Fold(lines(tt.text), literal(tt.needle, tt.invert)))

			var got [][2]int
			for _, r := range runs {
				got = append(got, [2]int{r.Start, r.End})
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFold_RunsPartitionMisses(t *testing.T) {
	text := "a\nb\nc\na\na\nd\ne\na\nf\n"
	segments := lines(text)
	pred := literal("a", false)
	runs := Sorted(Fold(segments, pred))

	var folded []segment.Segment
	for i, r := range runs {
		if i > 0 {
			assert.LessOrEqual(t, runs[i-1].End, r.Start, "runs overlap")
		}
		for _, s := range r.Segments {
			assert.False(t, pred.Test(s.Text))
		}
		folded = append(folded, r.Segments...)
	}

	var misses []segment.Segment
	maximal := 0
	inRun := false
	for _, s := range segments {
		if pred.Test(s.Text) {
			inRun = false
			continue
		}
		misses = append(misses, s)
		if !inRun {
			maximal++
		}
		inRun = true
	}

	assert.Equal(t, misses, folded)
	assert.Len(t, runs, maximal)
	assert.Len(t, runs, 3)
}

func TestRun_Contains(t *testing.T) {
	r := Run{Start: 2, End: 5}
	assert.False(t, r.Contains(1))
	assert.True(t, r.Contains(2))
	assert.True(t, r.Contains(4))
	assert.False(t, r.Contains(5))
}

func TestRender(t *testing.T) {
	text := "foo\nbar\nbaz\n"
	runs := Fold(lines(text), literal("bar", false))

	got := Render(text, runs, CountMarker("[%d]"))
	assert.Equal(t, "[1]\nbar\n[1]\n", got)

	multi := "a\nx\ny\na\n"
	got = Render(multi, Fold(lines(multi), literal("a", false)), CountMarker("<%d hidden>"))
	assert.Equal(t, "a\n<2 hidden>\na\n", got)
}

func TestCountMarker_Verbatim(t *testing.T) {
	assert.Equal(t, "...", CountMarker("...")(Run{Segments: make([]segment.Segment, 3)}))
	assert.Equal(t, "3 lines", CountMarker("%d lines")(Run{Segments: make([]segment.Segment, 3)}))
}

func TestRender_NoRuns(t *testing.T) {
	assert.Equal(t, "a\nb\n", Render("a\nb\n", nil, CountMarker("%d")))
}
