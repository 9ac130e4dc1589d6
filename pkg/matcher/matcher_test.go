package matcher

import (
	"errors"
	"regexp/syntax"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicate_Test(t *testing.T) {
	tests := []struct {
		name string
		spec SearchSpec
		text string
		want bool
	}{
		{
			name: "literal substring",
			spec: SearchSpec{Pattern: "bar", Kind: Literal},
			text: "foobarbaz",
			want: true,
		},
		{
			name: "literal dot is not a wildcard",
			spec: SearchSpec{Pattern: "a.b", Kind: Literal},
			text: "axb",
			want: false,
		},
		{
			name: "literal dot matches itself",
			spec: SearchSpec{Pattern: "a.b", Kind: Literal},
			text: "xa.by",
			want: true,
		},
		{
			name: "literal metacharacters",
			spec: SearchSpec{Pattern: "(x)[1]*", Kind: Literal, CaseSensitive: true},
			text: "call (x)[1]*",
			want: true,
		},
		{
			name: "literal ignores case by flag",
			spec: SearchSpec{Pattern: "BAR", Kind: Literal},
			text: "foobar",
			want: true,
		},
		{
			name: "literal case sensitive",
			spec: SearchSpec{Pattern: "BAR", Kind: Literal, CaseSensitive: true},
			text: "foobar",
			want: false,
		},
		{
			name: "regex unanchored",
			spec: SearchSpec{Pattern: `b.r`, Kind: Regex, CaseSensitive: true},
			text: "a bxr c",
			want: true,
		},
		{
			name: "regex case insensitive",
			spec: SearchSpec{Pattern: `^ERROR`, Kind: Regex},
			text: "error: disk full",
			want: true,
		},
		{
			name: "regex case sensitive",
			spec: SearchSpec{Pattern: `^ERROR`, Kind: Regex, CaseSensitive: true},
			text: "error: disk full",
			want: false,
		},
		{
			name: "invert flips a match",
			spec: SearchSpec{Pattern: "bar", Kind: Literal, Invert: true},
			text: "bar",
			want: false,
		},
		{
			name: "invert flips a miss",
			spec: SearchSpec{Pattern: "bar", Kind: Literal, Invert: true},
			text: "foo",
			want: true,
		},
		{
			name: "empty pattern matches everything",
			spec: SearchSpec{Pattern: "", Kind: Literal},
			text: "",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Test(tt.text))
		})
	}
}

func TestCompile_InvalidRegex(t *testing.T) {
	_, err := Compile(SearchSpec{Pattern: "a(b", Kind: Regex})
	require.Error(t, err)

	var perr *PatternError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "a(b", perr.Pattern)
	assert.True(t, errors.Is(err, ErrInvalidPattern))

	var serr *syntax.Error
	assert.True(t, errors.As(err, &serr))
}

func TestCompile_LiteralNeverFails(t *testing.T) {
	for _, pattern := range []string{"a(b", "[", `\`, "*+?"} {
		_, err := Compile(SearchSpec{Pattern: pattern, Kind: Literal})
		assert.NoError(t, err, pattern)
	}
}

func TestCompileSeparator(t *testing.T) {
	re, err := CompileSeparator(`\|`)
	require.NoError(t, err)
	assert.True(t, re.MatchString("a|b"))

	_, err = CompileSeparator(`(`)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestPredicate_Inverted(t *testing.T) {
	p := MustCompile(SearchSpec{Pattern: "x", Kind: Literal})
	inv := p.Inverted()

	for _, text := range []string{"x", "y", "", "axb"} {
		assert.NotEqual(t, p.Test(text), inv.Test(text), text)
	}
	assert.False(t, p.Spec().Invert)
	assert.True(t, inv.Spec().Invert)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "string", want: Literal},
		{in: "literal", want: Literal},
		{in: "Regex", want: Regex},
		{in: "regexp", want: Regex},
		{in: "glob", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPatternCache(t *testing.T) {
	pc := newPatternCache(2)

	a, err := pc.compile("a+")
	require.NoError(t, err)
	again, err := pc.compile("a+")
	require.NoError(t, err)
	assert.Same(t, a, again)

	_, _ = pc.compile("b+")
	_, _ = pc.compile("c+")
	assert.Equal(t, 2, pc.len())

	_, err = pc.compile("(")
	assert.Error(t, err)
	assert.Equal(t, 2, pc.len())
}
