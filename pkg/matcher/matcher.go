// Package matcher compiles search specifications into segment predicates.
package matcher

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPattern is matched by every *PatternError via errors.Is.
var ErrInvalidPattern = errors.New("invalid pattern")

// Kind selects how a pattern is interpreted
type Kind int

const (
	// Literal treats the pattern as an exact substring
	Literal Kind = iota
	// Regex compiles the pattern as a regular expression
	Regex
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "string"
	case Regex:
		return "regex"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses "string", "literal" or "regex".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "string", "literal", "":
		return Literal, nil
	case "regex", "regexp":
		return Regex, nil
	default:
		return Literal, fmt.Errorf("unknown search type %q", s)
	}
}

// PatternError reports a pattern that failed to compile.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidPattern
func (e *PatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}

// SearchSpec describes what a segment has to contain to match.
type SearchSpec struct {
	Pattern       string
	Kind          Kind
	CaseSensitive bool
	Invert        bool
}

// Predicate tests segment text against a compiled SearchSpec.
type Predicate struct {
	spec SearchSpec
	re   *regexp.Regexp
}

// Compile builds a predicate for spec. Literal patterns never fail.
func Compile(spec SearchSpec) (*Predicate, error) {
	expr := spec.Pattern
	if spec.Kind == Literal {
		expr = regexp.QuoteMeta(expr)
	}
	if !spec.CaseSensitive {
		expr = "(?i)" + expr
	}

	re, err := defaultCache.compile(expr)
	if err != nil {
		return nil, &PatternError{Pattern: spec.Pattern, Err: err}
	}

	return &Predicate{spec: spec, re: re}, nil
}

// MustCompile is like Compile but panics on error
func MustCompile(spec SearchSpec) *Predicate {
	p, err := Compile(spec)
	if err != nil {
		panic(err)
	}
	return p
}

// CompileSeparator compiles a custom separator pattern.
func CompileSeparator(pattern string) (*regexp.Regexp, error) {
	re, err := defaultCache.compile(pattern)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	return re, nil
}

// Test reports whether text matches, after applying Invert
func (p *Predicate) Test(text string) bool {
	return p.re.MatchString(text) != p.spec.Invert
}

// Spec returns the specification the predicate was compiled from
func (p *Predicate) Spec() SearchSpec {
	return p.spec
}

// Inverted returns a predicate with the opposite classification.
func (p *Predicate) Inverted() *Predicate {
	spec := p.spec
	spec.Invert = !spec.Invert
	return &Predicate{spec: spec, re: p.re}
}
