package internal

import (
	"github.com/Hanaasagi/filterlines/pkg/filter"
	"github.com/Hanaasagi/filterlines/pkg/matcher"
	"github.com/Hanaasagi/filterlines/pkg/segment"
)

// Options carries the recognized settings into each operation. It is
// passed by value and never mutated by the runner.
type Options struct {
	CaseSensitiveStringSearch bool
	CaseSensitiveRegexSearch  bool
	InvertSearch              bool
	UseNewBufferForResults    bool
	CustomSeparator           bool
	DefaultCustomSeparator    string
	PreserveSearch            bool
}

// DefaultOptions returns the settings used when nothing is configured
func DefaultOptions() Options {
	return Options{
		CaseSensitiveStringSearch: false,
		CaseSensitiveRegexSearch:  true,
		InvertSearch:              false,
		UseNewBufferForResults:    true,
		CustomSeparator:           false,
		DefaultCustomSeparator:    segment.DefaultSeparator,
		PreserveSearch:            true,
	}
}

// CaseSensitive returns the case sensitivity configured for kind
func (o Options) CaseSensitive(kind matcher.Kind) bool {
	if kind == matcher.Regex {
		return o.CaseSensitiveRegexSearch
	}
	return o.CaseSensitiveStringSearch
}

// SearchSpec builds the search specification for needle
func (o Options) SearchSpec(needle string, kind matcher.Kind) matcher.SearchSpec {
	return matcher.SearchSpec{
		Pattern:       needle,
		Kind:          kind,
		CaseSensitive: o.CaseSensitive(kind),
		Invert:        o.InvertSearch,
	}
}

// Mode returns the filter mode selected by UseNewBufferForResults
func (o Options) Mode() filter.Mode {
	if o.UseNewBufferForResults {
		return filter.NewBuffer
	}
	return filter.InPlace
}

// Separator resolves the separator to use. An explicit separator always
// wins; otherwise the default custom separator applies only when custom
// separators are enabled. An empty result means line mode.
func (o Options) Separator(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if o.CustomSeparator {
		return o.DefaultCustomSeparator
	}
	return ""
}
