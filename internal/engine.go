package internal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Hanaasagi/filterlines/pkg/filter"
	"github.com/Hanaasagi/filterlines/pkg/fold"
	"github.com/Hanaasagi/filterlines/pkg/matcher"
	"github.com/Hanaasagi/filterlines/pkg/segment"
)

// FilterRequest names what to filter for
type FilterRequest struct {
	Needle string
	Kind   matcher.Kind
	// Separator overrides the configured custom separator when set
	Separator string
	WordWrap  bool
}

type named interface {
	Name() string
}

// segmentText splits text by separator, or by lines when separator is empty.
func segmentText(text, separator string) ([]segment.Segment, error) {
	if separator == "" {
		return segment.Collect(segment.Lines(text)), nil
	}

	sep, err := matcher.CompileSeparator(separator)
	if err != nil {
		return nil, fmt.Errorf("compiling separator: %w", err)
	}
	return segment.Collect(segment.Split(text, sep)), nil
}

// RunFilter filters doc for req. In new-buffer mode the kept text, or the
// 0 matches message, is handed to sink and doc is left untouched. In
// in-place mode the rejected segments are deleted from doc.
func RunFilter(doc Document, sink Sink, opts Options, req FilterRequest) (filter.Result, error) {
	spec := opts.SearchSpec(req.Needle, req.Kind)
	pred, err := matcher.Compile(spec)
	if err != nil {
		return filter.Result{}, fmt.Errorf("compiling search: %w", err)
	}

	separator := opts.Separator(req.Separator)
	text := doc.Text()

	started := time.Now()
	segments, err := segmentText(text, separator)
	if err != nil {
		return filter.Result{}, err
	}

	mode := opts.Mode()
	result := filter.Filter(segments, pred, mode, separator != "")
	slog.Debug("Filtered segments",
		"mode", mode, "kind", req.Kind, "kept", result.Kept, "total", result.Total,
		"separator", separator, "duration", time.Since(started))

	if mode == filter.InPlace {
		filter.ApplyTo(doc, result.Deletions)
		return result, nil
	}

	meta := Metadata{Name: ResultsName, WordWrap: req.WordWrap}
	output := result.Text
	if result.Empty() {
		output = filter.ZeroMatchesMessage(req.Needle, spec.CaseSensitive)
	} else if n, ok := doc.(named); ok {
		meta.SyntaxHint = SyntaxHint(n.Name())
	}

	if err := sink.CreateDocument(output, meta); err != nil {
		return result, fmt.Errorf("creating results document: %w", err)
	}

	return result, nil
}

// RunFold computes the fold runs of text for needle. Runs are returned in
// text order.
func RunFold(text string, opts Options, needle string, kind matcher.Kind) ([]fold.Run, error) {
	pred, err := matcher.Compile(opts.SearchSpec(needle, kind))
	if err != nil {
		return nil, fmt.Errorf("compiling search: %w", err)
	}

	runs := fold.Fold(segment.Collect(segment.Lines(text)), pred)
	slog.Debug("Folded segments", "kind", kind, "runs", len(runs))

	return fold.Sorted(runs), nil
}
