package internal

import (
	"context"
	"fmt"
	"runtime"

	"github.com/Hanaasagi/filterlines/pkg/filter"
	"golang.org/x/sync/errgroup"
)

// Outcome is the filter result for one input
type Outcome struct {
	Input  *Input
	Result filter.Result
	// Output is the results document in new-buffer mode and the edited
	// source in in-place mode
	Output string
	Meta   Metadata
}

// FilterInput loads one input and filters it.
func FilterInput(path string, opts Options, req FilterRequest, stripANSI bool) (*Outcome, error) {
	in, err := ReadInput(path)
	if err != nil {
		return nil, err
	}
	in.Text = PrepareText(in.Text, stripANSI)

	doc := NewStringDocument(in.Name, in.Text)
	sink := &MemorySink{}

	result, err := RunFilter(doc, sink, opts, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Name, err)
	}

	out := &Outcome{Input: in, Result: result, Output: doc.Text()}
	if len(sink.Documents) > 0 {
		out.Output = sink.Documents[0]
		out.Meta = sink.Metadata[0]
	}
	return out, nil
}

// FilterAll filters every path concurrently and returns the outcomes in
// the order of paths. Each input is filtered by a single goroutine.
func FilterAll(ctx context.Context, paths []string, opts Options, req FilterRequest, stripANSI bool) ([]*Outcome, error) {
	outcomes := make([]*Outcome, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := FilterInput(path, opts, req, stripANSI)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
