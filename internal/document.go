package internal

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// ResultsName is the name given to every filter results document
const ResultsName = "Filter Results"

// Document is the mutable text a filter operates on
type Document interface {
	Text() string
	DeleteRange(start, end int)
}

// StringDocument is an in-memory Document
type StringDocument struct {
	name string
	text string
}

// NewStringDocument creates a document holding text
func NewStringDocument(name, text string) *StringDocument {
	return &StringDocument{name: name, text: text}
}

// Name returns the document name, usually the input path
func (d *StringDocument) Name() string {
	return d.name
}

// Text returns the current document contents
func (d *StringDocument) Text() string {
	return d.text
}

// DeleteRange removes text[start:end]
func (d *StringDocument) DeleteRange(start, end int) {
	d.text = d.text[:start] + d.text[end:]
}

// Metadata describes a document created for filter results
type Metadata struct {
	Name       string
	SyntaxHint string
	WordWrap   bool
}

// Sink receives new documents
type Sink interface {
	CreateDocument(text string, meta Metadata) error
}

// SyntaxHint derives a syntax hint from a file name
func SyntaxHint(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	switch ext {
	case "gz", "zst", "lz4":
		return SyntaxHint(strings.TrimSuffix(name, "."+ext))
	}
	return strings.ToLower(ext)
}

// WriterSink writes documents to an io.Writer, optionally preceded by a
// header naming the source.
type WriterSink struct {
	w      io.Writer
	header string
	style  *color.Color
}

// NewWriterSink creates a sink writing to w
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w, style: color.New(color.FgHiMagenta, color.Bold)}
}

// WithHeader returns a copy of the sink that prints a "==> name <==" line
// before the document
func (s *WriterSink) WithHeader(name string) *WriterSink {
	cp := *s
	cp.header = name
	return &cp
}

// CreateDocument writes text to the underlying writer
func (s *WriterSink) CreateDocument(text string, meta Metadata) error {
	if s.header != "" {
		if _, err := s.style.Fprintf(s.w, "==> %s <==\n", s.header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if _, err := io.WriteString(s.w, text); err != nil {
		return fmt.Errorf("writing %s: %w", meta.Name, err)
	}
	return nil
}

// MemorySink keeps created documents in memory
type MemorySink struct {
	Documents []string
	Metadata  []Metadata
}

// CreateDocument records the document
func (s *MemorySink) CreateDocument(text string, meta Metadata) error {
	s.Documents = append(s.Documents, text)
	s.Metadata = append(s.Metadata, meta)
	return nil
}
