package internal

import (
	"log/slog"
	"strings"

	"github.com/leaanthony/go-ansi-parser"
)

// TextProcessor prepares input text before it is segmented
type TextProcessor interface {
	// Process returns the text that searches run against
	Process(text string) (string, error)
	// Name identifies the processor in logs
	Name() string
}

// PlainTextProcessor passes text through unchanged
type PlainTextProcessor struct{}

// NewPlainTextProcessor creates a new plain text processor
func NewPlainTextProcessor() *PlainTextProcessor {
	return &PlainTextProcessor{}
}

// Process returns text unchanged
func (p *PlainTextProcessor) Process(text string) (string, error) {
	return text, nil
}

func (p *PlainTextProcessor) Name() string {
	return "plain"
}

// AnsiStripProcessor removes ANSI styling so searches only see the
// visible characters
type AnsiStripProcessor struct{}

// NewAnsiStripProcessor creates a new ANSI stripping processor
func NewAnsiStripProcessor() *AnsiStripProcessor {
	return &AnsiStripProcessor{}
}

// Process strips escape sequences line by line, keeping terminators
func (s *AnsiStripProcessor) Process(text string) (string, error) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !hasEscapes(line) {
			continue
		}

		elements, err := ansi.Parse(line)
		if err != nil {
			return "", err
		}

		var sb strings.Builder
		for _, element := range elements {
			sb.WriteString(element.Label)
		}
		lines[i] = sb.String()
	}
	return strings.Join(lines, "\n"), nil
}

func (s *AnsiStripProcessor) Name() string {
	return "ansi-strip"
}

func hasEscapes(text string) bool {
	return strings.ContainsRune(text, '\x1b')
}

// CreateTextProcessor selects the processor for text. Stripping is only
// done on request and only when the text carries escape sequences.
func CreateTextProcessor(text string, stripANSI bool) TextProcessor {
	if stripANSI && hasEscapes(text) {
		return NewAnsiStripProcessor()
	}
	return NewPlainTextProcessor()
}

// PrepareText runs the selected processor, falling back to the raw text
// when the input cannot be parsed.
func PrepareText(text string, stripANSI bool) string {
	processor := CreateTextProcessor(text, stripANSI)
	processed, err := processor.Process(text)
	if err != nil {
		slog.Warn("Failed to process input, using raw text", "processor", processor.Name(), "error", err)
		return text
	}
	return processed
}
