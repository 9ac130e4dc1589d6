package internal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

const (
	defaultReadSize = 4096
	// StdinName is the input name used for standard input
	StdinName = "-"
)

// ErrNoInput is returned when the arguments select no file
var ErrNoInput = errors.New("no input files")

// Input is one loaded source text
type Input struct {
	Name        string
	Text        string
	Compression string
}

// IsStdin reports whether the input was read from standard input
func (in *Input) IsStdin() bool {
	return in.Name == StdinName
}

// Writable reports whether the result can be written back to the source
func (in *Input) Writable() bool {
	return !in.IsStdin() && in.Compression == ""
}

// compressionOf returns the compression implied by the file extension
func compressionOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return "gzip"
	case ".zst", ".zstd":
		return "zstd"
	case ".lz4":
		return "lz4"
	default:
		return ""
	}
}

// decompress wraps r according to compression.
func decompress(r io.Reader, compression string) (io.ReadCloser, error) {
	switch compression {
	case "gzip":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case "zstd":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case "lz4":
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}

// ReadFrom loads an input from r, decompressing by compression.
func ReadFrom(name string, r io.Reader, compression string) (*Input, error) {
	rc, err := decompress(bufio.NewReaderSize(r, defaultReadSize), compression)
	if err != nil {
		return nil, fmt.Errorf("opening %s stream: %w", compression, err)
	}
	defer rc.Close() // nolint: errcheck

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return &Input{Name: name, Text: string(data), Compression: compression}, nil
}

// ReadInput loads path, or standard input when path is empty or "-".
func ReadInput(path string) (*Input, error) {
	if path == "" || path == StdinName {
		return ReadFrom(StdinName, os.Stdin, "")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer file.Close() // nolint: errcheck

	in, err := ReadFrom(path, file, compressionOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// WriteBack replaces the contents of the input file with text.
func WriteBack(in *Input, text string) error {
	if !in.Writable() {
		return fmt.Errorf("cannot write back to %s", in.Name)
	}

	info, err := os.Stat(in.Name)
	if err != nil {
		return fmt.Errorf("stat %s: %w", in.Name, err)
	}

	if err := os.WriteFile(in.Name, []byte(text), info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", in.Name, err)
	}
	return nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compiling include pattern %q: %w", pattern, err)
		}
		matchers = append(matchers, g)
	}
	return matchers, nil
}

func included(matchers []glob.Glob, rel string) bool {
	if len(matchers) == 0 {
		return true
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(rel)
	for _, g := range matchers {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

// ExpandInputs resolves the input arguments to file paths. Files are kept
// as given; directories are walked and their files selected by the include
// globs. No arguments means standard input.
func ExpandInputs(args []string, includes []string) ([]string, error) {
	if len(args) == 0 {
		return []string{StdinName}, nil
	}

	matchers, err := compileGlobs(includes)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, arg := range args {
		if arg == StdinName {
			paths = append(paths, arg)
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat input: %w", err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(arg, path)
			if err != nil {
				return err
			}
			if included(matchers, rel) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}

	if len(paths) == 0 {
		return nil, ErrNoInput
	}
	return paths, nil
}
