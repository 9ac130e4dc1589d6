package internal

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrNoHistory is returned when no search was remembered yet
var ErrNoHistory = errors.New("no previous search")

// History remembers the latest search needle between runs
type History interface {
	Latest() (string, error)
	Remember(needle string) error
}

type historyState struct {
	LatestSearch string    `toml:"latest_search"`
	UpdatedAt    time.Time `toml:"updated_at"`
}

// FileHistory stores the latest search in a TOML file
type FileHistory struct {
	path string
}

// NewFileHistory creates a history backed by path
func NewFileHistory(path string) *FileHistory {
	return &FileHistory{path: path}
}

// Latest returns the remembered needle
func (h *FileHistory) Latest() (string, error) {
	var state historyState
	if _, err := toml.DecodeFile(h.path, &state); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoHistory
		}
		return "", fmt.Errorf("reading history: %w", err)
	}
	return state.LatestSearch, nil
}

// Remember replaces the remembered needle
func (h *FileHistory) Remember(needle string) error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmp := h.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating history file: %w", err)
	}

	w := bufio.NewWriter(f)
	state := historyState{LatestSearch: needle, UpdatedAt: time.Now().UTC().Truncate(time.Second)}
	if err := toml.NewEncoder(w).Encode(state); err != nil {
		f.Close() // nolint: errcheck
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close() // nolint: errcheck
		return fmt.Errorf("writing history: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing history file: %w", err)
	}

	return os.Rename(tmp, h.path)
}

// MemoryHistory keeps the latest search in memory
type MemoryHistory struct {
	mu     sync.Mutex
	needle *string
}

// Latest returns the remembered needle
func (h *MemoryHistory) Latest() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.needle == nil {
		return "", ErrNoHistory
	}
	return *h.needle, nil
}

// Remember replaces the remembered needle
func (h *MemoryHistory) Remember(needle string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.needle = &needle
	return nil
}

// ResolveNeedle picks the needle for a run. When reuse is set the latest
// remembered needle is returned; otherwise needle is remembered when
// preserve is on.
func ResolveNeedle(h History, needle string, reuse, preserve bool) (string, error) {
	if reuse {
		return h.Latest()
	}
	if preserve {
		if err := h.Remember(needle); err != nil {
			return needle, err
		}
	}
	return needle, nil
}
