// Package clipboard copies filter results to the tmux buffer, the system
// clipboard or the terminal through OSC52.
package clipboard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoTarget is returned when no enabled target could be used
var ErrNoTarget = errors.New("no clipboard target available")

// Option configures a Clipboard
type Option func(*Clipboard)

// Clipboard copies text to every enabled target
type Clipboard struct {
	tmux   bool
	system bool
	osc52  bool
	output io.Writer

	// run executes an external command with stdin, replaceable in tests
	run func(stdin string, name string, args ...string) error
	// lookPath resolves a tool name, replaceable in tests
	lookPath func(name string) (string, error)
}

// New creates a Clipboard with every target enabled
func New(opts ...Option) *Clipboard {
	c := &Clipboard{
		tmux:     true,
		system:   true,
		osc52:    true,
		output:   os.Stderr,
		run:      runCommand,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTmux enables/disables tmux buffer copying
func WithTmux(enabled bool) Option {
	return func(c *Clipboard) { c.tmux = enabled }
}

// WithSystem enables/disables system clipboard copying
func WithSystem(enabled bool) Option {
	return func(c *Clipboard) { c.system = enabled }
}

// WithOSC52 enables/disables OSC52 terminal copying
func WithOSC52(enabled bool) Option {
	return func(c *Clipboard) { c.osc52 = enabled }
}

// WithOutput sets the destination of OSC52 sequences
func WithOutput(w io.Writer) Option {
	return func(c *Clipboard) { c.output = w }
}

func runCommand(stdin string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	return cmd.Run()
}

// Copy writes text to the enabled targets. It succeeds when at least one
// target accepted the text.
func (c *Clipboard) Copy(text string) error {
	var errs []error
	copied := false

	if c.tmux && isTmuxSession() {
		if err := c.run(text, "tmux", "load-buffer", "-"); err != nil {
			errs = append(errs, fmt.Errorf("tmux: %w", err))
		} else {
			copied = true
		}
	}

	if c.system {
		if tool := c.systemTool(); tool != "" {
			if err := c.run(text, tool); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", tool, err))
			} else {
				copied = true
			}
		}
	}

	if c.osc52 {
		if _, err := io.WriteString(c.output, osc52Sequence(text, isTmuxSession())); err != nil {
			errs = append(errs, fmt.Errorf("osc52: %w", err))
		} else {
			copied = true
		}
	}

	if copied {
		return nil
	}
	if len(errs) == 0 {
		return ErrNoTarget
	}
	return errors.Join(errs...)
}

func (c *Clipboard) systemTool() string {
	for _, tool := range clipboardTools(runtime.GOOS) {
		if _, err := c.lookPath(tool); err == nil {
			return tool
		}
	}
	return ""
}

// osc52Sequence encodes text as an OSC52 clipboard escape, wrapped in a
// DCS passthrough inside tmux
func osc52Sequence(text string, tmux bool) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	if tmux {
		return fmt.Sprintf("\033Ptmux;\033\033]52;c;%s\007\033\\", encoded)
	}
	return fmt.Sprintf("\033]52;c;%s\007", encoded)
}

func isTmuxSession() bool {
	return os.Getenv("TMUX") != ""
}

// clipboardTools returns the clipboard commands tried on goos, in order
func clipboardTools(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"pbcopy"}
	case "linux", "freebsd", "openbsd":
		return []string{"wl-copy", "xclip", "xsel"}
	case "windows":
		return []string{"clip"}
	default:
		return nil
	}
}
