package clipboard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"strings"
	"testing"
)

type call struct {
	stdin string
	name  string
	args  []string
}

func fakeClipboard(opts ...Option) (*Clipboard, *[]call) {
	var calls []call
	c := New(opts...)
	c.run = func(stdin string, name string, args ...string) error {
		calls = append(calls, call{stdin: stdin, name: name, args: args})
		return nil
	}
	c.lookPath = func(name string) (string, error) {
		if name == "xclip" || name == "pbcopy" || name == "clip" {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
	return c, &calls
}

func TestNew(t *testing.T) {
	c := New()
	if !c.tmux || !c.system || !c.osc52 {
		t.Error("Default settings should enable all targets")
	}
	if c.output != os.Stderr {
		t.Error("Default output should be os.Stderr")
	}
}

func TestCopy_OSC52Only(t *testing.T) {
	t.Setenv("TMUX", "")
	var buf bytes.Buffer
	c, calls := fakeClipboard(WithTmux(false), WithSystem(false), WithOutput(&buf))

	if err := c.Copy("bar\n"); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if len(*calls) != 0 {
		t.Errorf("expected no commands, got %v", *calls)
	}

	want := "\033]52;c;" + base64.StdEncoding.EncodeToString([]byte("bar\n")) + "\007"
	if buf.String() != want {
		t.Errorf("OSC52 output = %q, want %q", buf.String(), want)
	}
}

func TestCopy_TmuxAndSystem(t *testing.T) {
	t.Setenv("TMUX", "/tmp/tmux-1000/default,12345,0")
	c, calls := fakeClipboard(WithOSC52(false))

	if err := c.Copy("text"); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	if len(*calls) == 0 || (*calls)[0].name != "tmux" {
		t.Fatalf("expected tmux load-buffer first, got %v", *calls)
	}
	if got := strings.Join((*calls)[0].args, " "); got != "load-buffer -" {
		t.Errorf("tmux args = %q", got)
	}
	for _, c := range *calls {
		if c.stdin != "text" {
			t.Errorf("%s received %q", c.name, c.stdin)
		}
	}
}

func TestCopy_NoTarget(t *testing.T) {
	t.Setenv("TMUX", "")
	c, _ := fakeClipboard(WithSystem(false), WithOSC52(false))

	if err := c.Copy("x"); !errors.Is(err, ErrNoTarget) {
		t.Errorf("Copy() error = %v, want ErrNoTarget", err)
	}
}

func TestCopy_CommandFailure(t *testing.T) {
	t.Setenv("TMUX", "")
	c, _ := fakeClipboard(WithOSC52(false))
	c.run = func(string, string, ...string) error { return errors.New("boom") }

	err := c.Copy("x")
	if err == nil || errors.Is(err, ErrNoTarget) {
		t.Errorf("Copy() error = %v, want command failure", err)
	}
}

func TestOSC52Sequence_Tmux(t *testing.T) {
	seq := osc52Sequence("hi", true)
	if !strings.HasPrefix(seq, "\033Ptmux;") || !strings.HasSuffix(seq, "\033\\") {
		t.Errorf("tmux passthrough not applied: %q", seq)
	}
}

func TestClipboardTools(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "pbcopy"},
		{"linux", "wl-copy"},
		{"windows", "clip"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			tools := clipboardTools(tt.goos)
			if len(tools) == 0 || tools[0] != tt.want {
				t.Errorf("clipboardTools(%q) = %v, want first %q", tt.goos, tools, tt.want)
			}
		})
	}
	if tools := clipboardTools("plan9"); len(tools) != 0 {
		t.Errorf("expected no tools for plan9, got %v", tools)
	}
}
