package internal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
)

// Color renders text in one foreground color on the terminal and in the
// pager
type Color interface {
	Sprint(text string) string
	Tcell() tcell.Color
}

type namedColor struct {
	attr  color.Attribute
	tcell tcell.Color
}

func (c namedColor) Sprint(text string) string {
	return color.New(c.attr).Sprint(text)
}

func (c namedColor) Tcell() tcell.Color {
	return c.tcell
}

type rgbColor struct {
	r, g, b uint8
}

func (c rgbColor) Sprint(text string) string {
	if color.NoColor {
		return text
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", c.r, c.g, c.b, text)
}

func (c rgbColor) Tcell() tcell.Color {
	return tcell.NewRGBColor(int32(c.r), int32(c.g), int32(c.b))
}

var rgbRegex = regexp.MustCompile(`^#([a-fA-F0-9]{2})([a-fA-F0-9]{2})([a-fA-F0-9]{2})$`)

var predefinedColors = map[string]namedColor{
	"black":   {color.FgBlack, tcell.ColorBlack},
	"red":     {color.FgRed, tcell.ColorRed},
	"green":   {color.FgGreen, tcell.ColorGreen},
	"yellow":  {color.FgYellow, tcell.ColorYellow},
	"blue":    {color.FgBlue, tcell.ColorBlue},
	"magenta": {color.FgMagenta, tcell.ColorFuchsia},
	"cyan":    {color.FgCyan, tcell.ColorAqua},
	"white":   {color.FgWhite, tcell.ColorWhite},
	"gray":    {color.FgHiBlack, tcell.ColorGray},
	"default": {color.Reset, tcell.ColorDefault},
}

var (
	colorCache = make(map[string]Color, 16)
	colorMutex sync.RWMutex
)

// GetColor parses a color name or #rrggbb value
func GetColor(name string) (Color, error) {
	colorMutex.RLock()
	if cached, ok := colorCache[name]; ok {
		colorMutex.RUnlock()
		return cached, nil
	}
	colorMutex.RUnlock()

	var result Color
	if m := rgbRegex.FindStringSubmatch(name); m != nil {
		r, _ := strconv.ParseUint(m[1], 16, 8)
		g, _ := strconv.ParseUint(m[2], 16, 8)
		b, _ := strconv.ParseUint(m[3], 16, 8)
		result = rgbColor{uint8(r), uint8(g), uint8(b)}
	} else if predefined, ok := predefinedColors[strings.ToLower(name)]; ok {
		result = predefined
	} else {
		return nil, fmt.Errorf("unknown color: %s", name)
	}

	colorMutex.Lock()
	colorCache[name] = result
	colorMutex.Unlock()

	return result, nil
}

func colorToTcell(c Color) tcell.Color {
	if c == nil {
		return tcell.ColorDefault
	}
	return c.Tcell()
}

// SetColorMode applies the color mode: "always", "never" or "auto", which
// colors only when writing to a terminal.
func SetColorMode(mode string, isTerminal bool) error {
	switch strings.ToLower(mode) {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal
	default:
		return fmt.Errorf("unknown color mode %q", mode)
	}
	return nil
}
