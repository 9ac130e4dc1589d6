package internal

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Hanaasagi/filterlines/pkg/fold"
	"github.com/Hanaasagi/filterlines/pkg/segment"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// row is one display line of the pager
type row struct {
	line   int // index into Pager.lines
	run    int // index into Pager.runs, -1 for visible lines
	marker bool
}

// PagerStyles groups the styles used by the pager
type PagerStyles struct {
	Text     tcell.Style
	Marker   tcell.Style
	Unfolded tcell.Style
	Cursor   tcell.Style
	Status   tcell.Style
}

// DefaultPagerStyles returns the pager styles for marker color c
func DefaultPagerStyles(c Color) PagerStyles {
	return PagerStyles{
		Text:     tcell.StyleDefault,
		Marker:   tcell.StyleDefault.Foreground(colorToTcell(c)).Italic(true),
		Unfolded: tcell.StyleDefault.Dim(true),
		Cursor:   tcell.StyleDefault.Reverse(true),
		Status:   tcell.StyleDefault.Reverse(true).Bold(true),
	}
}

// Pager shows a text with its fold runs collapsed and lets the user
// toggle them
type Pager struct {
	title  string
	lines  []segment.Segment
	runs   []fold.Run
	folded []bool
	runOf  []int
	marker fold.MarkerFunc
	styles PagerStyles

	screen tcell.Screen
	cursor int
	top    int
}

// NewPager creates a pager for text with runs initially folded
func NewPager(title, text string, runs []fold.Run, marker fold.MarkerFunc, styles PagerStyles) *Pager {
	lines := segment.Collect(segment.Lines(text))
	runs = fold.Sorted(runs)

	memberOf := make(map[int]int)
	for i, r := range runs {
		for _, s := range r.Segments {
			memberOf[s.Start] = i
		}
	}

	runOf := make([]int, len(lines))
	for i, l := range lines {
		runOf[i] = -1
		if idx, ok := memberOf[l.Start]; ok {
			runOf[i] = idx
		}
	}

	folded := make([]bool, len(runs))
	for i := range folded {
		folded[i] = true
	}

	return &Pager{
		title:  title,
		lines:  lines,
		runs:   runs,
		folded: folded,
		runOf:  runOf,
		marker: marker,
		styles: styles,
	}
}

// rows computes the display lines
func (p *Pager) rows() []row {
	rows := make([]row, 0, len(p.lines))
	for i := range p.lines {
		run := p.runOf[i]
		if run < 0 || !p.folded[run] {
			rows = append(rows, row{line: i, run: run})
			continue
		}
		// one marker row per folded run
		if i == 0 || p.runOf[i-1] != run {
			rows = append(rows, row{line: i, run: run, marker: true})
		}
	}
	return rows
}

// Toggle folds or unfolds the run under the cursor
func (p *Pager) Toggle() bool {
	rows := p.rows()
	if p.cursor >= len(rows) || rows[p.cursor].run < 0 {
		return false
	}

	run := rows[p.cursor].run
	p.folded[run] = !p.folded[run]

	// keep the cursor on the first line of the run
	for i, r := range p.rows() {
		if r.run == run {
			p.cursor = i
			break
		}
	}
	return true
}

// ToggleAll folds every run unless all of them are folded already
func (p *Pager) ToggleAll() {
	all := true
	for _, f := range p.folded {
		all = all && f
	}
	for i := range p.folded {
		p.folded[i] = !all
	}
	p.cursor = min(p.cursor, max(len(p.rows())-1, 0))
}

func (p *Pager) move(delta int) {
	p.cursor = max(0, min(p.cursor+delta, len(p.rows())-1))
}

// rowText returns the text shown for r
func (p *Pager) rowText(r row) string {
	if r.marker {
		return p.marker(p.runs[r.run])
	}
	return strings.TrimRight(p.lines[r.line].Text, "\r")
}

func (p *Pager) drawText(y int, text string, style tcell.Style, width int) {
	x := 0
	for _, c := range text {
		w := runewidth.RuneWidth(c)
		if w <= 0 {
			w = 1
		}
		if x+w > width {
			break
		}
		p.screen.SetContent(x, y, c, nil, style)
		x += w
	}
	for ; x < width; x++ {
		p.screen.SetContent(x, y, ' ', nil, style)
	}
}

// render draws the visible rows and a status line
func (p *Pager) render() {
	p.screen.Clear()

	width, height := p.screen.Size()
	body := max(height-1, 0)
	rows := p.rows()

	if p.cursor < p.top {
		p.top = p.cursor
	}
	if body > 0 && p.cursor >= p.top+body {
		p.top = p.cursor - body + 1
	}

	for y := 0; y < body && p.top+y < len(rows); y++ {
		r := rows[p.top+y]
		style := p.styles.Text
		switch {
		case r.marker:
			style = p.styles.Marker
		case r.run >= 0:
			style = p.styles.Unfolded
		}
		if p.top+y == p.cursor {
			style = p.styles.Cursor
		}
		p.drawText(y, p.rowText(r), style, width)
	}

	if height > 0 {
		hidden := 0
		for i, r := range p.runs {
			if p.folded[i] {
				hidden += r.Len()
			}
		}
		status := fmt.Sprintf(" %s  %d/%d  %d runs, %d lines hidden  [space] toggle [a] all [q] quit",
			p.title, min(p.cursor+1, len(rows)), len(rows), len(p.runs), hidden)
		p.drawText(height-1, status, p.styles.Status, width)
	}

	p.screen.Show()
}

// handleKey applies one key press. It returns false when the pager
// should close.
func (p *Pager) handleKey(ev *tcell.EventKey) bool {
	_, height := p.screen.Size()
	page := max(height-2, 1)

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		p.move(-1)
	case tcell.KeyDown:
		p.move(1)
	case tcell.KeyPgUp:
		p.move(-page)
	case tcell.KeyPgDn:
		p.move(page)
	case tcell.KeyHome:
		p.cursor = 0
	case tcell.KeyEnd:
		p.cursor = max(len(p.rows())-1, 0)
	case tcell.KeyEnter:
		p.Toggle()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'j':
			p.move(1)
		case 'k':
			p.move(-1)
		case 'g':
			p.cursor = 0
		case 'G':
			p.cursor = max(len(p.rows())-1, 0)
		case ' ':
			p.Toggle()
		case 'a':
			p.ToggleAll()
		}
	}
	return true
}

// Run drives the pager on screen until the user quits. The screen must be
// initialized; Run does not finalize it.
func (p *Pager) Run(screen tcell.Screen) {
	p.screen = screen
	p.render()

	for {
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventKey:
			if !p.handleKey(ev) {
				return
			}
		case *tcell.EventResize:
			screen.Sync()
		case nil:
			return
		}
		p.render()
	}
}

// Present opens the terminal screen and runs the pager on it
func (p *Pager) Present() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault)
	slog.Debug("Pager opened", "lines", len(p.lines), "runs", len(p.runs))
	p.Run(screen)
	return nil
}
