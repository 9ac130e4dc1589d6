package internal

import (
	"strings"
	"testing"

	"github.com/Hanaasagi/filterlines/pkg/fold"
	"github.com/Hanaasagi/filterlines/pkg/matcher"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pagerText = "keep 1\nx\ny\nkeep 2\nz\n"

func newTestPager(t *testing.T) (*Pager, tcell.SimulationScreen) {
	t.Helper()

	runs, err := RunFold(pagerText, DefaultOptions(), "keep", matcher.Literal)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(60, 10)

	c, err := GetColor("yellow")
	require.NoError(t, err)

	p := NewPager("test", pagerText, runs, fold.CountMarker("<%d>"), DefaultPagerStyles(c))
	p.screen = screen
	return p, screen
}

func visibleText(p *Pager) []string {
	var out []string
	for _, r := range p.rows() {
		out = append(out, p.rowText(r))
	}
	return out
}

func screenLine(screen tcell.SimulationScreen, y int) string {
	cells, width, _ := screen.GetContents()
	var sb strings.Builder
	for x := 0; x < width; x++ {
		sb.WriteString(string(cells[y*width+x].Runes))
	}
	return strings.TrimRight(sb.String(), " ")
}

func TestPager_StartsFolded(t *testing.T) {
	p, _ := newTestPager(t)
	assert.Equal(t, []string{"keep 1", "<2>", "keep 2", "<1>"}, visibleText(p))
}

func TestPager_Toggle(t *testing.T) {
	p, _ := newTestPager(t)

	assert.False(t, p.Toggle(), "visible line has no run")

	p.move(1)
	require.True(t, p.Toggle())
	assert.Equal(t, []string{"keep 1", "x", "y", "keep 2", "<1>"}, visibleText(p))
	assert.Equal(t, 1, p.cursor)

	// cursor inside the unfolded run folds it again
	p.move(1)
	require.True(t, p.Toggle())
	assert.Equal(t, []string{"keep 1", "<2>", "keep 2", "<1>"}, visibleText(p))
	assert.Equal(t, 1, p.cursor)
}

func TestPager_ToggleAll(t *testing.T) {
	p, _ := newTestPager(t)

	p.ToggleAll()
	assert.Equal(t, []string{"keep 1", "x", "y", "keep 2", "z"}, visibleText(p))

	p.cursor = 4
	p.ToggleAll()
	assert.Equal(t, []string{"keep 1", "<2>", "keep 2", "<1>"}, visibleText(p))
	assert.Equal(t, 3, p.cursor)
}

func TestPager_Keys(t *testing.T) {
	p, _ := newTestPager(t)

	tests := []struct {
		name   string
		ev     *tcell.EventKey
		cursor int
		open   bool
	}{
		{"down", tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), 1, true},
		{"j", tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone), 2, true},
		{"end", tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone), 3, true},
		{"past end", tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), 3, true},
		{"k", tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone), 2, true},
		{"g", tcell.NewEventKey(tcell.KeyRune, 'g', tcell.ModNone), 0, true},
		{"up at top", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), 0, true},
		{"G", tcell.NewEventKey(tcell.KeyRune, 'G', tcell.ModNone), 3, true},
		{"q", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), 3, false},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.open, p.handleKey(tt.ev))
			assert.Equal(t, tt.cursor, p.cursor)
		})
	}
}

func TestPager_Run(t *testing.T) {
	p, screen := newTestPager(t)

	screen.InjectKey(tcell.KeyDown, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	p.Run(screen)

	assert.Equal(t, "keep 1", screenLine(screen, 0))
	assert.Equal(t, "x", screenLine(screen, 1))
	assert.Equal(t, "y", screenLine(screen, 2))
	assert.Equal(t, "keep 2", screenLine(screen, 3))
	assert.Equal(t, "<1>", screenLine(screen, 4))
	assert.Contains(t, screenLine(screen, 9), "2 runs, 1 lines hidden")
}
