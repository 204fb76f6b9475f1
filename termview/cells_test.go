package termview

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/phanxgames/backdrop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCells(t *testing.T, cols, rows int) *CellRenderer {
	t.Helper()
	screen := newSimScreen(t, cols, rows)
	t.Cleanup(screen.Fini)
	return NewCellRenderer(screen, viewportFor(cols, rows), backdrop.PaletteFor(backdrop.ThemeDark))
}

func inkedCells(r *CellRenderer) map[[2]int]float64 {
	out := map[[2]int]float64{}
	for i, c := range r.cells {
		if c.ink > 0 {
			out[[2]int{i % r.cols, i / r.cols}] = c.ink
		}
	}
	return out
}

func TestLineCoversEndpoints(t *testing.T) {
	r := newTestCells(t, 10, 5)
	white := backdrop.Color{R: 1, G: 1, B: 1, A: 0.1}

	r.line(backdrop.Segment{X0: 0, Y0: 0, X1: 9, Y1: 0}, white)
	got := inkedCells(r)
	assert.Len(t, got, 10)
	for x := 0; x < 10; x++ {
		assert.Contains(t, got, [2]int{x, 0})
	}
}

func TestLineVerticalTouchesEachRowTwice(t *testing.T) {
	r := newTestCells(t, 4, 4)
	r.line(backdrop.Segment{X0: 1, Y0: 0, X1: 1, Y1: 7}, backdrop.Color{A: 0.1})
	got := inkedCells(r)
	require.Len(t, got, 4)
	for row := 0; row < 4; row++ {
		assert.InDelta(t, 0.2, got[[2]int{1, row}], 1e-12)
	}
}

func TestLineClipsOffscreen(t *testing.T) {
	r := newTestCells(t, 10, 5)
	r.line(backdrop.Segment{X0: -1e6, Y0: 3, X1: 1e6, Y1: 3}, backdrop.Color{A: 1})
	// The walk is capped, so a huge segment only costs a bounded number of
	// steps and may not reach the screen at all.
	for k := range inkedCells(r) {
		assert.True(t, k[0] >= 0 && k[0] < 10 && k[1] >= 0 && k[1] < 5)
	}
}

func TestCellStyle(t *testing.T) {
	r := newTestCells(t, 1, 1)
	page := backdrop.PaletteFor(backdrop.ThemeDark).Clear

	glyph, _ := r.cellStyle(cell{}, page)
	assert.Equal(t, ' ', glyph)

	var faint, dense cell
	faint.add(backdrop.Color{R: 1, G: 1, B: 1, A: 0.01})
	dense.add(backdrop.Color{R: 1, G: 1, B: 1, A: 1})

	g1, s1 := r.cellStyle(faint, page)
	g2, s2 := r.cellStyle(dense, page)
	assert.NotEqual(t, ' ', g1, "any ink shows a glyph")
	assert.Equal(t, '@', g2)

	fg1, _, _ := s1.Decompose()
	fg2, _, _ := s2.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 255, 255), fg2)
	assert.NotEqual(t, fg1, fg2)
}

func TestCellRendererDispose(t *testing.T) {
	r := newTestCells(t, 10, 5)
	r.Dispose()
	f, err := backdrop.NewField(backdrop.DefaultConfig(), backdrop.ThemeDark, viewportFor(10, 5), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, r.Render(f, 1), backdrop.ErrRendererDisposed)
}

func TestFactoryWithoutScreen(t *testing.T) {
	_, err := Factory(nil)(viewportFor(10, 5), backdrop.PaletteFor(backdrop.ThemeLight))
	assert.ErrorIs(t, err, errNoScreen)
}
