package termview

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/phanxgames/backdrop"
)

// ramp orders glyphs from empty to dense.
var ramp = []rune{' ', '.', ':', '-', '=', '+', '*', '#', '%', '@'}

// inkGain scales accumulated alpha into ramp positions. Background opacities
// are a few percent, so raw alpha would never leave the first glyph.
const inkGain = 8.0

type cell struct {
	ink     float64
	r, g, b float64 // alpha-weighted color sums
}

func (c *cell) add(col backdrop.Color) {
	c.ink += col.A
	c.r += col.R * col.A
	c.g += col.G * col.A
	c.b += col.B * col.A
}

// CellRenderer rasterizes a Field into terminal cells. Each cell covers one
// column and two pixel rows, so the viewport is cols x rows*2.
type CellRenderer struct {
	screen  tcell.Screen
	palette backdrop.Palette
	list    backdrop.DisplayList

	cols, rows int
	cells      []cell
	disposed   bool
}

// NewCellRenderer returns a renderer drawing to screen.
func NewCellRenderer(screen tcell.Screen, vp backdrop.Viewport, pal backdrop.Palette) *CellRenderer {
	r := &CellRenderer{screen: screen, palette: pal}
	r.Resize(vp)
	return r
}

// Factory adapts NewCellRenderer to backdrop.RendererFactory.
func Factory(screen tcell.Screen) backdrop.RendererFactory {
	return func(vp backdrop.Viewport, pal backdrop.Palette) (backdrop.Renderer, error) {
		if screen == nil {
			return nil, errNoScreen
		}
		return NewCellRenderer(screen, vp, pal), nil
	}
}

// DisplayList returns the commands of the last rendered frame.
func (r *CellRenderer) DisplayList() *backdrop.DisplayList { return &r.list }

// Render rasterizes f into the screen buffer. The caller shows the screen.
func (r *CellRenderer) Render(f *backdrop.Field, fade float64) error {
	if r.disposed {
		return backdrop.ErrRendererDisposed
	}
	for i := range r.cells {
		r.cells[i] = cell{}
	}
	r.list.Build(f, float64(r.cols), float64(r.rows*2), fade)

	for i := range r.list.Commands {
		cmd := &r.list.Commands[i]
		if cmd.Color.A <= 0 {
			continue
		}
		switch cmd.Type {
		case backdrop.CommandNode, backdrop.CommandConnector:
			for _, s := range r.list.SegmentsOf(cmd) {
				r.line(s, cmd.Color)
			}
		case backdrop.CommandParticle:
			r.plot(int(cmd.X), int(cmd.Y), cmd.Color)
		}
	}
	r.flush()
	return nil
}

// line walks the segment with Bresenham in pixel space.
func (r *CellRenderer) line(s backdrop.Segment, c backdrop.Color) {
	x0, y0 := int(math.Round(s.X0)), int(math.Round(s.Y0))
	x1, y1 := int(math.Round(s.X1)), int(math.Round(s.Y1))
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	// Off-screen segments can be arbitrarily long; cap the walk.
	limit := 4 * (r.cols + r.rows*2)
	err := dx + dy
	for n := 0; n < limit; n++ {
		r.plot(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (r *CellRenderer) plot(px, py int, c backdrop.Color) {
	col, row := px, py/2
	if py < 0 || col < 0 || col >= r.cols || row >= r.rows {
		return
	}
	r.cells[row*r.cols+col].add(c)
}

// flush writes every cell to the screen.
func (r *CellRenderer) flush() {
	page := r.palette.Clear
	bg := rgb(page)
	for row := 0; row < r.rows; row++ {
		for col := 0; col < r.cols; col++ {
			c := r.cells[row*r.cols+col]
			glyph, style := r.cellStyle(c, page)
			r.screen.SetContent(col, row, glyph, nil, style.Background(bg))
		}
	}
}

func (r *CellRenderer) cellStyle(c cell, page backdrop.Color) (rune, tcell.Style) {
	if c.ink <= 0 {
		return ' ', tcell.StyleDefault
	}
	v := math.Min(c.ink*inkGain, 1)
	glyph := ramp[max(1, int(v*float64(len(ramp)-1)))]
	avg := backdrop.Color{R: c.r / c.ink, G: c.g / c.ink, B: c.b / c.ink}
	// Glyphs need contrast against the page color to be seen at all.
	k := 0.35 + 0.65*v
	fg := backdrop.Color{
		R: page.R + (avg.R-page.R)*k,
		G: page.G + (avg.G-page.G)*k,
		B: page.B + (avg.B-page.B)*k,
	}
	return glyph, tcell.StyleDefault.Foreground(rgb(fg))
}

// Resize reallocates the cell grid for vp.
func (r *CellRenderer) Resize(vp backdrop.Viewport) {
	r.cols = max(vp.Width, 0)
	r.rows = max(vp.Height/2, 0)
	r.cells = make([]cell, r.cols*r.rows)
}

// Dispose drops the cell grid. The screen belongs to the View.
func (r *CellRenderer) Dispose() {
	r.disposed = true
	r.cells = nil
}

// Size returns the grid size in cells.
func (r *CellRenderer) Size() (cols, rows int) { return r.cols, r.rows }

func rgb(c backdrop.Color) tcell.Color {
	return tcell.NewRGBColor(channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) int32 {
	return int32(math.Round(math.Max(0, math.Min(v, 1)) * 255))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
