package backdrop

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsWidget draws the current FPS and TPS in the top-left corner. The text
// is redrawn every fpsRefresh seconds into a small cached image.
type fpsWidget struct {
	img   *ebiten.Image
	accum float64
	dirty bool
}

const fpsRefresh = 0.5

func newFPSWidget() *fpsWidget {
	// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
	return &fpsWidget{img: ebiten.NewImage(100, 32), dirty: true}
}

func (w *fpsWidget) update(dt float64) {
	w.accum += dt
	if w.accum >= fpsRefresh {
		w.accum = 0
		w.dirty = true
	}
}

func (w *fpsWidget) draw(screen *ebiten.Image) {
	if w.dirty {
		w.dirty = false
		w.img.Clear()
		// Semi-transparent background for readability
		w.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(w.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	screen.DrawImage(w.img, nil)
}
