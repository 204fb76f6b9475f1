package backdrop

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- White pixel singleton (no sync.Once, drawing is single-threaded) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
// Every primitive is an untextured triangle sampling its center.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// premultiplied returns c's components scaled by its alpha, as vertex
// colors.
func premultiplied(c Color) (r, g, b, a float32) {
	a = float32(clamp01(c.A))
	return float32(c.R) * a, float32(c.G) * a, float32(c.B) * a, a
}

// perpendicular returns the unit left-perpendicular of the segment from
// (x0, y0) to (x1, y1).
func perpendicular(x0, y0, x1, y1 float64) (float64, float64) {
	dx := x1 - x0
	dy := y1 - y0
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}

// appendLine appends a quad of the given pixel width along s. Four
// vertices, six indices.
func appendLine(verts []ebiten.Vertex, inds []uint32, s Segment, width float64, c Color) ([]ebiten.Vertex, []uint32) {
	nx, ny := perpendicular(s.X0, s.Y0, s.X1, s.Y1)
	hw := width / 2
	cr, cg, cb, ca := premultiplied(c)

	base := uint32(len(verts))
	corners := [4][2]float64{
		{s.X0 + nx*hw, s.Y0 + ny*hw},
		{s.X0 - nx*hw, s.Y0 - ny*hw},
		{s.X1 + nx*hw, s.Y1 + ny*hw},
		{s.X1 - nx*hw, s.Y1 - ny*hw},
	}
	for _, p := range corners {
		verts = append(verts, ebiten.Vertex{
			DstX:   float32(p[0]),
			DstY:   float32(p[1]),
			SrcX:   0.5,
			SrcY:   0.5,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
		})
	}
	// Two triangles per segment, same winding as a ribbon.
	inds = append(inds,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
	return verts, inds
}

// pointSides is the polygon resolution of a particle disc.
const pointSides = 8

// appendPoint appends a filled disc of diameter size centered on (x, y) as a
// triangle fan.
func appendPoint(verts []ebiten.Vertex, inds []uint32, x, y, size float64, c Color) ([]ebiten.Vertex, []uint32) {
	cr, cg, cb, ca := premultiplied(c)
	r := size / 2

	base := uint32(len(verts))
	// Fan hub.
	verts = append(verts, ebiten.Vertex{
		DstX: float32(x), DstY: float32(y), SrcX: 0.5, SrcY: 0.5,
		ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
	})
	for i := 0; i < pointSides; i++ {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / pointSides)
		verts = append(verts, ebiten.Vertex{
			DstX: float32(x + cos*r), DstY: float32(y + sin*r), SrcX: 0.5, SrcY: 0.5,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
		})
	}
	for i := uint32(0); i < pointSides; i++ {
		next := (i+1)%pointSides + 1
		inds = append(inds, base, base+i+1, base+next)
	}
	return verts, inds
}
