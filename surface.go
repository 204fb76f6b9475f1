package backdrop

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Surface is the persistent offscreen image the background renders into.
// It is sized in device pixels (viewport times the clamped pixel ratio).
type Surface struct {
	image *ebiten.Image
	vp    Viewport
	w, h  int
}

// NewSurface allocates a surface for vp. A zero-area viewport still gets a
// 1x1 image so the surface is always drawable.
func NewSurface(vp Viewport) *Surface {
	w, h := vp.backingSize()
	return &Surface{
		image: ebiten.NewImage(w, h),
		vp:    vp,
		w:     w,
		h:     h,
	}
}

// Image returns the underlying *ebiten.Image, or nil after Dispose.
func (s *Surface) Image() *ebiten.Image {
	return s.image
}

// Width returns the surface width in device pixels.
func (s *Surface) Width() int {
	return s.w
}

// Height returns the surface height in device pixels.
func (s *Surface) Height() int {
	return s.h
}

// Scale returns the device pixels per logical pixel.
func (s *Surface) Scale() float64 {
	return s.vp.ratio()
}

// Clear fills the surface with transparent black.
func (s *Surface) Clear() {
	if s.image != nil {
		s.image.Clear()
	}
}

// Fill fills the entire surface with the given color.
func (s *Surface) Fill(c Color) {
	if s.image != nil {
		s.image.Fill(c.toRGBA())
	}
}

// Resize reallocates the image when the backing size changes.
func (s *Surface) Resize(vp Viewport) {
	w, h := vp.backingSize()
	s.vp = vp
	if s.image != nil && w == s.w && h == s.h {
		return
	}
	if s.image != nil {
		s.image.Deallocate()
	}
	s.image = ebiten.NewImage(w, h)
	s.w = w
	s.h = h
}

// DrawTo composites the surface onto dst scaled to dst's bounds, with alpha
// multiplied by opacity.
func (s *Surface) DrawTo(dst *ebiten.Image, opacity float64) {
	if s.image == nil || dst == nil {
		return
	}
	b := dst.Bounds()
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(float64(b.Dx())/float64(s.w), float64(b.Dy())/float64(s.h))
	op.ColorScale.ScaleAlpha(float32(clamp01(opacity)))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(s.image, &op)
}

// Dispose deallocates the underlying image. Further calls are no-ops.
func (s *Surface) Dispose() {
	if s.image != nil {
		s.image.Deallocate()
		s.image = nil
	}
}
