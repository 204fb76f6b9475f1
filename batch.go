package backdrop

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// Renderer draws a Field. Implementations own their output resources and
// release them in Dispose.
type Renderer interface {
	// Render draws f with every opacity multiplied by fade.
	Render(f *Field, fade float64) error
	Resize(vp Viewport)
	Dispose()
}

// RendererFactory creates the renderer for a mount. A failing factory
// leaves the background disabled.
type RendererFactory func(vp Viewport, pal Palette) (Renderer, error)

// lineWidth is the stroke width of wireframe and connector lines in logical
// pixels.
const lineWidth = 1.0

// SurfaceRenderer draws into an offscreen ebiten Surface using one batched
// DrawTriangles32 call per frame.
type SurfaceRenderer struct {
	surface *Surface
	list    DisplayList
	palette Palette

	batchVerts []ebiten.Vertex
	batchInds  []uint32

	// Opaque fills the surface with the palette's clear color before
	// drawing. Off for transparent overlays.
	Opaque bool
}

// NewSurfaceRenderer is a RendererFactory for the ebiten host.
func NewSurfaceRenderer(vp Viewport, pal Palette) (r Renderer, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("backdrop: create surface: %v", rec)
		}
	}()
	return &SurfaceRenderer{surface: NewSurface(vp), palette: pal}, nil
}

// Surface returns the render target.
func (r *SurfaceRenderer) Surface() *Surface { return r.surface }

// DisplayList returns the commands of the last rendered frame.
func (r *SurfaceRenderer) DisplayList() *DisplayList { return &r.list }

// Render projects f and submits the batch.
func (r *SurfaceRenderer) Render(f *Field, fade float64) error {
	if r.surface == nil || r.surface.Image() == nil {
		return ErrRendererDisposed
	}
	w, h := float64(r.surface.Width()), float64(r.surface.Height())
	r.list.Build(f, w, h, fade)

	if r.Opaque {
		r.surface.Fill(r.palette.Clear)
	} else {
		r.surface.Clear()
	}
	r.submitBatches(r.surface.Image())
	return nil
}

// submitBatches appends every command's triangles in sorted order and flushes
// once. Vertex colors are premultiplied so a single blend state covers all
// primitives.
func (r *SurfaceRenderer) submitBatches(target *ebiten.Image) {
	width := lineWidth * r.surface.Scale()
	for i := range r.list.Commands {
		cmd := &r.list.Commands[i]
		if cmd.Color.A <= 0 {
			continue
		}
		switch cmd.Type {
		case CommandNode, CommandConnector:
			for _, s := range r.list.SegmentsOf(cmd) {
				r.batchVerts, r.batchInds = appendLine(r.batchVerts, r.batchInds, s, width, cmd.Color)
			}
		case CommandParticle:
			r.batchVerts, r.batchInds = appendPoint(r.batchVerts, r.batchInds, cmd.X, cmd.Y, cmd.Size, cmd.Color)
		}
	}
	r.flush(target)
}

// flush submits accumulated vertices as a single DrawTriangles32 call.
func (r *SurfaceRenderer) flush(target *ebiten.Image) {
	if len(r.batchVerts) == 0 {
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	op.AntiAlias = true
	target.DrawTriangles32(r.batchVerts, r.batchInds, ensureWhitePixel(), &op)

	r.batchVerts = r.batchVerts[:0]
	r.batchInds = r.batchInds[:0]
}

// Resize reallocates the surface for vp.
func (r *SurfaceRenderer) Resize(vp Viewport) {
	if r.surface != nil {
		r.surface.Resize(vp)
	}
}

// Dispose releases the surface. Further calls are no-ops.
func (r *SurfaceRenderer) Dispose() {
	if r.surface != nil {
		r.surface.Dispose()
		r.surface = nil
	}
	r.batchVerts = nil
	r.batchInds = nil
}
