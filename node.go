package backdrop

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Node is one decorative sphere in a layer's grid. Its transform is a pure
// function of its origin, phases, the elapsed time, its layer, and the
// camera; nothing is carried between frames.
type Node struct {
	Layer    int
	Col, Row int

	// Origin is the undisturbed grid position. Never modified after build.
	Origin r3.Vec
	// PhaseX, PhaseY and PhaseZ desynchronize oscillation across nodes.
	// PhaseY drives the scale pulse and PhaseZ the depth wave; PhaseX is
	// drawn to keep the generator sequence stable across builds.
	PhaseX, PhaseY, PhaseZ float64

	Position r3.Vec
	// Rotation holds Euler angles in radians, applied X then Y then Z.
	Rotation r3.Vec
	// Scale applies to x and y; z stays 1.
	Scale float64
	// Opacity is stored as computed and may exceed 1 near the pointer.
	// Renderers clamp it.
	Opacity float64

	// Geometry is the layer's shared sphere.
	Geometry *Geometry
	Material *Material
}

// Wave and rotation rates of the node motion. They shape the look and are
// not meant to be tuned at runtime.
const (
	waveFreqX    = 0.3
	waveFreqY    = 0.25
	waveFreqZ    = 0.4
	waveGridX    = 0.3 // col contribution to the x wave
	waveGridY    = 0.3 // row contribution to the y wave
	waveGridZ    = 0.2 // col and row contribution to the z wave
	waveAmpXY    = 0.3
	waveAmpZ     = 1.5
	spinX        = 0.15
	spinY        = 0.12
	spinZ        = 0.08
	spinGridXY   = 0.1
	spinGridZ    = 0.05
	rippleFreq   = 2
	rippleSpread = 0.5
	rippleAmp    = 0.08
	pulseFreq    = 0.5
	pulseAmp     = 0.05
	rippleAlpha  = 0.1
)

// update recomputes the node's transform and opacity for elapsed time t.
func (n *Node) update(t float64, l *Layer, cam *Camera, tn *Tuning) {
	col, row := float64(n.Col), float64(n.Row)
	li := float64(l.Index)

	waveX := math.Sin(t*waveFreqX+col*waveGridX+li) * waveAmpXY
	waveY := math.Cos(t*waveFreqY+row*waveGridY+li) * waveAmpXY
	waveZ := math.Sin(t*waveFreqZ+n.PhaseZ+(col+row)*waveGridZ) * waveAmpZ

	n.Position = r3.Add(n.Origin, r3.Scale(l.Speed, r3.Vec{X: waveX, Y: waveY, Z: waveZ}))

	n.Rotation = r3.Vec{
		X: t*spinX + col*spinGridXY,
		Y: t*spinY + row*spinGridXY,
		Z: t*spinZ + (col+row)*spinGridZ,
	}

	fromCenter := math.Hypot(n.Origin.X, n.Origin.Y)
	ripple := math.Sin(t*rippleFreq-fromCenter*rippleSpread) * rippleAmp
	n.Scale = 1 + ripple + math.Sin(t*pulseFreq+n.PhaseY)*pulseAmp

	influence := math.Max(0, 1-cam.pointerDistance(n.Position, tn.PointerFalloff))
	n.Opacity = l.Opacity*0.5 + l.Opacity*influence*tn.NodeHighlight + ripple*rippleAlpha
	n.Material.Opacity = n.Opacity
}

// Layer groups the nodes sharing one depth, speed and opacity.
type Layer struct {
	Index int
	Depth float64
	// Speed scales the wave displacement; farther layers move less.
	Speed float64
	// Scale enlarges the sphere of farther layers.
	Scale float64
	// Opacity is the layer's base opacity for the theme it was built with.
	Opacity float64
	// Nodes are ordered by index = col*rows + row.
	Nodes []*Node
	// Sphere is shared by every node of the layer.
	Sphere *Geometry
}

// NodeAt returns the node at grid position (col, row), or nil when out of
// range.
func (l *Layer) NodeAt(col, row, rows int) *Node {
	if col < 0 || row < 0 || row >= rows {
		return nil
	}
	i := col*rows + row
	if i >= len(l.Nodes) {
		return nil
	}
	return l.Nodes[i]
}
