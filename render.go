package backdrop

import "gonum.org/v1/gonum/spatial/r3"

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandNode      CommandType = iota // wireframe sphere
	CommandConnector                    // single line
	CommandParticle                     // screen-facing point
)

// Segment is a projected line in surface pixels.
type Segment struct {
	X0, Y0, X1, Y1 float64
}

// RenderCommand is one projected draw instruction. Commands are sorted back
// to front before submission.
type RenderCommand struct {
	Type CommandType
	// Depth is the view-space distance of the primitive's center.
	Depth float64
	// Color carries the clamped, faded opacity in A.
	Color Color

	// Line commands reference DisplayList.Segments[segLo:segHi].
	segLo, segHi int

	// Particle commands: center and diameter in pixels.
	X, Y, Size float64

	treeOrder int
}

// DisplayList projects a Field into sorted render commands. Buffers are kept
// between frames and only grow.
type DisplayList struct {
	Commands []RenderCommand
	Segments []Segment

	sortBuf []RenderCommand
	world   []r3.Vec
}

// minPointSize keeps distant particles visible.
const minPointSize = 1.0

// Build projects f for a w x h pixel surface. fade scales every opacity and
// is clamped to [0, 1].
func (d *DisplayList) Build(f *Field, w, h float64, fade float64) {
	d.Commands = d.Commands[:0]
	d.Segments = d.Segments[:0]
	if f == nil || f.disposed || w <= 0 || h <= 0 {
		return
	}
	fade = clamp01(fade)
	cam := f.Camera
	order := 0

	for _, l := range f.Layers {
		for _, n := range l.Nodes {
			_, _, depth, ok := cam.Project(n.Position, w, h)
			if !ok {
				continue
			}
			lo := len(d.Segments)
			d.appendNodeSegments(n, cam, w, h)
			if len(d.Segments) == lo {
				continue
			}
			d.Commands = append(d.Commands, RenderCommand{
				Type:      CommandNode,
				Depth:     depth,
				Color:     n.Material.Color.WithAlpha(clamp01(n.Material.Opacity) * fade),
				segLo:     lo,
				segHi:     len(d.Segments),
				treeOrder: order,
			})
			order++
		}
	}

	for _, c := range f.Connectors {
		_, _, depth, ok := cam.Project(c.Midpoint(), w, h)
		if !ok {
			continue
		}
		x0, y0, _, ok0 := cam.Project(c.Start, w, h)
		x1, y1, _, ok1 := cam.Project(c.End, w, h)
		if !ok0 || !ok1 {
			continue
		}
		lo := len(d.Segments)
		d.Segments = append(d.Segments, Segment{x0, y0, x1, y1})
		d.Commands = append(d.Commands, RenderCommand{
			Type:      CommandConnector,
			Depth:     depth,
			Color:     c.Material.Color.WithAlpha(clamp01(c.Material.Opacity) * fade),
			segLo:     lo,
			segHi:     lo + 1,
			treeOrder: order,
		})
		order++
	}

	pf := f.Particles
	pColor := pf.Material.Color.WithAlpha(clamp01(pf.Material.Opacity) * fade)
	size := f.Config.Tuning.ParticleSize
	for i := range pf.Particles {
		x, y, depth, ok := cam.Project(pf.Particles[i].Position, w, h)
		if !ok {
			continue
		}
		d.Commands = append(d.Commands, RenderCommand{
			Type:      CommandParticle,
			Depth:     depth,
			Color:     pColor,
			X:         x,
			Y:         y,
			Size:      max(size*h/2/depth, minPointSize),
			treeOrder: order,
		})
		order++
	}

	d.mergeSort()
}

// SegmentsOf returns the projected lines of a node or connector command.
func (d *DisplayList) SegmentsOf(cmd *RenderCommand) []Segment {
	return d.Segments[cmd.segLo:cmd.segHi]
}

// appendNodeSegments transforms the node's sphere into world space and
// appends every edge whose endpoints both project.
func (d *DisplayList) appendNodeSegments(n *Node, cam *Camera, w, h float64) {
	g := n.Geometry
	if g == nil || g.IsDisposed() {
		return
	}
	d.world = d.world[:0]
	for _, v := range g.Vertices {
		d.world = append(d.world, localToWorld(v, n))
	}
	for _, e := range g.Edges {
		x0, y0, _, ok0 := cam.Project(d.world[e[0]], w, h)
		x1, y1, _, ok1 := cam.Project(d.world[e[1]], w, h)
		if ok0 && ok1 {
			d.Segments = append(d.Segments, Segment{x0, y0, x1, y1})
		}
	}
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should draw before or with b: farther
// first, then emission order.
func commandLessOrEqual(a, b RenderCommand) bool {
	if a.Depth != b.Depth {
		return a.Depth > b.Depth
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts d.Commands in place using d.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches its
// high-water mark.
func (d *DisplayList) mergeSort() {
	n := len(d.Commands)
	if n <= 1 {
		return
	}
	if cap(d.sortBuf) < n {
		d.sortBuf = make([]RenderCommand, n)
	}
	d.sortBuf = d.sortBuf[:n]

	a := d.Commands
	b := d.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(d.Commands, d.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
