package backdrop

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Geometry is a set of local-space vertices plus the edges drawn between
// them. A Geometry is shared by every node of a layer; connectors and the
// particle pool own theirs.
type Geometry struct {
	Vertices []r3.Vec
	// Edges index pairs into Vertices. Empty for point geometry.
	Edges [][2]int32
	// Version increments whenever Vertices are rewritten in place.
	Version uint64

	disposed bool
}

// Touch marks the vertices as changed.
func (g *Geometry) Touch() { g.Version++ }

// IsDisposed reports whether Dispose has been called.
func (g *Geometry) IsDisposed() bool { return g.disposed }

// Dispose drops the vertex data. Further calls are no-ops.
func (g *Geometry) Dispose() {
	if g.disposed {
		return
	}
	g.disposed = true
	g.Vertices = nil
	g.Edges = nil
}

// Material is the flat color and opacity applied to a geometry.
type Material struct {
	Color   Color
	Opacity float64

	disposed bool
}

// IsDisposed reports whether Dispose has been called.
func (m *Material) IsDisposed() bool { return m.disposed }

// Dispose marks the material released. Further calls are no-ops.
func (m *Material) Dispose() { m.disposed = true }

// SphereGeometry builds a UV sphere wireframe of the given radius.
// widthSegments meridians and heightSegments bands; rings at the poles are
// collapsed into single edges.
func SphereGeometry(radius float64, widthSegments, heightSegments int) *Geometry {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	stride := widthSegments + 1
	verts := make([]r3.Vec, 0, stride*(heightSegments+1))
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		theta := v * math.Pi
		sinT, cosT := math.Sincos(theta)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			phi := u * 2 * math.Pi
			sinP, cosP := math.Sincos(phi)
			verts = append(verts, r3.Vec{
				X: -radius * cosP * sinT,
				Y: radius * cosT,
				Z: radius * sinP * sinT,
			})
		}
	}

	var edges [][2]int32
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := int32(iy*stride + ix)
			below := int32((iy+1)*stride + ix)
			edges = append(edges, [2]int32{a, below})
			// Latitude rings, skipping the degenerate pole ring.
			if iy > 0 {
				edges = append(edges, [2]int32{a, a + 1})
			}
		}
	}
	return &Geometry{Vertices: verts, Edges: edges}
}

// SegmentGeometry returns a two-vertex line geometry between a and b.
func SegmentGeometry(a, b r3.Vec) *Geometry {
	return &Geometry{
		Vertices: []r3.Vec{a, b},
		Edges:    [][2]int32{{0, 1}},
	}
}

// PointsGeometry returns an edge-less geometry of n vertices at the origin.
func PointsGeometry(n int) *Geometry {
	return &Geometry{Vertices: make([]r3.Vec, n)}
}

// ResourceStats is a snapshot of a resourceLedger.
type ResourceStats struct {
	Allocated int
	Released  int
	// DoubleReleases counts release attempts on an already released entry.
	// Always zero unless something bypasses the ledger ordering.
	DoubleReleases int
	// Live maps resource kind to the number not yet released.
	Live map[string]int
}

type ledgerEntry struct {
	kind     string
	release  func()
	released bool
}

// resourceLedger records every acquired GPU-side or CPU-side resource so a
// teardown can release them in reverse order, each exactly once.
type resourceLedger struct {
	entries        []ledgerEntry
	released       int
	doubleReleases int
}

// track records a resource and returns its handle.
func (l *resourceLedger) track(kind string, release func()) int {
	l.entries = append(l.entries, ledgerEntry{kind: kind, release: release})
	return len(l.entries) - 1
}

func (l *resourceLedger) trackGeometry(g *Geometry) *Geometry {
	l.track("geometry", g.Dispose)
	return g
}

func (l *resourceLedger) trackMaterial(m *Material) *Material {
	l.track("material", m.Dispose)
	return m
}

// releaseOne releases a single handle.
func (l *resourceLedger) releaseOne(h int) {
	e := &l.entries[h]
	if e.released {
		l.doubleReleases++
		return
	}
	e.released = true
	l.released++
	if e.release != nil {
		e.release()
	}
}

// releaseAll releases every outstanding entry, newest first.
func (l *resourceLedger) releaseAll() {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if !l.entries[i].released {
			l.releaseOne(i)
		}
	}
}

func (l *resourceLedger) stats() ResourceStats {
	s := ResourceStats{
		Allocated:      len(l.entries),
		Released:       l.released,
		DoubleReleases: l.doubleReleases,
		Live:           make(map[string]int),
	}
	for _, e := range l.entries {
		if !e.released {
			s.Live[e.kind]++
		}
	}
	return s
}
