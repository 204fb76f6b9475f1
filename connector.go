package backdrop

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Connector is a line between two grid-adjacent nodes of one layer. A and B
// are references; Start and End are re-read from them every frame.
type Connector struct {
	Layer int
	A, B  *Node

	Start, End r3.Vec
	Opacity    float64

	Geometry *Geometry
	Material *Material
}

// Midpoint returns the center of the current segment.
func (c *Connector) Midpoint() r3.Vec {
	return r3.Scale(0.5, r3.Add(c.Start, c.End))
}

// buildConnectors joins every node to its neighbour below (same column, next
// row) and to its right (next column, same row). Edge nodes get fewer
// connectors; the last row never links to the first row of the next column.
func (f *Field) buildConnectors() []*Connector {
	rows, cols := f.Config.Rows, f.Config.Cols
	perLayer := cols*(rows-1) + (cols-1)*rows

	out := make([]*Connector, 0, perLayer*len(f.Layers))
	for _, l := range f.Layers {
		for i, n := range l.Nodes {
			if n.Row+1 < rows {
				out = append(out, f.newConnector(l, n, l.Nodes[i+1]))
			}
			if n.Col+1 < cols {
				out = append(out, f.newConnector(l, n, l.Nodes[i+rows]))
			}
		}
	}
	return out
}

func (f *Field) newConnector(l *Layer, a, b *Node) *Connector {
	return &Connector{
		Layer:    l.Index,
		A:        a,
		B:        b,
		Start:    a.Position,
		End:      b.Position,
		Geometry: f.ledger.trackGeometry(SegmentGeometry(a.Position, b.Position)),
		Material: f.ledger.trackMaterial(&Material{Color: f.Palette.ConnectorColor}),
	}
}

// update copies the endpoint positions and derives opacity from the
// midpoint's distance to the camera.
func (c *Connector) update(cam *Camera, tn *Tuning) {
	c.Start = c.A.Position
	c.End = c.B.Position
	if c.Geometry != nil && len(c.Geometry.Vertices) == 2 {
		c.Geometry.Vertices[0] = c.Start
		c.Geometry.Vertices[1] = c.End
		c.Geometry.Touch()
	}
	d := cam.pointerDistance(c.Midpoint(), tn.PointerFalloff)
	c.Opacity = connectorOpacity(d, tn)
	c.Material.Opacity = c.Opacity
}

// connectorOpacity maps a pointer distance to [0, ConnectorMaxOpacity].
func connectorOpacity(d float64, tn *Tuning) float64 {
	o := (1 - d) * tn.ConnectorGain
	if math.IsNaN(o) {
		return 0
	}
	return clamp(o, 0, tn.ConnectorMaxOpacity)
}
