package backdrop

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestConnectorCounts(t *testing.T) {
	tests := []struct {
		cols, rows int
		want       int
	}{
		{1, 1, 0},
		{2, 1, 1},
		{1, 3, 2},
		{3, 3, 12},
		{8, 5, 67},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Layers = 1
		cfg.Cols, cfg.Rows = tt.cols, tt.rows
		cfg.Seed = 1
		f, err := NewField(cfg, ThemeDark, Viewport{Width: 100, Height: 100}, nil)
		if err != nil {
			t.Fatalf("NewField(%dx%d): %v", tt.cols, tt.rows, err)
		}
		if got := len(f.Connectors); got != tt.want {
			t.Errorf("%dx%d connectors = %d, want %d", tt.cols, tt.rows, got, tt.want)
		}
	}
}

func TestConnectorsJoinGridNeighbours(t *testing.T) {
	f := newTestField(t, ThemeDark)
	for _, c := range f.Connectors {
		if c.A.Layer != c.Layer || c.B.Layer != c.Layer {
			t.Fatalf("connector crosses layers: %d-%d on %d", c.A.Layer, c.B.Layer, c.Layer)
		}
		dc := c.B.Col - c.A.Col
		dr := c.B.Row - c.A.Row
		if !(dc == 0 && dr == 1) && !(dc == 1 && dr == 0) {
			t.Fatalf("connector (%d,%d)-(%d,%d) is not below/right adjacency",
				c.A.Col, c.A.Row, c.B.Col, c.B.Row)
		}
	}
}

func TestConnectorsNoDuplicates(t *testing.T) {
	f := newTestField(t, ThemeDark)
	seen := map[[2]*Node]bool{}
	for _, c := range f.Connectors {
		key := [2]*Node{c.A, c.B}
		if seen[key] {
			t.Fatalf("duplicate connector (%d,%d)-(%d,%d)", c.A.Col, c.A.Row, c.B.Col, c.B.Row)
		}
		seen[key] = true
	}
}

func TestConnectorReadsLiveNodePositions(t *testing.T) {
	f := newTestField(t, ThemeDark)
	c := f.Connectors[0]
	c.A.Position = r3.Vec{X: 1, Y: 2, Z: 3}
	c.B.Position = r3.Vec{X: 4, Y: 5, Z: 6}
	c.update(f.Camera, &f.Config.Tuning)

	if c.Start != c.A.Position || c.End != c.B.Position {
		t.Errorf("endpoints = %v %v, want node positions", c.Start, c.End)
	}
	if c.Geometry.Vertices[0] != c.Start || c.Geometry.Vertices[1] != c.End {
		t.Error("segment geometry not updated")
	}
	mid := c.Midpoint()
	if mid != (r3.Vec{X: 2.5, Y: 3.5, Z: 4.5}) {
		t.Errorf("Midpoint = %v", mid)
	}
}

func TestConnectorOpacityClamp(t *testing.T) {
	tn := DefaultConfig().Tuning
	tests := []struct {
		d    float64
		want float64
	}{
		{0, 0.12},    // (1-0)*0.15 clamped
		{-3, 0.12},   // never above the cap
		{0.2, 0.12},  // 0.12 exactly
		{0.5, 0.075}, // inside range
		{1, 0},
		{1000, 0},
	}
	for _, tt := range tests {
		got := connectorOpacity(tt.d, &tn)
		if !approxEqual(got, tt.want, 1e-12) {
			t.Errorf("connectorOpacity(%g) = %g, want %g", tt.d, got, tt.want)
		}
		if got < 0 || got > 0.12 {
			t.Errorf("connectorOpacity(%g) = %g outside [0, 0.12]", tt.d, got)
		}
	}
}

func TestConnectorOpacityAfterSteps(t *testing.T) {
	f := newTestField(t, ThemeDark)
	f.SetPointer(0.9, -0.4)
	for i := 1; i <= 120; i++ {
		f.Step(float64(i) / 60)
		for _, c := range f.Connectors {
			if c.Opacity < 0 || c.Opacity > 0.12 {
				t.Fatalf("frame %d: connector opacity %g outside [0, 0.12]", i, c.Opacity)
			}
		}
	}
}
