package backdrop

import (
	"math"
	"testing"
)

func TestLayerNodeAt(t *testing.T) {
	f := newTestField(t, ThemeDark)
	l := f.Layers[0]
	rows := f.Config.Rows

	n := l.NodeAt(3, 2, rows)
	if n == nil || n.Col != 3 || n.Row != 2 {
		t.Fatalf("NodeAt(3, 2) = %+v", n)
	}
	for _, c := range [][2]int{{-1, 0}, {0, -1}, {0, rows}, {f.Config.Cols, 0}} {
		if l.NodeAt(c[0], c[1], rows) != nil {
			t.Errorf("NodeAt(%d, %d) should be nil", c[0], c[1])
		}
	}
}

func TestNodeUpdateAtTimeZero(t *testing.T) {
	f := newTestField(t, ThemeDark)
	l := f.Layers[0]
	n := l.Nodes[0]
	n.update(0, l, f.Camera, &f.Config.Tuning)

	// At t=0 only the phase-dependent terms move the node.
	assertNear(t, "rot.x", n.Rotation.X, 0)
	assertNear(t, "rot.y", n.Rotation.Y, 0)
	assertNear(t, "rot.z", n.Rotation.Z, 0)
	assertNear(t, "pos.x", n.Position.X, n.Origin.X)
	assertNear(t, "pos.y", n.Position.Y, n.Origin.Y+math.Cos(0)*0.3)
}

func TestNodeOpacityUnclamped(t *testing.T) {
	f := newTestField(t, ThemeDark)
	l := f.Layers[0]
	tn := f.Config.Tuning
	tn.NodeHighlight = 100
	n := l.NodeAt(4, 2, f.Config.Rows)
	n.update(0, l, f.Camera, &tn)
	if n.Opacity <= 1 {
		t.Errorf("opacity = %f, want raw value above 1", n.Opacity)
	}
}

func TestFartherLayersMoveLess(t *testing.T) {
	f := newTestField(t, ThemeDark)
	if len(f.Layers) < 2 {
		t.Skip("needs two layers")
	}
	near, far := f.Layers[0], f.Layers[1]
	if !(far.Speed < near.Speed && far.Scale > near.Scale && far.Opacity < near.Opacity && far.Depth < near.Depth) {
		t.Errorf("near %+v far %+v", near, far)
	}
}
