package backdrop

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r3"
)

type nodeState struct {
	Position r3.Vec
	Rotation r3.Vec
	Scale    float64
	Opacity  float64
}

func snapshotNodes(f *Field) []nodeState {
	var out []nodeState
	for _, l := range f.Layers {
		for _, n := range l.Nodes {
			out = append(out, nodeState{n.Position, n.Rotation, n.Scale, n.Opacity})
		}
	}
	return out
}

func TestStepNodeFormula(t *testing.T) {
	f := newTestField(t, ThemeDark)
	const tm = 2.5
	f.Step(tm)

	l := f.Layers[1]
	n := l.Nodes[2*f.Config.Rows+3] // col 2, row 3
	col, row, li := 2.0, 3.0, 1.0

	waveX := math.Sin(tm*0.3+col*0.3+li) * 0.3
	waveY := math.Cos(tm*0.25+row*0.3+li) * 0.3
	waveZ := math.Sin(tm*0.4+n.PhaseZ+col*0.2+row*0.2) * 1.5
	assertNear(t, "pos.x", n.Position.X, n.Origin.X+waveX*0.85)
	assertNear(t, "pos.y", n.Position.Y, n.Origin.Y+waveY*0.85)
	assertNear(t, "pos.z", n.Position.Z, n.Origin.Z+waveZ*0.85)

	assertNear(t, "rot.x", n.Rotation.X, tm*0.15+col*0.1)
	assertNear(t, "rot.y", n.Rotation.Y, tm*0.12+row*0.1)
	assertNear(t, "rot.z", n.Rotation.Z, tm*0.08+(col+row)*0.05)

	ripple := math.Sin(tm*2-math.Hypot(n.Origin.X, n.Origin.Y)*0.5) * 0.08
	assertNear(t, "scale", n.Scale, 1+ripple+math.Sin(tm*0.5+n.PhaseY)*0.05)

	// Pointer never moved, so the camera is still at x=y=0.
	d := math.Hypot(n.Position.X, n.Position.Y) / 8
	layerOpacity := 0.06 * 0.85
	want := layerOpacity*0.5 + layerOpacity*math.Max(0, 1-d)*1.5 + ripple*0.1
	assertNear(t, "opacity", n.Opacity, want)
	assertNear(t, "material opacity", n.Material.Opacity, want)
}

func TestStepNodesArePureFunctionOfTime(t *testing.T) {
	stepped := newTestField(t, ThemeDark)
	jumped := newTestField(t, ThemeDark)

	for i := 1; i <= 300; i++ {
		stepped.Step(float64(i) / 60)
	}
	jumped.Step(5)

	opt := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff(snapshotNodes(jumped), snapshotNodes(stepped), opt); diff != "" {
		t.Errorf("nodes depend on frame history (-jumped +stepped):\n%s", diff)
	}
}

func TestStepTimeNeverDecreases(t *testing.T) {
	f := newTestField(t, ThemeDark)
	f.Step(5)
	at5 := snapshotNodes(f)
	f.Step(3)
	if f.Elapsed() != 5 {
		t.Errorf("Elapsed = %f after stepping backwards, want 5", f.Elapsed())
	}
	if diff := cmp.Diff(at5, snapshotNodes(f), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("backwards step moved nodes:\n%s", diff)
	}
	f.Step(math.NaN())
	if f.Elapsed() != 5 {
		t.Errorf("Elapsed = %f after NaN, want 5", f.Elapsed())
	}
	if f.Frames() != 3 {
		t.Errorf("Frames = %d, want 3", f.Frames())
	}
}

func TestStepSmoothsPointerBeforeCamera(t *testing.T) {
	f := newTestField(t, ThemeDark)
	f.SetPointer(1, -1)
	if f.Pointer.X != 0 || f.Pointer.Y != 0 {
		t.Fatal("SetPointer must only stage the target")
	}
	f.Step(0)

	assertNear(t, "pointer.x", f.Pointer.X, 0.05)
	assertNear(t, "pointer.y", f.Pointer.Y, -0.05)
	// Camera eases toward the already smoothed pointer of the same frame.
	assertNear(t, "camera.x", f.Camera.Position.X, 0.05*3*0.05)
	assertNear(t, "camera.y", f.Camera.Position.Y, -0.05*3*0.05)
}

func TestStepConnectorsFollowNodesSameFrame(t *testing.T) {
	f := newTestField(t, ThemeLight)
	f.SetPointer(0.3, 0.2)
	for i := 1; i <= 10; i++ {
		f.Step(float64(i) * 0.7)
		for _, c := range f.Connectors {
			if c.Start != c.A.Position || c.End != c.B.Position {
				t.Fatalf("frame %d: connector endpoints lag their nodes", i)
			}
		}
	}
}

func TestStepOpacityHighlightNearPointer(t *testing.T) {
	f := newTestField(t, ThemeDark)
	f.Step(1)

	// Node nearest the camera axis gets the strongest boost.
	var near, far *Node
	for _, n := range f.Layers[0].Nodes {
		if near == nil || math.Hypot(n.Position.X, n.Position.Y) < math.Hypot(near.Position.X, near.Position.Y) {
			near = n
		}
		if far == nil || math.Hypot(n.Position.X, n.Position.Y) > math.Hypot(far.Position.X, far.Position.Y) {
			far = n
		}
	}
	if near.Opacity <= far.Opacity {
		t.Errorf("near opacity %f <= far opacity %f", near.Opacity, far.Opacity)
	}
}

func TestStepReplayIsDeterministic(t *testing.T) {
	run := func() *Field {
		f := newTestField(t, ThemeDark)
		for i := 1; i <= 240; i++ {
			if i%40 == 0 {
				f.SetPointer(math.Sin(float64(i)), math.Cos(float64(i)))
			}
			f.Step(float64(i) / 60)
		}
		return f
	}
	a, b := run(), run()

	opt := cmpopts.EquateApprox(0, 1e-12)
	if diff := cmp.Diff(snapshotNodes(a), snapshotNodes(b), opt); diff != "" {
		t.Errorf("node replay differs:\n%s", diff)
	}
	if diff := cmp.Diff(a.Particles.Particles, b.Particles.Particles, opt); diff != "" {
		t.Errorf("particle replay differs:\n%s", diff)
	}
	if diff := cmp.Diff(a.Camera.Position, b.Camera.Position, opt); diff != "" {
		t.Errorf("camera replay differs:\n%s", diff)
	}
}

func TestStepAfterDisposeIsNoop(t *testing.T) {
	f := newTestField(t, ThemeDark)
	f.Dispose()
	f.Step(1)
	if f.Frames() != 0 {
		t.Errorf("Frames = %d after Dispose, want 0", f.Frames())
	}
}
