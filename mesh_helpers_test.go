package backdrop

import (
	"math"
	"testing"
)

func TestPerpendicular(t *testing.T) {
	nx, ny := perpendicular(0, 0, 10, 0)
	assertNear(t, "nx", nx, 0)
	assertNear(t, "ny", ny, 1)

	nx, ny = perpendicular(3, 3, 3, 3)
	if nx != 0 || ny != -1 {
		t.Errorf("degenerate perpendicular = (%f,%f), want (0,-1)", nx, ny)
	}
}

func TestAppendLine(t *testing.T) {
	c := Color{R: 1, G: 0.5, B: 0, A: 0.5}
	verts, inds := appendLine(nil, nil, Segment{X0: 0, Y0: 0, X1: 10, Y1: 0}, 2, c)
	if len(verts) != 4 || len(inds) != 6 {
		t.Fatalf("got %d verts, %d inds; want 4, 6", len(verts), len(inds))
	}
	// Quad spans one unit either side of the line.
	ys := map[float32]bool{}
	for _, v := range verts {
		ys[v.DstY] = true
		if v.SrcX != 0.5 || v.SrcY != 0.5 {
			t.Error("vertices must sample the white pixel center")
		}
		if v.ColorR != 0.5 || v.ColorG != 0.25 || v.ColorB != 0 || v.ColorA != 0.5 {
			t.Errorf("color not premultiplied: %v %v %v %v", v.ColorR, v.ColorG, v.ColorB, v.ColorA)
		}
	}
	if !ys[1] || !ys[-1] {
		t.Errorf("quad y extents = %v, want ±1", ys)
	}

	// A second line indexes past the first.
	verts, inds = appendLine(verts, inds, Segment{X0: 0, Y0: 5, X1: 0, Y1: 9}, 2, c)
	if len(verts) != 8 || inds[6] != 4 {
		t.Errorf("second line base index = %d, want 4", inds[6])
	}
}

func TestAppendPoint(t *testing.T) {
	verts, inds := appendPoint(nil, nil, 50, 40, 4, Color{R: 1, G: 1, B: 1, A: 1})
	if len(verts) != pointSides+1 {
		t.Fatalf("verts = %d, want %d", len(verts), pointSides+1)
	}
	if len(inds) != pointSides*3 {
		t.Fatalf("inds = %d, want %d", len(inds), pointSides*3)
	}
	for _, v := range verts[1:] {
		d := math.Hypot(float64(v.DstX)-50, float64(v.DstY)-40)
		if !approxEqual(d, 2, 1e-4) {
			t.Errorf("rim vertex at distance %f, want 2", d)
		}
	}
	for _, i := range inds {
		if int(i) >= len(verts) {
			t.Fatalf("index %d out of range", i)
		}
	}
}

func TestPremultipliedClampsAlpha(t *testing.T) {
	_, _, _, a := premultiplied(Color{R: 1, A: 3})
	if a != 1 {
		t.Errorf("alpha = %f, want 1", a)
	}
}
