package backdrop

import "testing"

func TestViewportToNDC(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	tests := []struct {
		name   string
		x, y   float64
		wx, wy float64
	}{
		{"top-left", 0, 0, -1, 1},
		{"top-right", 800, 0, 1, 1},
		{"center", 400, 300, 0, 0},
		{"bottom-left", 0, 600, -1, -1},
		{"outside", 1200, 900, 2, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := ViewportToNDC(tt.x, tt.y, vp)
			assertNear(t, "x", x, tt.wx)
			assertNear(t, "y", y, tt.wy)
		})
	}

	x, y := ViewportToNDC(10, 10, Viewport{Width: 0, Height: 600})
	if x != 0 || y != 0 {
		t.Errorf("empty viewport = (%f, %f), want center", x, y)
	}
}

func TestPointerSmoothing(t *testing.T) {
	var p Pointer
	p.SetTarget(1, -1)
	if p.X != 0 || p.Y != 0 {
		t.Fatal("SetTarget moved the pointer")
	}
	p.smooth(0.05)
	assertNear(t, "x", p.X, 0.05)
	assertNear(t, "y", p.Y, -0.05)

	// Converges geometrically: after n steps the gap is 0.95^n.
	for i := 1; i < 100; i++ {
		p.smooth(0.05)
	}
	if gap := 1 - p.X; gap > 0.01 || gap < 0 {
		t.Errorf("gap after 100 steps = %f", gap)
	}
}

func TestListenersDispatch(t *testing.T) {
	var l Listeners
	var moves [][2]float64
	var sizes []Viewport
	l.OnPointerMove(func(x, y float64) { moves = append(moves, [2]float64{x, y}) })
	l.OnResize(func(vp Viewport) { sizes = append(sizes, vp) })

	l.DispatchPointer(3, 4)
	l.DispatchResize(Viewport{Width: 10, Height: 20})

	if len(moves) != 1 || moves[0] != [2]float64{3, 4} {
		t.Errorf("moves = %v", moves)
	}
	if len(sizes) != 1 || sizes[0].Width != 10 {
		t.Errorf("sizes = %v", sizes)
	}
	if l.Count() != 2 {
		t.Errorf("Count = %d, want 2", l.Count())
	}
}

func TestCallbackHandleRemove(t *testing.T) {
	var l Listeners
	var calls []string
	a := l.OnPointerMove(func(x, y float64) { calls = append(calls, "a") })
	l.OnPointerMove(func(x, y float64) { calls = append(calls, "b") })
	r := l.OnResize(func(Viewport) {})

	a.Remove()
	a.Remove()
	l.DispatchPointer(0, 0)
	if len(calls) != 1 || calls[0] != "b" {
		t.Errorf("calls = %v, want [b]", calls)
	}

	r.Remove()
	if l.Count() != 1 {
		t.Errorf("Count = %d, want 1", l.Count())
	}

	// The zero handle is inert.
	CallbackHandle{}.Remove()
}
