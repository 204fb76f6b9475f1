package backdrop

// Pointer is the staged and smoothed pointer in normalized device
// coordinates: [-1, 1] on both axes, y up. Listeners write the target; the
// frame step eases X and Y toward it once per frame.
type Pointer struct {
	TargetX, TargetY float64
	X, Y             float64
}

// SetTarget stages a new target. It does not move X or Y.
func (p *Pointer) SetTarget(x, y float64) {
	p.TargetX, p.TargetY = x, y
}

// smooth moves X and Y a fraction k of the way to the target.
func (p *Pointer) smooth(k float64) {
	p.X += (p.TargetX - p.X) * k
	p.Y += (p.TargetY - p.Y) * k
}

// ViewportToNDC converts a position in viewport pixels (origin top-left, y
// down) to normalized device coordinates. A degenerate viewport maps to the
// center.
func ViewportToNDC(x, y float64, vp Viewport) (float64, float64) {
	if vp.Empty() {
		return 0, 0
	}
	nx := x/float64(vp.Width)*2 - 1
	ny := -(y/float64(vp.Height))*2 + 1
	return nx, ny
}

// EventSource delivers pointer moves (viewport pixels) and viewport resizes.
// Callbacks run on the frame goroutine and must only stage state.
type EventSource interface {
	OnPointerMove(fn func(x, y float64)) CallbackHandle
	OnResize(fn func(Viewport)) CallbackHandle
}

type listenerKind uint8

const (
	listenPointer listenerKind = iota
	listenResize
)

type pointerListener struct {
	id uint32
	fn func(x, y float64)
}

type resizeListener struct {
	id uint32
	fn func(Viewport)
}

// Listeners is a reusable EventSource. Hosts embed it and call the Dispatch
// methods when their platform reports input.
type Listeners struct {
	pointer []pointerListener
	resize  []resizeListener
	nextID  uint32
}

// CallbackHandle removes a registered listener.
type CallbackHandle struct {
	id   uint32
	reg  *Listeners
	kind listenerKind
}

// Remove unregisters the listener. Safe to call more than once and on the
// zero handle.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.kind {
	case listenPointer:
		h.reg.pointer = removePointerListener(h.reg.pointer, h.id)
	case listenResize:
		h.reg.resize = removeResizeListener(h.reg.resize, h.id)
	}
}

func removePointerListener(s []pointerListener, id uint32) []pointerListener {
	for i, l := range s {
		if l.id == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func removeResizeListener(s []resizeListener, id uint32) []resizeListener {
	for i, l := range s {
		if l.id == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// OnPointerMove registers fn for pointer moves.
func (r *Listeners) OnPointerMove(fn func(x, y float64)) CallbackHandle {
	r.nextID++
	r.pointer = append(r.pointer, pointerListener{id: r.nextID, fn: fn})
	return CallbackHandle{id: r.nextID, reg: r, kind: listenPointer}
}

// OnResize registers fn for viewport changes.
func (r *Listeners) OnResize(fn func(Viewport)) CallbackHandle {
	r.nextID++
	r.resize = append(r.resize, resizeListener{id: r.nextID, fn: fn})
	return CallbackHandle{id: r.nextID, reg: r, kind: listenResize}
}

// DispatchPointer calls every pointer listener.
func (r *Listeners) DispatchPointer(x, y float64) {
	for _, l := range r.pointer {
		l.fn(x, y)
	}
}

// DispatchResize calls every resize listener.
func (r *Listeners) DispatchResize(vp Viewport) {
	for _, l := range r.resize {
		l.fn(vp)
	}
}

// Count returns the number of registered listeners of both kinds.
func (r *Listeners) Count() int {
	return len(r.pointer) + len(r.resize)
}
