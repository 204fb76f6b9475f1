package backdrop

type syntheticKind uint8

const (
	syntheticPointer syntheticKind = iota
	syntheticResize
	syntheticTheme
)

// syntheticEvent is one injected input. Pointer coordinates are viewport
// pixels, the same space the real cursor reports in.
type syntheticEvent struct {
	kind   syntheticKind
	x, y   float64
	width  int
	height int
	theme  Theme
}

// InjectPointer queues a pointer move to (x, y). The event is consumed on
// the next Update, in place of the real cursor.
func (h *Host) InjectPointer(x, y float64) {
	h.injectQueue = append(h.injectQueue, syntheticEvent{kind: syntheticPointer, x: x, y: y})
}

// InjectSweep queues pointer moves from (fromX, fromY) to (toX, toY),
// linearly interpolated over frames moves. Minimum frames is 2.
func (h *Host) InjectSweep(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(frames-1)
		h.InjectPointer(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
}

// InjectResize queues a viewport change to width x height.
func (h *Host) InjectResize(width, height int) {
	h.injectQueue = append(h.injectQueue, syntheticEvent{kind: syntheticResize, width: width, height: height})
}

// InjectTheme queues a theme change. The scene is rebuilt when it is
// consumed.
func (h *Host) InjectTheme(t Theme) {
	h.injectQueue = append(h.injectQueue, syntheticEvent{kind: syntheticTheme, theme: t})
}

// processInjected pops one event from the inject queue and dispatches it.
// Returns true if an event was consumed (real input is skipped that frame).
func (h *Host) processInjected() bool {
	if len(h.injectQueue) == 0 {
		return false
	}
	evt := h.injectQueue[0]
	copy(h.injectQueue, h.injectQueue[1:])
	h.injectQueue = h.injectQueue[:len(h.injectQueue)-1]

	switch evt.kind {
	case syntheticPointer:
		h.movePointer(evt.x, evt.y)
	case syntheticResize:
		vp := h.vp
		vp.Width, vp.Height = evt.width, evt.height
		h.resize(vp)
	case syntheticTheme:
		if err := h.bg.SetTheme(evt.theme); err != nil {
			slogger().Error("backdrop: theme change failed", "theme", evt.theme.String(), "error", err)
		}
	}
	return true
}
