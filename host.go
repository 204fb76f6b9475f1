package backdrop

import (
	"errors"
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunConfig holds window and diagnostics settings for Run.
type RunConfig struct {
	// Title is the window title.
	Title string
	// Width and Height are the initial window size in logical pixels.
	Width, Height int
	// Theme is the theme mounted first.
	Theme Theme
	// Overlay opens an undecorated, always-on-top window that lets every
	// click through to whatever is behind it.
	Overlay bool
	// Transparent leaves the window background see-through instead of
	// filling it with the theme's clear color.
	Transparent bool
	// ShowFPS draws an FPS/TPS counter in the top-left corner.
	ShowFPS bool
	// Debug logs per-frame timings at debug level.
	Debug bool
	// ScreenshotDir is where Screenshot writes PNGs. Defaults to "screenshots".
	ScreenshotDir string
	// Script, when set, drives the window from a test script.
	Script *TestRunner
	// ExitWhenScriptDone closes the window once Script has finished.
	ExitWhenScriptDone bool
	// FixedStep advances the clock 1/60 s per frame instead of following
	// wall time. Scripted captures use it for reproducible frames.
	FixedStep bool
}

type pendingFrame struct {
	id FrameHandle
	fn func()
}

// Host runs a Background inside an ebiten window. It is the Background's
// Scheduler (one callback batch per Update tick) and EventSource (cursor
// and window size polled each tick, dispatched on change).
type Host struct {
	Listeners

	bg  *Background
	cfg RunConfig

	frames  []pendingFrame
	running []pendingFrame
	nextID  FrameHandle

	vp          Viewport
	layoutW     int
	layoutH     int
	cursorX     float64
	cursorY     float64
	havePointer bool
	mountErr    error

	injectQueue     []syntheticEvent
	screenshotQueue []string
	testRunner      *TestRunner
	fps             *fpsWidget
}

// NewHost wires a Background to a new Host. Extra options are applied
// after the host's own, so tests can replace the renderer or clock.
func NewHost(cfg Config, rc RunConfig, opts ...Option) *Host {
	if rc.ScreenshotDir == "" {
		rc.ScreenshotDir = "screenshots"
	}
	h := &Host{cfg: rc, testRunner: rc.Script}
	base := []Option{WithScheduler(h), WithEvents(h), WithDebug(rc.Debug)}
	if rc.FixedStep {
		base = append(base, WithClock(NewTickClock(60)))
	}
	h.bg = NewBackground(cfg, append(base, opts...)...)
	return h
}

// Background returns the hosted background.
func (h *Host) Background() *Background { return h.bg }

// RequestFrame queues fn for the next Update tick.
func (h *Host) RequestFrame(fn func()) FrameHandle {
	h.nextID++
	h.frames = append(h.frames, pendingFrame{id: h.nextID, fn: fn})
	return h.nextID
}

// CancelFrame drops a queued callback.
func (h *Host) CancelFrame(id FrameHandle) {
	for i, f := range h.frames {
		if f.id == id {
			h.frames = append(h.frames[:i], h.frames[i+1:]...)
			return
		}
	}
}

// runFrames runs the callbacks queued before this tick. Callbacks they
// request land in the next tick.
func (h *Host) runFrames() {
	h.running, h.frames = h.frames, h.running[:0]
	for _, f := range h.running {
		f.fn()
	}
	h.running = h.running[:0]
}

// Mount mounts the background at the current layout size.
func (h *Host) mount() error {
	h.vp = Viewport{Width: h.layoutW, Height: h.layoutH, PixelRatio: deviceScale()}
	if err := h.bg.Mount(h.cfg.Theme, h.vp); err != nil {
		return fmt.Errorf("mount background: %w", err)
	}
	if h.cfg.ShowFPS {
		h.fps = newFPSWidget()
	}
	return nil
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	if !h.bg.Mounted() {
		if h.mountErr != nil {
			return h.mountErr
		}
		if err := h.mount(); err != nil {
			h.mountErr = err
			return err
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		h.InjectTheme(h.bg.Theme().Toggle())
	case inpututil.IsKeyJustPressed(ebiten.KeyF12):
		h.Screenshot("manual")
	}

	if h.testRunner != nil {
		h.testRunner.step(h)
	}
	if !h.processInjected() {
		h.pollInput()
	}
	h.runFrames()
	if h.fps != nil {
		h.fps.update(1 / float64(ebiten.TPS()))
	}

	if h.testRunner != nil && h.testRunner.Done() && h.cfg.ExitWhenScriptDone && len(h.screenshotQueue) == 0 {
		return ebiten.Termination
	}
	return nil
}

// pollInput reads the cursor and the layout size and dispatches changes.
func (h *Host) pollInput() {
	if h.layoutW != h.vp.Width || h.layoutH != h.vp.Height {
		h.resize(Viewport{Width: h.layoutW, Height: h.layoutH, PixelRatio: deviceScale()})
	}
	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)
	if !h.havePointer || x != h.cursorX || y != h.cursorY {
		h.movePointer(x, y)
	}
}

func (h *Host) resize(vp Viewport) {
	h.vp = vp
	h.DispatchResize(vp)
}

func (h *Host) movePointer(x, y float64) {
	h.cursorX, h.cursorY = x, y
	h.havePointer = true
	h.DispatchPointer(x, y)
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	if !h.cfg.Transparent {
		screen.Fill(PaletteFor(h.bg.Theme()).Clear.toRGBA())
	}
	if sr, ok := h.bg.Renderer().(*SurfaceRenderer); ok && sr.Surface() != nil {
		sr.Surface().DrawTo(screen, 1)
	}
	if h.fps != nil {
		h.fps.draw(screen)
	}
	h.flushScreenshots(screen)
}

// Layout implements ebiten.Game. The screen matches the window in logical
// pixels; the surface carries the device density.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	h.layoutW, h.layoutH = outsideWidth, outsideHeight
	return max(outsideWidth, 1), max(outsideHeight, 1)
}

// Run opens the window and blocks until it is closed or Escape is pressed.
// The background is unmounted before Run returns.
func (h *Host) Run() error {
	w, ht := h.cfg.Width, h.cfg.Height
	if w <= 0 || ht <= 0 {
		w, ht = 1280, 720
	}
	title := h.cfg.Title
	if title == "" {
		title = "backdrop"
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(w, ht)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if h.cfg.Overlay {
		ebiten.SetWindowDecorated(false)
		ebiten.SetWindowFloating(true)
		ebiten.SetWindowMousePassthrough(true)
	}

	defer h.bg.Unmount()
	err := ebiten.RunGameWithOptions(h, &ebiten.RunGameOptions{
		ScreenTransparent: h.cfg.Transparent,
	})
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Run is a convenience that builds a Host and runs it.
func Run(cfg Config, rc RunConfig) error {
	return NewHost(cfg, rc).Run()
}

// deviceScale returns the monitor's scale factor, or 1 when unknown.
func deviceScale() float64 {
	m := ebiten.Monitor()
	if m == nil {
		return 1
	}
	s := m.DeviceScaleFactor()
	if s <= 0 || math.IsNaN(s) {
		return 1
	}
	return s
}
