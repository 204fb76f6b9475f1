package backdrop

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

var (
	// ErrAlreadyMounted is returned by Mount on a mounted Background.
	ErrAlreadyMounted = errors.New("backdrop: already mounted")
	// ErrNoScheduler is returned by Mount when no Scheduler was supplied.
	ErrNoScheduler = errors.New("backdrop: no frame scheduler")
	// ErrRendererDisposed is returned by a renderer used after Dispose.
	ErrRendererDisposed = errors.New("backdrop: renderer disposed")
)

// FrameHandle identifies a pending frame request.
type FrameHandle uint64

// Scheduler runs one callback per display refresh. A callback requested
// during a frame runs on the next one. CancelFrame on an unknown or already
// run handle is a no-op.
type Scheduler interface {
	RequestFrame(fn func()) FrameHandle
	CancelFrame(h FrameHandle)
}

// Option configures a Background.
type Option func(*Background)

// WithClock replaces the wall clock. A clock with an Advance() float64
// method is advanced once per frame.
func WithClock(c Clock) Option {
	return func(b *Background) { b.clock = c }
}

// WithRenderer sets the factory used at every (re)build.
func WithRenderer(f RendererFactory) Option {
	return func(b *Background) { b.factory = f }
}

// WithScheduler sets the frame scheduler.
func WithScheduler(s Scheduler) Option {
	return func(b *Background) { b.sched = s }
}

// WithEvents sets the pointer and resize source.
func WithEvents(e EventSource) Option {
	return func(b *Background) { b.events = e }
}

// WithRand sets the generator for node phases and particle seeds. It is
// shared by every rebuild.
func WithRand(r *rand.Rand) Option {
	return func(b *Background) { b.rng = r }
}

// WithDebug enables per-frame timing logs.
func WithDebug(on bool) Option {
	return func(b *Background) { b.debug = on }
}

// Background owns one animated field from mount to unmount: it builds the
// scene, listens for pointer and resize events, drives frames through the
// Scheduler, and releases everything on teardown.
//
// A Background is not safe for concurrent use; every method and callback
// must run on the frame goroutine.
type Background struct {
	cfg     Config
	clock   Clock
	factory RendererFactory
	sched   Scheduler
	events  EventSource
	rng     *rand.Rand

	theme    Theme
	vp       Viewport
	field    *Field
	renderer Renderer
	fade     *Fade

	mounted   bool
	disabled  bool
	cancelled bool
	gen       uint64
	pending   FrameHandle
	scheduled bool

	pointerCB CallbackHandle
	resizeCB  CallbackHandle

	lastT        float64
	renderErrors int
	lastErrLog   float64
	loggedErr    bool

	debug        bool
	lastDebugLog float64
}

// NewBackground returns an unmounted Background. The renderer defaults to
// NewSurfaceRenderer and the clock to NewClock.
func NewBackground(cfg Config, opts ...Option) *Background {
	b := &Background{cfg: cfg}
	for _, o := range opts {
		o(b)
	}
	if b.clock == nil {
		b.clock = NewClock()
	}
	if b.factory == nil {
		b.factory = NewSurfaceRenderer
	}
	if b.rng == nil {
		b.rng = newRand(cfg.Seed)
	}
	return b
}

// Mount builds the scene for theme and vp, registers listeners and requests
// the first frame. When the renderer cannot be created the Background stays
// mounted but disabled: nothing is drawn and nil is returned.
func (b *Background) Mount(theme Theme, vp Viewport) error {
	if b.mounted {
		return ErrAlreadyMounted
	}
	if b.sched == nil {
		return ErrNoScheduler
	}
	b.theme = theme
	b.vp = vp
	return b.build()
}

func (b *Background) build() error {
	field, err := NewField(b.cfg, b.theme, b.vp, b.rng)
	if err != nil {
		return fmt.Errorf("build field: %w", err)
	}

	renderer, err := b.factory(b.vp, field.Palette)
	if err != nil {
		field.Dispose()
		b.mounted = true
		b.disabled = true
		slogger().Warn("backdrop: renderer unavailable, background disabled", "error", err)
		return nil
	}

	b.field = field
	b.renderer = renderer
	b.fade = NewFade(b.cfg.Tuning.FadeIn)
	b.lastT = b.clock.Elapsed()
	b.cancelled = false
	b.disabled = false
	b.mounted = true

	if b.events != nil {
		b.pointerCB = b.events.OnPointerMove(b.onPointerMove)
		b.resizeCB = b.events.OnResize(b.onResize)
	}
	b.schedule()
	slogger().Debug("backdrop: mounted",
		"theme", b.theme.String(),
		"nodes", field.NodeCount(),
		"connectors", len(field.Connectors),
		"particles", field.Particles.Len(),
	)
	return nil
}

func (b *Background) schedule() {
	gen := b.gen
	b.pending = b.sched.RequestFrame(func() { b.frame(gen) })
	b.scheduled = true
}

// frame runs one tick: clock, step, render, reschedule. A callback from an
// earlier build is ignored.
func (b *Background) frame(gen uint64) {
	if gen != b.gen || b.cancelled || b.field == nil {
		return
	}
	b.scheduled = false

	t := b.now()
	dt := t - b.lastT
	b.lastT = t

	var stats frameStats
	start := time.Now()
	b.field.Step(t)
	stats.stepTime = time.Since(start)

	fade := b.fade.Update(dt)
	start = time.Now()
	if err := b.render(fade); err != nil {
		b.renderFailed(t, err)
	} else {
		stats.renderTime = time.Since(start)
		stats.commandCount, stats.segmentCount = debugListStats(b.renderer)
		b.debugLog(stats, t)
	}

	if gen != b.gen || b.cancelled {
		return
	}
	b.schedule()
}

// now reads the clock, advancing step clocks by one frame.
func (b *Background) now() float64 {
	if adv, ok := b.clock.(interface{ Advance() float64 }); ok {
		return adv.Advance()
	}
	return b.clock.Elapsed()
}

// render calls the renderer, converting a panic into an error so one bad
// frame never stops the loop.
func (b *Background) render(fade float64) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("render panic: %v", rec)
		}
	}()
	return b.renderer.Render(b.field, fade)
}

// renderFailed logs at most once per second, reporting how many failures
// were folded into the line.
func (b *Background) renderFailed(t float64, err error) {
	b.renderErrors++
	if b.loggedErr && t-b.lastErrLog < 1 {
		return
	}
	slogger().Error("backdrop: render failed, frame skipped", "error", err, "failures", b.renderErrors)
	b.loggedErr = true
	b.lastErrLog = t
	b.renderErrors = 0
}

func (b *Background) onPointerMove(x, y float64) {
	if !b.live() {
		return
	}
	nx, ny := ViewportToNDC(x, y, b.vp)
	b.field.SetPointer(nx, ny)
}

func (b *Background) onResize(vp Viewport) {
	if !b.live() {
		return
	}
	b.vp = vp
	b.field.Resize(vp)
	b.renderer.Resize(vp)
}

func (b *Background) live() bool {
	return b.mounted && !b.cancelled && b.field != nil
}

// teardown cancels the pending frame before anything is released, then
// removes the listeners and disposes the renderer and the field.
func (b *Background) teardown() {
	b.cancelled = true
	b.gen++
	if b.scheduled {
		b.sched.CancelFrame(b.pending)
		b.scheduled = false
	}
	b.pointerCB.Remove()
	b.resizeCB.Remove()
	b.pointerCB = CallbackHandle{}
	b.resizeCB = CallbackHandle{}

	if b.renderer != nil {
		b.renderer.Dispose()
		b.renderer = nil
	}
	if b.field != nil {
		b.field.Dispose()
		b.field = nil
	}
}

// Unmount stops the frame loop and releases every resource. Calling it on
// an unmounted Background is a no-op.
func (b *Background) Unmount() {
	if !b.mounted {
		return
	}
	b.teardown()
	b.mounted = false
	b.disabled = false
	slogger().Debug("backdrop: unmounted")
}

// SetTheme tears the scene down and rebuilds it with the new theme's
// constants. The clock keeps running. Before Mount it only records theme.
func (b *Background) SetTheme(theme Theme) error {
	if !b.mounted {
		b.theme = theme
		return nil
	}
	if theme == b.theme && !b.disabled {
		return nil
	}
	b.teardown()
	b.mounted = false
	b.theme = theme
	return b.build()
}

// Theme returns the current theme.
func (b *Background) Theme() Theme { return b.theme }

// Viewport returns the last known viewport.
func (b *Background) Viewport() Viewport { return b.vp }

// Field returns the live field, or nil when unmounted or disabled.
func (b *Background) Field() *Field { return b.field }

// Renderer returns the live renderer, or nil when unmounted or disabled.
func (b *Background) Renderer() Renderer { return b.renderer }

// Mounted reports whether Mount succeeded and Unmount has not run.
func (b *Background) Mounted() bool { return b.mounted }

// Disabled reports whether the renderer could not be created.
func (b *Background) Disabled() bool { return b.disabled }

// Opacity returns the current intro fade value.
func (b *Background) Opacity() float64 {
	if b.fade == nil {
		return 0
	}
	return b.fade.Value()
}

// SetDebug toggles per-frame timing logs.
func (b *Background) SetDebug(on bool) { b.debug = on }
