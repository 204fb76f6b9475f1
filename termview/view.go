// Package termview runs a backdrop Background inside a terminal. Nodes,
// connectors and particles are rasterized into character cells with tcell;
// mouse motion drives the camera and terminal resizes resize the scene.
//
// It is a preview for machines without a GPU window, not a faithful render.
package termview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/phanxgames/backdrop"
)

var errNoScreen = errors.New("termview: no screen")

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used by the package. Passing nil restores
// slog.Default().
func SetLogger(l *slog.Logger) { pkgLogger.Store(l) }

func logger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// Config holds terminal preview settings.
type Config struct {
	// Theme is the theme mounted first.
	Theme backdrop.Theme
	// FPS is the target frame rate. Defaults to 60.
	FPS int
	// FixedStep advances the clock 1/FPS per frame instead of following
	// wall time.
	FixedStep bool
}

const defaultFPS = 60

type pendingFrame struct {
	id backdrop.FrameHandle
	fn func()
}

// View is the Background's Scheduler and EventSource in a terminal.
type View struct {
	backdrop.Listeners

	screen   tcell.Screen
	bg       *backdrop.Background
	interval time.Duration

	frames  []pendingFrame
	running []pendingFrame
	nextID  backdrop.FrameHandle

	vp       backdrop.Viewport
	events   chan tcell.Event
	quit     chan struct{}
	pollDone chan struct{}
	closed   bool
}

// Open creates and initializes the terminal screen.
func Open() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}
	return screen, nil
}

// New wires a Background to an initialized screen. Extra options are
// applied after the view's own.
func New(screen tcell.Screen, cfg backdrop.Config, vc Config, opts ...backdrop.Option) *View {
	fps := vc.FPS
	if fps <= 0 {
		fps = defaultFPS
	}
	v := &View{
		screen:   screen,
		interval: time.Second / time.Duration(fps),
		events:   make(chan tcell.Event, 16),
		quit:     make(chan struct{}),
		pollDone: make(chan struct{}),
	}
	base := []backdrop.Option{
		backdrop.WithScheduler(v),
		backdrop.WithEvents(v),
		backdrop.WithRenderer(Factory(screen)),
	}
	if vc.FixedStep {
		base = append(base, backdrop.WithClock(backdrop.NewTickClock(float64(fps))))
	}
	v.bg = backdrop.NewBackground(cfg, append(base, opts...)...)
	_ = v.bg.SetTheme(vc.Theme) // not mounted yet: only records the theme
	return v
}

// Background returns the hosted background.
func (v *View) Background() *backdrop.Background { return v.bg }

// RequestFrame queues fn for the next tick.
func (v *View) RequestFrame(fn func()) backdrop.FrameHandle {
	v.nextID++
	v.frames = append(v.frames, pendingFrame{id: v.nextID, fn: fn})
	return v.nextID
}

// CancelFrame drops a queued callback.
func (v *View) CancelFrame(id backdrop.FrameHandle) {
	for i, f := range v.frames {
		if f.id == id {
			v.frames = append(v.frames[:i], v.frames[i+1:]...)
			return
		}
	}
}

// viewportFor maps a terminal size to the background viewport. Cells are
// roughly twice as tall as wide, so each row counts as two pixels.
func viewportFor(cols, rows int) backdrop.Viewport {
	return backdrop.Viewport{Width: cols, Height: rows * 2, PixelRatio: 1}
}

// Mount mounts the background at the current terminal size.
func (v *View) Mount() error {
	v.screen.EnableMouse(tcell.MouseMotionEvents)
	v.screen.HideCursor()
	v.screen.Clear()
	v.vp = viewportFor(v.screen.Size())
	if err := v.bg.Mount(v.bg.Theme(), v.vp); err != nil {
		return fmt.Errorf("mount background: %w", err)
	}
	return nil
}

// Run mounts the background and drives it until ctx is done or the user
// quits with q, Escape or Ctrl-C. The background is unmounted before Run
// returns; the screen is left to Close.
func (v *View) Run(ctx context.Context) error {
	if err := v.Mount(); err != nil {
		return err
	}
	defer v.bg.Unmount()

	go v.pollEvents()

	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-v.events:
			if v.handleEvent(ev) == actionQuit {
				return nil
			}
		case <-ticker.C:
			v.Tick()
		}
	}
}

// Tick runs the queued frame callbacks and shows the screen.
func (v *View) Tick() {
	v.running, v.frames = v.frames, v.running[:0]
	for _, f := range v.running {
		f.fn()
	}
	v.running = v.running[:0]
	v.screen.Show()
}

// pollEvents reads events until the screen is finalized.
func (v *View) pollEvents() {
	defer close(v.pollDone)
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case v.events <- ev:
		case <-v.quit:
			return
		}
	}
}

// Close finalizes the screen and waits briefly for the event goroutine.
func (v *View) Close() {
	if v.closed {
		return
	}
	v.closed = true
	close(v.quit)
	v.screen.Fini()
	select {
	case <-v.pollDone:
	case <-time.After(100 * time.Millisecond):
	}
}

type action int

const (
	actionNone action = iota
	actionQuit
)

func (v *View) handleEvent(ev tcell.Event) action {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.vp = viewportFor(ev.Size())
		v.DispatchResize(v.vp)
		v.screen.Sync()
	case *tcell.EventMouse:
		x, y := ev.Position()
		// Cell centers in viewport pixels.
		v.DispatchPointer(float64(x)+0.5, float64(y)*2+1)
	case *tcell.EventKey:
		return v.handleKey(ev)
	}
	return actionNone
}

func (v *View) handleKey(ev *tcell.EventKey) action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actionQuit
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return actionQuit
		case 't', 'T':
			next := v.bg.Theme().Toggle()
			if err := v.bg.SetTheme(next); err != nil {
				logger().Error("termview: theme change failed", "theme", next.String(), "error", err)
			}
		}
	}
	return actionNone
}
