package backdrop

import "testing"

// newTestHost returns a Host whose background is mounted on a fake renderer
// at 800x600 without touching ebiten's window or input state.
func newTestHost(t *testing.T, rc RunConfig) (*Host, *fakeFactory) {
	t.Helper()
	ff := &fakeFactory{}
	cfg := DefaultConfig()
	cfg.Seed = 3
	rc.FixedStep = true
	h := NewHost(cfg, rc, WithRenderer(ff.create))
	h.layoutW, h.layoutH = 800, 600
	h.vp = Viewport{Width: 800, Height: 600, PixelRatio: 1}
	if err := h.bg.Mount(rc.Theme, h.vp); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	t.Cleanup(h.bg.Unmount)
	return h, ff
}

// tick runs the input-independent part of Host.Update.
func tick(h *Host) {
	if h.testRunner != nil {
		h.testRunner.step(h)
	}
	h.processInjected()
	h.runFrames()
}

func TestHostDefaults(t *testing.T) {
	h := NewHost(DefaultConfig(), RunConfig{})
	if h.cfg.ScreenshotDir != "screenshots" {
		t.Errorf("ScreenshotDir = %q", h.cfg.ScreenshotDir)
	}
	if h.Background() == nil || h.Background().sched != h || h.Background().events != h {
		t.Error("host must be the background's scheduler and event source")
	}
}

func TestHostRunsOneFramePerTick(t *testing.T) {
	h, ff := newTestHost(t, RunConfig{})
	for i := 0; i < 5; i++ {
		tick(h)
	}
	if got := h.bg.Field().Frames(); got != 5 {
		t.Errorf("Frames = %d, want 5", got)
	}
	if ff.made[0].renders != 5 {
		t.Errorf("renders = %d, want 5", ff.made[0].renders)
	}
	if len(h.frames) != 1 {
		t.Errorf("pending frames = %d, want 1", len(h.frames))
	}
}

func TestHostCancelFrame(t *testing.T) {
	h := NewHost(DefaultConfig(), RunConfig{})
	ran := 0
	a := h.RequestFrame(func() { ran++ })
	h.RequestFrame(func() { ran += 10 })
	h.CancelFrame(a)
	h.CancelFrame(a)
	h.CancelFrame(999)
	h.runFrames()
	if ran != 10 {
		t.Errorf("ran = %d, want 10", ran)
	}
}

func TestHostFramesRequestedDuringTickRunNext(t *testing.T) {
	h := NewHost(DefaultConfig(), RunConfig{})
	count := 0
	var loop func()
	loop = func() {
		count++
		h.RequestFrame(loop)
	}
	h.RequestFrame(loop)
	h.runFrames()
	h.runFrames()
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestHostUnmountLeavesNoFrames(t *testing.T) {
	h, _ := newTestHost(t, RunConfig{})
	tick(h)
	h.bg.Unmount()
	if len(h.frames) != 0 {
		t.Errorf("pending frames after unmount = %d", len(h.frames))
	}
	if h.Count() != 0 {
		t.Errorf("listeners after unmount = %d", h.Count())
	}
}
