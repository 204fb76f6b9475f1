package backdrop

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func TestDebugLogThrottled(t *testing.T) {
	buf := captureLogs(t)
	fx := newLifecycleFixture(t)
	fx.bg.SetDebug(true)
	fx.mount(t, ThemeDark)

	// 90 frames at 60 fps cover 1.5s: one line at t>=1.
	for i := 0; i < 90; i++ {
		fx.sched.tick()
	}
	if n := strings.Count(buf.String(), "backdrop: frame"); n != 1 {
		t.Errorf("frame log lines = %d, want 1\n%s", n, buf.String())
	}
}

func TestDebugLogOffByDefault(t *testing.T) {
	buf := captureLogs(t)
	fx := newLifecycleFixture(t)
	fx.mount(t, ThemeDark)
	for i := 0; i < 120; i++ {
		fx.sched.tick()
	}
	if strings.Contains(buf.String(), "backdrop: frame") {
		t.Error("frame stats logged without debug mode")
	}
}

func TestRenderFailureLogRateLimited(t *testing.T) {
	buf := captureLogs(t)
	fx := newLifecycleFixture(t)
	fx.mount(t, ThemeDark)
	fx.factory.made[0].panicMsg = "boom"

	for i := 0; i < 90; i++ {
		fx.sched.tick()
	}
	out := buf.String()
	if n := strings.Count(out, "render failed"); n != 2 {
		t.Errorf("render failure lines = %d, want 2\n%s", n, out)
	}
	// The tick clock may land the second line on frame 61 or 62.
	if !strings.Contains(out, "failures=6") {
		t.Errorf("second line should fold the skipped failures:\n%s", out)
	}
}

func TestDebugListStats(t *testing.T) {
	if c, s := debugListStats(&fakeRenderer{}); c != 0 || s != 0 {
		t.Errorf("renderer without list = %d, %d", c, s)
	}

	f := newTestField(t, ThemeDark)
	r := &SurfaceRenderer{}
	r.list.Build(f, 640, 480, 1)
	c, s := debugListStats(r)
	if c != len(r.list.Commands) || s != len(r.list.Segments) || c == 0 {
		t.Errorf("stats = %d, %d", c, s)
	}
}
