package backdrop

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestFadeRisesToOne(t *testing.T) {
	f := NewFade(1.2)
	if f.Value() != 0 || f.Done {
		t.Fatal("fade should start at 0")
	}

	prev := 0.0
	for i := 0; i < 72; i++ {
		v := f.Update(1.0 / 60)
		if v < prev {
			t.Fatalf("fade decreased at step %d: %f < %f", i, v, prev)
		}
		prev = v
	}
	// Float32 accumulation may leave the tween a hair short of the end.
	f.Update(1.0 / 60)
	if !f.Done || f.Value() != 1 {
		t.Errorf("after 1.2s: value %f done %v", f.Value(), f.Done)
	}
	if f.Update(1) != 1 {
		t.Error("finished fade changed value")
	}
}

func TestFadeEasesOut(t *testing.T) {
	f := NewFade(1)
	v := f.Update(0.5)
	// OutQuad is past the midpoint at half time.
	if v <= 0.5 {
		t.Errorf("value at half time = %f, want > 0.5", v)
	}
}

func TestFadeIgnoresNonPositiveDelta(t *testing.T) {
	f := NewFade(1)
	f.Update(0.25)
	v := f.Value()
	f.Update(0)
	f.Update(-1)
	if f.Value() != v {
		t.Errorf("value moved from %f to %f", v, f.Value())
	}
}

func TestFadeZeroDuration(t *testing.T) {
	f := NewFade(0)
	if !f.Done || f.Value() != 1 {
		t.Errorf("zero-duration fade = %f done %v, want 1 done", f.Value(), f.Done)
	}
}

func TestFadeWithCustomRange(t *testing.T) {
	f := NewFadeWith(1, 0.25, 0.5, ease.Linear)
	assertNear(t, "start", f.Value(), 1)
	f.Update(0.25)
	if v := f.Value(); v < 0.62 || v > 0.63 {
		t.Errorf("midpoint = %f, want ~0.625", v)
	}
	f.Update(0.5)
	if !f.Done || f.Value() != 0.25 {
		t.Errorf("end = %f done %v", f.Value(), f.Done)
	}
}
