package backdrop

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Fade animates the composited opacity of the background from 0 to 1 after
// every (re)build. Call Update with the frame delta; Value is the opacity
// to draw with.
//
// There is no global animation manager; the Background owns its fade.
type Fade struct {
	tween *gween.Tween
	value float64
	Done  bool
}

// NewFade returns a fade-in over duration seconds with ease-out. A
// non-positive duration starts fully visible.
func NewFade(duration float64) *Fade {
	return NewFadeWith(0, 1, duration, ease.OutQuad)
}

// NewFadeWith returns a fade between arbitrary opacities using fn.
func NewFadeWith(from, to, duration float64, fn ease.TweenFunc) *Fade {
	if duration <= 0 {
		return &Fade{value: to, Done: true}
	}
	return &Fade{
		tween: gween.New(float32(from), float32(to), float32(duration), fn),
		value: from,
	}
}

// Update advances the fade by dt seconds and returns the new value.
// Negative deltas are ignored.
func (f *Fade) Update(dt float64) float64 {
	if f.Done || dt <= 0 {
		return f.value
	}
	val, finished := f.tween.Update(float32(dt))
	f.value = float64(val)
	f.Done = finished
	return f.value
}

// Value returns the current opacity.
func (f *Fade) Value() float64 { return f.value }
