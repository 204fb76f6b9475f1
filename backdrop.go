package backdrop

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorFromHex converts a 0xRRGGBB value to an opaque Color.
func ColorFromHex(hex uint32) Color {
	return Color{
		R: float64((hex>>16)&0xff) / 255,
		G: float64((hex>>8)&0xff) / 255,
		B: float64(hex&0xff) / 255,
		A: 1,
	}
}

// WithAlpha returns a copy of c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// toRGBA converts a Color to a colorRGBA (premultiplied).
func (c Color) toRGBA() colorRGBA {
	return colorRGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// colorRGBA implements the color.Color interface for image.Fill.
type colorRGBA struct {
	R, G, B, A uint8
}

func (c colorRGBA) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = uint32(c.A) * 0x101
	return
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Theme selects the color and opacity constants baked into a scene at build
// time. Changing theme rebuilds the scene.
type Theme uint8

const (
	ThemeLight Theme = iota // light page, fainter geometry
	ThemeDark               // dark page, slightly more opaque geometry
)

// String returns "light" or "dark".
func (t Theme) String() string {
	if t == ThemeDark {
		return "dark"
	}
	return "light"
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ParseTheme accepts "light" or "dark" (case-insensitive).
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return ThemeLight, nil
	case "dark":
		return ThemeDark, nil
	}
	return ThemeLight, fmt.Errorf("backdrop: unknown theme %q", s)
}

// Palette holds the per-theme constants consumed once when a Field is built.
type Palette struct {
	NodeOpacity     float64 // base opacity of layer 0 nodes
	NodeColor       Color
	ConnectorColor  Color
	ParticleColor   Color
	ParticleOpacity float64
	Clear           Color // page background behind the field
}

// PaletteFor returns the constants for the given theme.
func PaletteFor(t Theme) Palette {
	if t == ThemeDark {
		return Palette{
			NodeOpacity:     0.06,
			NodeColor:       ColorFromHex(0x999999),
			ConnectorColor:  ColorFromHex(0x888888),
			ParticleColor:   ColorFromHex(0xaaaaaa),
			ParticleOpacity: 0.15,
			Clear:           ColorFromHex(0x1a1a1a),
		}
	}
	return Palette{
		NodeOpacity:     0.04,
		NodeColor:       ColorFromHex(0xcccccc),
		ConnectorColor:  ColorFromHex(0xdddddd),
		ParticleColor:   ColorFromHex(0xdddddd),
		ParticleOpacity: 0.10,
		Clear:           ColorFromHex(0xf5f5f5),
	}
}

// Viewport is the size of the render surface in logical pixels.
// PixelRatio is the device scale factor; values <= 0 mean 1.
type Viewport struct {
	Width, Height int
	PixelRatio    float64
}

// defaultAspect is substituted when either viewport dimension is zero.
const defaultAspect = 1.0

// maxPixelRatio caps the backing store density.
const maxPixelRatio = 2.0

// Aspect returns Width/Height, or defaultAspect for a degenerate viewport.
func (v Viewport) Aspect() float64 {
	if v.Width <= 0 || v.Height <= 0 {
		return defaultAspect
	}
	return float64(v.Width) / float64(v.Height)
}

// Empty reports whether the viewport has no area.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// ratio returns the effective pixel ratio, clamped to [1, maxPixelRatio].
func (v Viewport) ratio() float64 {
	r := v.PixelRatio
	if r <= 0 {
		r = 1
	}
	return math.Min(r, maxPixelRatio)
}

// backingSize returns the device-pixel size of the surface, never below 1x1.
func (v Viewport) backingSize() (int, int) {
	r := v.ratio()
	w := int(math.Ceil(float64(v.Width) * r))
	h := int(math.Ceil(float64(v.Height) * r))
	return max(w, 1), max(h, 1)
}

// Range is a general-purpose min/max range.
type Range struct {
	Min, Max float64
}

// Random returns a uniformly distributed value in [Min, Max) drawn from rng.
func (r Range) Random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}
