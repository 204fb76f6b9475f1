package backdrop

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Field is the complete simulation state of one mounted background: the
// layered node grid, its connectors, the particle pool, pointer and camera.
// A Field is built for exactly one theme and discarded on theme change.
type Field struct {
	Config  Config
	Theme   Theme
	Palette Palette

	Layers     []*Layer
	Connectors []*Connector
	Particles  *ParticleField

	Pointer Pointer
	Camera  *Camera

	last     float64
	stepped  bool
	frames   uint64
	disposed bool
	ledger   resourceLedger
}

// NewField validates cfg and builds layers, connectors and particles for
// theme. rng supplies the node phases and particle seeds; nil derives one
// from cfg.Seed.
func NewField(cfg Config, theme Theme, vp Viewport, rng *rand.Rand) (*Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = newRand(cfg.Seed)
	}
	f := &Field{
		Config:  cfg,
		Theme:   theme,
		Palette: PaletteFor(theme),
		Camera:  newCamera(cfg.Tuning, vp.Aspect()),
	}
	f.Layers = f.buildLayers(rng)
	f.Connectors = f.buildConnectors()
	f.Particles = f.newParticleField(rng)
	return f, nil
}

// newRand returns a PCG generator for seed; zero seeds from the clock.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// buildLayers lays out cfg.Layers grids of Cols x Rows nodes. Odd layers are
// offset by half a cell so the grids never overlap exactly.
func (f *Field) buildLayers(rng *rand.Rand) []*Layer {
	cfg := f.Config
	startX := -float64(cfg.Cols) * cfg.Spacing / 2
	startY := -float64(cfg.Rows) * cfg.Spacing / 2

	layers := make([]*Layer, 0, cfg.Layers)
	for li := 0; li < cfg.Layers; li++ {
		falloff := float64(li) * cfg.LayerFalloff
		l := &Layer{
			Index:   li,
			Depth:   cfg.DepthStart - float64(li)*cfg.DepthStep,
			Speed:   1 - falloff,
			Scale:   1 + falloff,
			Opacity: f.Palette.NodeOpacity * (1 - falloff),
			Nodes:   make([]*Node, 0, cfg.Cols*cfg.Rows),
		}
		l.Sphere = f.ledger.trackGeometry(SphereGeometry(
			cfg.SphereRadius*l.Scale, cfg.SphereWidthSegments, cfg.SphereHeightSegments))

		offset := float64(li%2) * cfg.Spacing / 2
		for col := 0; col < cfg.Cols; col++ {
			for row := 0; row < cfg.Rows; row++ {
				origin := r3.Vec{
					X: startX + float64(col)*cfg.Spacing + offset,
					Y: startY + float64(row)*cfg.Spacing + offset,
					Z: l.Depth,
				}
				n := &Node{
					Layer:    li,
					Col:      col,
					Row:      row,
					Origin:   origin,
					PhaseX:   rng.Float64() * 2 * math.Pi,
					PhaseY:   rng.Float64() * 2 * math.Pi,
					PhaseZ:   rng.Float64() * 2 * math.Pi,
					Position: origin,
					Scale:    1,
					Opacity:  l.Opacity,
					Geometry: l.Sphere,
					Material: f.ledger.trackMaterial(&Material{
						Color:   f.Palette.NodeColor,
						Opacity: l.Opacity,
					}),
				}
				l.Nodes = append(l.Nodes, n)
			}
		}
		layers = append(layers, l)
	}
	return layers
}

// NodeCount returns the number of nodes across all layers.
func (f *Field) NodeCount() int {
	n := 0
	for _, l := range f.Layers {
		n += len(l.Nodes)
	}
	return n
}

// Frames returns how many times Step has run.
func (f *Field) Frames() uint64 { return f.frames }

// Elapsed returns the time passed to the most recent Step.
func (f *Field) Elapsed() float64 { return f.last }

// Resize updates the camera projection. Geometry is left alone.
func (f *Field) Resize(vp Viewport) {
	f.Camera.SetAspect(vp.Aspect())
}

// Resources reports the ledger of geometries and materials owned by f.
func (f *Field) Resources() ResourceStats { return f.ledger.stats() }

// IsDisposed reports whether Dispose has been called.
func (f *Field) IsDisposed() bool { return f.disposed }

// Dispose releases every geometry and material, newest first. Further calls
// are no-ops.
func (f *Field) Dispose() {
	if f.disposed {
		return
	}
	f.disposed = true
	f.ledger.releaseAll()
}
