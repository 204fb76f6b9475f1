package backdrop

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

// Particle is one free-floating point. Velocity is in world units per frame.
type Particle struct {
	Position r3.Vec
	Velocity r3.Vec
}

// ParticleField is the fixed pool of ambient particles. Unlike nodes, each
// particle carries its state from frame to frame.
type ParticleField struct {
	Particles []Particle

	// Bounds holds the |x| and |y| limits; Depth the z range.
	BoundsX, BoundsY float64
	Depth            Range

	// Geometry mirrors the particle positions for renderers.
	Geometry *Geometry
	Material *Material
}

// newParticleField scatters cfg.Particles particles uniformly inside the
// bounds with small random velocities.
func (f *Field) newParticleField(rng *rand.Rand) *ParticleField {
	cfg := f.Config
	pf := &ParticleField{
		Particles: make([]Particle, cfg.Particles),
		BoundsX:   cfg.ParticleBoundsX,
		BoundsY:   cfg.ParticleBoundsY,
		Depth:     cfg.ParticleDepth,
	}
	spanX := Range{Min: -cfg.ParticleBoundsX, Max: cfg.ParticleBoundsX}
	spanY := Range{Min: -cfg.ParticleBoundsY, Max: cfg.ParticleBoundsY}
	speedXY := Range{Min: -cfg.ParticleSpeedXY, Max: cfg.ParticleSpeedXY}
	speedZ := Range{Min: -cfg.ParticleSpeedZ, Max: cfg.ParticleSpeedZ}
	for i := range pf.Particles {
		p := &pf.Particles[i]
		p.Position = r3.Vec{X: spanX.Random(rng), Y: spanY.Random(rng), Z: cfg.ParticleDepth.Random(rng)}
		p.Velocity = r3.Vec{X: speedXY.Random(rng), Y: speedXY.Random(rng), Z: speedZ.Random(rng)}
	}

	pf.Geometry = f.ledger.trackGeometry(PointsGeometry(len(pf.Particles)))
	pf.Material = f.ledger.trackMaterial(&Material{
		Color:   f.Palette.ParticleColor,
		Opacity: f.Palette.ParticleOpacity,
	})
	pf.syncGeometry()
	return pf
}

// Len returns the pool size.
func (pf *ParticleField) Len() int { return len(pf.Particles) }

// update integrates one frame: move, reflect off the bounds, then nudge the
// velocity toward the pointer's world-space target.
func (pf *ParticleField) update(ptr *Pointer, tn *Tuning) {
	tx := ptr.X * tn.ParticleReachX
	ty := ptr.Y * tn.ParticleReachY
	for i := range pf.Particles {
		p := &pf.Particles[i]
		p.Position = r3.Add(p.Position, p.Velocity)

		// Forcing the sign and negating agree with the default speeds and
		// attraction: a particle is never outside a bound moving inward.
		p.Velocity.X = reflect(p.Position.X, p.Velocity.X, Range{Min: -pf.BoundsX, Max: pf.BoundsX})
		p.Velocity.Y = reflect(p.Position.Y, p.Velocity.Y, Range{Min: -pf.BoundsY, Max: pf.BoundsY})
		p.Velocity.Z = reflect(p.Position.Z, p.Velocity.Z, pf.Depth)

		p.Velocity.X += (tx - p.Position.X) * tn.ParticleAttraction
		p.Velocity.Y += (ty - p.Position.Y) * tn.ParticleAttraction
	}
	pf.syncGeometry()
}

// reflect returns v pointing back inside bounds when pos has left it.
// The sign is forced rather than flipped.
func reflect(pos, v float64, bounds Range) float64 {
	switch {
	case bounds.Contains(pos):
		return v
	case pos > bounds.Max:
		return -math.Abs(v)
	}
	return math.Abs(v)
}

func (pf *ParticleField) syncGeometry() {
	g := pf.Geometry
	if g == nil || g.IsDisposed() || len(g.Vertices) != len(pf.Particles) {
		return
	}
	for i := range pf.Particles {
		g.Vertices[i] = pf.Particles[i].Position
	}
	g.Touch()
}
