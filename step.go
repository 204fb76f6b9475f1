package backdrop

import "math"

// Step advances the field to elapsed time t (seconds). The order is fixed:
// pointer smoothing, camera drift, node transforms, connector endpoints,
// particle integration. t values earlier than the previous step are treated
// as the previous value.
func (f *Field) Step(t float64) {
	if f.disposed {
		return
	}
	if math.IsNaN(t) || (f.stepped && t < f.last) {
		t = f.last
	}
	f.last = t
	f.stepped = true
	f.frames++

	tn := &f.Config.Tuning
	f.Pointer.smooth(tn.PointerSmoothing)
	f.Camera.ease(&f.Pointer, tn)

	for _, l := range f.Layers {
		for _, n := range l.Nodes {
			n.update(t, l, f.Camera, tn)
		}
	}
	for _, c := range f.Connectors {
		c.update(f.Camera, tn)
	}
	f.Particles.update(&f.Pointer, tn)
}

// SetPointer stages a pointer target in normalized device coordinates.
func (f *Field) SetPointer(x, y float64) {
	f.Pointer.SetTarget(x, y)
}
