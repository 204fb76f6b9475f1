package backdrop

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is a perspective camera that drifts with the pointer and always
// looks at the scene origin.
type Camera struct {
	Position r3.Vec
	Target   r3.Vec
	// FOV is the vertical field of view in degrees.
	FOV       float64
	Near, Far float64
	Aspect    float64

	frame basis
	dirty bool
}

const (
	cameraNear = 0.1
	cameraFar  = 1000
)

// newCamera creates a Camera at (0, 0, CameraDistance).
func newCamera(tn Tuning, aspect float64) *Camera {
	c := &Camera{
		Position: r3.Vec{Z: tn.CameraDistance},
		FOV:      tn.FOV,
		Near:     cameraNear,
		Far:      cameraFar,
		dirty:    true,
	}
	c.SetAspect(aspect)
	return c
}

// SetAspect updates the projection aspect ratio. Non-positive or non-finite
// values fall back to 1.
func (c *Camera) SetAspect(aspect float64) {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		aspect = defaultAspect
	}
	c.Aspect = aspect
}

// ease moves the camera a fraction of the way toward the pointer scaled by
// CameraTravel, then re-aims it at Target.
func (c *Camera) ease(p *Pointer, tn *Tuning) {
	c.Position.X += (p.X*tn.CameraTravel - c.Position.X) * tn.CameraSmoothing
	c.Position.Y += (p.Y*tn.CameraTravel - c.Position.Y) * tn.CameraSmoothing
	c.dirty = true
}

// pointerDistance is the xy distance from the camera to p divided by
// falloff. Values below 1 mean p is inside the highlight radius.
func (c *Camera) pointerDistance(p r3.Vec, falloff float64) float64 {
	return math.Hypot(p.X-c.Position.X, p.Y-c.Position.Y) / falloff
}

func (c *Camera) view() basis {
	if c.dirty {
		c.frame = lookAt(c.Position, c.Target, worldUp)
		c.dirty = false
	}
	return c.frame
}

// Project maps a world point to screen pixels for a w x h surface. depth is
// the distance in front of the camera. ok is false when the point is behind
// the camera or outside the clip range.
func (c *Camera) Project(p r3.Vec, w, h float64) (sx, sy, depth float64, ok bool) {
	v := c.view().toView(c.Position, p)
	nx, ny, ok := perspective(v, c.FOV*math.Pi/180, c.Aspect, c.Near, c.Far)
	if !ok {
		return 0, 0, v.Z, false
	}
	sx, sy = ndcToScreen(nx, ny, w, h)
	return sx, sy, v.Z, true
}

// PixelsPerUnit returns how many screen pixels one world unit spans at the
// given depth on a surface h pixels tall.
func (c *Camera) PixelsPerUnit(depth, h float64) float64 {
	if depth <= 0 {
		return 0
	}
	return h / 2 / (depth * math.Tan(c.FOV*math.Pi/360))
}
