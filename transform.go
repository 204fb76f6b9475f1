package backdrop

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// worldUp is the +y axis used to orient the camera.
var worldUp = r3.Vec{Y: 1}

// rotateXYZ applies Euler rotation rot to v with intrinsic X, Y, Z order.
// The composed matrix is Rx * Ry * Rz, so z is applied to v first.
func rotateXYZ(v, rot r3.Vec) r3.Vec {
	sx, cx := math.Sincos(rot.X)
	sy, cy := math.Sincos(rot.Y)
	sz, cz := math.Sincos(rot.Z)

	// Rz
	x := v.X*cz - v.Y*sz
	y := v.X*sz + v.Y*cz
	z := v.Z
	// Ry
	x, z = x*cy+z*sy, -x*sy+z*cy
	// Rx
	y, z = y*cx-z*sx, y*sx+z*cx
	return r3.Vec{X: x, Y: y, Z: z}
}

// localToWorld transforms a node-local vertex: scale (s, s, 1), rotate, then
// translate.
func localToWorld(v r3.Vec, n *Node) r3.Vec {
	scaled := r3.Vec{X: v.X * n.Scale, Y: v.Y * n.Scale, Z: v.Z}
	return r3.Add(n.Position, rotateXYZ(scaled, n.Rotation))
}

// basis is an orthonormal camera frame. Forward points from the eye to the
// target.
type basis struct {
	right, up, forward r3.Vec
}

// lookAt returns the frame of an eye at eye looking at target.
func lookAt(eye, target, up r3.Vec) basis {
	f := r3.Sub(target, eye)
	if r3.Norm(f) == 0 {
		f = r3.Vec{Z: -1}
	}
	f = r3.Unit(f)
	r := r3.Cross(f, up)
	if r3.Norm(r) < 1e-12 {
		r = r3.Vec{X: 1}
	}
	r = r3.Unit(r)
	u := r3.Cross(r, f)
	return basis{right: r, up: u, forward: f}
}

// toView expresses p in the frame's coordinates relative to eye. The
// returned z is the distance along forward, positive in front of the eye.
func (b basis) toView(eye, p r3.Vec) r3.Vec {
	d := r3.Sub(p, eye)
	return r3.Vec{X: r3.Dot(d, b.right), Y: r3.Dot(d, b.up), Z: r3.Dot(d, b.forward)}
}

// perspective maps a view-space point to normalized device coordinates for a
// vertical field of view fov (radians) and aspect ratio. ok is false when
// the point is outside [near, far].
func perspective(v r3.Vec, fov, aspect, near, far float64) (x, y float64, ok bool) {
	if v.Z < near || v.Z > far {
		return 0, 0, false
	}
	t := math.Tan(fov / 2)
	if aspect <= 0 {
		aspect = defaultAspect
	}
	return v.X / (v.Z * t * aspect), v.Y / (v.Z * t), true
}

// ndcToScreen maps normalized device coordinates to pixels (y down).
func ndcToScreen(x, y, w, h float64) (float64, float64) {
	return (x + 1) / 2 * w, (1 - y) / 2 * h
}
