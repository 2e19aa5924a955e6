// Package camera provides the viewer camera and the orbit state that drives it.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera holds a world-to-camera transform derived from a position and an
// orthonormal right/up/forward basis. The view matrix is rebuilt lazily:
// setters only mark it dirty and UpdateViewMatrix recomputes it.
//
// Forward points from the target towards the eye, so the camera looks down its
// local -Z axis (right-handed convention).
type Camera struct {
	position mgl32.Vec3
	right    mgl32.Vec3
	up       mgl32.Vec3
	forward  mgl32.Vec3

	fovY   float32
	aspect float32
	near   float32
	far    float32

	view       mgl32.Mat4
	projection mgl32.Mat4
	dirty      bool
}

// New creates a camera at position looking along the world axes. The
// projection is built once here and never changes.
func New(position mgl32.Vec3, fovYRadians, aspect, near, far float32) *Camera {
	return &Camera{
		position:   position,
		right:      mgl32.Vec3{1, 0, 0},
		up:         mgl32.Vec3{0, 1, 0},
		forward:    mgl32.Vec3{0, 0, 1},
		fovY:       fovYRadians,
		aspect:     aspect,
		near:       near,
		far:        far,
		projection: mgl32.Perspective(fovYRadians, aspect, near, far),
		dirty:      true,
	}
}

// SetPosition moves the camera without recomputing the view matrix.
func (c *Camera) SetPosition(p mgl32.Vec3) {
	c.position = p
	c.dirty = true
}

// LookAt places the camera at eye facing target. up must not be parallel to
// eye-target.
func (c *Camera) LookAt(eye, target, up mgl32.Vec3) {
	c.position = eye
	c.forward = eye.Sub(target).Normalize()
	c.right = up.Cross(c.forward).Normalize()
	c.up = c.forward.Cross(c.right)
	c.dirty = true
}

// UpdateViewMatrix re-orthonormalizes the basis and rebuilds the view matrix
// if anything changed since the last call. It does nothing when clean.
func (c *Camera) UpdateViewMatrix() {
	if !c.dirty {
		return
	}

	c.forward = c.forward.Normalize()
	c.up = c.forward.Cross(c.right).Normalize()
	c.right = c.up.Cross(c.forward)

	tx := -c.right.Dot(c.position)
	ty := -c.up.Dot(c.position)
	tz := -c.forward.Dot(c.position)

	// Column-major: rows are the basis vectors, the last column the translation.
	c.view = mgl32.Mat4{
		c.right[0], c.up[0], c.forward[0], 0,
		c.right[1], c.up[1], c.forward[1], 0,
		c.right[2], c.up[2], c.forward[2], 0,
		tx, ty, tz, 1,
	}
	c.dirty = false
}

// ViewMatrix returns the cached world-to-camera matrix. Call UpdateViewMatrix first.
func (c *Camera) ViewMatrix() mgl32.Mat4 { return c.view }

func (c *Camera) ProjectionMatrix() mgl32.Mat4 { return c.projection }

func (c *Camera) Position() mgl32.Vec3 { return c.position }

// Basis returns right, up and forward in world space.
func (c *Camera) Basis() (right, up, forward mgl32.Vec3) {
	return c.right, c.up, c.forward
}

// Dirty reports whether the view matrix is stale.
func (c *Camera) Dirty() bool { return c.dirty }

func (c *Camera) Aspect() float32 { return c.aspect }
