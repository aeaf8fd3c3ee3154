// Package camera provides the orbit camera used by the mesh viewer.
package camera

import (
	gomath "math"

	"github.com/Faultbox/trimesh/pkg/math"
	"github.com/Faultbox/trimesh/pkg/mesh"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance  float32
	RotationX float32 // Pitch (radians)
	RotationY float32 // Yaw (radians)

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	FovY float32 // Vertical field of view (radians)

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera returns a camera framing a mesh normalized to radius 2.
func NewOrbitCamera() *OrbitCamera {
	c := &OrbitCamera{
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		FovY:            gomath.Pi / 4,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
	c.FitToRadius(2)
	return c
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	pitch, yaw := float64(c.RotationX), float64(c.RotationY)
	offset := math.Vec3{
		X: float32(gomath.Cos(pitch) * gomath.Sin(yaw)),
		Y: float32(gomath.Sin(pitch)),
		Z: float32(gomath.Cos(pitch) * gomath.Cos(yaw)),
	}
	return c.Center.Add(offset.Scale(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// ProjectionMatrix returns a perspective projection whose clip planes
// scale with the orbit distance.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	near := c.Distance * 0.01
	far := c.Distance * 10
	return math.Perspective(c.FovY, aspect, near, far)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.RotationX = clamp(c.RotationX, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// FitToRadius frames a sphere of the given radius around the center.
func (c *OrbitCamera) FitToRadius(radius float32) {
	if !(radius > 0) {
		radius = 1
	}
	half := float64(c.FovY) / 2
	if half <= 0 {
		half = gomath.Pi / 8
	}
	c.Distance = radius / float32(gomath.Sin(half)) * 1.1
	c.MinDistance = radius * 0.1
	c.MaxDistance = radius * 50
	c.RotationX = 0.4
	c.RotationY = 0.6
}

// FitToBounds centers on b and frames its bounding sphere.
func (c *OrbitCamera) FitToBounds(b mesh.Bounds) {
	c.Center = b.Center()
	c.FitToRadius(b.Extent().Length() / 2)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
