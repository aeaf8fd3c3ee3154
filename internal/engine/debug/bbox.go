// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/Faultbox/trimesh/pkg/math"
	"github.com/Faultbox/trimesh/pkg/mesh"
)

// BoundsWireframeVertexCount is the number of vertices for a bounds wireframe (12 edges × 2).
const BoundsWireframeVertexCount = 24

// BoundsWireframe returns the 12 edges of b as line segment endpoints,
// expanded by padding on every side.
func BoundsWireframe(b mesh.Bounds, padding float32) []math.Vec3 {
	pad := math.Vec3{X: padding, Y: padding, Z: padding}
	lo, hi := b.Min.Sub(pad), b.Max.Add(pad)

	corner := func(x, y, z bool) math.Vec3 {
		c := lo
		if x {
			c.X = hi.X
		}
		if y {
			c.Y = hi.Y
		}
		if z {
			c.Z = hi.Z
		}
		return c
	}

	points := make([]math.Vec3, 0, BoundsWireframeVertexCount)
	for _, y := range []bool{false, true} {
		points = append(points,
			corner(false, y, false), corner(true, y, false),
			corner(true, y, false), corner(true, y, true),
			corner(true, y, true), corner(false, y, true),
			corner(false, y, true), corner(false, y, false),
		)
	}
	for _, xz := range [][2]bool{{false, false}, {true, false}, {true, true}, {false, true}} {
		points = append(points, corner(xz[0], false, xz[1]), corner(xz[0], true, xz[1]))
	}
	return points
}

// BoundsBuffer packs the wireframe of b as a Lines buffer so it can be
// uploaded through the same path as a mesh.
func BoundsBuffer(b mesh.Bounds, padding float32) *mesh.CompressedBuffer {
	m := &mesh.Mesh{Vertices: BoundsWireframe(b, padding)}
	m.Normals = make([]math.Vec3, len(m.Vertices))
	m.FillMissingUVs()

	buf, err := mesh.Pack(m, mesh.Lines)
	if err != nil {
		// Every attribute was sized from Vertices above.
		panic(err)
	}
	return buf
}
