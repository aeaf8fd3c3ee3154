// Package mesh turns parsed OBJ sources into render-ready triangle geometry.
//
// The pipeline is Resolve (face indices to a flat triangle list), Normalize
// (recenter and rescale in place) and Pack (three flat float arrays). Every
// stage works on values it owns, so independent meshes can be processed
// concurrently without locking.
package mesh

import (
	"fmt"
	"strings"

	"github.com/Faultbox/trimesh/pkg/math"
)

// Mesh is a non-indexed triangle list. Index i of each slice describes vertex i;
// the vertex count is always a multiple of 3.
//
// UVs is either the same length as Vertices or empty when the source had no
// texture coordinate references.
type Mesh struct {
	Vertices []math.Vec3
	Normals  []math.Vec3
	UVs      []math.Vec2
}

// Vertex is one interleaved vertex for backends that bind a single vertex struct.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Vertices) / 3
}

// HasUVs reports whether every vertex carries a texture coordinate.
func (m *Mesh) HasUVs() bool {
	return len(m.UVs) > 0 && len(m.UVs) == len(m.Vertices)
}

// FillMissingUVs gives a UV-less mesh all-zero texture coordinates so it can be
// packed. It does nothing when UVs are already present.
func (m *Mesh) FillMissingUVs() {
	if len(m.UVs) != 0 {
		return
	}
	m.UVs = make([]math.Vec2, len(m.Vertices))
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Vertices: append([]math.Vec3(nil), m.Vertices...),
		Normals:  append([]math.Vec3(nil), m.Normals...),
		UVs:      append([]math.Vec2(nil), m.UVs...),
	}
}

// Topology is the primitive type a renderer uses to submit packed vertices.
// Values match the OpenGL primitive enums.
type Topology uint32

const (
	Points        Topology = 0
	Lines         Topology = 1
	LineLoop      Topology = 2
	LineStrip     Topology = 3
	Triangles     Topology = 4
	TriangleStrip Topology = 5
	TriangleFan   Topology = 6
)

var topologyNames = map[Topology]string{
	Points:        "points",
	Lines:         "lines",
	LineLoop:      "line_loop",
	LineStrip:     "line_strip",
	Triangles:     "triangles",
	TriangleStrip: "triangle_strip",
	TriangleFan:   "triangle_fan",
}

// String returns the topology name accepted by ParseTopology.
func (t Topology) String() string {
	if name, ok := topologyNames[t]; ok {
		return name
	}
	return fmt.Sprintf("topology(%d)", uint32(t))
}

// Valid reports whether t is a known primitive type.
func (t Topology) Valid() bool {
	_, ok := topologyNames[t]
	return ok
}

// ParseTopology converts a topology name to a Topology.
func ParseTopology(s string) (Topology, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Triangles, nil
	}
	for t, name := range topologyNames {
		if name == s {
			return t, nil
		}
	}
	return Triangles, fmt.Errorf("unknown topology %q", s)
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// ComputeBounds returns the bounding box of the given points.
// The result is the zero Bounds when points is empty.
func ComputeBounds(points []math.Vec3) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// Center returns (Min+Max)/2.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Extent returns Max-Min.
func (b Bounds) Extent() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// LargestExtent returns the largest side of the box.
func (b Bounds) LargestExtent() float32 {
	return b.Extent().MaxComponent()
}
