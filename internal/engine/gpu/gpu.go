// Package gpu uploads packed meshes into OpenGL vertex arrays and draws them.
package gpu

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/trimesh/pkg/mesh"
)

var (
	ErrEmptyBuffer      = errors.New("buffer has no vertices")
	ErrMalformedBuffer  = mesh.ErrMalformedBuffer
	ErrUnknownPrimitive = errors.New("unknown primitive topology")
)

// Attribute describes one float vertex attribute binding.
type Attribute struct {
	Location uint32
	Size     int32 // Components per vertex
	Stride   int32 // Bytes between vertices, 0 for tightly packed
	Offset   uintptr
}

// Attribute locations shared with the mesh shaders.
const (
	LocationPosition = 0
	LocationNormal   = 1
	LocationUV       = 2
)

// SeparateLayout binds one tightly packed VBO per attribute.
var SeparateLayout = [3]Attribute{
	{Location: LocationPosition, Size: 3},
	{Location: LocationNormal, Size: 3},
	{Location: LocationUV, Size: 2},
}

// InterleavedLayout binds a single VBO of mesh.Vertex values.
var InterleavedLayout = [3]Attribute{
	{Location: LocationPosition, Size: 3, Stride: vertexSize, Offset: unsafe.Offsetof(mesh.Vertex{}.Position)},
	{Location: LocationNormal, Size: 3, Stride: vertexSize, Offset: unsafe.Offsetof(mesh.Vertex{}.Normal)},
	{Location: LocationUV, Size: 2, Stride: vertexSize, Offset: unsafe.Offsetof(mesh.Vertex{}.UV)},
}

const vertexSize = int32(unsafe.Sizeof(mesh.Vertex{}))

// PrimitiveMode returns the GL draw mode for a topology tag.
func PrimitiveMode(t mesh.Topology) (uint32, error) {
	switch t {
	case mesh.Points:
		return gl.POINTS, nil
	case mesh.Lines:
		return gl.LINES, nil
	case mesh.LineLoop:
		return gl.LINE_LOOP, nil
	case mesh.LineStrip:
		return gl.LINE_STRIP, nil
	case mesh.Triangles:
		return gl.TRIANGLES, nil
	case mesh.TriangleStrip:
		return gl.TRIANGLE_STRIP, nil
	case mesh.TriangleFan:
		return gl.TRIANGLE_FAN, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownPrimitive, uint32(t))
}

// Mesh is a vertex array resident on the GPU.
type Mesh struct {
	vao      uint32
	vbos     []uint32
	count    int32
	mode     uint32
	topology mesh.Topology
}

// Upload copies a packed buffer into three VBOs bound to attributes 0, 1
// and 2 of a new vertex array. Requires a current GL context.
func Upload(buf *mesh.CompressedBuffer) (*Mesh, error) {
	if err := validateBuffer(buf); err != nil {
		return nil, err
	}
	mode, err := PrimitiveMode(buf.Topology)
	if err != nil {
		return nil, err
	}

	m := &Mesh{count: int32(buf.Count), mode: mode, topology: buf.Topology}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	m.vbos = make([]uint32, len(SeparateLayout))
	gl.GenBuffers(int32(len(m.vbos)), &m.vbos[0])

	arrays := [3][]float32{buf.Positions, buf.Normals, buf.UVs}
	for i, attr := range SeparateLayout {
		gl.BindBuffer(gl.ARRAY_BUFFER, m.vbos[i])
		gl.BufferData(gl.ARRAY_BUFFER, len(arrays[i])*4, gl.Ptr(arrays[i]), gl.STATIC_DRAW)
		bindAttribute(attr)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return m, nil
}

// UploadInterleaved copies vertices into a single VBO with a 32 byte stride.
// Requires a current GL context.
func UploadInterleaved(vertices []mesh.Vertex, topology mesh.Topology) (*Mesh, error) {
	if len(vertices) == 0 {
		return nil, ErrEmptyBuffer
	}
	mode, err := PrimitiveMode(topology)
	if err != nil {
		return nil, err
	}

	m := &Mesh{count: int32(len(vertices)), mode: mode, topology: topology}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	m.vbos = make([]uint32, 1)
	gl.GenBuffers(1, &m.vbos[0])
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbos[0])
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(vertexSize), unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)
	for _, attr := range InterleavedLayout {
		bindAttribute(attr)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return m, nil
}

func bindAttribute(attr Attribute) {
	gl.VertexAttribPointerWithOffset(attr.Location, attr.Size, gl.FLOAT, false, attr.Stride, attr.Offset)
	gl.EnableVertexAttribArray(attr.Location)
}

func validateBuffer(buf *mesh.CompressedBuffer) error {
	if buf == nil || buf.Count == 0 {
		return ErrEmptyBuffer
	}
	return buf.Validate()
}

// Draw submits every vertex with the mesh's primitive mode.
func (m *Mesh) Draw() {
	if m.vao == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawArrays(m.mode, 0, m.count)
	gl.BindVertexArray(0)
}

// Count returns the number of vertices submitted by Draw.
func (m *Mesh) Count() int {
	return int(m.count)
}

// Topology returns the primitive tag the mesh was uploaded with.
func (m *Mesh) Topology() mesh.Topology {
	return m.topology
}

// Release frees the GL objects. Further calls are no-ops.
func (m *Mesh) Release() {
	if m.vao == 0 {
		return
	}
	gl.DeleteBuffers(int32(len(m.vbos)), &m.vbos[0])
	gl.DeleteVertexArrays(1, &m.vao)
	m.vao = 0
	m.vbos = nil
}
