package mesh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Faultbox/trimesh/pkg/math"
)

// CompressedBuffer holds packed per-vertex attributes:
// Positions and Normals are x,y,z,x,y,z,... and UVs is u,v,u,v,...
// A buffer is never modified after Pack returns it.
type CompressedBuffer struct {
	Positions []float32 // 3 * Count
	Normals   []float32 // 3 * Count
	UVs       []float32 // 2 * Count
	Count     int
	Topology  Topology
}

// Pack flattens a mesh into three contiguous arrays. Every attribute must have
// one entry per vertex; a UV-less mesh needs FillMissingUVs first. The topology
// is recorded as given.
func Pack(m *Mesh, topology Topology) (*CompressedBuffer, error) {
	if err := checkArity(m); err != nil {
		return nil, err
	}

	n := len(m.Vertices)
	buf := &CompressedBuffer{
		Positions: make([]float32, 3*n),
		Normals:   make([]float32, 3*n),
		UVs:       make([]float32, 2*n),
		Count:     n,
		Topology:  topology,
	}

	for i := 0; i < n; i++ {
		v, nrm, uv := m.Vertices[i], m.Normals[i], m.UVs[i]
		buf.Positions[i*3+0] = v.X
		buf.Positions[i*3+1] = v.Y
		buf.Positions[i*3+2] = v.Z

		buf.Normals[i*3+0] = nrm.X
		buf.Normals[i*3+1] = nrm.Y
		buf.Normals[i*3+2] = nrm.Z

		buf.UVs[i*2+0] = uv.X
		buf.UVs[i*2+1] = uv.Y
	}

	return buf, nil
}

// Unpack reshapes the buffer back into a Mesh.
func (b *CompressedBuffer) Unpack() *Mesh {
	m := &Mesh{
		Vertices: make([]math.Vec3, b.Count),
		Normals:  make([]math.Vec3, b.Count),
		UVs:      make([]math.Vec2, b.Count),
	}
	for i := 0; i < b.Count; i++ {
		m.Vertices[i] = math.Vec3{X: b.Positions[i*3], Y: b.Positions[i*3+1], Z: b.Positions[i*3+2]}
		m.Normals[i] = math.Vec3{X: b.Normals[i*3], Y: b.Normals[i*3+1], Z: b.Normals[i*3+2]}
		m.UVs[i] = math.Vec2{X: b.UVs[i*2], Y: b.UVs[i*2+1]}
	}
	return m
}

// Interleave builds one Vertex per mesh vertex. It has the same precondition
// as Pack.
func Interleave(m *Mesh) ([]Vertex, error) {
	if err := checkArity(m); err != nil {
		return nil, err
	}
	out := make([]Vertex, len(m.Vertices))
	for i := range out {
		out[i] = Vertex{Position: m.Vertices[i], Normal: m.Normals[i], UV: m.UVs[i]}
	}
	return out, nil
}

// Packed buffer file layout (little-endian):
//
//	magic    [4]byte "TMSH"
//	version  uint16
//	topology uint32
//	count    uint32
//	positions, normals, uvs as float32
const (
	bufferMagic   = "TMSH"
	bufferVersion = uint16(1)

	maxBufferVertices = 1 << 26
)

// Packed buffer file errors.
var (
	ErrInvalidBufferMagic       = errors.New("invalid packed buffer magic: expected 'TMSH'")
	ErrUnsupportedBufferVersion = errors.New("unsupported packed buffer version")
	ErrTruncatedBufferData      = errors.New("truncated packed buffer data")
	ErrBufferTooLarge           = errors.New("packed buffer vertex count too large")
	ErrMalformedBuffer          = errors.New("buffer arrays do not match vertex count")
)

// readChunk bounds how many floats are decoded per step, so a header that
// claims more data than the stream holds fails before a large allocation.
const readChunk = 16 * 1024

type bufferHeader struct {
	Magic    [4]byte
	Version  uint16
	Topology uint32
	Count    uint32
}

// Validate checks that Count fits the file header and that every array
// holds exactly Count elements of its arity.
func (b *CompressedBuffer) Validate() error {
	if b.Count < 0 || b.Count > maxBufferVertices {
		return fmt.Errorf("%w: %d", ErrBufferTooLarge, b.Count)
	}
	if len(b.Positions) != 3*b.Count || len(b.Normals) != 3*b.Count || len(b.UVs) != 2*b.Count {
		return fmt.Errorf("%w: count %d, arrays %d/%d/%d", ErrMalformedBuffer,
			b.Count, len(b.Positions), len(b.Normals), len(b.UVs))
	}
	return nil
}

// WriteTo serializes the buffer. Nothing is written when the buffer is
// inconsistent.
func (b *CompressedBuffer) WriteTo(w io.Writer) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}

	var out bytes.Buffer
	hdr := bufferHeader{
		Version:  bufferVersion,
		Topology: uint32(b.Topology),
		Count:    uint32(b.Count),
	}
	copy(hdr.Magic[:], bufferMagic)

	sections := []struct {
		name string
		data any
	}{
		{"header", &hdr},
		{"positions", b.Positions},
		{"normals", b.Normals},
		{"uvs", b.UVs},
	}
	for _, sec := range sections {
		if err := binary.Write(&out, binary.LittleEndian, sec.data); err != nil {
			return 0, fmt.Errorf("encoding %s: %w", sec.name, err)
		}
	}

	n, err := w.Write(out.Bytes())
	if err == nil && n != out.Len() {
		err = io.ErrShortWrite
	}
	return int64(n), err
}

// ReadCompressedBuffer reads a buffer written by WriteTo.
func ReadCompressedBuffer(r io.Reader) (*CompressedBuffer, error) {
	var hdr bufferHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrTruncatedBufferData, err)
	}
	if string(hdr.Magic[:]) != bufferMagic {
		return nil, ErrInvalidBufferMagic
	}
	if hdr.Version != bufferVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBufferVersion, hdr.Version)
	}

	if hdr.Count > maxBufferVertices {
		return nil, fmt.Errorf("%w: %d", ErrBufferTooLarge, hdr.Count)
	}

	n := int(hdr.Count)
	b := &CompressedBuffer{
		Count:    n,
		Topology: Topology(hdr.Topology),
	}
	var err error
	if b.Positions, err = readFloats(r, 3*n); err != nil {
		return nil, fmt.Errorf("%w: positions: %v", ErrTruncatedBufferData, err)
	}
	if b.Normals, err = readFloats(r, 3*n); err != nil {
		return nil, fmt.Errorf("%w: normals: %v", ErrTruncatedBufferData, err)
	}
	if b.UVs, err = readFloats(r, 2*n); err != nil {
		return nil, fmt.Errorf("%w: uvs: %v", ErrTruncatedBufferData, err)
	}
	return b, nil
}

// readFloats decodes n little-endian float32 values, growing the result one
// chunk at a time as data arrives.
func readFloats(r io.Reader, n int) ([]float32, error) {
	out := make([]float32, 0, min(n, readChunk))
	chunk := make([]float32, min(n, readChunk))
	for len(out) < n {
		step := chunk[:min(n-len(out), readChunk)]
		if err := binary.Read(r, binary.LittleEndian, step); err != nil {
			return nil, fmt.Errorf("after %d of %d values: %w", len(out), n, err)
		}
		out = append(out, step...)
	}
	return out, nil
}
