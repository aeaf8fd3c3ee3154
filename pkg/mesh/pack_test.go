package mesh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"runtime"
	"testing"

	"github.com/Faultbox/trimesh/pkg/math"
)

func TestPack_Layout(t *testing.T) {
	m, _ := mustLoad(t, triangleOBJ)

	buf, err := Pack(m, Triangles)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	if buf.Count != 3 || buf.Topology != Triangles {
		t.Errorf("count=%d topology=%v, want 3/triangles", buf.Count, buf.Topology)
	}
	wantPos := []float32{0, 0, 0, 1, 0, 0, 1, 1, 0}
	wantNrm := []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}
	wantUV := []float32{0, 0, 1, 0, 1, 1}
	checkFloats(t, "positions", buf.Positions, wantPos)
	checkFloats(t, "normals", buf.Normals, wantNrm)
	checkFloats(t, "uvs", buf.UVs, wantUV)
}

func checkFloats(t *testing.T, name string, got, want []float32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: length %d, want %d", name, len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s[%d] = %v, want %v", name, i, got[i], want[i])
		}
	}
}

func TestPack_RoundTrip(t *testing.T) {
	m, _ := mustLoad(t, quadOBJ+"f 4/1/2 2/3/4 1/2/3\n")

	buf, err := Pack(m, TriangleStrip)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	n := m.VertexCount()
	if len(buf.Positions) != 3*n || len(buf.Normals) != 3*n || len(buf.UVs) != 2*n {
		t.Fatalf("array lengths %d/%d/%d for %d vertices", len(buf.Positions), len(buf.Normals), len(buf.UVs), n)
	}
	if buf.Topology != TriangleStrip {
		t.Errorf("topology = %v, want the caller's tag", buf.Topology)
	}

	back := buf.Unpack()
	for i := 0; i < n; i++ {
		if back.Vertices[i] != m.Vertices[i] || back.Normals[i] != m.Normals[i] || back.UVs[i] != m.UVs[i] {
			t.Errorf("vertex %d did not round trip", i)
		}
	}
}

func TestPack_ArityMismatch(t *testing.T) {
	noUVs, _ := mustLoad(t, triangleOBJ+"f 1//1 2//2 3//3\n")

	tests := []struct {
		name string
		mesh *Mesh
	}{
		{"missing uvs", noUVs},
		{"short normals", &Mesh{
			Vertices: make([]math.Vec3, 3),
			Normals:  make([]math.Vec3, 2),
			UVs:      make([]math.Vec2, 3),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := Pack(tt.mesh, Triangles)
			if !errors.Is(err, ErrAttributeArity) {
				t.Fatalf("got %v, want ErrAttributeArity", err)
			}
			if buf != nil {
				t.Error("expected no buffer on error")
			}
			var ae *ArityError
			if !errors.As(err, &ae) || ae.Vertices != len(tt.mesh.Vertices) {
				t.Errorf("expected *ArityError with vertex count, got %v", err)
			}
			if _, err := Interleave(tt.mesh); !errors.Is(err, ErrAttributeArity) {
				t.Errorf("Interleave: got %v, want ErrAttributeArity", err)
			}
		})
	}
}

func TestPack_FillMissingUVs(t *testing.T) {
	m, _ := mustLoad(t, triangleOBJ+"f 1//1 2//2 3//3\n")
	m.FillMissingUVs()

	buf, err := Pack(m, Triangles)
	if err != nil {
		t.Fatalf("Pack after FillMissingUVs: %v", err)
	}
	for i, f := range buf.UVs {
		if f != 0 {
			t.Errorf("uv[%d] = %v, want 0", i, f)
		}
	}
}

func TestPack_Empty(t *testing.T) {
	buf, err := Pack(&Mesh{}, Triangles)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if buf.Count != 0 || len(buf.Positions) != 0 {
		t.Errorf("expected empty buffer, got count %d", buf.Count)
	}
}

func TestInterleave(t *testing.T) {
	m, _ := mustLoad(t, quadOBJ)
	verts, err := Interleave(m)
	if err != nil {
		t.Fatalf("Interleave: %v", err)
	}
	if len(verts) != 6 {
		t.Fatalf("expected 6 vertices, got %d", len(verts))
	}
	for i, v := range verts {
		if v.Position != m.Vertices[i] || v.Normal != m.Normals[i] || v.UV != m.UVs[i] {
			t.Errorf("vertex %d = %+v does not match mesh", i, v)
		}
	}
}

func TestCompressedBuffer_WriteRead(t *testing.T) {
	m, _ := mustLoad(t, quadOBJ)
	buf, err := Pack(m, Triangles)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	var out bytes.Buffer
	n, err := buf.WriteTo(&out)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if want := int64(14 + 4*8*buf.Count); n != want {
		t.Errorf("wrote %d bytes, want %d", n, want)
	}

	got, err := ReadCompressedBuffer(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("ReadCompressedBuffer: %v", err)
	}
	if got.Count != buf.Count || got.Topology != buf.Topology {
		t.Errorf("header = %d/%v, want %d/%v", got.Count, got.Topology, buf.Count, buf.Topology)
	}
	checkFloats(t, "positions", got.Positions, buf.Positions)
	checkFloats(t, "normals", got.Normals, buf.Normals)
	checkFloats(t, "uvs", got.UVs, buf.UVs)
}

func TestReadCompressedBuffer_Errors(t *testing.T) {
	m, _ := mustLoad(t, triangleOBJ)
	buf, _ := Pack(m, Triangles)
	var out bytes.Buffer
	buf.WriteTo(&out)
	valid := out.Bytes()

	badMagic := append([]byte("XXXX"), valid[4:]...)
	badVersion := append([]byte(nil), valid...)
	badVersion[4] = 9

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrTruncatedBufferData},
		{"bad magic", badMagic, ErrInvalidBufferMagic},
		{"bad version", badVersion, ErrUnsupportedBufferVersion},
		{"truncated arrays", valid[:len(valid)-4], ErrTruncatedBufferData},
		{"count over limit", headerOnly(t, maxBufferVertices+1), ErrBufferTooLarge},
		{"count without payload", headerOnly(t, maxBufferVertices), ErrTruncatedBufferData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCompressedBuffer(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseTopology(t *testing.T) {
	tests := []struct {
		in      string
		want    Topology
		wantErr bool
	}{
		{"", Triangles, false},
		{"triangles", Triangles, false},
		{"TRIANGLE_STRIP", TriangleStrip, false},
		{"points", Points, false},
		{"line_loop", LineLoop, false},
		{"hexagons", Triangles, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTopology(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if Topology(42).Valid() {
		t.Error("Topology(42) should not be valid")
	}
	if Triangles.String() != "triangles" {
		t.Errorf("Triangles.String() = %q", Triangles.String())
	}
}

func headerOnly(t *testing.T, count uint32) []byte {
	t.Helper()
	hdr := bufferHeader{Version: bufferVersion, Topology: uint32(Triangles), Count: count}
	copy(hdr.Magic[:], bufferMagic)
	var out bytes.Buffer
	if err := binary.Write(&out, binary.LittleEndian, &hdr); err != nil {
		t.Fatalf("encoding header: %v", err)
	}
	return out.Bytes()
}

func TestReadCompressedBuffer_LargeCountAllocation(t *testing.T) {
	data := headerOnly(t, maxBufferVertices)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := ReadCompressedBuffer(bytes.NewReader(data))
	runtime.ReadMemStats(&after)

	if !errors.Is(err, ErrTruncatedBufferData) {
		t.Fatalf("got %v, want ErrTruncatedBufferData", err)
	}
	if got := after.TotalAlloc - before.TotalAlloc; got > 4<<20 {
		t.Errorf("allocated %d bytes for a header with no payload", got)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestCompressedBuffer_WriteToErrors(t *testing.T) {
	valid := func() *CompressedBuffer {
		return &CompressedBuffer{
			Positions: make([]float32, 9),
			Normals:   make([]float32, 9),
			UVs:       make([]float32, 6),
			Count:     3,
			Topology:  Triangles,
		}
	}
	shortNormals := valid()
	shortNormals.Normals = shortNormals.Normals[:6]
	wrongCount := valid()
	wrongCount.Count = 4
	negative := &CompressedBuffer{Count: -1}
	huge := &CompressedBuffer{Count: maxBufferVertices + 1}

	tests := []struct {
		name    string
		buf     *CompressedBuffer
		w       io.Writer
		wantErr error
	}{
		{"short normals", shortNormals, &bytes.Buffer{}, ErrMalformedBuffer},
		{"count mismatch", wrongCount, &bytes.Buffer{}, ErrMalformedBuffer},
		{"negative count", negative, &bytes.Buffer{}, ErrBufferTooLarge},
		{"count over limit", huge, &bytes.Buffer{}, ErrBufferTooLarge},
		{"writer failure", valid(), failingWriter{}, io.ErrClosedPipe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.buf.WriteTo(tt.w)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if out, ok := tt.w.(*bytes.Buffer); ok && out.Len() != 0 {
				t.Errorf("wrote %d bytes for a rejected buffer", out.Len())
			}
		})
	}
}
