package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/trimesh/pkg/math"
	"github.com/Faultbox/trimesh/pkg/mesh"
)

func TestBoundsWireframe(t *testing.T) {
	b := mesh.Bounds{
		Min: math.Vec3{X: -1, Y: -2, Z: -3},
		Max: math.Vec3{X: 1, Y: 2, Z: 3},
	}
	points := BoundsWireframe(b, 0.5)

	if len(points) != BoundsWireframeVertexCount {
		t.Fatalf("got %d points, want %d", len(points), BoundsWireframeVertexCount)
	}

	got := mesh.ComputeBounds(points)
	want := mesh.Bounds{
		Min: math.Vec3{X: -1.5, Y: -2.5, Z: -3.5},
		Max: math.Vec3{X: 1.5, Y: 2.5, Z: 3.5},
	}
	if got != want {
		t.Errorf("padded bounds = %+v, want %+v", got, want)
	}

	// Every segment is axis-aligned: exactly one coordinate changes.
	for i := 0; i < len(points); i += 2 {
		d := points[i+1].Sub(points[i])
		changed := 0
		for _, c := range d.Array() {
			if c != 0 {
				changed++
			}
		}
		if changed != 1 {
			t.Errorf("segment %d from %+v to %+v is not an edge", i/2, points[i], points[i+1])
		}
	}
}

func TestBoundsBuffer(t *testing.T) {
	buf := BoundsBuffer(mesh.Bounds{Max: math.Vec3{X: 1, Y: 1, Z: 1}}, 0)

	if buf.Count != BoundsWireframeVertexCount {
		t.Errorf("Count = %d, want %d", buf.Count, BoundsWireframeVertexCount)
	}
	if buf.Topology != mesh.Lines {
		t.Errorf("Topology = %v, want lines", buf.Topology)
	}
	if len(buf.Normals) != 3*buf.Count || len(buf.UVs) != 2*buf.Count {
		t.Errorf("attribute arrays %d/%d do not match count", len(buf.Normals), len(buf.UVs))
	}
}

func TestCaptureFromPixels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "trimesh")
	sc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }

	// 1x2 image: bottom row red, top row blue, stored bottom-up.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	path, err := sc.CaptureFromPixels(pixels, 1, 2)
	if err != nil {
		t.Fatalf("CaptureFromPixels: %v", err)
	}
	if want := filepath.Join(dir, "trimesh_2024-03-01_12-30-00.png"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if r, _, b, _ := img.At(0, 0).RGBA(); r != 0 || b == 0 {
		t.Errorf("top pixel should be blue after flip")
	}
	if r, _, b, _ := img.At(0, 1).RGBA(); r == 0 || b != 0 {
		t.Errorf("bottom pixel should be red after flip")
	}
}

func TestCaptureFromPixelsSizeMismatch(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "x")
	if _, err := sc.CaptureFromPixels(make([]byte, 7), 1, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}
