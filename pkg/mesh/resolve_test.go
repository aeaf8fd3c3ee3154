package mesh

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/trimesh/pkg/formats"
	"github.com/Faultbox/trimesh/pkg/math"
)

const triangleOBJ = "v 0 0 0\nv 1 0 0\nv 1 1 0\n" +
	"vn 0 0 1\nvn 0 0 1\nvn 0 0 1\n" +
	"vt 0 0\nvt 1 0\nvt 1 1\n" +
	"f 1/1/1 2/2/2 3/3/3\n"

// quadOBJ has distinct values per corner so the fan split is observable.
const quadOBJ = "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\n" +
	"vn 1 0 0\nvn 0 1 0\nvn 0 0 1\nvn 1 1 1\n" +
	"vt 0 0\nvt 1 0\nvt 1 1\nvt 0 1\n" +
	"f 1/1/1 2/2/2 3/3/3 4/4/4\n"

func mustLoad(t *testing.T, src string, opts ...formats.ParseOption) (*Mesh, []formats.Diagnostic) {
	t.Helper()
	m, diags, err := LoadOBJ([]byte(src), opts...)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	return m, diags
}

func TestResolve_Triangle(t *testing.T) {
	m, diags := mustLoad(t, triangleOBJ)

	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}

	wantV := []math.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}
	wantUV := []math.Vec2{{0, 0}, {1, 0}, {1, 1}}
	if len(m.Vertices) != 3 || len(m.Normals) != 3 || len(m.UVs) != 3 {
		t.Fatalf("lengths = %d/%d/%d, want 3/3/3", len(m.Vertices), len(m.Normals), len(m.UVs))
	}
	for i := range wantV {
		if m.Vertices[i] != wantV[i] {
			t.Errorf("vertex %d = %v, want %v", i, m.Vertices[i], wantV[i])
		}
		if m.Normals[i] != (math.Vec3{0, 0, 1}) {
			t.Errorf("normal %d = %v, want (0,0,1)", i, m.Normals[i])
		}
		if m.UVs[i] != wantUV[i] {
			t.Errorf("uv %d = %v, want %v", i, m.UVs[i], wantUV[i])
		}
	}
}

func TestResolve_TriangleCornerOrder(t *testing.T) {
	// Corners reference the pools out of declaration order.
	src := strings.Replace(quadOBJ, "f 1/1/1 2/2/2 3/3/3 4/4/4", "f 4/2/3 1/4/2 3/1/1", 1)
	m, _ := mustLoad(t, src)

	obj, _ := formats.ParseOBJ([]byte(src))
	want := []formats.Corner{{4, 2, 3}, {1, 4, 2}, {3, 1, 1}}
	for i, c := range want {
		if m.Vertices[i] != obj.Positions[c.Vertex-1] {
			t.Errorf("vertex %d = %v, want positions[%d]", i, m.Vertices[i], c.Vertex-1)
		}
		if m.UVs[i] != obj.UVs[c.UV-1] {
			t.Errorf("uv %d = %v, want uvs[%d]", i, m.UVs[i], c.UV-1)
		}
		if m.Normals[i] != obj.Normals[c.Normal-1] {
			t.Errorf("normal %d = %v, want normals[%d]", i, m.Normals[i], c.Normal-1)
		}
	}
}

func TestResolve_QuadFanSplit(t *testing.T) {
	m, _ := mustLoad(t, quadOBJ)

	obj, _ := formats.ParseOBJ([]byte(quadOBJ))
	// A,B,C,D becomes A-B-C and A-C-D.
	order := []int{0, 1, 2, 0, 2, 3}
	if len(m.Vertices) != len(order) {
		t.Fatalf("expected %d vertices, got %d", len(order), len(m.Vertices))
	}
	for i, c := range order {
		if m.Vertices[i] != obj.Positions[c] {
			t.Errorf("vertex %d = %v, want corner %d %v", i, m.Vertices[i], c, obj.Positions[c])
		}
		if m.Normals[i] != obj.Normals[c] {
			t.Errorf("normal %d = %v, want corner %d %v", i, m.Normals[i], c, obj.Normals[c])
		}
		if m.UVs[i] != obj.UVs[c] {
			t.Errorf("uv %d = %v, want corner %d %v", i, m.UVs[i], c, obj.UVs[c])
		}
	}
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", m.TriangleCount())
	}
}

func TestResolve_MixedQuadsAndTriangles(t *testing.T) {
	src := quadOBJ + "f 1/1/1 3/3/3 4/4/4\n"
	m, diags := mustLoad(t, src)

	if len(m.Vertices) != 9 {
		t.Errorf("expected 9 vertices, got %d", len(m.Vertices))
	}
	if len(diags) != 1 || diags[0].Kind != formats.TopologyMismatch {
		t.Errorf("expected one TopologyMismatch, got %v", diags)
	}
}

func TestResolve_NoUVs(t *testing.T) {
	src := triangleOBJ + "f 1//1 2//2 3//3\n"
	m, _ := mustLoad(t, src)

	if len(m.Vertices) != 6 || len(m.Normals) != 6 {
		t.Errorf("lengths = %d/%d, want 6/6", len(m.Vertices), len(m.Normals))
	}
	if len(m.UVs) != 0 {
		t.Errorf("expected no UVs once a v//n face is seen, got %d", len(m.UVs))
	}
	if m.HasUVs() {
		t.Error("HasUVs() should be false")
	}
}

func TestResolve_FailOpenTriangleUsesZeroValue(t *testing.T) {
	src := strings.Replace(triangleOBJ, "f 1/1/1 2/2/2 3/3/3", "f 1/1/1 2/2/2 9/3/3", 1)
	m, diags := mustLoad(t, src)

	if len(diags) == 0 {
		t.Fatal("expected a diagnostic")
	}
	if len(m.Vertices) != 3 {
		t.Fatalf("expected the triangle to be resolved, got %d vertices", len(m.Vertices))
	}
	if m.Vertices[2] != (math.Vec3{}) {
		t.Errorf("out-of-range vertex resolved to %v, want zero", m.Vertices[2])
	}
	if m.UVs[2] != (math.Vec2{X: 1, Y: 1}) {
		t.Errorf("in-range uv of the same corner = %v, want (1,1)", m.UVs[2])
	}
}

func TestResolve_StrictDropsFace(t *testing.T) {
	src := strings.Replace(triangleOBJ, "f 1/1/1 2/2/2 3/3/3", "f 1/1/1 2/2/2 9/3/3", 1)
	m, _ := mustLoad(t, src, formats.WithIndexPolicy(formats.PolicyStrict))

	if len(m.Vertices) != 0 {
		t.Errorf("expected strict policy to drop the face, got %d vertices", len(m.Vertices))
	}
}

func TestLoadOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	if err := os.WriteFile(path, []byte(quadOBJ), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	m, diags, err := LoadOBJFile(path)
	if err != nil {
		t.Fatalf("LoadOBJFile: %v", err)
	}
	if len(diags) != 0 || len(m.Vertices) != 6 {
		t.Errorf("diagnostics=%v vertices=%d", diags, len(m.Vertices))
	}

	if _, _, err := LoadOBJFile(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	sources := []string{triangleOBJ, quadOBJ, "# nothing\n"}
	var paths []string
	for i, src := range sources {
		p := filepath.Join(dir, string(rune('a'+i))+".obj")
		if err := os.WriteFile(p, []byte(src), 0644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}
		paths = append(paths, p)
	}

	results, err := LoadAll(context.Background(), paths, 2)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	wantVerts := []int{3, 6, 0}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Errorf("result %d path = %s, want %s", i, r.Path, paths[i])
		}
		if r.Mesh.VertexCount() != wantVerts[i] {
			t.Errorf("result %d vertices = %d, want %d", i, r.Mesh.VertexCount(), wantVerts[i])
		}
	}
	if len(results[2].Diagnostics) != 1 {
		t.Errorf("expected the comment line to be reported, got %v", results[2].Diagnostics)
	}

	paths = append(paths, filepath.Join(dir, "missing.obj"))
	if _, err := LoadAll(context.Background(), paths, 2); err == nil {
		t.Error("expected error when one file is missing")
	}
}

func TestLoadAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := LoadAll(ctx, []string{"a.obj", "b.obj"}, 1); err == nil {
		t.Error("expected error from cancelled context")
	}
}
