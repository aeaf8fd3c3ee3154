package mesh

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Faultbox/trimesh/pkg/math"
)

func TestWriteOBJ_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"with uvs", quadOBJ},
		{"without uvs", triangleOBJ + "f 1//1 2//2 3//3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := mustLoad(t, tt.src)
			if err := Normalize(m, 0.7); err != nil {
				t.Fatalf("Normalize: %v", err)
			}

			var out bytes.Buffer
			if err := m.WriteOBJ(&out); err != nil {
				t.Fatalf("WriteOBJ: %v", err)
			}

			back, diags := mustLoad(t, out.String())
			if len(diags) != 0 {
				t.Fatalf("re-parse produced diagnostics: %v", diags)
			}
			if len(back.Vertices) != len(m.Vertices) || len(back.UVs) != len(m.UVs) {
				t.Fatalf("lengths %d/%d, want %d/%d", len(back.Vertices), len(back.UVs), len(m.Vertices), len(m.UVs))
			}
			for i := range m.Vertices {
				if back.Vertices[i] != m.Vertices[i] || back.Normals[i] != m.Normals[i] {
					t.Errorf("vertex %d: %v/%v, want %v/%v", i, back.Vertices[i], back.Normals[i], m.Vertices[i], m.Normals[i])
				}
			}
		})
	}
}

func TestWriteOBJ_Format(t *testing.T) {
	m := &Mesh{
		Vertices: []math.Vec3{{X: 0.5}, {Y: 1}, {Z: -2}},
		Normals:  []math.Vec3{{Z: 1}, {Z: 1}, {Z: 1}},
	}

	var out bytes.Buffer
	if err := m.WriteOBJ(&out); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}
	got := out.String()
	for _, want := range []string{"v 0.5 0 0\n", "vn 0 0 1\n", "f 1//1 2//2 3//3\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "vt ") {
		t.Error("UV-less mesh should not write vt lines")
	}
}

func TestWriteOBJ_Arity(t *testing.T) {
	m := &Mesh{Vertices: make([]math.Vec3, 3), Normals: make([]math.Vec3, 1)}
	if err := m.WriteOBJ(&bytes.Buffer{}); !errors.Is(err, ErrAttributeArity) {
		t.Errorf("got %v, want ErrAttributeArity", err)
	}
}
