package mesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteOBJ writes the mesh as OBJ text that ParseOBJ reads back to the same
// vertex stream. Every vertex gets its own v/vn/vt line; faces are triangles
// in "v/t/n" form, or "v//n" when the mesh has no UVs.
func (m *Mesh) WriteOBJ(w io.Writer) error {
	if len(m.Normals) != len(m.Vertices) || (len(m.UVs) != 0 && len(m.UVs) != len(m.Vertices)) {
		return &ArityError{Vertices: len(m.Vertices), Normals: len(m.Normals), UVs: len(m.UVs)}
	}

	bw := bufio.NewWriter(w)
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", ftoa(v.X), ftoa(v.Y), ftoa(v.Z))
	}
	for _, uv := range m.UVs {
		fmt.Fprintf(bw, "vt %s %s\n", ftoa(uv.X), ftoa(uv.Y))
	}
	for _, n := range m.Normals {
		fmt.Fprintf(bw, "vn %s %s %s\n", ftoa(n.X), ftoa(n.Y), ftoa(n.Z))
	}

	withUV := len(m.UVs) > 0
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		bw.WriteString("f")
		for j := 1; j <= 3; j++ {
			idx := i + j
			if withUV {
				fmt.Fprintf(bw, " %d/%d/%d", idx, idx, idx)
			} else {
				fmt.Fprintf(bw, " %d//%d", idx, idx)
			}
		}
		bw.WriteString("\n")
	}

	return bw.Flush()
}

// ftoa formats f with the fewest digits that parse back to the same float32.
func ftoa(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
