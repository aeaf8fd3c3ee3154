package viewer

import (
	"fmt"

	"github.com/Faultbox/trimesh/internal/config"
	"github.com/Faultbox/trimesh/pkg/mesh"
)

// Prepared is a mesh made ready for upload. Exactly one of Buffer and
// Vertices is set, depending on the consumption mode.
type Prepared struct {
	Buffer   *mesh.CompressedBuffer
	Vertices []mesh.Vertex
	Topology mesh.Topology
	Bounds   mesh.Bounds
	HasUVs   bool
}

// Prepare runs the CPU side of the pipeline on m: normalize, fill UVs and
// pack or interleave. m is modified in place.
func Prepare(m *mesh.Mesh, p config.PipelineConfig, interleaved bool) (*Prepared, error) {
	topology, err := mesh.ParseTopology(p.Topology)
	if err != nil {
		return nil, err
	}

	if p.Normalize {
		if err := mesh.Normalize(m, p.TargetRadius); err != nil {
			return nil, fmt.Errorf("normalizing: %w", err)
		}
	}

	out := &Prepared{
		Topology: topology,
		Bounds:   mesh.ComputeBounds(m.Vertices),
		HasUVs:   m.HasUVs(),
	}
	if p.FillMissingUVs {
		m.FillMissingUVs()
	}

	if interleaved {
		out.Vertices, err = mesh.Interleave(m)
	} else {
		out.Buffer, err = mesh.Pack(m, topology)
	}
	if err != nil {
		return nil, fmt.Errorf("packing: %w", err)
	}
	return out, nil
}
