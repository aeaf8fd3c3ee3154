package mesh

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/trimesh/pkg/formats"
	"github.com/Faultbox/trimesh/pkg/math"
)

// Corner orders for the emitted triangles. Quads use a fixed fan split.
var (
	triangleOrder = []int{0, 1, 2}
	quadOrder     = []int{0, 1, 2, 0, 2, 3}
)

// Resolve copies pool values for every face corner into a flat triangle list.
//
// Bounds were checked while parsing. A face kept despite a bad reference
// resolves that reference to the zero value.
func Resolve(obj *formats.OBJ) *Mesh {
	n := obj.OutputVertexCount()
	m := &Mesh{
		Vertices: make([]math.Vec3, 0, n),
		Normals:  make([]math.Vec3, 0, n),
	}
	if obj.HasUVs {
		m.UVs = make([]math.Vec2, 0, n)
	}

	for _, face := range obj.Faces {
		order := triangleOrder
		if face.IsQuad() {
			order = quadOrder
		}
		for _, ci := range order {
			c := face.Corners[ci]
			m.Vertices = append(m.Vertices, lookup(obj.Positions, c.Vertex))
			m.Normals = append(m.Normals, lookup(obj.Normals, c.Normal))
			if obj.HasUVs {
				m.UVs = append(m.UVs, lookup(obj.UVs, c.UV))
			}
		}
	}

	return m
}

// lookup returns pool[ref-1], or the zero value when ref is outside the pool.
func lookup[T any](pool []T, ref int) T {
	if ref < 1 || ref > len(pool) {
		var zero T
		return zero
	}
	return pool[ref-1]
}

// LoadOBJ parses and resolves OBJ text. The error is non-nil only when the
// input could not be read; parse problems are returned as diagnostics.
func LoadOBJ(data []byte, opts ...formats.ParseOption) (*Mesh, []formats.Diagnostic, error) {
	obj, err := formats.ParseOBJ(data, opts...)
	if err != nil {
		return nil, nil, err
	}
	return Resolve(obj), obj.Diagnostics, nil
}

// LoadOBJFile parses and resolves an OBJ file from disk.
func LoadOBJFile(path string, opts ...formats.ParseOption) (*Mesh, []formats.Diagnostic, error) {
	obj, err := formats.ParseOBJFile(path, opts...)
	if err != nil {
		return nil, nil, err
	}
	return Resolve(obj), obj.Diagnostics, nil
}

// LoadResult is the outcome of loading one file with LoadAll.
type LoadResult struct {
	Path        string
	Mesh        *Mesh
	Diagnostics []formats.Diagnostic
}

// LoadAll loads independent files with at most workers meshes in flight.
// Results are returned in the order of paths. The first read error cancels
// the remaining loads.
func LoadAll(ctx context.Context, paths []string, workers int, opts ...formats.ParseOption) ([]LoadResult, error) {
	results := make([]LoadResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, diags, err := LoadOBJFile(path, opts...)
			if err != nil {
				return fmt.Errorf("loading %s: %w", path, err)
			}
			results[i] = LoadResult{Path: path, Mesh: m, Diagnostics: diags}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
