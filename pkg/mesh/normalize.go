package mesh

import (
	"fmt"
	gomath "math"
)

// Normalize recenters the vertices about their bounding box center and scales
// them uniformly so the largest box side becomes targetRadius. Normals and UVs
// are untouched. The mesh is not modified when an error is returned.
func Normalize(m *Mesh, targetRadius float32) error {
	r := float64(targetRadius)
	if !(r > 0) || gomath.IsInf(r, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidRadius, targetRadius)
	}
	if len(m.Vertices) == 0 {
		return fmt.Errorf("%w: mesh has no vertices", ErrEmptyMeshNormalization)
	}

	b := ComputeBounds(m.Vertices)
	if !b.Min.IsFinite() || !b.Max.IsFinite() {
		return ErrNonFiniteBounds
	}

	largest := b.LargestExtent()
	if largest == 0 {
		return fmt.Errorf("%w: bounding box has zero extent", ErrEmptyMeshNormalization)
	}
	if gomath.IsInf(float64(largest), 0) {
		return fmt.Errorf("%w: extent overflows float32", ErrNonFiniteBounds)
	}

	center := b.Center()
	if !center.IsFinite() {
		return fmt.Errorf("%w: center overflows float32", ErrNonFiniteBounds)
	}
	scale := targetRadius / largest
	if gomath.IsInf(float64(scale), 0) {
		return fmt.Errorf("%w: scale %v/%v overflows float32", ErrNonFiniteBounds, targetRadius, largest)
	}
	for i, v := range m.Vertices {
		m.Vertices[i] = v.Sub(center).Scale(scale)
	}
	return nil
}
