package mesh

import (
	"errors"
	"fmt"
)

// Precondition errors. These are returned to the caller and never downgraded
// to diagnostics.
var (
	ErrEmptyMeshNormalization = errors.New("cannot normalize empty or zero-extent mesh")
	ErrNonFiniteBounds        = errors.New("mesh bounds are not finite")
	ErrInvalidRadius          = errors.New("target radius must be positive and finite")
	ErrAttributeArity         = errors.New("mesh attribute counts differ")
)

// ArityError reports the attribute lengths of a mesh that cannot be packed.
type ArityError struct {
	Vertices int
	Normals  int
	UVs      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%v: %d vertices, %d normals, %d uvs", ErrAttributeArity, e.Vertices, e.Normals, e.UVs)
}

// Is makes errors.Is(err, ErrAttributeArity) match.
func (e *ArityError) Is(target error) bool {
	return target == ErrAttributeArity
}

func checkArity(m *Mesh) error {
	if len(m.Normals) != len(m.Vertices) || len(m.UVs) != len(m.Vertices) {
		return &ArityError{Vertices: len(m.Vertices), Normals: len(m.Normals), UVs: len(m.UVs)}
	}
	return nil
}
