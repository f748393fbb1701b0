package formats

import "github.com/Faultbox/plygeom/pkg/geometry"

// PLYPropertyReader reads values of a property converted to T.
//
// Index i addresses the i-th stored value: the entry index for scalar
// properties, or ListEntryOffset(entry)+k for list properties.
type PLYPropertyReader[T geometry.Number] struct {
	prop *PLYProperty
	size int
}

// NewPLYPropertyReader creates a reader over prop.
func NewPLYPropertyReader[T geometry.Number](prop *PLYProperty) *PLYPropertyReader[T] {
	return &PLYPropertyReader[T]{
		prop: prop,
		size: prop.dataType.Size(),
	}
}

// ReadValue returns value i.
func (r *PLYPropertyReader[T]) ReadValue(i int) T {
	off := i * r.size
	return geometry.Decode[T](r.prop.dataType, r.prop.data[off:off+r.size])
}
