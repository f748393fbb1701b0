package geometry

import (
	"bytes"
	"fmt"
)

// AttributeType is the semantic meaning of an attribute.
type AttributeType int

// Attribute semantics.
const (
	InvalidAttribute AttributeType = iota - 1
	Position
	Normal
	Color
	FDC   // color DC coefficients (f_dc_*)
	FRest // higher order color coefficients (f_rest_*)
	Opacity
	Scale
	Rotation
)

// String returns a human-readable attribute type name.
func (t AttributeType) String() string {
	switch t {
	case Position:
		return "Position"
	case Normal:
		return "Normal"
	case Color:
		return "Color"
	case FDC:
		return "FDC"
	case FRest:
		return "FRest"
	case Opacity:
		return "Opacity"
	case Scale:
		return "Scale"
	case Rotation:
		return "Rotation"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// Attribute stores one interleaved value per point.
//
// Values live in a flat buffer of ByteStride bytes each. Points map to
// values through an index map that starts as the identity and is rewritten
// by deduplication.
type Attribute struct {
	id            int
	attributeType AttributeType
	numComponents int
	dataType      DataType
	normalized    bool
	byteStride    int

	buffer   []byte
	indexMap []uint32 // point index -> value index; nil means identity
}

// NewAttribute creates an attribute with a tightly packed stride.
func NewAttribute(t AttributeType, numComponents int, dt DataType, normalized bool) *Attribute {
	return &Attribute{
		id:            -1,
		attributeType: t,
		numComponents: numComponents,
		dataType:      dt,
		normalized:    normalized,
		byteStride:    numComponents * dt.Size(),
	}
}

// ID returns the id assigned when the attribute was added to a point cloud.
func (a *Attribute) ID() int { return a.id }

// Type returns the attribute semantic.
func (a *Attribute) Type() AttributeType { return a.attributeType }

// NumComponents returns the number of components per value.
func (a *Attribute) NumComponents() int { return a.numComponents }

// DataType returns the primitive type of each component.
func (a *Attribute) DataType() DataType { return a.dataType }

// Normalized reports whether integer components map to [0, 1].
func (a *Attribute) Normalized() bool { return a.normalized }

// ByteStride returns the size of one value in bytes.
func (a *Attribute) ByteStride() int { return a.byteStride }

// Buffer returns the backing value buffer.
func (a *Attribute) Buffer() []byte { return a.buffer }

// NumValues returns the number of stored values.
func (a *Attribute) NumValues() int {
	if a.byteStride == 0 {
		return 0
	}
	return len(a.buffer) / a.byteStride
}

// Reset allocates zeroed storage for n values and restores the identity mapping.
func (a *Attribute) Reset(n int) {
	a.buffer = make([]byte, n*a.byteStride)
	a.indexMap = nil
}

// SetAttributeValue copies one value into slot i.
func (a *Attribute) SetAttributeValue(i int, value []byte) {
	copy(a.buffer[i*a.byteStride:(i+1)*a.byteStride], value)
}

// AttributeValue returns the bytes of value slot i. The slice aliases the buffer.
func (a *Attribute) AttributeValue(i int) []byte {
	return a.buffer[i*a.byteStride : (i+1)*a.byteStride]
}

// MappedIndex returns the value index used by the given point.
func (a *Attribute) MappedIndex(point int) int {
	if a.indexMap == nil {
		return point
	}
	return int(a.indexMap[point])
}

// IsMappingIdentity reports whether every point owns the value at its own index.
func (a *Attribute) IsMappingIdentity() bool { return a.indexMap == nil }

// SetValue encodes vals as value slot i. T must match the attribute data type.
func SetValue[T Number](a *Attribute, i int, vals []T) {
	size := a.dataType.Size()
	off := i * a.byteStride
	for c := 0; c < a.numComponents && c < len(vals); c++ {
		Encode(a.buffer[off+c*size:], vals[c])
	}
}

// Value decodes value slot i into out, converting each component to T.
func Value[T Number](a *Attribute, i int, out []T) {
	size := a.dataType.Size()
	off := i * a.byteStride
	for c := 0; c < a.numComponents && c < len(out); c++ {
		out[c] = Decode[T](a.dataType, a.buffer[off+c*size:])
	}
}

// PointValue decodes the value used by point p into out.
func PointValue[T Number](a *Attribute, p int, out []T) {
	Value(a, a.MappedIndex(p), out)
}

// deduplicateValues merges identical value tuples and rewrites the point mapping.
// It returns the number of unique values.
func (a *Attribute) deduplicateValues(numPoints int) int {
	numValues := a.NumValues()
	unique := make(map[string]uint32, numValues)
	remap := make([]uint32, numValues)
	compacted := make([]byte, 0, len(a.buffer))

	for v := 0; v < numValues; v++ {
		value := a.AttributeValue(v)
		key := string(value)
		if id, ok := unique[key]; ok {
			remap[v] = id
			continue
		}
		id := uint32(len(unique))
		unique[key] = id
		remap[v] = id
		compacted = append(compacted, value...)
	}

	indexMap := make([]uint32, numPoints)
	for p := 0; p < numPoints; p++ {
		indexMap[p] = remap[a.MappedIndex(p)]
	}
	a.buffer = bytes.Clone(compacted)
	a.indexMap = indexMap
	return len(unique)
}
