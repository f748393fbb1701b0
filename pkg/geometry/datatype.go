// Package geometry provides point cloud and triangle mesh containers with
// interleaved, typed per-point attributes.
package geometry

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DataType identifies the primitive type of a stored value.
type DataType int

// Supported primitive types.
const (
	DTInvalid DataType = iota
	DTInt8
	DTUint8
	DTInt16
	DTUint16
	DTInt32
	DTUint32
	DTFloat32
	DTFloat64
)

// Size returns the size of one value in bytes, or 0 for DTInvalid.
func (d DataType) Size() int {
	switch d {
	case DTInt8, DTUint8:
		return 1
	case DTInt16, DTUint16:
		return 2
	case DTInt32, DTUint32, DTFloat32:
		return 4
	case DTFloat64:
		return 8
	default:
		return 0
	}
}

// String returns the type name.
func (d DataType) String() string {
	switch d {
	case DTInt8:
		return "int8"
	case DTUint8:
		return "uint8"
	case DTInt16:
		return "int16"
	case DTUint16:
		return "uint16"
	case DTInt32:
		return "int32"
	case DTUint32:
		return "uint32"
	case DTFloat32:
		return "float32"
	case DTFloat64:
		return "float64"
	default:
		return fmt.Sprintf("Unknown(%d)", int(d))
	}
}

// Number is the closed set of primitive kinds values can be read as.
type Number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~float32 | ~float64
}

// DataTypeOf returns the DataType matching T.
func DataTypeOf[T Number]() DataType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return DTInt8
	case uint8:
		return DTUint8
	case int16:
		return DTInt16
	case uint16:
		return DTUint16
	case int32:
		return DTInt32
	case uint32:
		return DTUint32
	case float32:
		return DTFloat32
	case float64:
		return DTFloat64
	default:
		return DTInvalid
	}
}

// Decode reads one little-endian value of type dt from b and converts it to T.
// b must hold at least dt.Size() bytes.
func Decode[T Number](dt DataType, b []byte) T {
	switch dt {
	case DTInt8:
		return T(int8(b[0]))
	case DTUint8:
		return T(b[0])
	case DTInt16:
		return T(int16(binary.LittleEndian.Uint16(b)))
	case DTUint16:
		return T(binary.LittleEndian.Uint16(b))
	case DTInt32:
		return T(int32(binary.LittleEndian.Uint32(b)))
	case DTUint32:
		return T(binary.LittleEndian.Uint32(b))
	case DTFloat32:
		return T(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case DTFloat64:
		return T(math.Float64frombits(binary.LittleEndian.Uint64(b)))
	default:
		return 0
	}
}

// Encode writes v into b as a little-endian value of T's own type.
// b must hold at least DataTypeOf[T]().Size() bytes.
func Encode[T Number](b []byte, v T) {
	switch x := any(v).(type) {
	case int8:
		b[0] = byte(x)
	case uint8:
		b[0] = x
	case int16:
		binary.LittleEndian.PutUint16(b, uint16(x))
	case uint16:
		binary.LittleEndian.PutUint16(b, x)
	case int32:
		binary.LittleEndian.PutUint32(b, uint32(x))
	case uint32:
		binary.LittleEndian.PutUint32(b, x)
	case float32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(x))
	case float64:
		binary.LittleEndian.PutUint64(b, math.Float64bits(x))
	}
}
