package formats

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/Faultbox/plygeom/pkg/geometry"
)

// parsePLYBinaryBody reads every element entry from a binary body.
func parsePLYBinaryBody(ply *PLY, body []byte) error {
	var order binary.ByteOrder = binary.LittleEndian
	if ply.Format == PLYBinaryBigEndian {
		order = binary.BigEndian
	}
	r := bytes.NewReader(body)

	for _, elem := range ply.Elements {
		if err := checkBinaryElementSize(elem, r.Len()); err != nil {
			return err
		}
		for i := 0; i < elem.numEntries; i++ {
			for _, prop := range elem.properties {
				if err := readBinaryProperty(r, order, prop); err != nil {
					return fmt.Errorf("element %q entry %d property %q: %w", elem.name, i, prop.name, err)
				}
			}
		}
	}
	return nil
}

// checkBinaryElementSize rejects element counts that cannot fit the remaining body.
func checkBinaryElementSize(elem *PLYElement, remaining int) error {
	minEntrySize := 0
	for _, prop := range elem.properties {
		if prop.isList {
			minEntrySize += prop.listDataType.Size()
		} else {
			minEntrySize += prop.dataType.Size()
		}
	}
	if minEntrySize > 0 && elem.numEntries > remaining/minEntrySize {
		return fmt.Errorf("%w: element %q declares %d entries", ErrTruncatedPLYData, elem.name, elem.numEntries)
	}
	return nil
}

func readBinaryProperty(r *bytes.Reader, order binary.ByteOrder, prop *PLYProperty) error {
	if !prop.isList {
		return readBinaryValue(r, order, prop)
	}

	var raw [8]byte
	size := prop.listDataType.Size()
	if _, err := io.ReadFull(r, raw[:size]); err != nil {
		return fmt.Errorf("%w: reading list count", ErrTruncatedPLYData)
	}
	toLittleEndian(order, raw[:size])
	// float64 holds every 32-bit count exactly.
	count := int64(geometry.Decode[float64](prop.listDataType, raw[:size]))
	if count < 0 {
		return fmt.Errorf("%w: negative list count %d", ErrInvalidPLYValue, count)
	}
	if count*int64(prop.dataType.Size()) > int64(r.Len()) {
		return fmt.Errorf("%w: list of %d values", ErrTruncatedPLYData, count)
	}

	prop.appendList(int(count))
	for j := int64(0); j < count; j++ {
		if err := readBinaryValue(r, order, prop); err != nil {
			return err
		}
	}
	return nil
}

func readBinaryValue(r *bytes.Reader, order binary.ByteOrder, prop *PLYProperty) error {
	var raw [8]byte
	size := prop.dataType.Size()
	if _, err := io.ReadFull(r, raw[:size]); err != nil {
		return fmt.Errorf("%w: reading value", ErrTruncatedPLYData)
	}
	toLittleEndian(order, raw[:size])
	prop.data = append(prop.data, raw[:size]...)
	return nil
}

// toLittleEndian reverses b in place when the source order is big-endian.
func toLittleEndian(order binary.ByteOrder, b []byte) {
	if order != binary.BigEndian {
		return
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// parsePLYASCIIBody reads every element entry from a whitespace separated body.
func parsePLYASCIIBody(ply *PLY, body []byte) error {
	tokens := bytes.Fields(body)
	pos := 0

	next := func() ([]byte, error) {
		if pos >= len(tokens) {
			return nil, fmt.Errorf("%w: unexpected end of body", ErrTruncatedPLYData)
		}
		tok := tokens[pos]
		pos++
		return tok, nil
	}

	for _, elem := range ply.Elements {
		for i := 0; i < elem.numEntries; i++ {
			for _, prop := range elem.properties {
				if err := readASCIIProperty(next, prop); err != nil {
					return fmt.Errorf("element %q entry %d property %q: %w", elem.name, i, prop.name, err)
				}
			}
		}
	}
	return nil
}

func readASCIIProperty(next func() ([]byte, error), prop *PLYProperty) error {
	if !prop.isList {
		tok, err := next()
		if err != nil {
			return err
		}
		return appendASCIIValue(prop, tok)
	}

	tok, err := next()
	if err != nil {
		return err
	}
	count, err := strconv.Atoi(string(tok))
	if err != nil || count < 0 {
		return fmt.Errorf("%w: list count %q", ErrInvalidPLYValue, tok)
	}

	prop.appendList(count)
	for j := 0; j < count; j++ {
		tok, err := next()
		if err != nil {
			return err
		}
		if err := appendASCIIValue(prop, tok); err != nil {
			return err
		}
	}
	return nil
}

// appendASCIIValue parses tok as the property type and stores it little-endian.
func appendASCIIValue(prop *PLYProperty, tok []byte) error {
	var raw [8]byte
	dt := prop.dataType
	s := string(tok)

	switch dt {
	case geometry.DTFloat32, geometry.DTFloat64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidPLYValue, s)
		}
		if dt == geometry.DTFloat32 {
			geometry.Encode(raw[:], float32(f))
		} else {
			geometry.Encode(raw[:], f)
		}
	default:
		v, err := parseASCIIInteger(s)
		if err != nil {
			return err
		}
		if !integerFits(dt, v) {
			return fmt.Errorf("%w: %q out of range for %v", ErrInvalidPLYValue, s, dt)
		}
		encodeInteger(raw[:], dt, v)
	}

	prop.data = append(prop.data, raw[:dt.Size()]...)
	return nil
}

// parseASCIIInteger accepts plain integers and integral floats such as "3.0".
func parseASCIIInteger(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidPLYValue, s)
	}
	return int64(f), nil
}

func integerFits(dt geometry.DataType, v int64) bool {
	switch dt {
	case geometry.DTInt8:
		return v >= math.MinInt8 && v <= math.MaxInt8
	case geometry.DTUint8:
		return v >= 0 && v <= math.MaxUint8
	case geometry.DTInt16:
		return v >= math.MinInt16 && v <= math.MaxInt16
	case geometry.DTUint16:
		return v >= 0 && v <= math.MaxUint16
	case geometry.DTInt32:
		return v >= math.MinInt32 && v <= math.MaxInt32
	case geometry.DTUint32:
		return v >= 0 && v <= math.MaxUint32
	default:
		return false
	}
}

func encodeInteger(b []byte, dt geometry.DataType, v int64) {
	switch dt {
	case geometry.DTInt8:
		geometry.Encode(b, int8(v))
	case geometry.DTUint8:
		geometry.Encode(b, uint8(v))
	case geometry.DTInt16:
		geometry.Encode(b, int16(v))
	case geometry.DTUint16:
		geometry.Encode(b, uint16(v))
	case geometry.DTInt32:
		geometry.Encode(b, int32(v))
	case geometry.DTUint32:
		geometry.Encode(b, uint32(v))
	}
}
