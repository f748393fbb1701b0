package formats

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/plygeom/pkg/encoding"
	"github.com/Faultbox/plygeom/pkg/geometry"
)

// PLY format errors.
var (
	ErrInvalidPLYMagic      = errors.New("invalid PLY magic: expected 'ply'")
	ErrUnsupportedPLYFormat = errors.New("unsupported PLY format")
	ErrInvalidPLYHeader     = errors.New("invalid PLY header")
	ErrTruncatedPLYData     = errors.New("truncated PLY data")
	ErrInvalidPLYValue      = errors.New("invalid PLY value")
)

// PLYFormat is the body encoding declared in the header.
type PLYFormat int

// Body encodings.
const (
	PLYASCII PLYFormat = iota
	PLYBinaryLittleEndian
	PLYBinaryBigEndian
)

// String returns the header keyword of the format.
func (f PLYFormat) String() string {
	switch f {
	case PLYASCII:
		return "ascii"
	case PLYBinaryLittleEndian:
		return "binary_little_endian"
	case PLYBinaryBigEndian:
		return "binary_big_endian"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

func parsePLYFormat(s string) (PLYFormat, error) {
	switch s {
	case "ascii":
		return PLYASCII, nil
	case "binary_little_endian":
		return PLYBinaryLittleEndian, nil
	case "binary_big_endian":
		return PLYBinaryBigEndian, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedPLYFormat, s)
	}
}

// parsePLYType maps both the classic and the sized PLY type names.
func parsePLYType(s string) (geometry.DataType, error) {
	switch s {
	case "char", "int8":
		return geometry.DTInt8, nil
	case "uchar", "uint8":
		return geometry.DTUint8, nil
	case "short", "int16":
		return geometry.DTInt16, nil
	case "ushort", "uint16":
		return geometry.DTUint16, nil
	case "int", "int32":
		return geometry.DTInt32, nil
	case "uint", "uint32":
		return geometry.DTUint32, nil
	case "float", "float32":
		return geometry.DTFloat32, nil
	case "double", "float64":
		return geometry.DTFloat64, nil
	default:
		return geometry.DTInvalid, fmt.Errorf("%w: unknown property type %q", ErrInvalidPLYHeader, s)
	}
}

// PLYProperty is one named, typed column of an element.
//
// Values are stored little-endian regardless of the file encoding. List
// properties keep every entry's values back to back and record where each
// entry starts and how many values it has.
type PLYProperty struct {
	name         string
	dataType     geometry.DataType
	isList       bool
	listDataType geometry.DataType

	data        []byte
	listOffsets []int
	listCounts  []int
}

// Name returns the property name.
func (p *PLYProperty) Name() string { return p.name }

// DataType returns the type of the stored values.
func (p *PLYProperty) DataType() geometry.DataType { return p.dataType }

// IsList reports whether each entry holds a variable-length list.
func (p *PLYProperty) IsList() bool { return p.isList }

// ListDataType returns the type of the per-entry count of a list property.
func (p *PLYProperty) ListDataType() geometry.DataType { return p.listDataType }

// NumValues returns the total number of stored values.
func (p *PLYProperty) NumValues() int { return len(p.data) / p.dataType.Size() }

// ListEntryOffset returns the index of the first value of list entry i.
func (p *PLYProperty) ListEntryOffset(i int) int { return p.listOffsets[i] }

// ListEntryNumValues returns the number of values in list entry i.
func (p *PLYProperty) ListEntryNumValues(i int) int { return p.listCounts[i] }

func (p *PLYProperty) appendList(count int) {
	p.listOffsets = append(p.listOffsets, p.NumValues())
	p.listCounts = append(p.listCounts, count)
}

// PLYElement is a named group of entries sharing the same properties.
type PLYElement struct {
	name       string
	numEntries int
	properties []*PLYProperty
	byName     map[string]int
}

// Name returns the element name.
func (e *PLYElement) Name() string { return e.name }

// NumEntries returns the number of entries.
func (e *PLYElement) NumEntries() int { return e.numEntries }

// Properties returns the properties in header order.
func (e *PLYElement) Properties() []*PLYProperty { return e.properties }

// Property returns the property with the given name.
func (e *PLYElement) Property(name string) (*PLYProperty, bool) {
	idx, ok := e.byName[name]
	if !ok {
		return nil, false
	}
	return e.properties[idx], true
}

func (e *PLYElement) addProperty(p *PLYProperty) error {
	if _, dup := e.byName[p.name]; dup {
		return fmt.Errorf("%w: duplicate property %q in element %q", ErrInvalidPLYHeader, p.name, e.name)
	}
	e.byName[p.name] = len(e.properties)
	e.properties = append(e.properties, p)
	return nil
}

// PLY represents a parsed PLY document.
type PLY struct {
	Format   PLYFormat
	Version  string
	Comments []string
	ObjInfo  []string
	Elements []*PLYElement

	byName map[string]int
}

// Element returns the first element with the given name.
func (p *PLY) Element(name string) (*PLYElement, bool) {
	idx, ok := p.byName[name]
	if !ok {
		return nil, false
	}
	return p.Elements[idx], true
}

// ParsePLY parses a PLY document from raw bytes.
func ParsePLY(data []byte) (*PLY, error) {
	ply, body, err := parsePLYHeader(data)
	if err != nil {
		return nil, err
	}

	switch ply.Format {
	case PLYASCII:
		err = parsePLYASCIIBody(ply, body)
	default:
		err = parsePLYBinaryBody(ply, body)
	}
	if err != nil {
		return nil, err
	}
	return ply, nil
}

// ParsePLYFile parses a PLY file from disk.
func ParsePLYFile(path string) (*PLY, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading PLY file: %w", err)
	}
	return ParsePLY(data)
}

// parsePLYHeader parses everything up to end_header and returns the body bytes.
func parsePLYHeader(data []byte) (*PLY, []byte, error) {
	ply := &PLY{byName: make(map[string]int)}

	line, rest, ok := nextLine(data)
	if !ok {
		return nil, nil, ErrTruncatedPLYData
	}
	if keyword, _ := encoding.HeaderKeyword(line); keyword != "ply" {
		return nil, nil, ErrInvalidPLYMagic
	}

	var current *PLYElement
	sawFormat := false
	for {
		line, rest, ok = nextLine(rest)
		if !ok {
			return nil, nil, fmt.Errorf("%w: missing end_header", ErrTruncatedPLYData)
		}

		keyword, payload := encoding.HeaderKeyword(line)
		fields := strings.Fields(string(payload))

		switch keyword {
		case "":
			continue
		case "format":
			if len(fields) < 2 {
				return nil, nil, fmt.Errorf("%w: malformed format line", ErrInvalidPLYHeader)
			}
			format, err := parsePLYFormat(fields[0])
			if err != nil {
				return nil, nil, err
			}
			ply.Format = format
			ply.Version = fields[1]
			sawFormat = true
		case "comment":
			ply.Comments = append(ply.Comments, encoding.HeaderTextToUTF8(payload))
		case "obj_info":
			ply.ObjInfo = append(ply.ObjInfo, encoding.HeaderTextToUTF8(payload))
		case "element":
			if len(fields) != 2 {
				return nil, nil, fmt.Errorf("%w: malformed element line", ErrInvalidPLYHeader)
			}
			count, err := strconv.Atoi(fields[1])
			if err != nil || count < 0 {
				return nil, nil, fmt.Errorf("%w: invalid element count %q", ErrInvalidPLYHeader, fields[1])
			}
			current = &PLYElement{
				name:       fields[0],
				numEntries: count,
				byName:     make(map[string]int),
			}
			if _, dup := ply.byName[current.name]; !dup {
				ply.byName[current.name] = len(ply.Elements)
			}
			ply.Elements = append(ply.Elements, current)
		case "property":
			if current == nil {
				return nil, nil, fmt.Errorf("%w: property before any element", ErrInvalidPLYHeader)
			}
			prop, err := parsePLYPropertyLine(fields)
			if err != nil {
				return nil, nil, err
			}
			if err := current.addProperty(prop); err != nil {
				return nil, nil, err
			}
		case "end_header":
			if !sawFormat {
				return nil, nil, fmt.Errorf("%w: missing format line", ErrInvalidPLYHeader)
			}
			return ply, rest, nil
		default:
			return nil, nil, fmt.Errorf("%w: unexpected keyword %q", ErrInvalidPLYHeader, keyword)
		}
	}
}

// parsePLYPropertyLine parses the fields following the "property" keyword.
func parsePLYPropertyLine(fields []string) (*PLYProperty, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty property line", ErrInvalidPLYHeader)
	}

	if fields[0] == "list" {
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: malformed list property", ErrInvalidPLYHeader)
		}
		countType, err := parsePLYType(fields[1])
		if err != nil {
			return nil, err
		}
		if countType == geometry.DTFloat32 || countType == geometry.DTFloat64 {
			return nil, fmt.Errorf("%w: list count type must be integral", ErrInvalidPLYHeader)
		}
		valueType, err := parsePLYType(fields[2])
		if err != nil {
			return nil, err
		}
		return &PLYProperty{
			name:         fields[3],
			dataType:     valueType,
			isList:       true,
			listDataType: countType,
		}, nil
	}

	if len(fields) != 2 {
		return nil, fmt.Errorf("%w: malformed property", ErrInvalidPLYHeader)
	}
	dt, err := parsePLYType(fields[0])
	if err != nil {
		return nil, err
	}
	return &PLYProperty{name: fields[1], dataType: dt}, nil
}

// nextLine returns the first line of data including its newline.
func nextLine(data []byte) (line, rest []byte, ok bool) {
	if len(data) == 0 {
		return nil, nil, false
	}
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return data, nil, true
	}
	return data[:idx+1], data[idx+1:], true
}
