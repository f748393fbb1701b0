package geometry

import (
	"errors"
	"strconv"
	"strings"
)

// Deduplication errors.
var (
	ErrEmptyPointCloud = errors.New("point cloud has no points")
	ErrNoAttributes    = errors.New("point cloud has no attributes")
)

// PointCloud is an unordered set of points carrying typed attributes.
type PointCloud struct {
	numPoints  int
	attributes []*Attribute
}

// NewPointCloud creates an empty point cloud.
func NewPointCloud() *PointCloud {
	return &PointCloud{}
}

// NumPoints returns the number of points.
func (pc *PointCloud) NumPoints() int { return pc.numPoints }

// SetNumPoints sets the number of points. It does not resize existing attributes.
func (pc *PointCloud) SetNumPoints(n int) { pc.numPoints = n }

// AddAttribute allocates storage for one value per point, assigns the next id
// and returns it.
func (pc *PointCloud) AddAttribute(a *Attribute) int {
	a.id = len(pc.attributes)
	a.Reset(pc.numPoints)
	pc.attributes = append(pc.attributes, a)
	return a.id
}

// Attribute returns the attribute with the given id, or nil.
func (pc *PointCloud) Attribute(id int) *Attribute {
	if id < 0 || id >= len(pc.attributes) {
		return nil
	}
	return pc.attributes[id]
}

// Attributes returns all attributes in id order.
func (pc *PointCloud) Attributes() []*Attribute { return pc.attributes }

// NumAttributes returns the number of attributes.
func (pc *PointCloud) NumAttributes() int { return len(pc.attributes) }

// NamedAttribute returns the first attribute with the given semantic, or nil.
func (pc *PointCloud) NamedAttribute(t AttributeType) *Attribute {
	for _, a := range pc.attributes {
		if a.attributeType == t {
			return a
		}
	}
	return nil
}

// NumNamedAttributes returns how many attributes carry the given semantic.
func (pc *PointCloud) NumNamedAttributes(t AttributeType) int {
	n := 0
	for _, a := range pc.attributes {
		if a.attributeType == t {
			n++
		}
	}
	return n
}

// DeduplicateAttributeValues merges identical values inside every attribute.
// Points keep their data; only the storage shrinks.
func (pc *PointCloud) DeduplicateAttributeValues() error {
	if pc.numPoints == 0 {
		return ErrEmptyPointCloud
	}
	if len(pc.attributes) == 0 {
		return ErrNoAttributes
	}
	for _, a := range pc.attributes {
		a.deduplicateValues(pc.numPoints)
	}
	return nil
}

// DeduplicatePointIDs merges points that reference the same value in every
// attribute and returns the old-to-new point index map.
func (pc *PointCloud) DeduplicatePointIDs() []uint32 {
	remap := make([]uint32, pc.numPoints)
	unique := make(map[string]uint32, pc.numPoints)
	var representatives []int

	var key strings.Builder
	for p := 0; p < pc.numPoints; p++ {
		key.Reset()
		for _, a := range pc.attributes {
			key.WriteString(strconv.Itoa(a.MappedIndex(p)))
			key.WriteByte(',')
		}
		if id, ok := unique[key.String()]; ok {
			remap[p] = id
			continue
		}
		id := uint32(len(representatives))
		unique[key.String()] = id
		remap[p] = id
		representatives = append(representatives, p)
	}

	if len(representatives) == pc.numPoints {
		return remap
	}

	for _, a := range pc.attributes {
		indexMap := make([]uint32, len(representatives))
		for np, op := range representatives {
			indexMap[np] = uint32(a.MappedIndex(op))
		}
		a.indexMap = indexMap
	}
	pc.numPoints = len(representatives)
	return remap
}
