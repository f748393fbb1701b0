package decoder

import (
	"fmt"
	"strconv"

	"github.com/Faultbox/plygeom/pkg/formats"
	"github.com/Faultbox/plygeom/pkg/geometry"
	"go.uber.org/zap"
)

// groupPolicy decides how a group reacts to missing or mistyped properties.
type groupPolicy int

const (
	// policyRequired fails the decode when a property is missing or mistyped.
	policyRequired groupPolicy = iota
	// policyOptional skips the group when a property is missing or mistyped.
	policyOptional
	// policyChannels uses whichever properties are present, in table order,
	// and fails when a present property is mistyped.
	policyChannels
)

// attributeGroup maps a fixed set of vertex properties onto one attribute.
type attributeGroup struct {
	name          string
	attributeType geometry.AttributeType
	properties    []string
	types         []geometry.DataType
	policy        groupPolicy
	normalized    bool
}

func (g *attributeGroup) accepts(dt geometry.DataType) bool {
	for _, t := range g.types {
		if t == dt {
			return true
		}
	}
	return false
}

var float32Only = []geometry.DataType{geometry.DTFloat32}

// vertexSchema is evaluated in order; the order fixes attribute ids.
var vertexSchema = []attributeGroup{
	{
		name:          "position",
		attributeType: geometry.Position,
		properties:    []string{"x", "y", "z"},
		types:         []geometry.DataType{geometry.DTFloat32, geometry.DTInt32},
		policy:        policyRequired,
	},
	{
		name:          "normal",
		attributeType: geometry.Normal,
		properties:    []string{"nx", "ny", "nz"},
		types:         float32Only,
		policy:        policyOptional,
	},
	{
		name:          "f_dc",
		attributeType: geometry.FDC,
		properties:    numberedProperties("f_dc_", 3),
		types:         float32Only,
		policy:        policyOptional,
	},
	{
		name:          "f_rest",
		attributeType: geometry.FRest,
		properties:    numberedProperties("f_rest_", 45),
		types:         float32Only,
		policy:        policyOptional,
	},
	{
		name:          "opacity",
		attributeType: geometry.Opacity,
		properties:    []string{"opacity"},
		types:         float32Only,
		policy:        policyOptional,
	},
	{
		name:          "scale",
		attributeType: geometry.Scale,
		properties:    numberedProperties("scale_", 3),
		types:         float32Only,
		policy:        policyOptional,
	},
	{
		name:          "rotation",
		attributeType: geometry.Rotation,
		properties:    numberedProperties("rot_", 4),
		types:         float32Only,
		policy:        policyOptional,
	},
	{
		name:          "color",
		attributeType: geometry.Color,
		properties:    []string{"red", "green", "blue", "alpha"},
		types:         []geometry.DataType{geometry.DTUint8},
		policy:        policyChannels,
		normalized:    true,
	},
}

func numberedProperties(prefix string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = prefix + strconv.Itoa(i)
	}
	return names
}

// decodeVertexData sets the point count and decodes every schema group.
func (d *PLYDecoder) decodeVertexData(ply *formats.PLY, pc *geometry.PointCloud) error {
	vertex, ok := ply.Element("vertex")
	if !ok {
		return ErrMissingVertexElement
	}
	numVertices := vertex.NumEntries()
	pc.SetNumPoints(numVertices)

	for i := range vertexSchema {
		group := &vertexSchema[i]
		props, dt, err := d.resolveGroup(vertex, group)
		if err != nil {
			return err
		}
		if props == nil {
			continue
		}

		att := geometry.NewAttribute(group.attributeType, len(props), dt, group.normalized)
		pc.AddAttribute(att)
		if err := extractAttribute(dt, props, att, numVertices); err != nil {
			return err
		}
		d.logger.Debug("decoded attribute",
			zap.String("group", group.name),
			zap.Int("id", att.ID()),
			zap.Int("components", att.NumComponents()),
			zap.Stringer("type", dt))
	}
	return nil
}

// resolveGroup looks up the properties of a group and checks their type.
// It returns nil properties when an optional group is skipped.
func (d *PLYDecoder) resolveGroup(vertex *formats.PLYElement, g *attributeGroup) ([]*formats.PLYProperty, geometry.DataType, error) {
	if g.policy == policyChannels {
		var props []*formats.PLYProperty
		for _, name := range g.properties {
			prop, ok := vertex.Property(name)
			if !ok || prop.IsList() {
				continue
			}
			if !g.accepts(prop.DataType()) {
				return nil, geometry.DTInvalid, channelTypeError(name)
			}
			props = append(props, prop)
		}
		if len(props) == 0 {
			return nil, geometry.DTInvalid, nil
		}
		return props, props[0].DataType(), nil
	}

	props, missing := lookupProperties(vertex, g.properties)
	if missing != "" {
		if g.policy == policyRequired {
			return nil, geometry.DTInvalid, ErrMissingPosition
		}
		d.logger.Debug("skipping attribute group",
			zap.String("group", g.name),
			zap.String("missing", missing))
		return nil, geometry.DTInvalid, nil
	}

	dt := props[0].DataType()
	for _, prop := range props[1:] {
		if prop.DataType() == dt {
			continue
		}
		if g.policy == policyRequired {
			return nil, geometry.DTInvalid, ErrPositionTypeMismatch
		}
		d.logger.Debug("skipping attribute group",
			zap.String("group", g.name),
			zap.String("reason", "mixed property types"))
		return nil, geometry.DTInvalid, nil
	}

	if !g.accepts(dt) {
		if g.policy == policyRequired {
			return nil, geometry.DTInvalid, ErrPositionType
		}
		d.logger.Debug("skipping attribute group",
			zap.String("group", g.name),
			zap.Stringer("type", dt))
		return nil, geometry.DTInvalid, nil
	}
	return props, dt, nil
}

// lookupProperties resolves every name. It returns the first missing name,
// or "" when all are present.
func lookupProperties(vertex *formats.PLYElement, names []string) ([]*formats.PLYProperty, string) {
	props := make([]*formats.PLYProperty, len(names))
	for i, name := range names {
		prop, ok := vertex.Property(name)
		if !ok || prop.IsList() {
			return nil, name
		}
		props[i] = prop
	}
	return props, ""
}

// extractAttribute selects the reader type once per group.
func extractAttribute(dt geometry.DataType, props []*formats.PLYProperty, att *geometry.Attribute, numVertices int) error {
	switch dt {
	case geometry.DTFloat32:
		readPropertiesToAttribute[float32](props, att, numVertices)
	case geometry.DTInt32:
		readPropertiesToAttribute[int32](props, att, numVertices)
	case geometry.DTUint8:
		readPropertiesToAttribute[uint8](props, att, numVertices)
	default:
		return fmt.Errorf("%w: no reader for %v", ErrValidation, dt)
	}
	return nil
}

// readPropertiesToAttribute copies one value per property per vertex into
// the interleaved attribute buffer, component k coming from props[k].
func readPropertiesToAttribute[T geometry.Number](props []*formats.PLYProperty, att *geometry.Attribute, numVertices int) {
	readers := make([]*formats.PLYPropertyReader[T], len(props))
	for k, prop := range props {
		readers[k] = formats.NewPLYPropertyReader[T](prop)
	}

	memory := make([]T, len(props))
	for i := 0; i < numVertices; i++ {
		for k, r := range readers {
			memory[k] = r.ReadValue(i)
		}
		geometry.SetValue(att, i, memory)
	}
}
