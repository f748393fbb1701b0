// Package report summarizes PLY headers and decoded geometry for plytool.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/plygeom/pkg/formats"
	"github.com/Faultbox/plygeom/pkg/geometry"
	"github.com/Faultbox/plygeom/pkg/math"
	"gopkg.in/yaml.v3"
)

// Header summarizes the declarations of a PLY document.
type Header struct {
	File     string    `yaml:"file,omitempty"`
	Format   string    `yaml:"format"`
	Version  string    `yaml:"version"`
	Comments []string  `yaml:"comments,omitempty"`
	ObjInfo  []string  `yaml:"obj_info,omitempty"`
	Elements []Element `yaml:"elements"`
}

// Element describes one declared element.
type Element struct {
	Name       string     `yaml:"name"`
	Count      int        `yaml:"count"`
	Properties []Property `yaml:"properties"`
}

// Property describes one declared property.
type Property struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	CountType string `yaml:"count_type,omitempty"` // Set for list properties
}

// Geometry summarizes a decoded point cloud or mesh.
type Geometry struct {
	File            string      `yaml:"file,omitempty"`
	Kind            string      `yaml:"kind"`
	Points          int         `yaml:"points"`
	Faces           int         `yaml:"faces"`
	Attributes      []Attribute `yaml:"attributes"`
	Bounds          *Bounds     `yaml:"bounds,omitempty"`
	SurfaceArea     float32     `yaml:"surface_area,omitempty"`
	DegenerateFaces int         `yaml:"degenerate_faces,omitempty"`
}

// Attribute describes one decoded attribute.
type Attribute struct {
	ID           int    `yaml:"id"`
	Type         string `yaml:"type"`
	Components   int    `yaml:"components"`
	DataType     string `yaml:"data_type"`
	Normalized   bool   `yaml:"normalized,omitempty"`
	UniqueValues int    `yaml:"unique_values"`
}

// Bounds is the axis-aligned extent of the position attribute.
type Bounds struct {
	Min      [3]float32 `yaml:"min,flow"`
	Max      [3]float32 `yaml:"max,flow"`
	Center   [3]float32 `yaml:"center,flow"`
	Diagonal float32    `yaml:"diagonal"`
}

// Geometry kinds.
const (
	KindPointCloud = "point_cloud"
	KindMesh       = "mesh"
)

// NewHeader summarizes a parsed PLY document.
func NewHeader(file string, ply *formats.PLY) *Header {
	h := &Header{
		File:     file,
		Format:   ply.Format.String(),
		Version:  ply.Version,
		Comments: ply.Comments,
		ObjInfo:  ply.ObjInfo,
	}
	for _, e := range ply.Elements {
		elem := Element{Name: e.Name(), Count: e.NumEntries()}
		for _, p := range e.Properties() {
			prop := Property{Name: p.Name(), Type: p.DataType().String()}
			if p.IsList() {
				prop.CountType = p.ListDataType().String()
			}
			elem.Properties = append(elem.Properties, prop)
		}
		h.Elements = append(h.Elements, elem)
	}
	return h
}

// NewPointCloud summarizes a decoded point cloud.
func NewPointCloud(file string, pc *geometry.PointCloud, withBounds bool) *Geometry {
	g := &Geometry{
		File:   file,
		Kind:   KindPointCloud,
		Points: pc.NumPoints(),
	}
	for _, att := range pc.Attributes() {
		g.Attributes = append(g.Attributes, Attribute{
			ID:           att.ID(),
			Type:         att.Type().String(),
			Components:   att.NumComponents(),
			DataType:     att.DataType().String(),
			Normalized:   att.Normalized(),
			UniqueValues: att.NumValues(),
		})
	}

	if withBounds {
		if b, ok := positionBounds(pc); ok {
			g.Bounds = &Bounds{
				Min:      vecArray(b.Min),
				Max:      vecArray(b.Max),
				Center:   vecArray(b.Center()),
				Diagonal: b.Diagonal(),
			}
		}
	}
	return g
}

// NewMesh summarizes a decoded mesh, including its surface area.
func NewMesh(file string, mesh *geometry.Mesh, withBounds bool) *Geometry {
	g := NewPointCloud(file, &mesh.PointCloud, withBounds)
	g.Kind = KindMesh
	g.Faces = mesh.NumFaces()

	pos := mesh.NamedAttribute(geometry.Position)
	if pos == nil {
		return g
	}
	for _, f := range mesh.Faces() {
		if int(f[0]) >= mesh.NumPoints() || int(f[1]) >= mesh.NumPoints() || int(f[2]) >= mesh.NumPoints() {
			g.DegenerateFaces++
			continue
		}
		area := math.TriangleArea(position(pos, int(f[0])), position(pos, int(f[1])), position(pos, int(f[2])))
		if area == 0 {
			g.DegenerateFaces++
		}
		g.SurfaceArea += area
	}
	return g
}

func positionBounds(pc *geometry.PointCloud) (math.Bounds, bool) {
	var b math.Bounds
	pos := pc.NamedAttribute(geometry.Position)
	if pos == nil {
		return b, false
	}
	for p := 0; p < pc.NumPoints(); p++ {
		b.Extend(position(pos, p))
	}
	return b, !b.Empty()
}

// position reads point p of a float32 or int32 position attribute.
func position(pos *geometry.Attribute, p int) math.Vec3 {
	if pos.DataType() == geometry.DTInt32 {
		var v [3]int32
		geometry.PointValue(pos, p, v[:])
		return math.Vec3{X: float32(v[0]), Y: float32(v[1]), Z: float32(v[2])}
	}
	var v [3]float32
	geometry.PointValue(pos, p, v[:])
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func vecArray(v math.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// WriteYAML writes any summary as a YAML document.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}

// WriteText writes a header summary in a human readable layout.
func (h *Header) WriteText(w io.Writer) error {
	var b strings.Builder
	if h.File != "" {
		fmt.Fprintf(&b, "File:    %s\n", h.File)
	}
	fmt.Fprintf(&b, "Format:  %s %s\n", h.Format, h.Version)
	for _, c := range h.Comments {
		fmt.Fprintf(&b, "Comment: %s\n", c)
	}
	for _, o := range h.ObjInfo {
		fmt.Fprintf(&b, "Info:    %s\n", o)
	}
	for _, e := range h.Elements {
		fmt.Fprintf(&b, "\nElement %s (%d)\n", e.Name, e.Count)
		for _, p := range e.Properties {
			if p.CountType != "" {
				fmt.Fprintf(&b, "  %-16s list %s %s\n", p.Name, p.CountType, p.Type)
				continue
			}
			fmt.Fprintf(&b, "  %-16s %s\n", p.Name, p.Type)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteText writes a geometry summary in a human readable layout.
func (g *Geometry) WriteText(w io.Writer) error {
	var b strings.Builder
	if g.File != "" {
		fmt.Fprintf(&b, "File:       %s\n", g.File)
	}
	fmt.Fprintf(&b, "Kind:       %s\n", g.Kind)
	fmt.Fprintf(&b, "Points:     %d\n", g.Points)
	if g.Kind == KindMesh {
		fmt.Fprintf(&b, "Faces:      %d\n", g.Faces)
		fmt.Fprintf(&b, "Area:       %.4f\n", g.SurfaceArea)
		if g.DegenerateFaces > 0 {
			fmt.Fprintf(&b, "Degenerate: %d\n", g.DegenerateFaces)
		}
	}
	if g.Bounds != nil {
		fmt.Fprintf(&b, "Min:        %v\n", g.Bounds.Min)
		fmt.Fprintf(&b, "Max:        %v\n", g.Bounds.Max)
		fmt.Fprintf(&b, "Diagonal:   %.4f\n", g.Bounds.Diagonal)
	}

	b.WriteString("\nAttributes:\n")
	for _, a := range g.Attributes {
		norm := ""
		if a.Normalized {
			norm = " normalized"
		}
		fmt.Fprintf(&b, "  %2d %-10s %2d x %-8s%s (%d unique)\n",
			a.ID, a.Type, a.Components, a.DataType, norm, a.UniqueValues)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
