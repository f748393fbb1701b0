package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Faultbox/plygeom/pkg/decoder"
	"github.com/Faultbox/plygeom/pkg/formats"
	"github.com/Faultbox/plygeom/pkg/geometry"
	"gopkg.in/yaml.v3"
)

const quadPLY = `ply
format ascii 1.0
comment made by hand
element vertex 4
property float x
property float y
property float z
property uchar red
property uchar green
property uchar blue
element face 1
property list uchar int vertex_indices
end_header
0 0 0 255 0 0
2 0 0 255 0 0
2 2 0 0 255 0
0 2 0 0 0 255
4 0 1 2 3
`

func decodeQuad(t *testing.T) *geometry.Mesh {
	t.Helper()
	mesh := geometry.NewMesh()
	if err := decoder.NewPLYDecoder().DecodeMeshFromBuffer([]byte(quadPLY), mesh); err != nil {
		t.Fatalf("failed to decode quad: %v", err)
	}
	return mesh
}

func TestNewHeader(t *testing.T) {
	ply, err := formats.ParsePLY([]byte(quadPLY))
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}

	h := NewHeader("quad.ply", ply)

	if h.Format != "ascii" || h.Version != "1.0" {
		t.Errorf("expected ascii 1.0, got %s %s", h.Format, h.Version)
	}
	if len(h.Comments) != 1 || h.Comments[0] != "made by hand" {
		t.Errorf("unexpected comments %v", h.Comments)
	}
	if len(h.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(h.Elements))
	}

	vertex := h.Elements[0]
	if vertex.Name != "vertex" || vertex.Count != 4 || len(vertex.Properties) != 6 {
		t.Errorf("unexpected vertex element %+v", vertex)
	}
	if vertex.Properties[3].Type != "uint8" {
		t.Errorf("expected red to be uint8, got %s", vertex.Properties[3].Type)
	}

	indices := h.Elements[1].Properties[0]
	if indices.CountType != "uint8" || indices.Type != "int32" {
		t.Errorf("expected list uint8 int32, got %s %s", indices.CountType, indices.Type)
	}
}

func TestNewMesh(t *testing.T) {
	g := NewMesh("quad.ply", decodeQuad(t), true)

	if g.Kind != KindMesh {
		t.Errorf("expected kind mesh, got %s", g.Kind)
	}
	if g.Points != 4 || g.Faces != 2 {
		t.Errorf("expected 4 points and 2 faces, got %d and %d", g.Points, g.Faces)
	}
	if g.SurfaceArea != 4 {
		t.Errorf("expected surface area 4, got %v", g.SurfaceArea)
	}
	if g.DegenerateFaces != 0 {
		t.Errorf("expected no degenerate faces, got %d", g.DegenerateFaces)
	}

	if len(g.Attributes) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(g.Attributes))
	}
	color := g.Attributes[1]
	if color.Type != "Color" || color.Components != 3 || !color.Normalized {
		t.Errorf("unexpected color attribute %+v", color)
	}
	// Two vertices share red.
	if color.UniqueValues != 3 {
		t.Errorf("expected 3 unique colors, got %d", color.UniqueValues)
	}

	if g.Bounds == nil {
		t.Fatal("expected bounds")
	}
	if g.Bounds.Min != [3]float32{0, 0, 0} || g.Bounds.Max != [3]float32{2, 2, 0} {
		t.Errorf("unexpected bounds %v %v", g.Bounds.Min, g.Bounds.Max)
	}
	if g.Bounds.Center != [3]float32{1, 1, 0} {
		t.Errorf("unexpected center %v", g.Bounds.Center)
	}
}

func TestNewPointCloud_IntPositions(t *testing.T) {
	data := "ply\nformat ascii 1.0\nelement vertex 2\nproperty int x\nproperty int y\nproperty int z\nend_header\n-1 0 0\n3 4 0\n"

	pc := geometry.NewPointCloud()
	if err := decoder.NewPLYDecoder().DecodeFromBuffer([]byte(data), pc); err != nil {
		t.Fatalf("DecodeFromBuffer failed: %v", err)
	}

	g := NewPointCloud("", pc, true)
	if g.Kind != KindPointCloud || g.Faces != 0 {
		t.Errorf("unexpected summary %+v", g)
	}
	if g.Bounds.Min != [3]float32{-1, 0, 0} || g.Bounds.Max != [3]float32{3, 4, 0} {
		t.Errorf("unexpected bounds %v %v", g.Bounds.Min, g.Bounds.Max)
	}

	if g := NewPointCloud("", pc, false); g.Bounds != nil {
		t.Error("expected no bounds when disabled")
	}
}

func TestNewMesh_DegenerateFaces(t *testing.T) {
	mesh := geometry.NewMesh()
	data := "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\n" +
		"element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 1 1\n2 2 2\n3 0 1 2\n"
	if err := decoder.NewPLYDecoder().DecodeMeshFromBuffer([]byte(data), mesh); err != nil {
		t.Fatalf("DecodeMeshFromBuffer failed: %v", err)
	}

	g := NewMesh("", mesh, false)
	if g.DegenerateFaces != 1 {
		t.Errorf("expected 1 degenerate face, got %d", g.DegenerateFaces)
	}
	if g.SurfaceArea != 0 {
		t.Errorf("expected zero area, got %v", g.SurfaceArea)
	}
}

func TestWriteYAML(t *testing.T) {
	g := NewMesh("quad.ply", decodeQuad(t), true)

	var buf bytes.Buffer
	if err := WriteYAML(&buf, g); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	if !strings.Contains(buf.String(), "min: [0, 0, 0]") {
		t.Errorf("expected flow style bounds, got:\n%s", buf.String())
	}

	var back Geometry
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if back.Points != g.Points || back.Faces != g.Faces || len(back.Attributes) != len(g.Attributes) {
		t.Errorf("YAML summary differs: %+v", back)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMesh("quad.ply", decodeQuad(t), true).WriteText(&buf); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"File:       quad.ply", "Kind:       mesh", "Faces:      2", "Color", "normalized"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	ply, err := formats.ParsePLY([]byte(quadPLY))
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}
	buf.Reset()
	if err := NewHeader("quad.ply", ply).WriteText(&buf); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	out = buf.String()
	for _, want := range []string{"Format:  ascii 1.0", "Element vertex (4)", "list uint8 int32"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
