package decoder

import (
	"github.com/Faultbox/plygeom/pkg/formats"
	"github.com/Faultbox/plygeom/pkg/geometry"
	"go.uber.org/zap"
)

// Face index property names, checked in order.
var faceIndexProperties = []string{"vertex_indices", "vertex_index"}

// faceIndexProperty returns the polygon index list of the face element.
func faceIndexProperty(face *formats.PLYElement) (*formats.PLYProperty, bool) {
	for _, name := range faceIndexProperties {
		if prop, ok := face.Property(name); ok {
			return prop, true
		}
	}
	return nil, false
}

// countNumTriangles returns the number of triangles a fan triangulation of
// every polygon produces. Polygons with fewer than three indices are ignored.
func countNumTriangles(face *formats.PLYElement, indices *formats.PLYProperty) int {
	numTriangles := 0
	for i := 0; i < face.NumEntries(); i++ {
		listSize := indices.ListEntryNumValues(i)
		if listSize < 3 {
			continue
		}
		numTriangles += listSize - 2
	}
	return numTriangles
}

// decodeFaceData triangulates the face element into mesh faces.
// A missing face element is not an error: the input is a point cloud.
func (d *PLYDecoder) decodeFaceData(ply *formats.PLY, mesh *geometry.Mesh) error {
	face, ok := ply.Element("face")
	if !ok {
		return nil
	}
	indices, ok := faceIndexProperty(face)
	if !ok || !indices.IsList() {
		return ErrNoFaces
	}

	mesh.SetNumFaces(countNumTriangles(face, indices))

	reader := formats.NewPLYPropertyReader[uint32](indices)
	faceIndex := 0
	skipped := 0
	for i := 0; i < face.NumEntries(); i++ {
		listOffset := indices.ListEntryOffset(i)
		listSize := indices.ListEntryNumValues(i)
		if listSize < 3 {
			skipped++
			continue
		}

		// Fan around the first index; assumes convex polygons.
		var f geometry.Face
		f[0] = reader.ReadValue(listOffset)
		for t := 0; t < listSize-2; t++ {
			f[1] = reader.ReadValue(listOffset + t + 1)
			f[2] = reader.ReadValue(listOffset + t + 2)
			mesh.SetFace(faceIndex, f)
			faceIndex++
		}
	}
	mesh.SetNumFaces(faceIndex)

	if skipped > 0 {
		d.logger.Debug("skipped degenerate polygons", zap.Int("polygons", skipped))
	}
	return nil
}
