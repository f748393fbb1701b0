package geometry

// Face is a triangle referencing three point indices.
type Face [3]uint32

// Mesh is a point cloud with triangle connectivity.
type Mesh struct {
	PointCloud
	faces []Face
}

// NewMesh creates an empty mesh.
func NewMesh() *Mesh {
	return &Mesh{}
}

// NumFaces returns the number of faces.
func (m *Mesh) NumFaces() int { return len(m.faces) }

// SetNumFaces resizes the face list, keeping existing faces that still fit.
func (m *Mesh) SetNumFaces(n int) {
	if n <= cap(m.faces) {
		m.faces = m.faces[:n]
		return
	}
	faces := make([]Face, n)
	copy(faces, m.faces)
	m.faces = faces
}

// SetFace stores face f at index i. i must be below NumFaces.
func (m *Mesh) SetFace(i int, f Face) { m.faces[i] = f }

// AddFace appends a face.
func (m *Mesh) AddFace(f Face) { m.faces = append(m.faces, f) }

// Face returns the face at index i.
func (m *Mesh) Face(i int) Face { return m.faces[i] }

// Faces returns the face list.
func (m *Mesh) Faces() []Face { return m.faces }

// DeduplicatePointIDs merges identical points and rewrites the faces to the
// surviving point indices.
func (m *Mesh) DeduplicatePointIDs() []uint32 {
	remap := m.PointCloud.DeduplicatePointIDs()
	for i := range m.faces {
		for c, p := range m.faces[i] {
			// Out of range indices are left untouched.
			if int(p) < len(remap) {
				m.faces[i][c] = remap[p]
			}
		}
	}
	return remap
}
