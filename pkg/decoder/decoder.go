// Package decoder converts parsed PLY property tables into point clouds and
// triangle meshes.
//
// Decoding runs in a fixed sequence: the table is read, faces are
// triangulated (mesh output only), vertex properties are mapped onto
// attributes through a fixed schema, and mesh output with faces is
// deduplicated. The first fatal error stops the sequence; the output
// geometry is then partially populated and should be discarded.
package decoder

import (
	"fmt"
	"os"

	"github.com/Faultbox/plygeom/pkg/formats"
	"github.com/Faultbox/plygeom/pkg/geometry"
	"go.uber.org/zap"
)

// PLYDecoder decodes PLY documents. A PLYDecoder holds no per-decode state
// and may be reused.
type PLYDecoder struct {
	logger              *zap.Logger
	deduplicateValues   bool
	deduplicatePointIDs bool
}

// Option configures a PLYDecoder.
type Option func(*PLYDecoder)

// WithLogger sets the logger used for decode diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(d *PLYDecoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDeduplication toggles the post-decode deduplication passes applied to
// meshes with faces.
func WithDeduplication(values, pointIDs bool) Option {
	return func(d *PLYDecoder) {
		d.deduplicateValues = values
		d.deduplicatePointIDs = pointIDs
	}
}

// NewPLYDecoder creates a decoder. Both deduplication passes are enabled by default.
func NewPLYDecoder(opts ...Option) *PLYDecoder {
	d := &PLYDecoder{
		logger:              zap.NewNop(),
		deduplicateValues:   true,
		deduplicatePointIDs: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecodeFromFile decodes a PLY file into a point cloud. Faces are ignored.
func (d *PLYDecoder) DecodeFromFile(path string, out *geometry.PointCloud) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	return d.DecodeFromBuffer(data, out)
}

// DecodeMeshFromFile decodes a PLY file into a mesh.
func (d *PLYDecoder) DecodeMeshFromFile(path string, out *geometry.Mesh) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	return d.DecodeMeshFromBuffer(data, out)
}

// DecodeFromBuffer decodes an in-memory PLY document into a point cloud.
func (d *PLYDecoder) DecodeFromBuffer(data []byte, out *geometry.PointCloud) error {
	ply, err := parse(data)
	if err != nil {
		return err
	}
	return d.DecodePLY(ply, out)
}

// DecodeMeshFromBuffer decodes an in-memory PLY document into a mesh.
func (d *PLYDecoder) DecodeMeshFromBuffer(data []byte, out *geometry.Mesh) error {
	ply, err := parse(data)
	if err != nil {
		return err
	}
	return d.DecodeMeshPLY(ply, out)
}

// DecodePLY decodes an already parsed property table into a point cloud.
func (d *PLYDecoder) DecodePLY(ply *formats.PLY, out *geometry.PointCloud) error {
	if out == nil {
		return ErrNilGeometry
	}
	return d.decode(ply, out, nil)
}

// DecodeMeshPLY decodes an already parsed property table into a mesh.
func (d *PLYDecoder) DecodeMeshPLY(ply *formats.PLY, out *geometry.Mesh) error {
	if out == nil {
		return ErrNilGeometry
	}
	return d.decode(ply, &out.PointCloud, out)
}

// decode runs the decode sequence. mesh is nil for point cloud output and
// otherwise owns pc.
func (d *PLYDecoder) decode(ply *formats.PLY, pc *geometry.PointCloud, mesh *geometry.Mesh) error {
	if mesh != nil {
		if err := d.decodeFaceData(ply, mesh); err != nil {
			return err
		}
	}

	if err := d.decodeVertexData(ply, pc); err != nil {
		return err
	}

	// Without faces the result is a point cloud, which is not deduplicated.
	if mesh != nil && mesh.NumFaces() != 0 {
		if err := d.deduplicate(mesh); err != nil {
			return err
		}
	}

	fields := []zap.Field{
		zap.Int("points", pc.NumPoints()),
		zap.Int("attributes", pc.NumAttributes()),
	}
	if mesh != nil {
		fields = append(fields, zap.Int("faces", mesh.NumFaces()))
	}
	d.logger.Debug("decoded PLY", fields...)
	return nil
}

func (d *PLYDecoder) deduplicate(mesh *geometry.Mesh) error {
	if d.deduplicateValues {
		if err := mesh.DeduplicateAttributeValues(); err != nil {
			return fmt.Errorf("%w: %w", ErrDeduplication, err)
		}
	}
	if d.deduplicatePointIDs {
		before := mesh.NumPoints()
		mesh.DeduplicatePointIDs()
		if merged := before - mesh.NumPoints(); merged > 0 {
			d.logger.Debug("merged duplicate points", zap.Int("merged", merged))
		}
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return data, nil
}

func parse(data []byte) (*formats.PLY, error) {
	ply, err := formats.ParsePLY(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return ply, nil
}
