// Package formats provides parsers for geometry interchange file formats.
package formats

// Note: PLY headers are parsed in ply.go, bodies in ply_body.go
// Note: PLYPropertyReader (ply_reader.go) gives typed access to parsed values
