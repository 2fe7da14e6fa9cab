// Package mesh provides the plain vertex/index records the particle system
// owns, plus the small amount of geometry needed to keep them renderable.
package mesh

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrInvalidMode is returned for display mode values outside Points, Lines, Triangles.
	ErrInvalidMode = errors.New("invalid display mode")
	// ErrMalformedTopology is returned when an index list cannot describe the requested primitives.
	ErrMalformedTopology = errors.New("malformed topology")
)

// Mode is the topology interpretation of a mesh.
type Mode uint8

const (
	Points Mode = iota
	Lines
	Triangles
)

var modeNames = [...]string{"points", "lines", "triangles"}

// Valid reports whether m is one of the known display modes.
func (m Mode) Valid() bool {
	return int(m) < len(modeNames)
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
	return modeNames[m]
}

// ParseMode converts a mode name (case-insensitive) to a Mode.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Mesh is a vertex list with optional per-vertex normals and an index list
// interpreted according to Mode.
type Mesh struct {
	Vertices []r3.Vec
	Normals  []r3.Vec
	Indices  []uint32
	Mode     Mode
}

// VertexCount returns the number of vertices.
func (m Mesh) VertexCount() int { return len(m.Vertices) }

// IndexCount returns the number of indices.
func (m Mesh) IndexCount() int { return len(m.Indices) }

// NumTriangles returns the number of triangles when Mode is Triangles.
func (m Mesh) NumTriangles() int {
	if m.Mode != Triangles {
		return 0
	}
	return len(m.Indices) / 3
}

// NumLines returns the number of line segments when Mode is Lines.
func (m Mesh) NumLines() int {
	if m.Mode != Lines {
		return 0
	}
	return len(m.Indices) / 2
}

// HasNormals reports whether there is exactly one normal per vertex.
func (m Mesh) HasNormals() bool {
	return len(m.Vertices) > 0 && len(m.Normals) == len(m.Vertices)
}

// Clear drops all geometry but keeps the mode.
func (m *Mesh) Clear() {
	m.Vertices = m.Vertices[:0]
	m.Normals = m.Normals[:0]
	m.Indices = m.Indices[:0]
}

// Clone returns a deep copy.
func (m Mesh) Clone() Mesh {
	return Mesh{
		Vertices: append([]r3.Vec(nil), m.Vertices...),
		Normals:  append([]r3.Vec(nil), m.Normals...),
		Indices:  append([]uint32(nil), m.Indices...),
		Mode:     m.Mode,
	}
}

// Bounds returns the axis-aligned bounding box. Both corners are zero for an
// empty mesh.
func (m Mesh) Bounds() (lo, hi r3.Vec) {
	if len(m.Vertices) == 0 {
		return lo, hi
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		lo = r3.Vec{X: min(lo.X, v.X), Y: min(lo.Y, v.Y), Z: min(lo.Z, v.Z)}
		hi = r3.Vec{X: max(hi.X, v.X), Y: max(hi.Y, v.Y), Z: max(hi.Z, v.Z)}
	}
	return lo, hi
}

// RecomputeNormals replaces Normals with smooth per-vertex normals derived
// from the triangle index list. The existing slice is reused when large enough.
func (m *Mesh) RecomputeNormals() {
	m.Normals = smoothNormalsInto(m.Normals, m.Vertices, m.Indices)
}

// Validate checks that the index list fits the mode and vertex count.
func (m *Mesh) Validate() error {
	if !m.Mode.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMode, uint8(m.Mode))
	}
	switch m.Mode {
	case Triangles:
		return ValidateTriangles(m.Indices, len(m.Vertices))
	case Lines:
		if len(m.Indices)%2 != 0 {
			return fmt.Errorf("%w: %d line indices is not a multiple of 2", ErrMalformedTopology, len(m.Indices))
		}
	}
	return validateRange(m.Indices, len(m.Vertices))
}

// ValidateTriangles checks that indices describe whole triangles over
// vertexCount vertices.
func ValidateTriangles(indices []uint32, vertexCount int) error {
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: %d triangle indices is not a multiple of 3", ErrMalformedTopology, len(indices))
	}
	return validateRange(indices, vertexCount)
}

func validateRange(indices []uint32, vertexCount int) error {
	for i, idx := range indices {
		if int(idx) >= vertexCount {
			return fmt.Errorf("%w: index %d at position %d out of range for %d vertices",
				ErrMalformedTopology, idx, i, vertexCount)
		}
	}
	return nil
}
