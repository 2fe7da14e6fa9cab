package meshio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/wavemesh/mesh"
)

// ErrUnsupportedFormat is returned by Save for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// WritePLY writes m as ASCII PLY. Triangle meshes get a face element, line
// meshes an edge element, point meshes vertices only. Normals are written
// when there is one per vertex.
func WritePLY(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)
	withNormals := m.HasNormals()

	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintln(bw, "comment wavemesh export")
	fmt.Fprintf(bw, "element vertex %d\n", m.VertexCount())
	fmt.Fprintln(bw, "property float x")
	fmt.Fprintln(bw, "property float y")
	fmt.Fprintln(bw, "property float z")
	if withNormals {
		fmt.Fprintln(bw, "property float nx")
		fmt.Fprintln(bw, "property float ny")
		fmt.Fprintln(bw, "property float nz")
	}
	switch m.Mode {
	case mesh.Triangles:
		fmt.Fprintf(bw, "element face %d\n", m.NumTriangles())
		fmt.Fprintln(bw, "property list uchar uint vertex_indices")
	case mesh.Lines:
		fmt.Fprintf(bw, "element edge %d\n", m.NumLines())
		fmt.Fprintln(bw, "property uint vertex1")
		fmt.Fprintln(bw, "property uint vertex2")
	}
	fmt.Fprintln(bw, "end_header")

	for i, v := range m.Vertices {
		if withNormals {
			n := m.Normals[i]
			fmt.Fprintf(bw, "%g %g %g %g %g %g\n", v.X, v.Y, v.Z, n.X, n.Y, n.Z)
		} else {
			fmt.Fprintf(bw, "%g %g %g\n", v.X, v.Y, v.Z)
		}
	}

	switch m.Mode {
	case mesh.Triangles:
		for t := 0; t+2 < len(m.Indices); t += 3 {
			fmt.Fprintf(bw, "3 %d %d %d\n", m.Indices[t], m.Indices[t+1], m.Indices[t+2])
		}
	case mesh.Lines:
		for l := 0; l+1 < len(m.Indices); l += 2 {
			fmt.Fprintf(bw, "%d %d\n", m.Indices[l], m.Indices[l+1])
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing ply: %w", err)
	}
	return nil
}

// VertexRecord is one row of a CSV vertex dump.
type VertexRecord struct {
	Index int     `csv:"index"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
	Z     float64 `csv:"z"`
	NX    float64 `csv:"nx"`
	NY    float64 `csv:"ny"`
	NZ    float64 `csv:"nz"`
}

// WriteCSV writes one row per vertex. Normal columns are zero when the mesh
// has no per-vertex normals.
func WriteCSV(w io.Writer, m *mesh.Mesh) error {
	records := make([]VertexRecord, len(m.Vertices))
	withNormals := m.HasNormals()
	for i, v := range m.Vertices {
		r := VertexRecord{Index: i, X: v.X, Y: v.Y, Z: v.Z}
		if withNormals {
			n := m.Normals[i]
			r.NX, r.NY, r.NZ = n.X, n.Y, n.Z
		}
		records[i] = r
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// Save writes m to path, choosing the format from the extension
// (.ply or .csv). Parent directories are created.
func Save(path string, m *mesh.Mesh) error {
	var write func(io.Writer, *mesh.Mesh) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ply":
		write = WritePLY
	case ".csv":
		write = WriteCSV
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
