// Package meshio reads and writes the mesh records used by the particle
// system. Only the vertex/normal/face subset of each format is handled.
package meshio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/wavemesh/mesh"
)

// ErrParse is wrapped by all decoding errors.
var ErrParse = errors.New("mesh parse error")

// OBJResult is a decoded Wavefront OBJ file.
type OBJResult struct {
	Mesh mesh.Mesh
	// Skipped counts records that were ignored (texture coords, materials,
	// groups, ...).
	Skipped int
}

// ReadOBJ decodes the v/vn/f records of an OBJ stream into a triangle mesh.
// Polygons are fan-triangulated. Normals are kept only when every vertex is
// paired with the same normal in every face that uses it.
func ReadOBJ(r io.Reader) (OBJResult, error) {
	var (
		res      OBJResult
		vertices []r3.Vec
		normals  []r3.Vec
		indices  []uint32
		// normalOf maps a vertex to the normal index it was paired with,
		// -1 if unseen. consistent goes false on the first conflict.
		normalOf   []int
		consistent = true
	)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.Fields(text)

		switch fields[0] {
		case "v":
			v, err := parseVec(fields[1:])
			if err != nil {
				return res, fmt.Errorf("%w: line %d: %v", ErrParse, line, err)
			}
			vertices = append(vertices, v)
			normalOf = append(normalOf, -1)
		case "vn":
			n, err := parseVec(fields[1:])
			if err != nil {
				return res, fmt.Errorf("%w: line %d: %v", ErrParse, line, err)
			}
			normals = append(normals, n)
		case "f":
			if len(fields) < 4 {
				return res, fmt.Errorf("%w: line %d: face needs at least 3 vertices", ErrParse, line)
			}
			face := make([]uint32, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				vi, ni, err := parseFaceVertex(tok, len(vertices), len(normals))
				if err != nil {
					return res, fmt.Errorf("%w: line %d: %v", ErrParse, line, err)
				}
				switch {
				case ni < 0:
					consistent = false
				case normalOf[vi] == -1:
					normalOf[vi] = ni
				case normalOf[vi] != ni:
					consistent = false
				}
				face = append(face, uint32(vi))
			}
			for k := 1; k+1 < len(face); k++ {
				indices = append(indices, face[0], face[k], face[k+1])
			}
		default:
			res.Skipped++
		}
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("reading obj: %w", err)
	}

	res.Mesh = mesh.Mesh{Vertices: vertices, Indices: indices, Mode: mesh.Triangles}
	if consistent && len(indices) > 0 {
		res.Mesh.Normals = make([]r3.Vec, len(vertices))
		for i, ni := range normalOf {
			if ni < 0 {
				// Vertex not referenced by any face.
				res.Mesh.Normals = nil
				break
			}
			res.Mesh.Normals[i] = normals[ni]
		}
	}
	return res, nil
}

// LoadOBJ reads an OBJ file from disk.
func LoadOBJ(path string) (mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return mesh.Mesh{}, fmt.Errorf("opening obj: %w", err)
	}
	defer f.Close()

	res, err := ReadOBJ(f)
	if err != nil {
		return mesh.Mesh{}, fmt.Errorf("loading %s: %w", path, err)
	}
	if res.Skipped > 0 {
		slog.Debug("obj records skipped", "path", path, "count", res.Skipped)
	}
	return res.Mesh, nil
}

func parseVec(fields []string) (r3.Vec, error) {
	if len(fields) < 3 {
		return r3.Vec{}, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	var c [3]float64
	for i := range c {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return r3.Vec{}, err
		}
		c[i] = v
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// parseFaceVertex parses "v", "v/vt", "v//vn" or "v/vt/vn" into zero-based
// vertex and normal indices. The normal index is -1 when absent.
func parseFaceVertex(tok string, nVerts, nNormals int) (vi, ni int, err error) {
	parts := strings.Split(tok, "/")
	vi, err = resolveIndex(parts[0], nVerts)
	if err != nil {
		return 0, 0, fmt.Errorf("vertex index %q: %w", tok, err)
	}
	ni = -1
	if len(parts) == 3 && parts[2] != "" {
		ni, err = resolveIndex(parts[2], nNormals)
		if err != nil {
			return 0, 0, fmt.Errorf("normal index %q: %w", tok, err)
		}
	}
	return vi, ni, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i = n + i
	default:
		return 0, errors.New("index 0 is not valid")
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("index out of range (%d of %d)", i, n)
	}
	return i, nil
}
