package meshio

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/wavemesh/mesh"
)

// PLYResult is a decoded PLY file.
type PLYResult struct {
	Mesh mesh.Mesh
	// Skipped counts rows of elements other than vertex, face and edge.
	Skipped int
}

type plyProperty struct {
	name string
	list bool
}

type plyElement struct {
	name  string
	count int
	props []plyProperty
}

// ReadPLY decodes an ASCII PLY stream. Vertex x/y/z and, when all three are
// present, nx/ny/nz are read. Faces are fan-triangulated into a triangle
// mesh; edges (vertex1, vertex2) give a line mesh; a file with neither is a
// point set.
func ReadPLY(r io.Reader) (PLYResult, error) {
	var res PLYResult
	sc := bufio.NewScanner(r)
	line := 0

	next := func() (string, bool) {
		for sc.Scan() {
			line++
			if text := strings.TrimSpace(sc.Text()); text != "" {
				return text, true
			}
		}
		return "", false
	}

	elements, err := readPLYHeader(next, &line)
	if err != nil {
		return res, err
	}

	var (
		vertices []r3.Vec
		normals  []r3.Vec
		tris     []uint32
		lines    []uint32
		hasFaces bool
		hasEdges bool
	)

	for _, el := range elements {
		for k := 0; k < el.count; k++ {
			text, ok := next()
			if !ok {
				return res, fmt.Errorf("%w: %s row %d: unexpected end of file", ErrParse, el.name, k)
			}
			values, err := parsePLYRow(el, strings.Fields(text))
			if err != nil {
				return res, fmt.Errorf("%w: line %d: %v", ErrParse, line, err)
			}

			switch el.name {
			case "vertex":
				vertices = append(vertices, r3.Vec{X: scalar(values, "x"), Y: scalar(values, "y"), Z: scalar(values, "z")})
				if hasNormalProps(el) {
					normals = append(normals, r3.Vec{X: scalar(values, "nx"), Y: scalar(values, "ny"), Z: scalar(values, "nz")})
				}
			case "face":
				hasFaces = true
				poly := values["vertex_indices"]
				if poly == nil {
					poly = values["vertex_index"]
				}
				for i := 1; i+1 < len(poly); i++ {
					tris = append(tris, uint32(poly[0]), uint32(poly[i]), uint32(poly[i+1]))
				}
			case "edge":
				hasEdges = true
				lines = append(lines, uint32(scalar(values, "vertex1")), uint32(scalar(values, "vertex2")))
			default:
				res.Skipped++
			}
		}
	}

	res.Mesh = mesh.Mesh{Vertices: vertices, Normals: normals, Mode: mesh.Points}
	switch {
	case hasFaces:
		res.Mesh.Indices, res.Mesh.Mode = tris, mesh.Triangles
	case hasEdges:
		res.Mesh.Indices, res.Mesh.Mode = lines, mesh.Lines
	}
	if err := res.Mesh.Validate(); err != nil {
		return res, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return res, nil
}

func readPLYHeader(next func() (string, bool), line *int) ([]plyElement, error) {
	if text, ok := next(); !ok || text != "ply" {
		return nil, fmt.Errorf("%w: missing ply magic", ErrParse)
	}

	var elements []plyElement
	for {
		text, ok := next()
		if !ok {
			return nil, fmt.Errorf("%w: missing end_header", ErrParse)
		}
		fields := strings.Fields(text)
		switch fields[0] {
		case "end_header":
			return elements, nil
		case "comment", "obj_info":
		case "format":
			if len(fields) < 2 || fields[1] != "ascii" {
				return nil, fmt.Errorf("%w: line %d: only ascii ply is supported", ErrParse, *line)
			}
		case "element":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: line %d: malformed element", ErrParse, *line)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: line %d: bad element count %q", ErrParse, *line, fields[2])
			}
			elements = append(elements, plyElement{name: fields[1], count: n})
		case "property":
			if len(elements) == 0 {
				return nil, fmt.Errorf("%w: line %d: property before element", ErrParse, *line)
			}
			el := &elements[len(elements)-1]
			switch {
			case len(fields) == 5 && fields[1] == "list":
				el.props = append(el.props, plyProperty{name: fields[4], list: true})
			case len(fields) == 3:
				el.props = append(el.props, plyProperty{name: fields[2]})
			default:
				return nil, fmt.Errorf("%w: line %d: malformed property", ErrParse, *line)
			}
		default:
			return nil, fmt.Errorf("%w: line %d: unknown header keyword %q", ErrParse, *line, fields[0])
		}
	}
}

// parsePLYRow maps each property of el to its values. Scalars get a single
// value.
func parsePLYRow(el plyElement, fields []string) (map[string][]float64, error) {
	values := make(map[string][]float64, len(el.props))
	pos := 0
	take := func() (float64, error) {
		if pos >= len(fields) {
			return 0, fmt.Errorf("%s row too short", el.name)
		}
		v, err := strconv.ParseFloat(fields[pos], 64)
		pos++
		return v, err
	}

	for _, p := range el.props {
		if !p.list {
			v, err := take()
			if err != nil {
				return nil, err
			}
			values[p.name] = []float64{v}
			continue
		}
		n, err := take()
		if err != nil {
			return nil, err
		}
		if n < 0 || n != float64(int(n)) {
			return nil, fmt.Errorf("bad list length %v", n)
		}
		list := make([]float64, int(n))
		for i := range list {
			if list[i], err = take(); err != nil {
				return nil, err
			}
		}
		values[p.name] = list
	}
	if pos != len(fields) {
		return nil, fmt.Errorf("%s row has %d extra values", el.name, len(fields)-pos)
	}
	return values, nil
}

func scalar(values map[string][]float64, name string) float64 {
	if v := values[name]; len(v) > 0 {
		return v[0]
	}
	return 0
}

func hasNormalProps(el plyElement) bool {
	found := 0
	for _, p := range el.props {
		switch p.name {
		case "nx", "ny", "nz":
			found++
		}
	}
	return found == 3
}

// LoadPLY reads a PLY file from disk.
func LoadPLY(path string) (mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return mesh.Mesh{}, fmt.Errorf("opening ply: %w", err)
	}
	defer f.Close()

	res, err := ReadPLY(f)
	if err != nil {
		return mesh.Mesh{}, fmt.Errorf("loading %s: %w", path, err)
	}
	if res.Skipped > 0 {
		slog.Debug("ply rows skipped", "path", path, "count", res.Skipped)
	}
	return res.Mesh, nil
}

// Load reads a mesh file, choosing the decoder from the extension (.obj or
// .ply).
func Load(path string) (mesh.Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		return LoadOBJ(path)
	case ".ply":
		return LoadPLY(path)
	default:
		return mesh.Mesh{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
