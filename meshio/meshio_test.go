package meshio

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/wavemesh/mesh"
)

const quadOBJ = `# unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
`

func TestReadOBJQuad(t *testing.T) {
	res, err := ReadOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatal(err)
	}
	m := res.Mesh

	if m.VertexCount() != 4 {
		t.Errorf("vertices = %d, want 4", m.VertexCount())
	}
	if m.NumTriangles() != 2 {
		t.Errorf("triangles = %d, want 2 (fan)", m.NumTriangles())
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	for i := range want {
		if m.Indices[i] != want[i] {
			t.Fatalf("indices = %v, want %v", m.Indices, want)
		}
	}
	if !m.HasNormals() || m.Normals[2] != (r3.Vec{Z: 1}) {
		t.Errorf("normals = %v, want one +Z per vertex", m.Normals)
	}
	if res.Skipped != 2 {
		t.Errorf("skipped = %d, want 2 (o, vt)", res.Skipped)
	}
}

func TestReadOBJNegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	res, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Mesh.Indices; len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Errorf("indices = %v, want [0 1 2]", got)
	}
	if res.Mesh.Normals != nil {
		t.Error("faces without normals should leave Normals nil")
	}
}

func TestReadOBJInconsistentNormalsDropped(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
vn 0 0 1
vn 0 0 -1
f 1//1 2//1 3//1
f 2//2 4//2 3//2
`
	res, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if res.Mesh.Normals != nil {
		t.Errorf("vertices with conflicting normals should drop Normals, got %v", res.Mesh.Normals)
	}
}

func TestReadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad float", "v 0 x 0\n"},
		{"short vertex", "v 0 0\n"},
		{"index zero", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"index out of range", "v 0 0 0\nf 1 2 3\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadOBJ(strings.NewReader(tt.src))
			if !errors.Is(err, ErrParse) {
				t.Errorf("error = %v, want ErrParse", err)
			}
		})
	}
}

func TestLoadOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	if err := os.WriteFile(path, []byte(quadOBJ), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadOBJ(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.VertexCount() != 4 {
		t.Errorf("vertices = %d, want 4", m.VertexCount())
	}

	if _, err := LoadOBJ(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("expected error for missing file")
	}
}

func triangle() *mesh.Mesh {
	return &mesh.Mesh{
		Vertices: []r3.Vec{{}, {X: 1}, {Y: 1}},
		Normals:  []r3.Vec{{Z: 1}, {Z: 1}, {Z: 1}},
		Indices:  []uint32{0, 1, 2},
		Mode:     mesh.Triangles,
	}
}

func TestWritePLYTriangles(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePLY(&buf, triangle()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"element vertex 3\n",
		"property float nx\n",
		"element face 1\n",
		"end_header\n",
		"3 0 1 2\n",
		"1 0 0 0 0 1\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ply output missing %q:\n%s", want, out)
		}
	}
}

func TestWritePLYLinesAndPoints(t *testing.T) {
	lines := &mesh.Mesh{
		Vertices: []r3.Vec{{}, {X: 1}},
		Indices:  []uint32{0, 1},
		Mode:     mesh.Lines,
	}
	var buf bytes.Buffer
	if err := WritePLY(&buf, lines); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "element edge 1\n") || strings.Contains(buf.String(), "nx") {
		t.Errorf("unexpected line ply:\n%s", buf.String())
	}

	points := &mesh.Mesh{Vertices: []r3.Vec{{X: 2}}, Mode: mesh.Points}
	buf.Reset()
	if err := WritePLY(&buf, points); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "element face") || strings.Contains(buf.String(), "element edge") {
		t.Errorf("points ply should have vertices only:\n%s", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, triangle()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(lines))
	}
	if lines[0] != "index,x,y,z,nx,ny,nz" {
		t.Errorf("header = %q", lines[0])
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"out/a.ply", "b.CSV"} {
		path := filepath.Join(dir, name)
		if err := Save(path, triangle()); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("Save(%s) wrote nothing: %v", name, err)
		}
	}

	if err := Save(filepath.Join(dir, "c.stl"), triangle()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSphere(t *testing.T) {
	m := Sphere(2, 8, 12)

	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if m.VertexCount() != 9*13 {
		t.Errorf("vertices = %d, want %d", m.VertexCount(), 9*13)
	}
	if m.NumTriangles() != 8*12*2 {
		t.Errorf("triangles = %d, want %d", m.NumTriangles(), 8*12*2)
	}
	for i, v := range m.Vertices {
		if math.Abs(r3.Norm(v)-2) > 1e-9 {
			t.Fatalf("vertex %d at radius %v, want 2", i, r3.Norm(v))
		}
		if math.Abs(r3.Norm(m.Normals[i])-1) > 1e-9 {
			t.Fatalf("normal %d not unit", i)
		}
	}

	// Non-degenerate triangles face outward.
	for k := 0; k < len(m.Indices); k += 3 {
		a, b, c := m.Vertices[m.Indices[k]], m.Vertices[m.Indices[k+1]], m.Vertices[m.Indices[k+2]]
		n := mesh.FaceNormal(a, b, c)
		if r3.Norm(n) < 1e-12 {
			continue
		}
		centroid := r3.Scale(1.0/3, r3.Add(a, r3.Add(b, c)))
		if r3.Dot(n, centroid) <= 0 {
			t.Fatalf("triangle %d faces inward", k/3)
		}
	}
}

func TestPLYRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		m    *mesh.Mesh
	}{
		{"triangles with normals", triangle()},
		{"lines", &mesh.Mesh{
			Vertices: []r3.Vec{{}, {X: 1.5}, {Y: -2.25}},
			Indices:  []uint32{0, 1, 1, 2},
			Mode:     mesh.Lines,
		}},
		{"points", &mesh.Mesh{Vertices: []r3.Vec{{X: 2, Y: 3, Z: 4}}, Mode: mesh.Points}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WritePLY(&buf, tt.m); err != nil {
				t.Fatal(err)
			}
			res, err := ReadPLY(&buf)
			if err != nil {
				t.Fatal(err)
			}
			got := res.Mesh
			if got.Mode != tt.m.Mode {
				t.Errorf("mode = %v, want %v", got.Mode, tt.m.Mode)
			}
			if len(got.Vertices) != len(tt.m.Vertices) {
				t.Fatalf("%d vertices, want %d", len(got.Vertices), len(tt.m.Vertices))
			}
			for i := range got.Vertices {
				if got.Vertices[i] != tt.m.Vertices[i] {
					t.Errorf("vertex %d = %v, want %v", i, got.Vertices[i], tt.m.Vertices[i])
				}
			}
			if len(got.Normals) != len(tt.m.Normals) {
				t.Errorf("%d normals, want %d", len(got.Normals), len(tt.m.Normals))
			}
			for i := range got.Normals {
				if got.Normals[i] != tt.m.Normals[i] {
					t.Errorf("normal %d = %v, want %v", i, got.Normals[i], tt.m.Normals[i])
				}
			}
			if len(got.Indices) != len(tt.m.Indices) {
				t.Fatalf("indices = %v, want %v", got.Indices, tt.m.Indices)
			}
			for i := range got.Indices {
				if got.Indices[i] != tt.m.Indices[i] {
					t.Errorf("indices = %v, want %v", got.Indices, tt.m.Indices)
					break
				}
			}
		})
	}
}

func TestReadPLYQuadFan(t *testing.T) {
	src := `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
property uchar red
element face 1
property list uchar int vertex_indices
element material 1
property float shine
end_header
0 0 0 255
1 0 0 255
1 1 0 255
0 1 0 255
4 0 1 2 3
0.5
`
	res, err := ReadPLY(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if res.Mesh.Mode != mesh.Triangles || res.Mesh.NumTriangles() != 2 {
		t.Errorf("mode %v with %d triangles, want 2 triangles", res.Mesh.Mode, res.Mesh.NumTriangles())
	}
	if res.Mesh.Normals != nil {
		t.Error("normals should be absent")
	}
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", res.Skipped)
	}
}

func TestReadPLYErrors(t *testing.T) {
	header := "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nproperty float z\n"
	tests := []struct {
		name string
		src  string
	}{
		{"no magic", "format ascii 1.0\nend_header\n"},
		{"binary", "ply\nformat binary_little_endian 1.0\nend_header\n"},
		{"no end_header", header},
		{"short body", header + "end_header\n"},
		{"bad number", header + "end_header\n0 x 0\n"},
		{"extra values", header + "end_header\n0 0 0 0\n"},
		{"index out of range", header + "element face 1\nproperty list uchar uint vertex_indices\nend_header\n0 0 0\n3 0 1 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadPLY(strings.NewReader(tt.src)); !errors.Is(err, ErrParse) {
				t.Errorf("err = %v, want ErrParse", err)
			}
		})
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	plyPath := filepath.Join(dir, "tri.ply")
	if err := Save(plyPath, triangle()); err != nil {
		t.Fatal(err)
	}
	objPath := filepath.Join(dir, "tri.OBJ")
	if err := os.WriteFile(objPath, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{plyPath, objPath} {
		m, err := Load(path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if m.NumTriangles() != 1 || m.VertexCount() != 3 {
			t.Errorf("%s: %d triangles over %d vertices", path, m.NumTriangles(), m.VertexCount())
		}
	}

	if _, err := Load(filepath.Join(dir, "tri.stl")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("stl err = %v, want ErrUnsupportedFormat", err)
	}
}
