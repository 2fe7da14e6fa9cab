package particles

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/wavemesh/depth"
	"github.com/pthm-cable/wavemesh/mesh"
)

func TestGridUninitializedSensor(t *testing.T) {
	s := NewSystem(Options{})
	err := s.BuildFromGrid(&fakeSource{ready: false}, GridSpec{SizeX: 4, SizeY: 4, RangeX: 640, RangeY: 480}, mesh.Triangles)
	if err != nil {
		t.Fatalf("not-ready sensor should not be an error: %v", err)
	}
	if s.Len() != 0 || s.VertexCount() != 0 {
		t.Errorf("expected empty system, got %d particles / %d vertices", s.Len(), s.VertexCount())
	}
	if x, y := s.GridSize(); x != 4 || y != 4 {
		t.Errorf("grid size = %dx%d, want 4x4", x, y)
	}
	if s.Source() != SourceGrid {
		t.Errorf("source = %v, want grid", s.Source())
	}
}

func TestGridNilSourceIsEmpty(t *testing.T) {
	s := NewSystem(Options{})
	if err := s.BuildFromGrid(nil, GridSpec{SizeX: 2, SizeY: 2}, mesh.Points); err != nil {
		t.Fatal(err)
	}
	if s.VertexCount() != 0 {
		t.Errorf("expected no vertices, got %d", s.VertexCount())
	}
}

func TestGridAllInvalidDistances(t *testing.T) {
	s := NewSystem(Options{})
	spec := GridSpec{SizeX: 2, SizeY: 2, RangeX: 100, RangeY: 50}
	if err := s.BuildFromGrid(&fakeSource{ready: true}, spec, mesh.Points); err != nil {
		t.Fatal(err)
	}
	checkAligned(t, s)

	if s.Len() != 4 {
		t.Fatalf("expected 4 particles, got %d", s.Len())
	}

	want := []r3.Vec{
		{X: -50, Y: 50, Z: -1}, // (0,0)
		{X: -50, Y: 0, Z: -1},  // (0,1)
		{X: 50, Y: 50, Z: -1},  // (1,0)
		{X: 50, Y: 0, Z: -1},   // (1,1)
	}
	for i, w := range want {
		p := s.Particle(i)
		if !near(p.Rest(), w) {
			t.Errorf("particle %d at %v, want %v", i, p.Rest(), w)
		}
		if p.Direction() != (r3.Vec{Z: 1}) {
			t.Errorf("particle %d direction = %v, want (0,0,1)", i, p.Direction())
		}
	}
}

func TestGridDepthBand(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		wantZ    float64
	}{
		{"zero is invalid", 0, -1},
		{"negative is invalid", -5, -1},
		{"inside band", 600, 200},
		{"at band limit", 800, 0},
		{"beyond band", 801, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{ready: true, distance: func(float64, float64) float64 { return tt.distance }}
			s := NewSystem(Options{})
			if err := s.BuildFromGrid(src, GridSpec{SizeX: 1, SizeY: 1, RangeX: 10, RangeY: 10}, mesh.Points); err != nil {
				t.Fatal(err)
			}
			if z := s.Particle(0).Rest().Z; math.Abs(z-tt.wantZ) > 1e-9 {
				t.Errorf("z = %v, want %v", z, tt.wantZ)
			}
		})
	}
}

func TestGridCustomBand(t *testing.T) {
	src := &fakeSource{ready: true, distance: func(float64, float64) float64 { return 1500 }}
	s := NewSystem(Options{Grid: GridOptions{MaxDistance: 2000, ReferencePlane: 1000, FallbackDepth: -10}})
	if err := s.BuildFromGrid(src, GridSpec{SizeX: 1, SizeY: 1}, mesh.Points); err != nil {
		t.Fatal(err)
	}
	if z := s.Particle(0).Rest().Z; z != -500 {
		t.Errorf("z = %v, want -500", z)
	}
}

func TestGridLinesCount(t *testing.T) {
	tests := []struct {
		w, h int
		want int
	}{
		{3, 3, 12},
		{2, 2, 4},
		{4, 2, 10},
		{1, 5, 4},
		{1, 1, 0},
	}

	for _, tt := range tests {
		s := NewSystem(Options{})
		if err := s.BuildFromGrid(&fakeSource{ready: true}, GridSpec{SizeX: tt.w, SizeY: tt.h, RangeX: 10, RangeY: 10}, mesh.Lines); err != nil {
			t.Fatal(err)
		}
		m := s.Mesh()
		if m.NumLines() != tt.want {
			t.Errorf("%dx%d grid: %d lines, want %d", tt.w, tt.h, m.NumLines(), tt.want)
		}
		if err := m.Validate(); err != nil {
			t.Errorf("%dx%d grid: invalid line mesh: %v", tt.w, tt.h, err)
		}
	}
}

func TestGridLinesConnectNeighbours(t *testing.T) {
	s := NewSystem(Options{})
	if err := s.BuildFromGrid(&fakeSource{ready: true}, GridSpec{SizeX: 3, SizeY: 3, RangeX: 10, RangeY: 10}, mesh.Lines); err != nil {
		t.Fatal(err)
	}
	m := s.Mesh()

	for k := 0; k < len(m.Indices); k += 2 {
		a, b := int(m.Indices[k]), int(m.Indices[k+1])
		ai, aj := a/3, a%3
		bi, bj := b/3, b%3
		di, dj := bi-ai, bj-aj
		if !(di == 1 && dj == 0) && !(di == 0 && dj == 1) {
			t.Errorf("segment %d-%d does not join right/lower neighbours", a, b)
		}
	}
}

func TestGridTriangles(t *testing.T) {
	sizes := []struct{ w, h int }{{2, 2}, {3, 3}, {5, 4}, {1, 4}}

	for _, sz := range sizes {
		s := NewSystem(Options{})
		spec := GridSpec{SizeX: sz.w, SizeY: sz.h, RangeX: 640, RangeY: 480}
		if err := s.BuildFromGrid(&fakeSource{ready: true}, spec, mesh.Triangles); err != nil {
			t.Fatal(err)
		}
		checkAligned(t, s)
		m := s.Mesh()

		wantTris := 2 * (sz.w - 1) * (sz.h - 1)
		if m.NumTriangles() != wantTris {
			t.Errorf("%dx%d: %d triangles, want %d", sz.w, sz.h, m.NumTriangles(), wantTris)
		}
		if len(m.Normals) != sz.w*sz.h {
			t.Errorf("%dx%d: %d normals, want %d", sz.w, sz.h, len(m.Normals), sz.w*sz.h)
		}
		for i, n := range m.Normals {
			l := r3.Norm(n)
			if l != 0 && math.Abs(l-1) > 1e-9 {
				t.Errorf("%dx%d: normal %d has length %v", sz.w, sz.h, i, l)
			}
			// A flat fallback grid faces the viewer.
			if wantTris > 0 && !near(n, r3.Vec{Z: 1}) {
				t.Errorf("%dx%d: normal %d = %v, want +Z", sz.w, sz.h, i, n)
			}
		}
	}
}

func TestGridTrianglesShareMainDiagonal(t *testing.T) {
	s := NewSystem(Options{})
	spec := GridSpec{SizeX: 2, SizeY: 2, RangeX: 10, RangeY: 10}
	if err := s.BuildFromGrid(&fakeSource{ready: true}, spec, mesh.Triangles); err != nil {
		t.Fatal(err)
	}
	a := uint32(s.GridIndex(0, 0))
	b := uint32(s.GridIndex(1, 0))
	c := uint32(s.GridIndex(0, 1))
	d := uint32(s.GridIndex(1, 1))
	want := []uint32{a, d, b, a, c, d}

	m := s.Mesh()
	if len(m.Indices) != len(want) {
		t.Fatalf("indices = %v, want %v", m.Indices, want)
	}
	for k := range want {
		if m.Indices[k] != want[k] {
			t.Fatalf("indices = %v, want %v", m.Indices, want)
		}
	}
}

func TestGridInvalidConfig(t *testing.T) {
	s := NewSystem(Options{})
	good := GridSpec{SizeX: 2, SizeY: 2, RangeX: 10, RangeY: 10}
	if err := s.BuildFromGrid(&fakeSource{ready: true}, good, mesh.Triangles); err != nil {
		t.Fatal(err)
	}

	if err := s.BuildFromGrid(&fakeSource{ready: true}, good, mesh.Mode(5)); !errors.Is(err, mesh.ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
	if err := s.BuildFromGrid(&fakeSource{ready: true}, GridSpec{SizeX: 0, SizeY: 3}, mesh.Points); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("expected ErrInvalidGrid, got %v", err)
	}

	if s.Len() != 4 || s.Mode() != mesh.Triangles {
		t.Errorf("failed build changed state: len=%d mode=%v", s.Len(), s.Mode())
	}
}

func TestGridIndexPeriodic(t *testing.T) {
	s := NewSystem(Options{})
	if err := s.BuildFromGrid(&fakeSource{ready: true}, GridSpec{SizeX: 5, SizeY: 3, RangeX: 10, RangeY: 10}, mesh.Points); err != nil {
		t.Fatal(err)
	}

	for x := -12; x <= 12; x++ {
		for y := -9; y <= 9; y++ {
			idx := s.GridIndex(x, y)
			if idx < 0 || idx >= 15 {
				t.Fatalf("GridIndex(%d,%d) = %d out of range", x, y, idx)
			}
			if s.GridIndex(x+5, y) != idx {
				t.Errorf("GridIndex not periodic in x at (%d,%d)", x, y)
			}
			if s.GridIndex(x, y+3) != idx {
				t.Errorf("GridIndex not periodic in y at (%d,%d)", x, y)
			}
		}
	}

	if got := s.GridIndex(2, 1); got != 3*2+1 {
		t.Errorf("GridIndex(2,1) = %d, want 7", got)
	}
	if got := s.GridIndex(-1, -1); got != 3*4+2 {
		t.Errorf("GridIndex(-1,-1) = %d, want 14", got)
	}
}

func TestGridIndexWithoutGrid(t *testing.T) {
	s := NewSystem(Options{})
	if err := s.BuildFromMesh(triangleSource(), mesh.Points); err != nil {
		t.Fatal(err)
	}
	if got := s.GridIndex(0, 0); got != -1 {
		t.Errorf("GridIndex on mesh system = %d, want -1", got)
	}
}

func TestGridFromFrame(t *testing.T) {
	intr := depth.Intrinsics{Width: 4, Height: 4, FocalLength: 0}
	f := depth.NewFrame(intr)
	f.Fill(700)

	s := NewSystem(Options{})
	if err := s.BuildFromGrid(f, GridSpec{SizeX: 4, SizeY: 4, RangeX: 3, RangeY: 3}, mesh.Points); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < s.Len(); i++ {
		if z := s.Particle(i).Rest().Z; z != 100 {
			t.Errorf("particle %d z = %v, want 100", i, z)
		}
	}
}

func TestModeSwitchRebuild(t *testing.T) {
	src := &fakeSource{ready: true}
	s := NewSystem(Options{})
	if err := s.BuildFromGrid(src, GridSpec{SizeX: 3, SizeY: 3, RangeX: 10, RangeY: 10}, mesh.Triangles); err != nil {
		t.Fatal(err)
	}
	if err := s.BuildFromGrid(src, GridSpec{SizeX: 3, SizeY: 3, RangeX: 10, RangeY: 10}, mesh.Lines); err != nil {
		t.Fatal(err)
	}
	m := s.Mesh()
	if m.Mode != mesh.Lines || m.NumLines() != 12 || len(m.Normals) != 0 {
		t.Errorf("after switch: mode=%v lines=%d normals=%d", m.Mode, m.NumLines(), len(m.Normals))
	}

	if err := s.BuildFromMesh(triangleSource(), mesh.Triangles); err != nil {
		t.Fatal(err)
	}
	if s.Source() != SourceMesh || s.Len() != 3 {
		t.Errorf("mesh rebuild: source=%v len=%d", s.Source(), s.Len())
	}
	if x, y := s.GridSize(); x != 0 || y != 0 {
		t.Errorf("grid size should reset after mesh build, got %dx%d", x, y)
	}
}
