package particles

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/wavemesh/depth"
	"github.com/pthm-cable/wavemesh/mesh"
)

// ErrInvalidGrid is returned for non-positive grid dimensions.
var ErrInvalidGrid = errors.New("invalid grid size")

// GridSpec describes the particle grid laid over the sensor frame.
type GridSpec struct {
	SizeX, SizeY   int
	RangeX, RangeY float64
}

// GridOptions hold the depth band used when placing grid particles.
type GridOptions struct {
	// MaxDistance is the far end of the valid band (0, MaxDistance].
	MaxDistance float64
	// ReferencePlane is the sensor distance that maps to z = 0.
	ReferencePlane float64
	// FallbackDepth is the z used for cells without a valid reading.
	FallbackDepth float64
}

// DefaultGridOptions returns an 80 cm depth band with the reference plane at
// its far edge, in millimetres.
func DefaultGridOptions() GridOptions {
	return GridOptions{MaxDistance: 800, ReferencePlane: 800, FallbackDepth: -1}
}

func (o GridOptions) withDefaults() GridOptions {
	if o == (GridOptions{}) {
		return DefaultGridOptions()
	}
	return o
}

var gridDirection = r3.Vec{Z: 1}

// BuildFromGrid replaces the particle set with a SizeX × SizeY grid sampled
// from src. Cells are visited column by column (x outer, y inner) so that
// particle k sits at GridIndex(k/SizeY, k%SizeY).
//
// If src is not ready the system ends up empty without error; callers
// detect this through VertexCount. On error the system is left exactly as
// it was.
func (s *System) BuildFromGrid(src depth.Source, g GridSpec, mode mesh.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("building from grid: %w: %d", mesh.ErrInvalidMode, uint8(mode))
	}
	if g.SizeX <= 0 || g.SizeY <= 0 {
		return fmt.Errorf("building from grid: %w: %dx%d", ErrInvalidGrid, g.SizeX, g.SizeY)
	}

	s.particles = s.particles[:0]
	s.mesh = mesh.Mesh{Mode: mode}
	s.source = SourceGrid
	s.gridX, s.gridY = g.SizeX, g.SizeY

	if src == nil || !src.IsReady() {
		return nil
	}

	xs := span(g.SizeX, g.RangeX)
	ys := span(g.SizeY, g.RangeY)
	xOffset := -g.RangeX / 2
	opts := s.grid

	particles := make([]Particle, 0, g.SizeX*g.SizeY)
	for i := 0; i < g.SizeX; i++ {
		for j := 0; j < g.SizeY; j++ {
			x, y := xs[i], ys[j]
			pos := r3.Vec{X: x + xOffset, Y: g.RangeY - y, Z: opts.FallbackDepth}
			if d := src.DistanceAt(x, y); d > 0 && d <= opts.MaxDistance {
				depthOffset := src.WorldAt(x, y).Z - opts.ReferencePlane
				pos.Z = -depthOffset
			}
			var p Particle
			p.Setup(pos, gridDirection)
			particles = append(particles, p)
		}
	}
	s.particles = particles

	s.mesh.Vertices = make([]r3.Vec, len(particles))
	for i := range particles {
		s.mesh.Vertices[i] = particles[i].position
	}

	switch mode {
	case mesh.Lines:
		s.mesh.Indices = s.gridLines()
	case mesh.Triangles:
		s.mesh.Indices = s.gridTriangles()
		s.mesh.RecomputeNormals()
	}
	return nil
}

// span returns n evenly spaced values covering [0, extent].
func span(n int, extent float64) []float64 {
	out := make([]float64, n)
	if n > 1 {
		floats.Span(out, 0, extent)
	}
	return out
}

// GridSize returns the dimensions of the last grid build, or zeros when the
// system was not built from a grid.
func (s *System) GridSize() (x, y int) {
	return s.gridX, s.gridY
}

// GridIndex maps grid coordinates to a particle/vertex index. Coordinates
// outside the grid wrap around, so the mapping is periodic in both axes.
// Returns -1 when no grid has been built.
func (s *System) GridIndex(x, y int) int {
	if s.gridX <= 0 || s.gridY <= 0 {
		return -1
	}
	return s.gridY*wrap(x, s.gridX) + wrap(y, s.gridY)
}

func wrap(v, n int) int {
	return ((v % n) + n) % n
}

// gridLines connects every cell to its right and lower neighbour.
func (s *System) gridLines() []uint32 {
	w, h := s.gridX, s.gridY
	lines := make([]uint32, 0, 2*((w-1)*h+w*(h-1)))
	for i := 0; i < w; i++ {
		for j := 0; j < h; j++ {
			a := uint32(s.GridIndex(i, j))
			if i+1 < w {
				lines = append(lines, a, uint32(s.GridIndex(i+1, j)))
			}
			if j+1 < h {
				lines = append(lines, a, uint32(s.GridIndex(i, j+1)))
			}
		}
	}
	return lines
}

// gridTriangles splits every interior quad along its (i,j)-(i+1,j+1)
// diagonal. Grid y runs downward in world space, so the winding below faces
// +Z on a flat grid.
func (s *System) gridTriangles() []uint32 {
	w, h := s.gridX, s.gridY
	if w < 2 || h < 2 {
		return nil
	}
	tris := make([]uint32, 0, 6*(w-1)*(h-1))
	for i := 0; i < w-1; i++ {
		for j := 0; j < h-1; j++ {
			a := uint32(s.GridIndex(i, j))
			b := uint32(s.GridIndex(i+1, j))
			c := uint32(s.GridIndex(i, j+1))
			d := uint32(s.GridIndex(i+1, j+1))
			tris = append(tris, a, d, b, a, c, d)
		}
	}
	return tris
}
