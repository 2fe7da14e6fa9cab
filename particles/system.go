package particles

import (
	"fmt"
	"runtime"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/wavemesh/mesh"
	"github.com/pthm-cable/wavemesh/wave"
)

// SourceKind identifies what the current particle set was built from.
type SourceKind uint8

const (
	SourceNone SourceKind = iota
	SourceMesh
	SourceGrid
)

func (k SourceKind) String() string {
	switch k {
	case SourceMesh:
		return "mesh"
	case SourceGrid:
		return "grid"
	default:
		return "none"
	}
}

// Params are the per-frame animation parameters.
type Params struct {
	Amplitude float64
	Frequency float64
	Scale     float64
}

// Options configure a System. Zero values fall back to defaults.
type Options struct {
	// DedupeLines drops duplicate shared edges when deriving line topology
	// from triangles.
	DedupeLines bool
	// Workers is the number of goroutines used for per-particle updates
	// (0 = GOMAXPROCS, 1 = always serial).
	Workers int
	// ParallelThreshold is the minimum particle count before updates are
	// split across workers.
	ParallelThreshold int
	Grid              GridOptions
}

// System owns an ordered particle set and the mesh mirroring it. Particle i
// always corresponds to mesh vertex i.
type System struct {
	particles []Particle
	mesh      mesh.Mesh
	source    SourceKind
	gridX     int
	gridY     int

	dedupeLines bool
	workers     int
	threshold   int
	grid        GridOptions
}

// NewSystem creates an empty system.
func NewSystem(opts Options) *System {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	threshold := opts.ParallelThreshold
	if threshold <= 0 {
		threshold = defaultParallelThreshold
	}
	return &System{
		dedupeLines: opts.DedupeLines,
		workers:     workers,
		threshold:   threshold,
		grid:        opts.Grid.withDefaults(),
	}
}

// SetDedupeLines changes the line derivation policy for subsequent builds.
func (s *System) SetDedupeLines(dedupe bool) {
	s.dedupeLines = dedupe
}

// BuildFromMesh replaces the particle set with one particle per source
// vertex, displaced along the vertex normal. Missing or partial normals are
// replaced by smooth normals computed from the source triangles.
//
// A source without indices is read as a triangle soup when its vertex count
// is a multiple of three, and as a bare point set otherwise.
//
// On error the system is left exactly as it was.
func (s *System) BuildFromMesh(src mesh.Mesh, mode mesh.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("building from mesh: %w: %d", mesh.ErrInvalidMode, uint8(mode))
	}

	tris := src.Indices
	if len(tris) == 0 && len(src.Vertices)%3 == 0 {
		tris = mesh.SequentialIndices(len(src.Vertices))
	}
	if err := mesh.ValidateTriangles(tris, len(src.Vertices)); err != nil {
		return fmt.Errorf("building from mesh: %w", err)
	}

	next := mesh.Mesh{
		Vertices: append([]r3.Vec(nil), src.Vertices...),
		Mode:     mode,
	}
	if len(src.Normals) == len(src.Vertices) {
		next.Normals = append([]r3.Vec(nil), src.Normals...)
	} else {
		next.Normals = mesh.SmoothNormals(next.Vertices, tris)
	}

	particles := make([]Particle, len(next.Vertices))
	for i := range particles {
		particles[i].Setup(next.Vertices[i], next.Normals[i])
	}

	switch mode {
	case mesh.Lines:
		lines, err := mesh.TrianglesToLines(tris, s.dedupeLines)
		if err != nil {
			return fmt.Errorf("building from mesh: %w", err)
		}
		next.Indices = lines
	case mesh.Triangles:
		next.Indices = append([]uint32(nil), tris...)
	}

	s.particles = particles
	s.mesh = next
	s.source = SourceMesh
	s.gridX, s.gridY = 0, 0
	return nil
}

// Update advances every particle to elapsed seconds and writes the new
// positions into the mesh. In Triangles mode normals are recomputed after
// all positions are written.
func (s *System) Update(w wave.Func, p Params, elapsed float64) {
	if len(s.particles) == 0 {
		return
	}
	s.updateParticles(w, p, elapsed)
	if s.mesh.Mode == mesh.Triangles {
		s.mesh.RecomputeNormals()
	}
}

func (s *System) updateRange(start, end int, w wave.Func, p Params, elapsed float64) {
	for i := start; i < end; i++ {
		pt := &s.particles[i]
		pt.Update(w, p.Amplitude, p.Frequency, p.Scale, elapsed)
		s.mesh.Vertices[i] = pt.position
	}
}

// Len returns the number of particles.
func (s *System) Len() int { return len(s.particles) }

// VertexCount returns the number of mesh vertices. A grid system built
// against a sensor that was not ready reports 0.
func (s *System) VertexCount() int { return len(s.mesh.Vertices) }

// IndexCount returns the length of the mesh index list.
func (s *System) IndexCount() int { return len(s.mesh.Indices) }

// Mode returns the current display mode.
func (s *System) Mode() mesh.Mode { return s.mesh.Mode }

// Source returns what the current particle set was built from.
func (s *System) Source() SourceKind { return s.source }

// Particle returns a copy of particle i.
func (s *System) Particle(i int) Particle { return s.particles[i] }

// Particles returns a copy of the particle set.
func (s *System) Particles() []Particle {
	return append([]Particle(nil), s.particles...)
}

// Mesh returns a deep copy of the current mesh.
func (s *System) Mesh() mesh.Mesh {
	return s.mesh.Clone()
}

// CopyMesh copies the current mesh into dst, reusing dst's buffers.
func (s *System) CopyMesh(dst *mesh.Mesh) {
	dst.Vertices = append(dst.Vertices[:0], s.mesh.Vertices...)
	dst.Normals = append(dst.Normals[:0], s.mesh.Normals...)
	dst.Indices = append(dst.Indices[:0], s.mesh.Indices...)
	dst.Mode = s.mesh.Mode
}
