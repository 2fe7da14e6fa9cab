package meshio

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/wavemesh/mesh"
)

// Sphere generates a UV sphere with outward unit normals. rings is the
// number of latitude bands (>= 2), slices the number of longitude bands
// (>= 3). Seam and pole vertices are duplicated so every ring has
// slices+1 vertices.
func Sphere(radius float64, rings, slices int) mesh.Mesh {
	rings = max(rings, 2)
	slices = max(slices, 3)

	n := (rings + 1) * (slices + 1)
	m := mesh.Mesh{
		Vertices: make([]r3.Vec, 0, n),
		Normals:  make([]r3.Vec, 0, n),
		Indices:  make([]uint32, 0, rings*slices*6),
		Mode:     mesh.Triangles,
	}

	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		sinPhi, cosPhi := math.Sincos(phi)
		for s := 0; s <= slices; s++ {
			theta := 2 * math.Pi * float64(s) / float64(slices)
			sinTheta, cosTheta := math.Sincos(theta)
			n := r3.Vec{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			m.Normals = append(m.Normals, n)
			m.Vertices = append(m.Vertices, r3.Scale(radius, n))
		}
	}

	stride := uint32(slices + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < slices; s++ {
			a := uint32(r)*stride + uint32(s)
			b := a + stride
			// Wound counter-clockwise seen from outside.
			m.Indices = append(m.Indices, a, a+1, b, b, a+1, b+1)
		}
	}
	return m
}
