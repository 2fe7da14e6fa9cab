package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/wavemesh/mesh"
)

// MeshRenderer draws a mesh.Mesh in immediate mode according to its
// display mode.
type MeshRenderer struct {
	// Light is the direction towards the key light. It need not be unit length.
	Light r3.Vec

	Surface rl.Color
	Wire    rl.Color
	Point   rl.Color

	// Ambient is the minimum brightness of an unlit face in [0, 1].
	Ambient float64
}

// NewMeshRenderer creates a renderer with the default palette.
func NewMeshRenderer() *MeshRenderer {
	return &MeshRenderer{
		Light:   r3.Vec{X: 500, Y: 300, Z: 500},
		Surface: rl.Color{R: 51, G: 128, B: 179, A: 255},
		Wire:    rl.Color{R: 120, G: 190, B: 230, A: 255},
		Point:   rl.Color{R: 200, G: 230, B: 255, A: 255},
		Ambient: 0.2,
	}
}

// Draw renders m. Call between rl.BeginMode3D and rl.EndMode3D.
func (r *MeshRenderer) Draw(m *mesh.Mesh) {
	switch m.Mode {
	case mesh.Points:
		r.drawPoints(m)
	case mesh.Lines:
		r.drawLines(m)
	case mesh.Triangles:
		r.drawTriangles(m)
	}
}

func (r *MeshRenderer) drawPoints(m *mesh.Mesh) {
	for _, v := range m.Vertices {
		rl.DrawPoint3D(vec3(v), r.Point)
	}
}

func (r *MeshRenderer) drawLines(m *mesh.Mesh) {
	idx := m.Indices
	for i := 0; i+1 < len(idx); i += 2 {
		rl.DrawLine3D(vec3(m.Vertices[idx[i]]), vec3(m.Vertices[idx[i+1]]), r.Wire)
	}
}

func (r *MeshRenderer) drawTriangles(m *mesh.Mesh) {
	light := r3.Unit(r.Light)
	smooth := m.HasNormals()

	// Both sides of the surface are visible; the grid faces +Z and loaded
	// meshes may be open.
	rl.DisableBackfaceCulling()
	defer rl.EnableBackfaceCulling()

	idx := m.Indices
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := m.Vertices[idx[i]], m.Vertices[idx[i+1]], m.Vertices[idx[i+2]]

		var n r3.Vec
		if smooth {
			n = r3.Add(r3.Add(m.Normals[idx[i]], m.Normals[idx[i+1]]), m.Normals[idx[i+2]])
		} else {
			n = mesh.FaceNormal(a, b, c)
		}
		col := Shade(r.Surface, n, light, r.Ambient)
		rl.DrawTriangle3D(vec3(a), vec3(b), vec3(c), col)
	}
}

// Shade scales base by a two-sided Lambert term of normal n against the
// unit light direction. A zero normal gets ambient only.
func Shade(base rl.Color, n, light r3.Vec, ambient float64) rl.Color {
	k := ambient
	if l := r3.Norm(n); l > 0 {
		k += (1 - ambient) * math.Abs(r3.Dot(n, light)) / l
	}
	k = max(0, min(1, k))
	return rl.Color{
		R: uint8(float64(base.R) * k),
		G: uint8(float64(base.G) * k),
		B: uint8(float64(base.B) * k),
		A: base.A,
	}
}

func vec3(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}
