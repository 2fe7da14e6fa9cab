// Package renderer draws the particle mesh and its surroundings with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/wavemesh/camera"
	"github.com/pthm-cable/wavemesh/mesh"
)

// Scene draws the mesh through an orbital camera.
type Scene struct {
	Camera   *camera.Camera
	Mesh     *MeshRenderer
	Fovy     float32
	ShowGrid bool
}

// NewScene creates a scene with a 45 degree perspective camera.
func NewScene(cam *camera.Camera) *Scene {
	return &Scene{
		Camera:   cam,
		Mesh:     NewMeshRenderer(),
		Fovy:     45,
		ShowGrid: true,
	}
}

// Camera3D converts the orbital camera into a raylib camera.
func (s *Scene) Camera3D() rl.Camera3D {
	return rl.NewCamera3D(
		vec3(s.Camera.Position()),
		vec3(s.Camera.Target),
		rl.NewVector3(0, 1, 0),
		s.Fovy,
		rl.CameraPerspective,
	)
}

// HandleInput orbits with the left mouse button, pans with the right
// button and zooms with the wheel. Pass pointerBlocked while the mouse is
// over the GUI panel and typing while a text box has focus.
func (s *Scene) HandleInput(pointerBlocked, typing bool) {
	if !typing {
		if rl.IsKeyPressed(rl.KeyR) {
			s.Camera.Reset()
		}
		if rl.IsKeyPressed(rl.KeyG) {
			s.ShowGrid = !s.ShowGrid
		}
	}
	if pointerBlocked {
		return
	}

	delta := rl.GetMouseDelta()
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		s.Camera.Orbit(-float64(delta.X)*0.005, float64(delta.Y)*0.005)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		scale := s.Camera.Distance * 0.0015
		s.Camera.Pan(-float64(delta.X)*scale, float64(delta.Y)*scale)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		s.Camera.ZoomBy(1 + float64(wheel)*0.1)
	}
}

// Draw renders m in 3D. Call between rl.BeginDrawing and rl.EndDrawing.
func (s *Scene) Draw(m *mesh.Mesh) {
	rl.BeginMode3D(s.Camera3D())
	if s.ShowGrid {
		rl.DrawGrid(20, 50)
	}
	s.Mesh.Draw(m)
	rl.EndMode3D()
}
