package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func vecNear(a, b r3.Vec, eps float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= eps
}

func TestNew(t *testing.T) {
	cam := New(r3.Vec{Y: 200}, 600)

	// Yaw and pitch zero put the eye on +Z of the target
	if p := cam.Position(); !vecNear(p, r3.Vec{Y: 200, Z: 600}, 1e-9) {
		t.Errorf("expected eye at (0, 200, 600), got %v", p)
	}
	if cam.MinDistance != 30 || cam.MaxDistance != 6000 {
		t.Errorf("unexpected distance limits %v..%v", cam.MinDistance, cam.MaxDistance)
	}
}

func TestOrbitKeepsDistance(t *testing.T) {
	cam := New(r3.Vec{X: 1, Y: 2, Z: 3}, 10)

	testCases := []struct{ yaw, pitch float64 }{
		{math.Pi / 2, 0},
		{0.3, 0.4},
		{-2, -0.7},
	}

	for _, tc := range testCases {
		cam.Orbit(tc.yaw, tc.pitch)
		d := r3.Norm(r3.Sub(cam.Position(), cam.Target))
		if math.Abs(d-10) > 1e-9 {
			t.Errorf("after orbit (%v, %v) distance = %v, want 10", tc.yaw, tc.pitch, d)
		}
	}
}

func TestOrbitQuarterTurn(t *testing.T) {
	cam := New(r3.Vec{}, 5)
	cam.Orbit(math.Pi/2, 0)

	if p := cam.Position(); !vecNear(p, r3.Vec{X: 5}, 1e-9) {
		t.Errorf("expected eye at (5, 0, 0), got %v", p)
	}
}

func TestPitchClamp(t *testing.T) {
	cam := New(r3.Vec{}, 5)

	cam.Orbit(0, 10)
	if cam.Pitch != maxPitch {
		t.Errorf("expected pitch clamped to %v, got %v", maxPitch, cam.Pitch)
	}
	cam.Orbit(0, -20)
	if cam.Pitch != -maxPitch {
		t.Errorf("expected pitch clamped to %v, got %v", -maxPitch, cam.Pitch)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(r3.Vec{}, 100)

	cam.ZoomBy(1000) // Far too close
	if cam.Distance != cam.MinDistance {
		t.Errorf("expected distance clamped to %v, got %v", cam.MinDistance, cam.Distance)
	}

	cam.SetDistance(1e9) // Far too far
	if cam.Distance != cam.MaxDistance {
		t.Errorf("expected distance clamped to %v, got %v", cam.MaxDistance, cam.Distance)
	}

	before := cam.Distance
	cam.ZoomBy(0)
	if cam.Distance != before {
		t.Error("zero zoom factor should be ignored")
	}
}

func TestPanMovesTargetSideways(t *testing.T) {
	cam := New(r3.Vec{}, 10)
	cam.Pan(3, 0)

	// Looking down -Z, screen right is +X
	if !vecNear(cam.Target, r3.Vec{X: 3}, 1e-9) {
		t.Errorf("expected target (3, 0, 0), got %v", cam.Target)
	}
	cam.Pan(0, 2)
	if !vecNear(cam.Target, r3.Vec{X: 3, Y: 2}, 1e-9) {
		t.Errorf("expected target (3, 2, 0), got %v", cam.Target)
	}
}

func TestFrameFitsBounds(t *testing.T) {
	cam := New(r3.Vec{}, 1)
	lo := r3.Vec{X: -320, Y: 0, Z: -10}
	hi := r3.Vec{X: 320, Y: 480, Z: 10}
	cam.Frame(lo, hi, 45)

	if !vecNear(cam.Target, r3.Vec{Y: 240}, 1e-9) {
		t.Errorf("expected target at box centre, got %v", cam.Target)
	}
	radius := r3.Norm(r3.Sub(hi, lo)) / 2
	if cam.Distance < radius {
		t.Errorf("distance %v does not clear bounding radius %v", cam.Distance, radius)
	}
}

func TestReset(t *testing.T) {
	cam := New(r3.Vec{Y: 1}, 10)
	cam.Orbit(1, 0.5)
	cam.Pan(4, 4)
	cam.ZoomBy(2)

	cam.Reset()

	if cam.Target != (r3.Vec{Y: 1}) || cam.Yaw != 0 || cam.Pitch != 0 || cam.Distance != 10 {
		t.Errorf("expected home pose, got target %v yaw %v pitch %v distance %v",
			cam.Target, cam.Yaw, cam.Pitch, cam.Distance)
	}
}
