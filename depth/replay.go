package depth

import "gonum.org/v1/gonum/spatial/r3"

// Replay is a Device that serves a fixed Frame. Tilt is tracked so the
// host controls behave the same as with live hardware, but it does not
// change the recorded data.
type Replay struct {
	frame *Frame
	open  bool
	tilt  float64
}

// NewReplay wraps frame in a closed device.
func NewReplay(frame *Frame) *Replay {
	return &Replay{frame: frame}
}

// Open implements Device.
func (r *Replay) Open() error {
	r.open = true
	return nil
}

// Close implements Device.
func (r *Replay) Close() error {
	if !r.open {
		return ErrNotOpen
	}
	r.open = false
	return nil
}

// IsReady implements Source.
func (r *Replay) IsReady() bool { return r.open && r.frame != nil }

// SetTilt implements Device.
func (r *Replay) SetTilt(deg float64) float64 {
	r.tilt = ClampTilt(deg)
	return r.tilt
}

// Tilt implements Device.
func (r *Replay) Tilt() float64 { return r.tilt }

// Update implements Device. A recorded frame never changes.
func (r *Replay) Update(float64) {}

// DistanceAt implements Source.
func (r *Replay) DistanceAt(x, y float64) float64 {
	if !r.IsReady() {
		return 0
	}
	return r.frame.DistanceAt(x, y)
}

// WorldAt implements Source.
func (r *Replay) WorldAt(x, y float64) r3.Vec {
	if !r.IsReady() {
		return r3.Vec{}
	}
	return r.frame.WorldAt(x, y)
}
