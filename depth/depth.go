// Package depth defines the narrow capability interface the particle system
// consumes from a depth sensor, plus device implementations that do not
// need vendor SDKs.
package depth

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNotOpen is returned by operations that need an open device.
var ErrNotOpen = errors.New("depth device not open")

// Source is the per-pixel query surface of a depth sensor. Coordinates are
// in sensor pixel space. A distance of 0 means no reading.
type Source interface {
	IsReady() bool
	DistanceAt(x, y float64) float64
	WorldAt(x, y float64) r3.Vec
}

// Device is a Source whose lifecycle the host controls.
type Device interface {
	Source
	Open() error
	Close() error
	// SetTilt requests a motor angle in degrees and returns the angle
	// actually applied after clamping.
	SetTilt(deg float64) float64
	Tilt() float64
	// Update refreshes the current frame. Called once per host frame
	// before any geometry queries.
	Update(elapsed float64)
}

// Tilt motor limits in degrees.
const (
	MinTilt = -30.0
	MaxTilt = 30.0
)

// ClampTilt limits a tilt request to the motor range.
func ClampTilt(deg float64) float64 {
	return max(MinTilt, min(MaxTilt, deg))
}

// Intrinsics is a pinhole camera model used to back-project pixels.
type Intrinsics struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	FocalLength float64 `yaml:"focal_length"` // pixels
}

// DefaultIntrinsics approximates a first generation structured-light sensor.
func DefaultIntrinsics() Intrinsics {
	return Intrinsics{Width: 640, Height: 480, FocalLength: 580}
}

// Unproject returns the world coordinate of pixel (x, y) at distance d,
// in the same unit as d. The optical axis is +Z.
func (in Intrinsics) Unproject(x, y, d float64) r3.Vec {
	if in.FocalLength == 0 {
		return r3.Vec{X: x, Y: y, Z: d}
	}
	cx := float64(in.Width) / 2
	cy := float64(in.Height) / 2
	return r3.Vec{
		X: (x - cx) * d / in.FocalLength,
		Y: (y - cy) * d / in.FocalLength,
		Z: d,
	}
}

// Contains reports whether (x, y) lies inside the sensor frame.
func (in Intrinsics) Contains(x, y float64) bool {
	return x >= 0 && y >= 0 && x < float64(in.Width) && y < float64(in.Height)
}
