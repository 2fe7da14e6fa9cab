// Package camera provides an orbital camera for viewing the particle mesh.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera orbits a target point. Yaw and Pitch are in radians; yaw 0 looks
// down -Z from the +Z side.
type Camera struct {
	// Target is the point the camera looks at
	Target r3.Vec

	Yaw, Pitch float64

	// Distance from the target
	Distance float64

	// Distance constraints
	MinDistance, MaxDistance float64

	home pose
}

// pose is the part of the camera restored by Reset.
type pose struct {
	target     r3.Vec
	yaw, pitch float64
	distance   float64
}

// maxPitch keeps the camera off the poles where the up vector degenerates.
const maxPitch = math.Pi/2 - 0.01

// New creates a camera looking at target from distance along +Z.
func New(target r3.Vec, distance float64) *Camera {
	c := &Camera{
		Target:      target,
		Distance:    distance,
		MinDistance: distance / 20,
		MaxDistance: distance * 10,
	}
	c.home = c.snapshot()
	return c
}

func (c *Camera) snapshot() pose {
	return pose{target: c.Target, yaw: c.Yaw, pitch: c.Pitch, distance: c.Distance}
}

// Position returns the eye position in world coordinates.
func (c *Camera) Position() r3.Vec {
	sinYaw, cosYaw := math.Sincos(c.Yaw)
	sinPitch, cosPitch := math.Sincos(c.Pitch)
	offset := r3.Vec{
		X: c.Distance * cosPitch * sinYaw,
		Y: c.Distance * sinPitch,
		Z: c.Distance * cosPitch * cosYaw,
	}
	return r3.Add(c.Target, offset)
}

// Orbit rotates the camera by the given yaw and pitch deltas in radians.
// Pitch is clamped short of straight up or down.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// Pan moves the target in the camera's view plane by dx, dy world units.
func (c *Camera) Pan(dx, dy float64) {
	forward := r3.Unit(r3.Sub(c.Target, c.Position()))
	right := r3.Unit(r3.Cross(forward, r3.Vec{Y: 1}))
	up := r3.Cross(right, forward)
	c.Target = r3.Add(c.Target, r3.Add(r3.Scale(dx, right), r3.Scale(dy, up)))
}

// SetDistance sets the orbit radius, clamped to min/max.
func (c *Camera) SetDistance(d float64) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy divides the orbit radius by factor; factors above 1 move closer.
func (c *Camera) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// Frame centres the camera on the box lo..hi at a distance that fits it
// inside a vertical field of view of fovy degrees, and makes that the home
// pose.
func (c *Camera) Frame(lo, hi r3.Vec, fovy float64) {
	c.Target = r3.Scale(0.5, r3.Add(lo, hi))
	radius := r3.Norm(r3.Sub(hi, lo)) / 2
	if radius == 0 {
		radius = 1
	}
	half := fovy * math.Pi / 360
	d := radius / math.Sin(half)
	c.MinDistance = radius / 10
	c.MaxDistance = d * 10
	c.SetDistance(d)
	c.home = c.snapshot()
}

// Reset returns the camera to its home pose.
func (c *Camera) Reset() {
	c.Target = c.home.target
	c.Yaw = c.home.yaw
	c.Pitch = c.home.pitch
	c.Distance = c.home.distance
}

func clamp(x, lo, hi float64) float64 {
	return max(lo, min(hi, x))
}
