// Package particles turns mesh vertices or depth-grid samples into
// particles that oscillate along a fixed direction, and mirrors their
// positions into a renderable mesh.
package particles

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/wavemesh/wave"
)

// Particle is a point anchored at a rest position that is displaced along a
// fixed direction by a wave function.
type Particle struct {
	rest      r3.Vec
	direction r3.Vec
	position  r3.Vec
	offset    float64
}

// Setup anchors the particle. direction is expected to be unit length (or
// zero for a particle that never moves).
func (p *Particle) Setup(position, direction r3.Vec) {
	p.rest = position
	p.direction = direction
	p.position = position
	p.offset = 0
}

// Update recomputes the displaced position for elapsed seconds.
// The result only depends on the arguments and the anchor, so repeated
// calls with the same elapsed time give the same position.
func (p *Particle) Update(w wave.Func, amplitude, frequency, scale, elapsed float64) {
	p.offset = w.Eval(p.rest, elapsed, frequency) * amplitude * scale
	p.position = r3.Add(p.rest, r3.Scale(p.offset, p.direction))
}

// Position returns the current displaced position.
func (p Particle) Position() r3.Vec { return p.position }

// Rest returns the anchor position.
func (p Particle) Rest() r3.Vec { return p.rest }

// Direction returns the displacement axis.
func (p Particle) Direction() r3.Vec { return p.direction }

// Offset returns the signed displacement applied by the last Update.
func (p Particle) Offset() float64 { return p.offset }
