// Package wave provides the scalar displacement functions that drive
// particle motion.
package wave

import (
	"errors"
	"fmt"
	"math"

	perlin "github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnknownKind is returned by New for an unrecognised wave kind.
var ErrUnknownKind = errors.New("unknown wave kind")

// Kind names accepted by New.
const (
	KindSimplex = "simplex"
	KindPerlin  = "perlin"
	KindSine    = "sine"
)

// Func evaluates a displacement scalar, nominally in [-1, 1], for a rest
// position at elapsed time t. Implementations must be deterministic and safe
// for concurrent use.
type Func interface {
	Eval(p r3.Vec, t, frequency float64) float64
}

// New builds the wave function named by kind. spatial scales rest positions
// before sampling, so larger values give finer ripples.
func New(kind string, seed int64, spatial float64) (Func, error) {
	switch kind {
	case KindSimplex, "":
		return NewSimplex(seed, spatial), nil
	case KindPerlin:
		return NewPerlin(seed, spatial), nil
	case KindSine:
		return Sine{Spatial: spatial}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Simplex samples 4D OpenSimplex noise with time on the fourth axis.
type Simplex struct {
	noise   opensimplex.Noise
	spatial float64
}

// NewSimplex creates a simplex wave with the given seed.
func NewSimplex(seed int64, spatial float64) *Simplex {
	return &Simplex{
		noise:   opensimplex.New(seed),
		spatial: spatial,
	}
}

// Eval implements Func.
func (s *Simplex) Eval(p r3.Vec, t, frequency float64) float64 {
	k := s.spatial
	return s.noise.Eval4(p.X*k, p.Y*k, p.Z*k, t*frequency)
}

// Perlin samples classic 3D Perlin noise. Time drifts the sample point
// along a diagonal so all three axes stay in play.
type Perlin struct {
	noise   *perlin.Perlin
	spatial float64
}

// Perlin octave settings: alpha is the per-octave weight divisor, beta the
// frequency multiplier.
const (
	perlinAlpha   = 2
	perlinBeta    = 2
	perlinOctaves = 3
)

// NewPerlin creates a Perlin wave with the given seed.
func NewPerlin(seed int64, spatial float64) *Perlin {
	return &Perlin{
		noise:   perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
		spatial: spatial,
	}
}

// Eval implements Func.
func (w *Perlin) Eval(p r3.Vec, t, frequency float64) float64 {
	k := w.spatial
	d := t * frequency
	// go-perlin output sits roughly in [-0.7, 0.7]; stretch toward [-1, 1].
	v := w.noise.Noise3D(p.X*k+d, p.Y*k+d, p.Z*k+d) * math.Sqrt2
	return max(-1, min(1, v))
}

// Sine is a plain travelling sine wave; the phase depends on distance from
// the origin so the surface ripples outward.
type Sine struct {
	Spatial float64
}

// Eval implements Func.
func (s Sine) Eval(p r3.Vec, t, frequency float64) float64 {
	phase := r3.Norm(p) * s.Spatial
	return math.Sin(2*math.Pi*t*frequency - phase)
}
