package depth

import (
	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"
)

// SyntheticConfig controls the generated surface.
type SyntheticConfig struct {
	Near  float64 `yaml:"near"`  // closest generated distance
	Far   float64 `yaml:"far"`   // farthest generated distance
	Scale float64 `yaml:"scale"` // noise frequency per pixel
	Speed float64 `yaml:"speed"` // animation speed
	Seed  int64   `yaml:"seed"`
}

// Synthetic is a Device that renders an animated noise surface instead of
// reading hardware. Pixels outside the frame read as 0.
type Synthetic struct {
	cfg        SyntheticConfig
	intrinsics Intrinsics
	noise      opensimplex.Noise
	open       bool
	tilt       float64
	time       float64
}

// NewSynthetic creates a closed synthetic device.
func NewSynthetic(cfg SyntheticConfig, intrinsics Intrinsics) *Synthetic {
	return &Synthetic{
		cfg:        cfg,
		intrinsics: intrinsics,
		noise:      opensimplex.NewNormalized(cfg.Seed),
	}
}

// Open implements Device.
func (s *Synthetic) Open() error {
	s.open = true
	return nil
}

// Close implements Device.
func (s *Synthetic) Close() error {
	if !s.open {
		return ErrNotOpen
	}
	s.open = false
	return nil
}

// IsReady implements Source.
func (s *Synthetic) IsReady() bool { return s.open }

// SetTilt implements Device.
func (s *Synthetic) SetTilt(deg float64) float64 {
	s.tilt = ClampTilt(deg)
	return s.tilt
}

// Tilt implements Device.
func (s *Synthetic) Tilt() float64 { return s.tilt }

// Update implements Device.
func (s *Synthetic) Update(elapsed float64) {
	s.time = elapsed
}

// DistanceAt implements Source.
func (s *Synthetic) DistanceAt(x, y float64) float64 {
	if !s.open || !s.intrinsics.Contains(x, y) {
		return 0
	}
	// Tilting shifts the sampled rows, which is roughly what the motor does
	// to a static scene.
	y += s.tilt * float64(s.intrinsics.Height) / (MaxTilt - MinTilt)
	n := s.noise.Eval3(x*s.cfg.Scale, y*s.cfg.Scale, s.time*s.cfg.Speed)
	return s.cfg.Near + n*(s.cfg.Far-s.cfg.Near)
}

// WorldAt implements Source.
func (s *Synthetic) WorldAt(x, y float64) r3.Vec {
	return s.intrinsics.Unproject(x, y, s.DistanceAt(x, y))
}
