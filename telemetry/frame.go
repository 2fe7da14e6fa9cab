package telemetry

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/wavemesh/particles"
)

// FrameStats summarises the particle system after one update.
type FrameStats struct {
	Frame        int     `csv:"frame"`
	Elapsed      float64 `csv:"elapsed"`
	Source       string  `csv:"source"`
	Mode         string  `csv:"mode"`
	Particles    int     `csv:"particles"`
	Indices      int     `csv:"indices"`
	MeanOffset   float64 `csv:"mean_offset"`
	StdDevOffset float64 `csv:"stddev_offset"`
	MinOffset    float64 `csv:"min_offset"`
	MaxOffset    float64 `csv:"max_offset"`
}

// Sampler computes FrameStats, reusing its scratch buffer between frames.
type Sampler struct {
	offsets []float64
}

// Sample collects displacement statistics from s.
func (sm *Sampler) Sample(frame int, elapsed float64, s *particles.System) FrameStats {
	fs := FrameStats{
		Frame:     frame,
		Elapsed:   elapsed,
		Source:    s.Source().String(),
		Mode:      s.Mode().String(),
		Particles: s.Len(),
		Indices:   s.IndexCount(),
	}
	if s.Len() == 0 {
		return fs
	}

	sm.offsets = sm.offsets[:0]
	for i := 0; i < s.Len(); i++ {
		p := s.Particle(i)
		sm.offsets = append(sm.offsets, p.Offset())
	}
	if len(sm.offsets) > 1 {
		fs.MeanOffset, fs.StdDevOffset = stat.MeanStdDev(sm.offsets, nil)
	} else {
		fs.MeanOffset = sm.offsets[0]
	}
	fs.MinOffset = floats.Min(sm.offsets)
	fs.MaxOffset = floats.Max(sm.offsets)
	return fs
}
