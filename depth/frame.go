package depth

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sample is one recorded depth reading.
type Sample struct {
	X        int     `csv:"x"`
	Y        int     `csv:"y"`
	Distance float64 `csv:"distance"`
}

// Frame is a static Source backed by a dense distance buffer. It is always
// ready once constructed; use it to replay a captured frame or to feed
// hand-made depth data.
type Frame struct {
	intrinsics Intrinsics
	distances  []float64
}

// NewFrame creates an empty frame (all readings invalid).
func NewFrame(intrinsics Intrinsics) *Frame {
	return &Frame{
		intrinsics: intrinsics,
		distances:  make([]float64, intrinsics.Width*intrinsics.Height),
	}
}

// Set stores a reading. Out-of-frame pixels are ignored.
func (f *Frame) Set(x, y int, distance float64) {
	if x < 0 || y < 0 || x >= f.intrinsics.Width || y >= f.intrinsics.Height {
		return
	}
	f.distances[y*f.intrinsics.Width+x] = distance
}

// Fill sets every pixel to distance.
func (f *Frame) Fill(distance float64) {
	for i := range f.distances {
		f.distances[i] = distance
	}
}

// IsReady implements Source.
func (f *Frame) IsReady() bool { return true }

// DistanceAt implements Source. Coordinates are rounded to the nearest pixel.
func (f *Frame) DistanceAt(x, y float64) float64 {
	if !f.intrinsics.Contains(x, y) {
		return 0
	}
	px := min(int(math.Round(x)), f.intrinsics.Width-1)
	py := min(int(math.Round(y)), f.intrinsics.Height-1)
	return f.distances[py*f.intrinsics.Width+px]
}

// WorldAt implements Source.
func (f *Frame) WorldAt(x, y float64) r3.Vec {
	return f.intrinsics.Unproject(x, y, f.DistanceAt(x, y))
}

// ReadFrameCSV loads samples with an x,y,distance header into a frame.
func ReadFrameCSV(r io.Reader, intrinsics Intrinsics) (*Frame, error) {
	var samples []Sample
	if err := gocsv.Unmarshal(r, &samples); err != nil {
		return nil, fmt.Errorf("parsing depth samples: %w", err)
	}
	f := NewFrame(intrinsics)
	for _, s := range samples {
		f.Set(s.X, s.Y, s.Distance)
	}
	return f, nil
}

// LoadFrameCSV reads a frame from a CSV file.
func LoadFrameCSV(path string, intrinsics Intrinsics) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening depth frame: %w", err)
	}
	defer file.Close()
	return ReadFrameCSV(file, intrinsics)
}

// WriteFrameCSV writes every valid reading of src over the intrinsics grid.
func WriteFrameCSV(w io.Writer, src Source, intrinsics Intrinsics) error {
	var samples []Sample
	for y := 0; y < intrinsics.Height; y++ {
		for x := 0; x < intrinsics.Width; x++ {
			d := src.DistanceAt(float64(x), float64(y))
			if d > 0 {
				samples = append(samples, Sample{X: x, Y: y, Distance: d})
			}
		}
	}
	if err := gocsv.Marshal(samples, w); err != nil {
		return fmt.Errorf("writing depth samples: %w", err)
	}
	return nil
}
