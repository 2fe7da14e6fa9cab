// Package config provides configuration loading and access for the viewer.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/wavemesh/depth"
	"github.com/pthm-cable/wavemesh/mesh"
	"github.com/pthm-cable/wavemesh/particles"
	"github.com/pthm-cable/wavemesh/wave"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by validation failures.
var ErrInvalid = errors.New("invalid config")

// Config holds all viewer configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Source    SourceConfig    `yaml:"source"`
	Grid      GridConfig      `yaml:"grid"`
	Depth     DepthConfig     `yaml:"depth"`
	Wave      WaveConfig      `yaml:"wave"`
	Animation AnimationConfig `yaml:"animation"`
	Lines     LinesConfig     `yaml:"lines"`
	Parallel  ParallelConfig  `yaml:"parallel"`
	Export    ExportConfig    `yaml:"export"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SourceConfig selects what the particles are built from.
type SourceConfig struct {
	Kind          string       `yaml:"kind"`           // "mesh" or "grid"
	MeshPath      string       `yaml:"mesh_path"`      // OBJ file; empty = built-in sphere
	WeldTolerance float64      `yaml:"weld_tolerance"` // merge loaded vertices closer than this (0 = off)
	DisplayMode   mesh.Mode    `yaml:"display_mode"`   // points, lines, triangles
	Sphere        SphereConfig `yaml:"sphere"`
}

// SphereConfig shapes the built-in sphere used when no mesh file is given.
type SphereConfig struct {
	Radius float64 `yaml:"radius"`
	Rings  int     `yaml:"rings"`
	Slices int     `yaml:"slices"`
}

// GridConfig holds the particle grid laid over the depth frame.
type GridConfig struct {
	SizeX   int     `yaml:"size_x"`
	SizeY   int     `yaml:"size_y"`
	MaxSize int     `yaml:"max_size"` // upper bound of the grid size sliders
	RangeX  float64 `yaml:"range_x"`  // sensor pixels covered horizontally
	RangeY  float64 `yaml:"range_y"`
	Live    bool    `yaml:"live"` // resample the sensor every frame
}

// DepthConfig holds depth sensor parameters.
type DepthConfig struct {
	Device         string                `yaml:"device"`     // "synthetic" or "frame"
	FramePath      string                `yaml:"frame_path"` // CSV for the frame device
	Tilt           float64               `yaml:"tilt"`       // initial motor angle in degrees
	MaxDistance    float64               `yaml:"max_distance"`
	ReferencePlane float64               `yaml:"reference_plane"`
	FallbackDepth  float64               `yaml:"fallback_depth"`
	Intrinsics     depth.Intrinsics      `yaml:"intrinsics"`
	Synthetic      depth.SyntheticConfig `yaml:"synthetic"`
}

// WaveConfig selects the displacement function.
type WaveConfig struct {
	Kind    string  `yaml:"kind"`    // simplex, perlin, sine
	Seed    int64   `yaml:"seed"`    // 0 = time-based
	Spatial float64 `yaml:"spatial"` // noise frequency per world unit
}

// AnimationConfig holds the initial GUI slider values and their ranges.
type AnimationConfig struct {
	Amplitude    float64 `yaml:"amplitude"`
	Frequency    float64 `yaml:"frequency"`
	Scale        float64 `yaml:"scale"`
	MaxAmplitude float64 `yaml:"max_amplitude"`
	MaxFrequency float64 `yaml:"max_frequency"`
	MaxScale     float64 `yaml:"max_scale"`
}

// LinesConfig holds the line derivation policy.
type LinesConfig struct {
	Dedupe bool `yaml:"dedupe"`
}

// ParallelConfig holds per-particle update concurrency.
type ParallelConfig struct {
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
	Threshold int `yaml:"threshold"` // minimum particles before splitting
}

// ExportConfig holds mesh export settings.
type ExportConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // ply or csv
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow  int `yaml:"perf_window"`  // frames averaged per perf sample
	LogInterval int `yaml:"log_interval"` // frames between perf log lines (0 = off)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT          float64               // 1 / Screen.TargetFPS
	GridSpec    particles.GridSpec    // Grid section as a particles.GridSpec
	GridOptions particles.GridOptions // Depth band as particles.GridOptions
	Params      particles.Params      // Animation section as particles.Params
	Options     particles.Options     // System options
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate checks values that would otherwise only fail at rebuild time.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "mesh", "grid":
	default:
		return fmt.Errorf("%w: source.kind %q (want mesh or grid)", ErrInvalid, c.Source.Kind)
	}
	if !c.Source.DisplayMode.Valid() {
		return fmt.Errorf("%w: source.display_mode", ErrInvalid)
	}
	if c.Grid.SizeX <= 0 || c.Grid.SizeY <= 0 {
		return fmt.Errorf("%w: grid size %dx%d", ErrInvalid, c.Grid.SizeX, c.Grid.SizeY)
	}
	if c.Source.WeldTolerance < 0 {
		return fmt.Errorf("%w: source.weld_tolerance must not be negative", ErrInvalid)
	}
	switch c.Depth.Device {
	case "synthetic":
	case "frame":
		if c.Depth.FramePath == "" {
			return fmt.Errorf("%w: depth.frame_path required for frame device", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: depth.device %q", ErrInvalid, c.Depth.Device)
	}
	switch c.Wave.Kind {
	case wave.KindSimplex, wave.KindPerlin, wave.KindSine:
	default:
		return fmt.Errorf("%w: wave.kind %q", ErrInvalid, c.Wave.Kind)
	}
	switch c.Export.Format {
	case "ply", "csv":
	default:
		return fmt.Errorf("%w: export.format %q", ErrInvalid, c.Export.Format)
	}
	if c.Screen.TargetFPS <= 0 {
		return fmt.Errorf("%w: screen.target_fps must be positive", ErrInvalid)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT = 1 / float64(c.Screen.TargetFPS)
	c.Derived.GridSpec = particles.GridSpec{
		SizeX:  c.Grid.SizeX,
		SizeY:  c.Grid.SizeY,
		RangeX: c.Grid.RangeX,
		RangeY: c.Grid.RangeY,
	}
	c.Derived.GridOptions = particles.GridOptions{
		MaxDistance:    c.Depth.MaxDistance,
		ReferencePlane: c.Depth.ReferencePlane,
		FallbackDepth:  c.Depth.FallbackDepth,
	}
	c.Derived.Params = particles.Params{
		Amplitude: c.Animation.Amplitude,
		Frequency: c.Animation.Frequency,
		Scale:     c.Animation.Scale,
	}
	c.Derived.Options = particles.Options{
		DedupeLines:       c.Lines.Dedupe,
		Workers:           c.Parallel.Workers,
		ParallelThreshold: c.Parallel.Threshold,
		Grid:              c.Derived.GridOptions,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
