// Package app holds the viewer state that does not need a window: source
// selection, rebuilds, per-frame stepping, mesh export and telemetry.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pthm-cable/wavemesh/config"
	"github.com/pthm-cable/wavemesh/depth"
	"github.com/pthm-cable/wavemesh/mesh"
	"github.com/pthm-cable/wavemesh/meshio"
	"github.com/pthm-cable/wavemesh/particles"
	"github.com/pthm-cable/wavemesh/telemetry"
	"github.com/pthm-cable/wavemesh/wave"
)

// Source names accepted by SetSource.
const (
	SourceMesh = "mesh"
	SourceGrid = "grid"
)

// ErrUnknownSource is returned for a source name other than mesh or grid.
var ErrUnknownSource = errors.New("unknown source")

// Options override parts of the loaded config for one run.
type Options struct {
	Seed      int64  // wave seed when the config leaves it 0 (0 = time-based)
	MeshPath  string // overrides source.mesh_path
	Source    string // overrides source.kind
	OutputDir string // telemetry directory; empty disables CSV output
}

// App owns the particle system and everything that feeds it.
type App struct {
	cfg    *config.Config
	system *particles.System
	wave   wave.Func
	device depth.Device
	mesh   mesh.Mesh

	source string
	mode   mesh.Mode
	grid   particles.GridSpec
	params particles.Params

	elapsed     float64
	frame       int
	emptyWarned bool

	perf    *telemetry.PerfCollector
	sampler telemetry.Sampler
	output  *telemetry.OutputManager
	view    mesh.Mesh
}

// New opens the depth device, loads the source mesh and performs the first
// build.
func New(cfg *config.Config, opts Options) (*App, error) {
	seed := cfg.Wave.Seed
	if seed == 0 {
		seed = opts.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	w, err := wave.New(cfg.Wave.Kind, seed, cfg.Wave.Spatial)
	if err != nil {
		return nil, err
	}

	source := cfg.Source.Kind
	if opts.Source != "" {
		source = opts.Source
	}
	if source != SourceMesh && source != SourceGrid {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	meshPath := cfg.Source.MeshPath
	if opts.MeshPath != "" {
		meshPath = opts.MeshPath
	}
	src, err := loadSourceMesh(cfg.Source, meshPath)
	if err != nil {
		return nil, err
	}

	device, err := openDevice(cfg.Depth)
	if err != nil {
		return nil, err
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		device.Close()
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	a := &App{
		cfg:    cfg,
		system: particles.NewSystem(cfg.Derived.Options),
		wave:   w,
		device: device,
		mesh:   src,
		source: source,
		mode:   cfg.Source.DisplayMode,
		grid:   cfg.Derived.GridSpec,
		params: cfg.Derived.Params,
		perf:   telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		output: output,
	}

	if err := a.Rebuild(); err != nil {
		a.Close()
		return nil, err
	}

	slog.Info("app ready",
		"source", source,
		"mode", a.mode.String(),
		"wave", cfg.Wave.Kind,
		"seed", seed,
		"particles", a.system.Len(),
	)
	return a, nil
}

func loadSourceMesh(cfg config.SourceConfig, path string) (mesh.Mesh, error) {
	if path == "" {
		return meshio.Sphere(cfg.Sphere.Radius, cfg.Sphere.Rings, cfg.Sphere.Slices), nil
	}
	m, err := meshio.Load(path)
	if err != nil {
		return mesh.Mesh{}, err
	}
	if m.Mode == mesh.Lines {
		// Edge lists carry no surface; keep the vertices only.
		m.Indices, m.Mode = nil, mesh.Points
	}
	if cfg.WeldTolerance > 0 {
		before := m.VertexCount()
		m = mesh.Weld(m, cfg.WeldTolerance)
		slog.Debug("welded source mesh", "path", path, "before", before, "after", m.VertexCount())
	}
	return m, nil
}

func openDevice(cfg config.DepthConfig) (depth.Device, error) {
	var dev depth.Device
	switch cfg.Device {
	case "frame":
		frame, err := depth.LoadFrameCSV(cfg.FramePath, cfg.Intrinsics)
		if err != nil {
			return nil, err
		}
		dev = depth.NewReplay(frame)
	default:
		dev = depth.NewSynthetic(cfg.Synthetic, cfg.Intrinsics)
	}
	if err := dev.Open(); err != nil {
		return nil, fmt.Errorf("opening depth device: %w", err)
	}
	dev.SetTilt(cfg.Tilt)
	return dev, nil
}

// Rebuild regenerates the particle set from the current source, mode and
// grid size. On failure the previous geometry is kept.
func (a *App) Rebuild() error {
	if err := a.build(); err != nil {
		slog.Error("rebuild failed", "source", a.source, "mode", a.mode.String(), "error", err)
		return err
	}
	slog.Debug("rebuilt particles", "source", a.source, "mode", a.mode.String(), "particles", a.system.Len())
	return nil
}

func (a *App) build() error {
	switch a.source {
	case SourceMesh:
		return a.system.BuildFromMesh(a.mesh, a.mode)
	case SourceGrid:
		if err := a.system.BuildFromGrid(a.device, a.grid, a.mode); err != nil {
			return err
		}
		empty := a.system.VertexCount() == 0
		if empty && !a.emptyWarned {
			slog.Warn("depth sensor not ready, grid is empty")
		}
		a.emptyWarned = empty
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, a.source)
	}
}

// Step advances the animation by dt seconds: refresh the sensor, resample a
// live grid, then displace every particle. It opens a perf frame that
// EndFrame closes; a graphical host draws in between.
func (a *App) Step(dt float64) {
	a.perf.StartFrame()
	a.elapsed += dt

	a.perf.StartPhase(telemetry.PhaseSensor)
	a.device.Update(a.elapsed)

	if a.source == SourceGrid && a.cfg.Grid.Live {
		a.perf.StartPhase(telemetry.PhaseRebuild)
		if err := a.build(); err != nil {
			slog.Error("grid resample failed", "error", err)
		}
	}

	a.perf.StartPhase(telemetry.PhaseUpdate)
	a.system.Update(a.wave, a.params, a.elapsed)
}

// Perf returns the frame timing collector.
func (a *App) Perf() *telemetry.PerfCollector { return a.perf }

// EndFrame closes the perf frame opened by Step and emits telemetry.
func (a *App) EndFrame() {
	a.perf.EndFrame()
	a.frame++

	if a.output != nil {
		if err := a.output.WriteFrame(a.sampler.Sample(a.frame, a.elapsed, a.system)); err != nil {
			slog.Error("failed to write frame stats", "error", err)
		}
	}

	window := a.cfg.Telemetry.PerfWindow
	if window > 0 && a.frame%window == 0 {
		if err := a.output.WritePerf(a.perf.Stats(), a.frame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
	if n := a.cfg.Telemetry.LogInterval; n > 0 && a.frame%n == 0 {
		slog.Info("perf", "frame", a.frame, "particles", a.system.Len(), "stats", a.perf.Stats())
	}
}

// SetParams replaces the animation parameters used by the next Step.
func (a *App) SetParams(p particles.Params) { a.params = p }

// Params returns the current animation parameters.
func (a *App) Params() particles.Params { return a.params }

// SetMode switches the display mode and rebuilds.
func (a *App) SetMode(m mesh.Mode) error {
	if m == a.mode {
		return nil
	}
	prev := a.mode
	a.mode = m
	if err := a.Rebuild(); err != nil {
		a.mode = prev
		return err
	}
	return nil
}

// Mode returns the requested display mode.
func (a *App) Mode() mesh.Mode { return a.mode }

// SetSource switches between mesh and grid sources and rebuilds.
func (a *App) SetSource(source string) error {
	if source != SourceMesh && source != SourceGrid {
		return fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	if source == a.source {
		return nil
	}
	prev := a.source
	a.source = source
	if err := a.Rebuild(); err != nil {
		a.source = prev
		return err
	}
	return nil
}

// Source returns the current source name.
func (a *App) Source() string { return a.source }

// SetGridSize changes the grid resolution. Only a grid source rebuilds.
func (a *App) SetGridSize(x, y int) error {
	if x == a.grid.SizeX && y == a.grid.SizeY {
		return nil
	}
	prev := a.grid
	a.grid.SizeX, a.grid.SizeY = x, y
	if a.source != SourceGrid {
		if x <= 0 || y <= 0 {
			a.grid = prev
			return fmt.Errorf("%w: %dx%d", particles.ErrInvalidGrid, x, y)
		}
		return nil
	}
	if err := a.Rebuild(); err != nil {
		a.grid = prev
		return err
	}
	return nil
}

// GridSize returns the requested grid resolution.
func (a *App) GridSize() (x, y int) { return a.grid.SizeX, a.grid.SizeY }

// SetTilt moves the sensor motor and returns the applied angle. A static
// grid is resampled so the new angle shows up immediately.
func (a *App) SetTilt(deg float64) float64 {
	applied := a.device.SetTilt(deg)
	if a.source == SourceGrid && !a.cfg.Grid.Live {
		a.Rebuild()
	}
	return applied
}

// Tilt returns the current sensor motor angle.
func (a *App) Tilt() float64 { return a.device.Tilt() }

// Save exports the current mesh. A name without an extension gets the
// configured export format; a bare file name is placed in the export
// directory. Returns the path written.
func (a *App) Save(name string) (string, error) {
	if name == "" {
		name = fmt.Sprintf("wavemesh-%05d", a.frame)
	}
	if filepath.Ext(name) == "" {
		name += "." + a.cfg.Export.Format
	}
	path := name
	if filepath.Base(name) == name && a.cfg.Export.Dir != "" {
		path = filepath.Join(a.cfg.Export.Dir, name)
	}

	a.system.CopyMesh(&a.view)
	if err := meshio.Save(path, &a.view); err != nil {
		slog.Error("save failed", "path", path, "error", err)
		return "", err
	}
	slog.Info("mesh saved", "path", path, "vertices", a.view.VertexCount(), "mode", a.view.Mode.String())
	return path, nil
}

// CapturePath returns where a screenshot of the current frame goes,
// frame-NNNNN.png in the export directory, creating the directory.
func (a *App) CapturePath() (string, error) {
	dir := a.cfg.Export.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating capture directory: %w", err)
	}
	return filepath.Join(dir, fmt.Sprintf("frame-%05d.png", a.frame)), nil
}

// View copies the current mesh into a buffer owned by the App and returns
// it. The buffer is overwritten by the next call.
func (a *App) View() *mesh.Mesh {
	a.system.CopyMesh(&a.view)
	return &a.view
}

// System returns the particle system.
func (a *App) System() *particles.System { return a.system }

// Elapsed returns the animation time in seconds.
func (a *App) Elapsed() float64 { return a.elapsed }

// Frame returns the number of completed frames.
func (a *App) Frame() int { return a.frame }

// Close releases the depth device and flushes telemetry.
func (a *App) Close() error {
	var errs []error
	if a.device != nil && a.device.IsReady() {
		errs = append(errs, a.device.Close())
	}
	errs = append(errs, a.output.Close())
	return errors.Join(errs...)
}
