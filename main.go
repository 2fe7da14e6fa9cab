package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/wavemesh/app"
	"github.com/pthm-cable/wavemesh/camera"
	"github.com/pthm-cable/wavemesh/config"
	"github.com/pthm-cable/wavemesh/renderer"
	"github.com/pthm-cable/wavemesh/telemetry"
	"github.com/pthm-cable/wavemesh/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	meshPath := flag.String("mesh", "", "OBJ file to animate (overrides source.mesh_path)")
	source := flag.String("source", "", "Particle source: mesh or grid (overrides source.kind)")
	frames := flag.Int("frames", 0, "Stop after N frames (0 = unlimited; headless defaults to 600)")
	export := flag.String("export", "", "Save the final mesh to this path (.ply or .csv)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "Wave seed (0 = time-based)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	opts := app.Options{
		Seed:      *seed,
		MeshPath:  *meshPath,
		Source:    *source,
		OutputDir: *outputDir,
	}

	var err error
	if *headless {
		err = runHeadless(cfg, opts, *frames, *export)
	} else {
		err = runWindow(cfg, opts, *frames, *export)
	}
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless steps the animation at a fixed timestep with no window.
func runHeadless(cfg *config.Config, opts app.Options, frames int, export string) error {
	if frames <= 0 {
		frames = 600
	}

	a, err := app.New(cfg, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	slog.Info("starting headless run",
		"frames", frames,
		"dt", cfg.Derived.DT,
		"output_dir", opts.OutputDir,
	)

	for a.Frame() < frames {
		a.Step(cfg.Derived.DT)
		a.EndFrame()
	}
	slog.Info("headless run finished", "frames", a.Frame(), "elapsed", a.Elapsed(), "perf", a.Perf().Stats())

	if export != "" {
		if _, err := a.Save(export); err != nil {
			return err
		}
	}
	return nil
}

// runWindow opens the raylib viewer.
func runWindow(cfg *config.Config, opts app.Options, frames int, export string) error {
	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Wave Mesh")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	a, err := app.New(cfg, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	cam := camera.New(r3.Vec{}, 1)
	scene := renderer.NewScene(cam)
	lo, hi := a.View().Bounds()
	cam.Frame(lo, hi, float64(scene.Fovy))

	panel := ui.NewPanel(10, 10, 260, ui.Limits{
		MaxAmplitude: cfg.Animation.MaxAmplitude,
		MaxFrequency: cfg.Animation.MaxFrequency,
		MaxScale:     cfg.Animation.MaxScale,
		MaxGridSize:  cfg.Grid.MaxSize,
	})
	hud := ui.NewHUD(230)
	perfPanel := ui.NewPerfPanel(0, 0)
	showPerf := false

	gridX, gridY := a.GridSize()
	state := ui.PanelState{
		Params:   a.Params(),
		GridX:    gridX,
		GridY:    gridY,
		Tilt:     a.Tilt(),
		Mode:     a.Mode(),
		Source:   a.Source(),
		FileName: "outFile",
	}
	var status string

	for !rl.WindowShouldClose() {
		a.Step(float64(rl.GetFrameTime()))

		a.Perf().StartPhase(telemetry.PhaseDraw)
		view := a.View()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		typing := panel.Editing()
		scene.HandleInput(rl.CheckCollisionPointRec(rl.GetMousePosition(), panel.Bounds()), typing)
		if !typing && rl.IsKeyPressed(rl.KeyP) {
			showPerf = !showPerf
		}
		capture := !typing && rl.IsKeyPressed(rl.KeyFive)
		scene.Draw(view)

		changes := panel.Draw(&state)
		status = applyChanges(a, &state, changes, status)
		if changes.Source {
			lo, hi := a.View().Bounds()
			cam.Frame(lo, hi, float64(scene.Fovy))
		}

		w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
		hud.Draw(w, ui.HUDData{
			Title:     "Wave Mesh",
			Source:    a.Source(),
			Mode:      view.Mode.String(),
			Particles: a.System().Len(),
			Indices:   view.IndexCount(),
			Elapsed:   a.Elapsed(),
			FPS:       rl.GetFPS(),
			Empty:     a.Source() == app.SourceGrid && view.VertexCount() == 0,
			Status:    status,
		})
		if showPerf {
			perfPanel.SetPosition(w-240, 170)
			perfPanel.Draw(a.Perf().Stats())
		}
		hud.DrawControls(h, "LMB orbit | RMB pan | wheel zoom | R reset view | G grid | P perf | 5 capture")

		if capture {
			status = captureFrame(a)
		}
		rl.EndDrawing()
		a.EndFrame()

		if frames > 0 && a.Frame() >= frames {
			break
		}
	}

	if export != "" {
		if _, err := a.Save(export); err != nil {
			return err
		}
	}
	return nil
}

// captureFrame writes the back buffer to a PNG in the export directory.
func captureFrame(a *app.App) string {
	path, err := a.CapturePath()
	if err != nil {
		slog.Error("capture failed", "error", err)
		return "capture failed"
	}
	img := rl.LoadImageFromScreen()
	defer rl.UnloadImage(img)
	if !rl.ExportImage(*img, path) {
		slog.Error("capture failed", "path", path)
		return "capture failed"
	}
	slog.Info("frame captured", "path", path)
	return fmt.Sprintf("captured %s", path)
}

// applyChanges pushes panel edits into the app. A rejected change is
// reverted in the panel so it keeps showing what is actually displayed.
func applyChanges(a *app.App, s *ui.PanelState, c ui.Changes, status string) string {
	if !c.Any() {
		return status
	}
	if c.Params {
		a.SetParams(s.Params)
	}
	if c.Tilt {
		s.Tilt = a.SetTilt(s.Tilt)
	}
	if c.Grid {
		if err := a.SetGridSize(s.GridX, s.GridY); err != nil {
			s.GridX, s.GridY = a.GridSize()
			status = "grid rebuild failed"
		}
	}
	if c.Mode {
		if err := a.SetMode(s.Mode); err != nil {
			s.Mode = a.Mode()
			status = "mode change failed"
		}
	}
	if c.Source {
		if err := a.SetSource(s.Source); err != nil {
			s.Source = a.Source()
			status = "source change failed"
		}
	}
	if c.Restart {
		if err := a.Rebuild(); err != nil {
			status = "rebuild failed"
		}
	}
	if c.Save {
		path, err := a.Save(s.FileName)
		if err != nil {
			return "save failed"
		}
		return fmt.Sprintf("saved %s", path)
	}
	return status
}
