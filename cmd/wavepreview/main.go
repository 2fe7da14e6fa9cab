// Wave function preview tool - interactive heat map with sliders.
//
// Usage: go run ./cmd/wavepreview
package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/wavemesh/config"
	"github.com/pthm-cable/wavemesh/wave"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
	gridSize     = 192
)

var kinds = []string{wave.KindSimplex, wave.KindPerlin, wave.KindSine}

// previewParams holds the tunable wave settings.
type previewParams struct {
	Kind      int32
	Seed      int64
	Spatial   float32
	Frequency float32
	Extent    float32 // world units covered by the preview
}

func defaultParams() previewParams {
	return previewParams{
		Kind:      0,
		Seed:      1,
		Spatial:   0.01,
		Frequency: 0.5,
		Extent:    640,
	}
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Wave Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()
	w, err := buildWave(params)
	if err != nil {
		slog.Error("failed to build wave", "error", err)
		os.Exit(1)
	}

	// Create texture for rendering
	field := make([]float64, gridSize*gridSize)
	pixels := make([]color.RGBA, gridSize*gridSize)
	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	var t float64
	animating := true
	needsRegen := true

	for !rl.WindowShouldClose() {
		if animating {
			t += float64(rl.GetFrameTime())
			needsRegen = true
		}

		if needsRegen {
			sampleField(field, gridSize, w, float64(params.Extent), t, float64(params.Frequency))
			fillPixels(pixels, field)
			rl.UpdateTexture(texture, pixels)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridSize, Height: gridSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Min: %+.3f  Max: %+.3f  Avg: %+.3f",
			floats.Min(field), floats.Max(field), floats.Sum(field)/float64(len(field))), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Time: %.1f", t), 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Wave Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Kind", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newKind := gui.ToggleGroup(rl.Rectangle{X: panelX, Y: panelY, Width: 100, Height: 24}, "Simplex;Perlin;Sine", params.Kind)
		rebuild := newKind != params.Kind
		params.Kind = newKind
		panelY += 40

		slider := func(label, left, right string, value, lo, hi float32, format string) float32 {
			rl.DrawText(label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			next := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				left, right, value, lo, hi,
			)
			rl.DrawText(fmt.Sprintf(format, next), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			panelY += 35
			return next
		}

		if v := slider("Spatial (noise frequency per unit)", "0.001", "0.05", params.Spatial, 0.001, 0.05, "%.3f"); v != params.Spatial {
			params.Spatial = v
			rebuild = true
		}
		if v := slider("Frequency (time scale)", "0", "5", params.Frequency, 0, 5, "%.2f"); v != params.Frequency {
			params.Frequency = v
			needsRegen = true
		}
		if v := slider("Extent (world units)", "50", "2000", params.Extent, 50, 2000, "%.0f"); v != params.Extent {
			params.Extent = v
			needsRegen = true
		}
		if v := int64(slider("Seed", "0", "99999", float32(params.Seed), 0, 99999, "%.0f")); v != params.Seed {
			params.Seed = v
			rebuild = true
		}
		panelY += 10

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Time") {
			t = 0
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			rebuild = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			t = 0
			rebuild = true
		}
		panelY += 55

		if rebuild {
			if next, err := buildWave(params); err != nil {
				slog.Error("failed to rebuild wave", "error", err)
			} else {
				w = next
				needsRegen = true
			}
		}

		// Output YAML
		snippet := yamlSnippet(params)
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		rl.DrawText(snippet, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(snippet)
		}

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

func buildWave(p previewParams) (wave.Func, error) {
	return wave.New(kinds[p.Kind], p.Seed, float64(p.Spatial))
}

// yamlSnippet renders the wave section of the viewer config.
func yamlSnippet(p previewParams) string {
	doc := struct {
		Wave config.WaveConfig `yaml:"wave"`
	}{
		Wave: config.WaveConfig{Kind: kinds[p.Kind], Seed: p.Seed, Spatial: float64(p.Spatial)},
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return err.Error()
	}
	return string(out)
}

// sampleField evaluates w over a size x size grid spanning extent world
// units on the z = 0 plane, centred on the origin.
func sampleField(field []float64, size int, w wave.Func, extent, t, frequency float64) {
	step := extent / float64(size)
	for y := 0; y < size; y++ {
		py := (float64(y)+0.5)*step - extent/2
		for x := 0; x < size; x++ {
			px := (float64(x)+0.5)*step - extent/2
			field[y*size+x] = w.Eval(r3.Vec{X: px, Y: py}, t, frequency)
		}
	}
}

// fillPixels maps displacement in [-1, 1] to a diverging blue-white-orange ramp.
func fillPixels(pixels []color.RGBA, field []float64) {
	for i, v := range field {
		v = max(-1, min(1, v))
		var r, g, b float64
		if v < 0 {
			// Deep blue to white
			k := v + 1
			r = 20 + k*235
			g = 60 + k*195
			b = 160 + k*95
		} else {
			// White to orange
			r = 255
			g = 255 - v*125
			b = 255 - v*225
		}
		pixels[i] = color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
	}
}
