package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/wavemesh/telemetry"
)

// HUDData holds all the data needed to render the heads-up display.
type HUDData struct {
	Title     string
	Source    string
	Mode      string
	Particles int
	Indices   int
	Elapsed   float64
	FPS       int32
	Empty     bool // grid source with no sensor data
	Status    string
}

// HUD renders the heads-up display in the top right corner.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD(width int32) *HUD {
	return &HUD{
		renderer: NewRenderer(),
		width:    width,
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(screenWidth int32, data HUDData) {
	r := h.renderer
	x := screenWidth - h.width - r.Theme.Padding
	y := r.Theme.Padding

	r.DrawPanel(x, y, h.width, r.Theme.LineHeight*8+r.Theme.Padding*2)
	x += r.Theme.Padding
	y += r.Theme.Padding

	rl.DrawText(data.Title, x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	y = r.DrawLabelValue(x, y, "Source", data.Source)
	y = r.DrawLabelValue(x, y, "Mode", data.Mode)
	y = r.DrawLabelValue(x, y, "Particles", fmt.Sprintf("%d", data.Particles))
	y = r.DrawLabelValue(x, y, "Indices", fmt.Sprintf("%d", data.Indices))
	y = r.DrawLabelValue(x, y, "Time", fmt.Sprintf("%.1fs | %d fps", data.Elapsed, data.FPS))

	if data.Empty {
		y = r.DrawWarning(x, y, "Depth sensor not ready")
	}
	if data.Status != "" {
		r.DrawLabel(x, y, data.Status)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the frame phase breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  Max: %s",
		stats.AvgFrameDuration.Round(time.Microsecond),
		stats.MaxFrameDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range telemetry.Phases() {
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-8s %8s %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
