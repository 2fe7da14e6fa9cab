package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/wavemesh/mesh"
	"github.com/pthm-cable/wavemesh/particles"
)

// Source names shown by the source toggle, in toggle order.
var sourceNames = []string{"mesh", "grid"}

// Limits are the slider ranges.
type Limits struct {
	MaxAmplitude float64
	MaxFrequency float64
	MaxScale     float64
	MaxGridSize  int
}

// PanelState is the editable state shown by the panel. Draw updates it in
// place and reports what changed.
type PanelState struct {
	Params       particles.Params
	GridX, GridY int
	Tilt         float64
	Mode         mesh.Mode
	Source       string
	FileName     string
}

// Changes reports which controls the user touched during one Draw.
type Changes struct {
	Params  bool
	Grid    bool
	Tilt    bool
	Mode    bool
	Source  bool
	Restart bool
	Save    bool
}

// Any reports whether anything changed.
func (c Changes) Any() bool {
	return c.Params || c.Grid || c.Tilt || c.Mode || c.Source || c.Restart || c.Save
}

// Panel is the left-hand raygui parameter panel.
type Panel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	limits   Limits
	editName bool
}

// NewPanel creates a parameter panel.
func NewPanel(x, y, width int32, limits Limits) *Panel {
	return &Panel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		limits:   limits,
	}
}

// Bounds returns the screen rectangle covered by the panel so the caller
// can keep mouse input away from the camera.
func (p *Panel) Bounds() rl.Rectangle {
	return rl.Rectangle{X: float32(p.x), Y: float32(p.y), Width: float32(p.width), Height: float32(p.height())}
}

// Editing reports whether the file name box has keyboard focus.
func (p *Panel) Editing() bool { return p.editName }

func (p *Panel) height() int32 {
	t := p.renderer.Theme
	return t.Padding*2 + 10*(t.LineHeight+t.ControlHeight+6) + 3*t.LineHeight
}

// Draw renders the panel and applies user edits to s.
func (p *Panel) Draw(s *PanelState) Changes {
	var c Changes
	r := p.renderer
	t := r.Theme

	r.DrawPanel(p.x, p.y, p.width, p.height())

	x := float32(p.x + t.Padding)
	y := p.y + t.Padding
	w := float32(p.width - t.Padding*2 - 50)
	h := float32(t.ControlHeight)

	y = r.DrawSectionHeader(int32(x), y, "Animation")

	slider := func(label string, value, maxValue float64, format string) float64 {
		r.DrawLabel(int32(x), y, label)
		y += t.LineHeight
		next := gui.SliderBar(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: h}, "", "", float32(value), 0, float32(maxValue))
		rl.DrawText(fmt.Sprintf(format, next), int32(x+w+6), y+4, t.FontSize, t.ValueColor)
		y += t.ControlHeight + 6
		return float64(next)
	}

	if v := slider("Amplitude", s.Params.Amplitude, p.limits.MaxAmplitude, "%.1f"); v != s.Params.Amplitude {
		s.Params.Amplitude, c.Params = v, true
	}
	if v := slider("Frequency", s.Params.Frequency, p.limits.MaxFrequency, "%.2f"); v != s.Params.Frequency {
		s.Params.Frequency, c.Params = v, true
	}
	if v := slider("Scale", s.Params.Scale, p.limits.MaxScale, "%.2f"); v != s.Params.Scale {
		s.Params.Scale, c.Params = v, true
	}

	y = r.DrawSectionHeader(int32(x), y, "Grid")
	maxGrid := float64(p.limits.MaxGridSize)
	if v := max(1, int(slider("Grid size X", float64(s.GridX), maxGrid, "%.0f"))); v != s.GridX {
		s.GridX, c.Grid = v, true
	}
	if v := max(1, int(slider("Grid size Y", float64(s.GridY), maxGrid, "%.0f"))); v != s.GridY {
		s.GridY, c.Grid = v, true
	}

	r.DrawLabel(int32(x), y, "Tilt")
	y += t.LineHeight
	tilt := float64(gui.SliderBar(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: h}, "", "", float32(s.Tilt), -30, 30))
	rl.DrawText(fmt.Sprintf("%+.0f", tilt), int32(x+w+6), y+4, t.FontSize, t.ValueColor)
	y += t.ControlHeight + 6
	if tilt != s.Tilt {
		s.Tilt, c.Tilt = tilt, true
	}

	y = r.DrawSectionHeader(int32(x), y, "Display")
	full := float32(p.width - t.Padding*2)
	mode := gui.ToggleGroup(rl.Rectangle{X: x, Y: float32(y), Width: full / 3, Height: h}, "Points;Lines;Triangles", int32(s.Mode))
	if m := mesh.Mode(mode); m != s.Mode && m.Valid() {
		s.Mode, c.Mode = m, true
	}
	y += t.ControlHeight + 6

	active := int32(0)
	for i, name := range sourceNames {
		if name == s.Source {
			active = int32(i)
		}
	}
	if next := gui.ToggleGroup(rl.Rectangle{X: x, Y: float32(y), Width: full / 2, Height: h}, "Mesh;Grid", active); next != active {
		s.Source, c.Source = sourceNames[next], true
	}
	y += t.ControlHeight + 10

	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: full, Height: h + 4}, "Restart") {
		c.Restart = true
	}
	y += t.ControlHeight + 10

	y = r.DrawSectionHeader(int32(x), y, "Export")
	if gui.TextBox(rl.Rectangle{X: x, Y: float32(y), Width: full, Height: h}, &s.FileName, 64, p.editName) {
		p.editName = !p.editName
	}
	y += t.ControlHeight + 6
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: full, Height: h + 4}, "Save mesh") {
		c.Save = true
	}

	return c
}
