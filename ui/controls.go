package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsResult reports what the user changed in the controls panel this
// frame.
type ControlsResult struct {
	Restitution float32
	TogglePause bool
	Step        bool
	Reset       bool
}

// ControlsPanel renders the right-side simulation controls.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the controls panel and returns the user's changes.
func (c *ControlsPanel) Draw(restitution float32, paused bool) ControlsResult {
	res := ControlsResult{Restitution: restitution}
	if !c.visible {
		return res
	}

	r := c.renderer
	padding := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, 130)

	y := r.DrawSectionHeader(c.x+padding, c.y+padding, "Controls")

	rl.DrawText("Restitution", c.x+padding, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.LineHeight

	sliderWidth := float32(c.width - 2*padding - 40)
	res.Restitution = gui.SliderBar(
		rl.Rectangle{X: float32(c.x + padding), Y: float32(y), Width: sliderWidth, Height: 16},
		"", "",
		restitution, 0, 1,
	)
	rl.DrawText(fmt.Sprintf("%.2f", res.Restitution), c.x+padding+int32(sliderWidth)+6, y+2, r.Theme.FontSize, r.Theme.ValueColor)
	y += 28

	bx := float32(c.x + padding)
	by := float32(y)
	pauseLabel := "Pause"
	if paused {
		pauseLabel = "Resume"
	}
	res.TogglePause = gui.Button(rl.Rectangle{X: bx, Y: by, Width: 70, Height: 26}, pauseLabel)
	res.Step = gui.Button(rl.Rectangle{X: bx + 76, Y: by, Width: 60, Height: 26}, "Step")
	res.Reset = gui.Button(rl.Rectangle{X: bx + 142, Y: by, Width: 60, Height: 26}, "Reset")

	return res
}
