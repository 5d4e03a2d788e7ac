package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/spout/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title       string
	Active      int
	Capacity    int
	Obstacles   int
	Rejected    int
	Tick        uint64
	SimTime     float64
	Emitter     [3]float32
	Restitution float64
	FPS         int32
	Paused      bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer

	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	occupancy := float32(0)
	if data.Capacity > 0 {
		occupancy = float32(data.Active) / float32(data.Capacity)
	}
	y := r.DrawOccupancyBar(10, 36, "Pool", occupancy, 260)

	rl.DrawText(
		fmt.Sprintf("Particles: %d/%d | Obstacles: %d", data.Active, data.Capacity, data.Obstacles),
		10, y, 16, rl.LightGray,
	)
	if data.Rejected > 0 {
		rl.DrawText(fmt.Sprintf("(%d rejected)", data.Rejected), 330, y, 16, rl.Orange)
	}
	y += 20

	rl.DrawText(
		fmt.Sprintf("Tick: %d | t=%.3fs | e=%.2f | FPS: %d", data.Tick, data.SimTime, data.Restitution, data.FPS),
		10, y, 16, rl.LightGray,
	)
	y += 20

	rl.DrawText(
		fmt.Sprintf("Emitter: (%.2f, %.2f, %.2f)", data.Emitter[0], data.Emitter[1], data.Emitter[2]),
		10, y, 16, rl.LightGray,
	)
	y += 20

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, y, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase tick timing panel.
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

// Draw renders the performance panel, phases in tick order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(
		fmt.Sprintf("Avg: %s | %.0f ticks/s", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond),
		x, y, 14, rl.Yellow,
	)
	y += 16

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
