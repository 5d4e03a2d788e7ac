// Command termview runs the particle simulation in a terminal, drawing the
// scene with tcell and clicking on bounces.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spout/camera"
	"github.com/pthm-cable/spout/components"
	"github.com/pthm-cable/spout/config"
	"github.com/pthm-cable/spout/game"
)

const frameInterval = 16 * time.Millisecond

// cellAspect is the height/width ratio of a terminal cell.
const cellAspect = 2

var keyActions = map[rune]camera.Action{
	'j': camera.OrbitLeft,
	'l': camera.OrbitRight,
	'i': camera.OrbitUp,
	'k': camera.OrbitDown,
	'a': camera.EmitterLeft,
	'd': camera.EmitterRight,
	'w': camera.EmitterForward,
	's': camera.EmitterBack,
}

type viewer struct {
	screen tcell.Screen
	game   *game.Game
	click  *clicker

	width, height int
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "Launcher seed (0 = use config)")
	mute := flag.Bool("mute", false, "Disable the bounce click")
	logPath := flag.String("log", "", "Write JSON logs to this file (default: discard)")
	flag.Parse()

	// The terminal owns stdout, so logs go to a file or nowhere
	var handler slog.Handler = slog.NewJSONHandler(io.Discard, nil)
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		handler = slog.NewJSONHandler(f, nil)
	}
	slog.SetDefault(slog.New(handler))

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	g, err := game.NewGameWithOptions(game.Options{Seed: *seed})
	if err != nil {
		fmt.Fprintf(os.Stderr, "starting simulation: %v\n", err)
		os.Exit(1)
	}
	defer g.Unload()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "initializing screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	v := &viewer{screen: screen, game: g}
	v.width, v.height = screen.Size()

	if cfg.Audio.Enabled && !*mute {
		c, err := newClicker(cfg.Audio.ToneHz, time.Duration(cfg.Audio.ClickMS)*time.Millisecond)
		if err != nil {
			// Non-fatal, the viewer runs without sound
			slog.Warn("audio initialization failed", "error", err)
		} else {
			v.click = c
		}
	}

	v.run()
}

func (v *viewer) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-eventChan:
			if !v.handleInput(ev) {
				return
			}

		case now := <-ticker.C:
			v.game.Update(now.Sub(last).Seconds())
			last = now
			if v.game.Finished() {
				return
			}
			if n := v.game.TakeBounces(); n > 0 && v.click != nil {
				v.click.Play()
			}
			v.draw()
		}
	}
}

func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyHome {
			v.game.Input().Reset()
			return true
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}

		r := ev.Rune()
		if a, ok := keyActions[r]; ok {
			v.game.Input().Apply(a)
			return true
		}
		switch r {
		case 'q':
			return false
		case ' ':
			v.game.SetPaused(!v.game.Paused())
		case 'n':
			v.game.Step()
		case 'r':
			v.game.Reset()
		}

	case *tcell.EventResize:
		v.screen.Sync()
		v.width, v.height = v.screen.Size()
	}

	return true
}

func (v *viewer) draw() {
	v.screen.Clear()

	// One status line at the top
	rows := v.height - 1
	if v.width <= 0 || rows <= 0 {
		v.screen.Show()
		return
	}
	aspect := float32(v.width) / float32(rows*cellAspect)
	vp := v.game.Input().ViewProjection(45, aspect)

	v.game.Scene().EachObstacle(func(tri *components.Triangle, tint *components.Tint, ob *components.Obstacle) {
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(tint.R), int32(tint.G), int32(tint.B)))
		glyph := '·'
		if !ob.Accepted {
			style = tcell.StyleDefault.Foreground(tcell.ColorRed)
			glyph = 'x'
		}
		a, b, c := toR3(tri.A), toR3(tri.B), toR3(tri.C)
		v.drawEdge(vp, a, b, glyph, style)
		v.drawEdge(vp, b, c, glyph, style)
		v.drawEdge(vp, c, a, glyph, style)
	})

	particleStyle := tcell.StyleDefault.Foreground(tcell.NewRGBColor(120, 200, 255))
	inst := v.game.Instances()
	for i := 0; i < inst.Len(); i++ {
		if !inst.Active[i] {
			continue
		}
		v.plot(vp, fromMgl(inst.Position(i)), 'o', particleStyle)
	}

	v.plot(vp, toR3(v.game.Scene().EmitterPosition()), '*', tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))

	pool := v.game.Pool()
	status := fmt.Sprintf(" %d/%d particles | t=%.2fs | jlik orbit  wasd emitter  space pause  n step  r reset  q quit",
		pool.ActiveCount(), pool.Capacity(), v.game.SimTime())
	if v.game.Paused() {
		status = " PAUSED |" + status
	}
	v.drawText(0, 0, status, tcell.StyleDefault.Reverse(true))

	v.screen.Show()
}

// plot draws glyph at the projection of p, below the status line.
func (v *viewer) plot(vp mgl32.Mat4, p r3.Vec, glyph rune, style tcell.Style) {
	x, y, ok := camera.Project(vp, p, v.width, v.height-1)
	if !ok {
		return
	}
	col, row := int(x), int(y)+1
	if col < 0 || col >= v.width || row < 1 || row >= v.height {
		return
	}
	v.screen.SetContent(col, row, glyph, nil, style)
}

// drawEdge samples the segment densely enough to leave no gaps at typical
// terminal sizes.
func (v *viewer) drawEdge(vp mgl32.Mat4, a, b r3.Vec, glyph rune, style tcell.Style) {
	const samples = 48
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		v.plot(vp, r3.Add(a, r3.Scale(t, r3.Sub(b, a))), glyph, style)
	}
}

func (v *viewer) drawText(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		if x >= v.width {
			return
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < v.width; x++ {
		v.screen.SetContent(x, y, ' ', nil, style)
	}
}

func toR3(p components.Position) r3.Vec {
	return r3.Vec{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}
}

func fromMgl(p mgl32.Vec3) r3.Vec {
	return r3.Vec{X: float64(p.X()), Y: float64(p.Y()), Z: float64(p.Z())}
}
