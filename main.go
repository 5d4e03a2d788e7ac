package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/spout/config"
	"github.com/pthm-cable/spout/game"
	"github.com/pthm-cable/spout/renderer"
	"github.com/pthm-cable/spout/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "Launcher seed (0 = use config)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 0, "Simulation ticks per headless update (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	opts := game.Options{
		Seed:           *seed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *headless {
		runHeadless(opts, *maxTicks)
		return
	}

	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Spout")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	v := newWindowView()
	for !rl.WindowShouldClose() && !g.Finished() {
		v.handleKeys(g)
		g.Update(float64(rl.GetFrameTime()))
		v.draw(g)
		g.RecordFrame()

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			break
		}
	}
}

func runHeadless(opts game.Options, maxTicks int) {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"stats_window", opts.StatsWindowSec,
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	for !g.Finished() {
		g.UpdateHeadless()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return
		}
	}
	slog.Info("run finished", "tick", g.Tick(), "sim_time", g.SimTime())
}

// windowView holds the raylib-side drawing state.
type windowView struct {
	scene    *renderer.SceneRenderer
	hud      *ui.HUD
	perf     *ui.PerfPanel
	controls *ui.ControlsPanel
	showPerf bool
}

func newWindowView() *windowView {
	return &windowView{
		scene:    renderer.NewSceneRenderer(),
		hud:      ui.NewHUD(),
		perf:     ui.NewPerfPanel(10, 150),
		controls: ui.NewControlsPanel(0, 10, 230),
	}
}

func (v *windowView) handleKeys(g *game.Game) {
	renderer.ApplyHeldKeys(g.Input(), renderer.DefaultBindings)

	if rl.IsKeyPressed(rl.KeySpace) {
		g.SetPaused(!g.Paused())
	}
	if rl.IsKeyPressed(rl.KeyN) {
		g.Step()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.Reset()
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.Input().Reset()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.showPerf = !v.showPerf
	}
}

func (v *windowView) draw(g *game.Game) {
	screenW := int32(rl.GetScreenWidth())
	screenH := int32(rl.GetScreenHeight())

	rl.BeginDrawing()
	defer rl.EndDrawing()

	rl.ClearBackground(rl.Color{R: 15, G: 18, B: 22, A: 255})

	v.scene.Draw(g.Input(), g.Scene(), g.Instances())

	sc := g.Scene()
	em := sc.EmitterPosition()
	pool := g.Pool()
	v.hud.Draw(ui.HUDData{
		Title:       "Spout",
		Active:      g.Instances().ActiveCount(),
		Capacity:    pool.Capacity(),
		Obstacles:   sc.NumAccepted(),
		Rejected:    sc.NumObstacles() - sc.NumAccepted(),
		Tick:        g.Tick(),
		SimTime:     g.SimTime(),
		Emitter:     [3]float32{em.X, em.Y, em.Z},
		Restitution: pool.Restitution(),
		FPS:         rl.GetFPS(),
		Paused:      g.Paused(),
	})
	v.hud.DrawControls(screenH, renderer.ControlsLegend)

	if v.showPerf {
		v.perf.Draw(g.PerfStats())
	}

	v.controls.SetPosition(screenW-240, 10)
	res := v.controls.Draw(float32(pool.Restitution()), g.Paused())
	if res.Restitution != float32(pool.Restitution()) {
		pool.SetRestitution(float64(res.Restitution))
	}
	if res.TogglePause {
		g.SetPaused(!g.Paused())
	}
	if res.Step {
		g.Step()
	}
	if res.Reset {
		g.Reset()
	}
}
