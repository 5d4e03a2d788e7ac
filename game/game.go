// Package game wires the clock, the particle pool, viewer input and
// telemetry into the single simulation loop. It does not draw; viewers read
// Instances and Scene after each update.
package game

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spout/camera"
	"github.com/pthm-cable/spout/components"
	"github.com/pthm-cable/spout/config"
	"github.com/pthm-cable/spout/scene"
	"github.com/pthm-cable/spout/systems"
	"github.com/pthm-cable/spout/telemetry"
)

// Options configures a new game.
type Options struct {
	Config         *config.Config // nil = config.Cfg()
	Seed           int64          // Launcher seed override (0 = use config)
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	SnapshotDir    string
	OutputDir      string
	StepsPerUpdate int    // 0 = use config
}

// Game holds the complete simulation state.
type Game struct {
	cfg *config.Config

	clock     *systems.Clock
	pool      *systems.Pool
	input     *camera.InputState
	scene     *scene.Scene
	instances *scene.InstanceBuffer

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	snapshotDir      string
	speeds           []float64 // Reused speed samples for window stats
	cues             cueCounter

	// State
	seed           int64
	stepsPerUpdate int
	maxCatchUp     int
	accum          float64 // Wall-clock seconds not yet simulated
	paused         bool
	stopped        bool
}

// NewGameWithOptions creates a game from options.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	launch := cfg.Emitter.Launch
	if opts.Seed != 0 {
		launch.Seed = opts.Seed
	}
	launcher, err := systems.NewLauncher(launch)
	if err != nil {
		return nil, fmt.Errorf("creating launcher: %w", err)
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	steps := cfg.Sim.StepsPerUpdate
	if opts.StepsPerUpdate > 0 {
		steps = opts.StepsPerUpdate
	}

	clock := systems.NewClock(systems.ClockConfig{
		DT:            cfg.Sim.DT,
		DisplayPeriod: cfg.Derived.DisplayPeriod,
		MaxTime:       cfg.Sim.MaxTime,
		MaxFrames:     cfg.Sim.MaxFrames,
	})
	poolCfg := systems.PoolConfigFrom(cfg)
	pool := systems.NewPool(clock, poolCfg, launcher)
	input := camera.New(cfg.Camera, cfg.Emitter)

	g := &Game{
		cfg:              cfg,
		clock:            clock,
		pool:             pool,
		input:            input,
		scene:            scene.New(poolCfg.Remap, input.Emitter, cfg.Emitter.MoveSpeed),
		instances:        scene.NewInstanceBuffer(pool.Capacity(), cfg.Display.ParticleRadius),
		collector:        telemetry.NewCollector(statsWindow, cfg.Sim.DT),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
		speeds:           make([]float64, 0, pool.Capacity()),
		seed:             launch.Seed,
		stepsPerUpdate:   steps,
		maxCatchUp:       cfg.Sim.MaxCatchUp,
	}
	pool.SetObserver(observers{g.collector, &g.cues})

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om

	records := g.addObstacles()

	if om != nil {
		slog.Info("writing output", "dir", om.Dir())
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
		if err := om.WriteObstacles(records); err != nil {
			slog.Error("failed to write obstacles", "error", err)
		}
	}

	g.refreshDisplay()
	return g, nil
}

// addObstacles registers the configured obstacles with the pool and the
// scene. Degenerate ones are logged and skipped by the pool.
func (g *Game) addObstacles() []telemetry.ObstacleRecord {
	records := make([]telemetry.ObstacleRecord, 0, len(g.cfg.Obstacles))
	for i, oc := range g.cfg.Obstacles {
		tri := [3]r3.Vec{oc.Vertices[0].R3(), oc.Vertices[1].R3(), oc.Vertices[2].R3()}
		tint := components.Tint{R: oc.Color[0], G: oc.Color[1], B: oc.Color[2]}
		rec := telemetry.ObstacleRecord{Index: i, Name: oc.Name}

		if err := g.pool.AddObstacle(tri); err != nil {
			slog.Warn("rejected obstacle", "index", i, "name", oc.Name, "error", err)
			rec.Error = err.Error()
			g.scene.AddObstacle(oc.Name, tri, tint, nil)
			records = append(records, rec)
			continue
		}

		planes := g.pool.Planes()
		pl := planes[len(planes)-1]
		rec.Accepted = true
		rec.Area = pl.Area()
		rec.NormalX, rec.NormalY, rec.NormalZ = pl.Normal.X, pl.Normal.Y, pl.Normal.Z
		g.scene.AddObstacle(oc.Name, tri, tint, &pl)
		records = append(records, rec)
	}
	return records
}

// Input returns the viewer input state.
func (g *Game) Input() *camera.InputState { return g.input }

// Instances returns the per-slot transforms refreshed at each display frame.
func (g *Game) Instances() *scene.InstanceBuffer { return g.instances }

// Scene returns the obstacle and emitter entities.
func (g *Game) Scene() *scene.Scene { return g.scene }

// Pool returns the particle pool.
func (g *Game) Pool() *systems.Pool { return g.pool }

// Clock returns the simulation clock.
func (g *Game) Clock() *systems.Clock { return g.clock }

// Tick returns the number of simulation ticks run.
func (g *Game) Tick() uint64 { return g.clock.Ticks() }

// SimTime returns the simulated time in seconds.
func (g *Game) SimTime() float64 { return g.clock.Time() }

// Paused reports whether paced updates are suspended.
func (g *Game) Paused() bool { return g.paused }

// SetPaused suspends or resumes paced updates.
func (g *Game) SetPaused(p bool) {
	g.paused = p
	g.accum = 0
}

// Stop ends the run at the next Finished check.
func (g *Game) Stop() { g.stopped = true }

// Finished reports whether the clock's bound was reached or Stop was called.
func (g *Game) Finished() bool {
	return g.stopped || g.clock.Finished()
}

// Reset clears every particle and restarts the clock. Obstacles are kept.
func (g *Game) Reset() {
	g.clock.Reset()
	g.pool.Reset()
	g.collector.Reset(0)
	g.perfCollector.Reset()
	g.bookmarkDetector.Reset()
	g.cues = cueCounter{}
	g.accum = 0
	g.refreshDisplay()
	slog.Info("simulation reset")
}

// SetStatsCallback sets a function called with each flushed stats window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// PerfStats returns the rolling performance statistics.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// RecordFrame records a rendered frame for FPS tracking.
func (g *Game) RecordFrame() {
	g.perfCollector.RecordFrame()
}

// TakeBounces returns the bounces since the previous call.
func (g *Game) TakeBounces() int {
	n := g.cues.bounces
	g.cues.bounces = 0
	return n
}

// Unload flushes the last partial stats window and closes output files.
func (g *Game) Unload() {
	if g.clock.Ticks() > g.collector.WindowStart() {
		g.flushWindow()
	}
	if g.snapshotDir != "" {
		g.saveSnapshot(nil)
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
