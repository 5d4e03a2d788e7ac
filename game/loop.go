package game

import (
	"log/slog"

	"github.com/pthm-cable/spout/telemetry"
)

// step runs one simulation tick: display readback if due, retire, spawn
// at the emitter, step, then advance the clock. The pool phases must stay in
// the order systems.Pool.Tick uses; they are split out here to time each.
func (g *Game) step() {
	pc := g.perfCollector
	pc.StartTick()

	pc.StartPhase(telemetry.PhaseDisplay)
	if g.clock.DueForDisplay() {
		g.refreshDisplay()
		g.clock.MarkDisplayDone()
	}

	pc.StartPhase(telemetry.PhaseRetire)
	g.pool.Retire()

	pc.StartPhase(telemetry.PhaseSpawn)
	g.pool.Spawn(g.pool.Remap().FromDisplay(g.input.Emitter))

	pc.StartPhase(telemetry.PhaseStep)
	g.pool.StepAll(g.clock.DT())
	g.clock.Advance()

	pc.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	pc.EndTick()
}

// refreshDisplay copies particle positions and the emitter into the
// viewer-facing buffers.
func (g *Game) refreshDisplay() {
	g.instances.Refresh(g.pool)
	g.scene.SetEmitter(g.input.Emitter)
}

// UpdateHeadless runs StepsPerUpdate ticks, stopping early if the run
// finishes.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate && !g.Finished(); i++ {
		g.step()
	}
}

// Update paces simulation ticks to elapsed wall-clock seconds and returns
// how many ticks ran. At most MaxCatchUp ticks run per call; any backlog
// beyond that is dropped so a slow frame does not snowball.
func (g *Game) Update(elapsed float64) int {
	if g.paused || elapsed <= 0 {
		return 0
	}

	dt := g.clock.DT()
	g.accum += elapsed

	n := 0
	for g.accum >= dt && n < g.maxCatchUp && !g.Finished() {
		g.step()
		g.accum -= dt
		n++
	}

	if n == g.maxCatchUp && g.accum >= dt {
		slog.Debug("simulation behind real time", "dropped_ticks", int(g.accum/dt))
		g.accum = 0
	}
	return n
}

// Step runs exactly one tick regardless of pacing, for single-stepping
// while paused.
func (g *Game) Step() {
	if !g.Finished() {
		g.step()
	}
}
