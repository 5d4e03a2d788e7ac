package game

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spout/systems"
	"github.com/pthm-cable/spout/telemetry"
)

// observers fans pool events out to several observers.
type observers []systems.PoolObserver

func (o observers) Spawned() {
	for _, x := range o {
		x.Spawned()
	}
}

func (o observers) SpawnDeclined() {
	for _, x := range o {
		x.SpawnDeclined()
	}
}

func (o observers) Retired(reason systems.RetireReason) {
	for _, x := range o {
		x.Retired(reason)
	}
}

func (o observers) Bounced() {
	for _, x := range o {
		x.Bounced()
	}
}

// cueCounter counts bounces for viewer feedback such as the audio click.
type cueCounter struct {
	systems.NopObserver
	bounces int
}

func (c *cueCounter) Bounced() { c.bounces++ }

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.clock.Ticks()) {
		return
	}
	g.flushWindow()
}

func (g *Game) flushWindow() {
	stats := g.collector.Flush(g.clock.Ticks(), g.pool.ActiveCount(), g.pool.Capacity(), g.sampleSpeeds())
	perfStats := g.perfCollector.Stats()

	// Saturation is reported whether or not window stats are logged
	if stats.Declined > 0 {
		slog.Info("pool full", "tick", stats.WindowEndTick, "declined", stats.Declined, "capacity", stats.Capacity)
	}

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	// Check for bookmarks
	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}

		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		// Save snapshot on bookmark
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sampleSpeeds collects the speed of every active particle.
func (g *Game) sampleSpeeds() []float64 {
	g.speeds = g.speeds[:0]
	for i := 0; i < g.pool.Capacity(); i++ {
		if !g.pool.IsActive(i) {
			continue
		}
		g.speeds = append(g.speeds, r3.Norm(g.pool.Particle(i).Velocity))
	}
	return g.speeds
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := g.createSnapshot(bookmark)

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", snapshot.Tick)
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	em := g.input.Emitter
	snapshot := &telemetry.Snapshot{
		Version:   telemetry.SnapshotVersion,
		Seed:      g.seed,
		Tick:      g.clock.Ticks(),
		SimTime:   g.clock.Time(),
		Capacity:  g.pool.Capacity(),
		Emitter:   [3]float64{em.X, em.Y, em.Z},
		Particles: make([]telemetry.ParticleState, 0, g.pool.ActiveCount()),
		Bookmark:  bookmark,
	}

	for i := 0; i < g.pool.Capacity(); i++ {
		if !g.pool.IsActive(i) {
			continue
		}
		p := g.pool.Particle(i)
		snapshot.Particles = append(snapshot.Particles, telemetry.ParticleState{
			Slot:     i,
			Position: [3]float64{p.Position.X, p.Position.Y, p.Position.Z},
			Velocity: [3]float64{p.Velocity.X, p.Velocity.Y, p.Velocity.Z},
			Born:     p.Born,
			Bounces:  p.Bounces,
			Resting:  p.Resting,
		})
	}

	return snapshot
}
