// Package telemetry provides windowed pool statistics, performance timing,
// bookmarks, snapshots and CSV output.
package telemetry

import "github.com/pthm-cable/spout/systems"

// Collector accumulates pool events within time windows and produces
// WindowStats. It implements systems.PoolObserver.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks uint64
	dt                  float64

	// Current window tracking
	windowStartTick uint64

	// Event counters for current window
	spawned  int
	declined int
	retired  [3]int // Indexed by systems.RetireReason
	bounces  int

	// Run totals
	totalSpawned  int
	totalDeclined int
}

var _ systems.PoolObserver = (*Collector)(nil)

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := uint64(1)
	if dt > 0 && windowDurationSec > dt {
		ticksPerWindow = uint64(windowDurationSec/dt + 0.5)
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Spawned records a particle activation.
func (c *Collector) Spawned() {
	c.spawned++
	c.totalSpawned++
}

// SpawnDeclined records a spawn skipped because the pool was full.
func (c *Collector) SpawnDeclined() {
	c.declined++
	c.totalDeclined++
}

// Retired records a particle deactivation.
func (c *Collector) Retired(reason systems.RetireReason) {
	if int(reason) < len(c.retired) {
		c.retired[reason]++
	}
}

// Bounced records a collision response.
func (c *Collector) Bounced() {
	c.bounces++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick uint64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller provides the active count and the speeds of active particles
// sampled at window end.
func (c *Collector) Flush(currentTick uint64, active, capacity int, speeds []float64) WindowStats {
	var occupancy float64
	if capacity > 0 {
		occupancy = float64(active) / float64(capacity)
	}

	mean, p10, p50, p90 := ComputeSpeedStats(speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Active:    active,
		Capacity:  capacity,
		Occupancy: occupancy,

		Spawned:         c.spawned,
		Declined:        c.declined,
		RetiredLifetime: c.retired[systems.RetireLifetime],
		RetiredBounces:  c.retired[systems.RetireBounces],
		RetiredEscaped:  c.retired[systems.RetireEscaped],
		Bounces:         c.bounces,

		SpeedMean: mean,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,

		TotalSpawned:  c.totalSpawned,
		TotalDeclined: c.totalDeclined,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.spawned = 0
	c.declined = 0
	c.retired = [3]int{}
	c.bounces = 0

	return stats
}

// Reset clears window and run counters, starting a new window at tick.
func (c *Collector) Reset(tick uint64) {
	*c = Collector{
		windowDurationSec:   c.windowDurationSec,
		windowDurationTicks: c.windowDurationTicks,
		dt:                  c.dt,
		windowStartTick:     tick,
	}
}

// WindowStart returns the tick the current window began at.
func (c *Collector) WindowStart() uint64 {
	return c.windowStartTick
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() uint64 {
	return c.windowDurationTicks
}
