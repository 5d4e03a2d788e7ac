package telemetry

import (
	"log/slog"
	"sort"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick uint64  `csv:"-"`
	WindowEndTick   uint64  `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Pool occupancy at window end
	Active    int     `csv:"active"`
	Capacity  int     `csv:"capacity"`
	Occupancy float64 `csv:"occupancy"`

	// Events during window
	Spawned         int `csv:"spawned"`
	Declined        int `csv:"declined"`
	RetiredLifetime int `csv:"retired_lifetime"`
	RetiredBounces  int `csv:"retired_bounces"`
	RetiredEscaped  int `csv:"retired_escaped"`
	Bounces         int `csv:"bounces"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Run totals
	TotalSpawned  int `csv:"total_spawned"`
	TotalDeclined int `csv:"total_declined"`
}

// Retired returns the number of retirements in the window.
func (s WindowStats) Retired() int {
	return s.RetiredLifetime + s.RetiredBounces + s.RetiredEscaped
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeSpeedStats calculates mean and percentiles from speed samples.
func ComputeSpeedStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartTick),
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("active", s.Active),
		slog.Int("capacity", s.Capacity),
		slog.Float64("occupancy", s.Occupancy),
		slog.Int("spawned", s.Spawned),
		slog.Int("declined", s.Declined),
		slog.Int("retired_lifetime", s.RetiredLifetime),
		slog.Int("retired_bounces", s.RetiredBounces),
		slog.Int("retired_escaped", s.RetiredEscaped),
		slog.Int("bounces", s.Bounces),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Int("total_spawned", s.TotalSpawned),
		slog.Int("total_declined", s.TotalDeclined),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"active", s.Active,
		"occupancy", s.Occupancy,
		"spawned", s.Spawned,
		"declined", s.Declined,
		"retired", s.Retired(),
		"retired_lifetime", s.RetiredLifetime,
		"retired_bounces", s.RetiredBounces,
		"retired_escaped", s.RetiredEscaped,
		"bounces", s.Bounces,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
	)
}
