package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the simulation step.
const (
	PhaseRetire    = "retire"
	PhaseSpawn     = "spawn"
	PhaseStep      = "step"
	PhaseDisplay   = "display"
	PhaseTelemetry = "telemetry"
)

// Phases lists the simulation phases in tick order.
var Phases = []string{PhaseDisplay, PhaseRetire, PhaseSpawn, PhaseStep, PhaseTelemetry}

type tickSample struct {
	total  time.Duration
	phases map[string]time.Duration
}

// PerfCollector keeps wall-clock timings of the last N ticks in a ring.
// Phase maps live in the ring and are cleared in place, so timing does not
// allocate once every phase has been seen.
type PerfCollector struct {
	ring  []tickSample
	next  int // Ring slot the current tick writes to
	count int // Filled slots, up to len(ring)

	tickStart  time.Time
	phaseStart time.Time
	phase      string

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	ring := make([]tickSample, windowSize)
	for i := range ring {
		ring[i].phases = make(map[string]time.Duration, len(Phases))
	}
	return &PerfCollector{ring: ring}
}

// Reset forgets all tick and frame timings.
func (p *PerfCollector) Reset() {
	for i := range p.ring {
		p.ring[i].total = 0
		clear(p.ring[i].phases)
	}
	p.next, p.count = 0, 0
	p.phase = ""
	p.lastFrame, p.frame = time.Time{}, 0
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	clear(p.ring[p.next].phases)
	p.phase = ""
}

// StartPhase closes the running phase, if any, and opens the named one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = phase
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.ring[p.next].phases[p.phase] += now.Sub(p.phaseStart)
		p.phase = ""
	}
}

// EndTick closes the running phase and commits the tick to the ring.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.ring[p.next].total = now.Sub(p.tickStart)
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

// RecordFrame records the interval since the previous rendered frame.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats holds timings aggregated over the collector's window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64 // Share of the average tick, 0-100

	// Viewer frame timing, zero in headless runs
	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the filled part of the ring.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	var total time.Duration
	for i, sample := range p.ring[:p.count] {
		total += sample.total
		if i == 0 || sample.total < s.MinTickDuration {
			s.MinTickDuration = sample.total
		}
		s.MaxTickDuration = max(s.MaxTickDuration, sample.total)
		for phase, d := range sample.phases {
			s.PhaseAvg[phase] += d
		}
	}

	n := time.Duration(p.count)
	s.AvgTickDuration = total / n
	for phase := range s.PhaseAvg {
		s.PhaseAvg[phase] /= n
		if s.AvgTickDuration > 0 {
			s.PhasePct[phase] = float64(s.PhaseAvg[phase]) / float64(s.AvgTickDuration) * 100
		}
	}
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	return s
}

// LogStats logs tick timing with phases above 0.1% of the tick.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range Phases {
		if pct := s.PhasePct[phase]; pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    uint64  `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	RetirePct    float64 `csv:"retire_pct"`
	SpawnPct     float64 `csv:"spawn_pct"`
	StepPct      float64 `csv:"step_pct"`
	DisplayPct   float64 `csv:"display_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats into a row ending at tick windowEnd.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		RetirePct:    s.PhasePct[PhaseRetire],
		SpawnPct:     s.PhasePct[PhaseSpawn],
		StepPct:      s.PhasePct[PhaseStep],
		DisplayPct:   s.PhasePct[PhaseDisplay],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
