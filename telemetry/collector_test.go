package telemetry

import (
	"testing"

	"github.com/pthm-cable/spout/systems"
)

func TestCollector_WindowTicks(t *testing.T) {
	tests := []struct {
		name   string
		window float64
		dt     float64
		want   uint64
	}{
		{"one second at 1ms", 1.0, 0.001, 1000},
		{"window shorter than dt", 0.0005, 0.001, 1},
		{"zero dt", 1.0, 0, 1},
		{"rounding", 0.1, 0.03, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector(tt.window, tt.dt)
			if got := c.WindowDurationTicks(); got != tt.want {
				t.Errorf("WindowDurationTicks() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCollector_ShouldFlush(t *testing.T) {
	c := NewCollector(0.01, 0.001)

	if c.ShouldFlush(9) {
		t.Error("flush due before window elapsed")
	}
	if !c.ShouldFlush(10) {
		t.Error("flush not due at window end")
	}

	c.Flush(10, 0, 1, nil)
	if c.ShouldFlush(15) {
		t.Error("flush due mid second window")
	}
	if !c.ShouldFlush(20) {
		t.Error("flush not due at second window end")
	}
}

func TestCollector_FlushCountsAndResets(t *testing.T) {
	c := NewCollector(1, 0.01)

	var obs systems.PoolObserver = c
	for i := 0; i < 5; i++ {
		obs.Spawned()
	}
	obs.SpawnDeclined()
	obs.SpawnDeclined()
	obs.Retired(systems.RetireLifetime)
	obs.Retired(systems.RetireEscaped)
	obs.Retired(systems.RetireEscaped)
	obs.Bounced()

	stats := c.Flush(100, 3, 4, []float64{1, 2, 3})

	if stats.Spawned != 5 || stats.Declined != 2 {
		t.Errorf("spawned=%d declined=%d, want 5 and 2", stats.Spawned, stats.Declined)
	}
	if stats.RetiredLifetime != 1 || stats.RetiredEscaped != 2 || stats.RetiredBounces != 0 {
		t.Errorf("retired counts = %d/%d/%d", stats.RetiredLifetime, stats.RetiredBounces, stats.RetiredEscaped)
	}
	if stats.Retired() != 3 {
		t.Errorf("Retired() = %d, want 3", stats.Retired())
	}
	if stats.Bounces != 1 {
		t.Errorf("Bounces = %d, want 1", stats.Bounces)
	}
	if stats.Occupancy != 0.75 {
		t.Errorf("Occupancy = %v, want 0.75", stats.Occupancy)
	}
	if stats.SpeedP50 != 2 {
		t.Errorf("SpeedP50 = %v, want 2", stats.SpeedP50)
	}
	if stats.SimTimeSec != 1 {
		t.Errorf("SimTimeSec = %v, want 1", stats.SimTimeSec)
	}

	c.Spawned()
	next := c.Flush(200, 3, 4, nil)
	if next.Spawned != 1 || next.Declined != 0 || next.Retired() != 0 || next.Bounces != 0 {
		t.Errorf("counters not reset between windows: %+v", next)
	}
	if next.WindowStartTick != 100 {
		t.Errorf("WindowStartTick = %d, want 100", next.WindowStartTick)
	}
	if next.TotalSpawned != 6 || next.TotalDeclined != 2 {
		t.Errorf("run totals = %d/%d, want 6/2", next.TotalSpawned, next.TotalDeclined)
	}
}

func TestCollector_Reset(t *testing.T) {
	c := NewCollector(1, 0.01)
	c.Spawned()
	c.SpawnDeclined()

	c.Reset(50)

	stats := c.Flush(60, 0, 1, nil)
	if stats.TotalSpawned != 0 || stats.TotalDeclined != 0 {
		t.Errorf("totals survived Reset: %+v", stats)
	}
	if stats.WindowStartTick != 50 {
		t.Errorf("WindowStartTick = %d, want 50", stats.WindowStartTick)
	}
	if c.WindowDurationTicks() != 100 {
		t.Errorf("Reset changed window length to %d", c.WindowDurationTicks())
	}
}
