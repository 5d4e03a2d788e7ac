package systems

import "testing"

func TestClockDisplayCadence(t *testing.T) {
	c := NewClock(ClockConfig{DT: 0.001, DisplayPeriod: 0.01})

	if !c.DueForDisplay() {
		t.Fatal("expected first display to be due at t=0")
	}
	c.MarkDisplayDone()

	if c.DueForDisplay() {
		t.Error("display should not be due right after MarkDisplayDone")
	}

	// Several ticks pass between two display updates
	ticks := 0
	for !c.DueForDisplay() {
		c.Advance()
		ticks++
		if ticks > 100 {
			t.Fatal("display never became due")
		}
	}
	if ticks < 9 || ticks > 11 {
		t.Errorf("expected ~10 ticks between displays, got %d", ticks)
	}
	if c.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", c.Frames())
	}
}

func TestClockDueForDisplayIsPure(t *testing.T) {
	c := NewClock(ClockConfig{DT: 0.001, DisplayPeriod: 0.01})
	for i := 0; i < 5; i++ {
		if !c.DueForDisplay() {
			t.Fatal("repeated DueForDisplay calls changed the answer")
		}
	}
	if c.NextDisplay() != 0 {
		t.Errorf("NextDisplay() = %v, want 0", c.NextDisplay())
	}
}

func TestClockFinished(t *testing.T) {
	tests := []struct {
		name     string
		cfg      ClockConfig
		ticks    int
		frames   int
		wantDone bool
	}{
		{"unbounded", ClockConfig{DT: 0.01}, 1000, 10, false},
		{"time not reached", ClockConfig{DT: 0.01, MaxTime: 1}, 50, 0, false},
		{"time reached", ClockConfig{DT: 0.01, MaxTime: 1}, 100, 0, true},
		{"frames not reached", ClockConfig{DT: 0.01, MaxFrames: 3}, 0, 2, false},
		{"frames reached", ClockConfig{DT: 0.01, MaxFrames: 3}, 0, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClock(tt.cfg)
			for i := 0; i < tt.ticks; i++ {
				c.Advance()
			}
			for i := 0; i < tt.frames; i++ {
				c.MarkDisplayDone()
			}
			if got := c.Finished(); got != tt.wantDone {
				t.Errorf("Finished() = %v, want %v (time %v, frames %d)", got, tt.wantDone, c.Time(), c.Frames())
			}
		})
	}
}

func TestClockReset(t *testing.T) {
	c := NewClock(ClockConfig{DT: 0.5, DisplayPeriod: 1, MaxTime: 2})
	for i := 0; i < 4; i++ {
		c.Advance()
		c.MarkDisplayDone()
	}
	if !c.Finished() {
		t.Fatal("expected clock to be finished before reset")
	}

	c.Reset()

	if c.Time() != 0 || c.Ticks() != 0 || c.Frames() != 0 {
		t.Errorf("after Reset: time=%v ticks=%d frames=%d", c.Time(), c.Ticks(), c.Frames())
	}
	if c.Finished() {
		t.Error("clock finished immediately after Reset")
	}
	if !c.DueForDisplay() {
		t.Error("first display should be due after Reset")
	}
}
