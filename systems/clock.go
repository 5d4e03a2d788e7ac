package systems

// ClockConfig holds the simulation and display cadence.
type ClockConfig struct {
	DT            float64 // Seconds per simulation tick
	DisplayPeriod float64 // Simulated seconds between display readbacks
	MaxTime       float64 // Simulated seconds before the run ends (0 = unbounded)
	MaxFrames     int     // Display frames before the run ends (0 = unbounded)
}

// Clock tracks simulation time and the slower display cadence.
// It never blocks; callers poll it once per tick.
type Clock struct {
	cfg ClockConfig

	ticks       uint64
	frames      int
	nextDisplay float64
}

// NewClock creates a clock and resets it.
func NewClock(cfg ClockConfig) *Clock {
	c := &Clock{cfg: cfg}
	c.Reset()
	return c
}

// Reset zeroes simulation time and schedules the first display update at t=0.
func (c *Clock) Reset() {
	c.ticks = 0
	c.frames = 0
	c.nextDisplay = 0
}

// Advance moves simulation time forward by one tick.
func (c *Clock) Advance() {
	c.ticks++
}

// DueForDisplay reports whether the next display update time has been reached.
func (c *Clock) DueForDisplay() bool {
	return c.Time() >= c.nextDisplay
}

// MarkDisplayDone pushes the next display threshold out by one display period.
func (c *Clock) MarkDisplayDone() {
	c.nextDisplay += c.cfg.DisplayPeriod
	c.frames++
}

// Finished reports whether the configured run duration or frame budget has elapsed.
func (c *Clock) Finished() bool {
	if c.cfg.MaxTime > 0 && c.Time() >= c.cfg.MaxTime {
		return true
	}
	return c.cfg.MaxFrames > 0 && c.frames >= c.cfg.MaxFrames
}

// Time returns the simulated time in seconds.
// Computed from the tick count so long runs do not accumulate rounding drift.
func (c *Clock) Time() float64 {
	return float64(c.ticks) * c.cfg.DT
}

// Ticks returns the number of simulation ticks since Reset.
func (c *Clock) Ticks() uint64 { return c.ticks }

// Frames returns the number of display updates since Reset.
func (c *Clock) Frames() int { return c.frames }

// DT returns the tick increment.
func (c *Clock) DT() float64 { return c.cfg.DT }

// NextDisplay returns the simulated time of the next display update.
func (c *Clock) NextDisplay() float64 { return c.nextDisplay }
