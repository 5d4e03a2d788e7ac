package systems

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spout/config"
)

// DefaultCapacity is the pool size used when none is configured.
const DefaultCapacity = 1000

// RetireReason identifies why a particle left the pool.
type RetireReason uint8

const (
	RetireLifetime RetireReason = iota
	RetireBounces
	RetireEscaped
)

func (r RetireReason) String() string {
	switch r {
	case RetireLifetime:
		return "lifetime"
	case RetireBounces:
		return "bounces"
	case RetireEscaped:
		return "escaped"
	default:
		return fmt.Sprintf("RetireReason(%d)", uint8(r))
	}
}

// PoolObserver receives pool events. Calls happen on the simulation hot path
// and must not block.
type PoolObserver interface {
	Spawned()
	SpawnDeclined()
	Retired(reason RetireReason)
	Bounced()
}

// NopObserver ignores all pool events.
type NopObserver struct{}

func (NopObserver) Spawned()             {}
func (NopObserver) SpawnDeclined()       {}
func (NopObserver) Retired(RetireReason) {}
func (NopObserver) Bounced()             {}

// PoolConfig holds the pool's capacity, physics and retirement policy.
type PoolConfig struct {
	Capacity int
	Gravity  r3.Vec
	Physics  PhysicsParams
	Lifetime float64 // Seconds a particle lives (0 = no limit)
	Park     r3.Vec  // Display position reported for inactive slots
	Remap    Remap
}

// PoolConfigFrom extracts the pool settings from a loaded config.
func PoolConfigFrom(cfg *config.Config) PoolConfig {
	return PoolConfig{
		Capacity: cfg.Pool.Capacity,
		Gravity:  cfg.Derived.Gravity,
		Physics: PhysicsParams{
			Restitution: cfg.Physics.Restitution,
			RestSpeed:   cfg.Physics.RestSpeed,
			Skin:        cfg.Physics.Skin,
			MaxBounces:  cfg.Retire.MaxBounces,
			BoundsMin:   cfg.Derived.BoundsMin,
			BoundsMax:   cfg.Derived.BoundsMax,
		},
		Lifetime: cfg.Retire.Lifetime,
		Park:     cfg.Derived.Park,
		Remap:    Remap{Offset: cfg.Derived.Offset},
	}
}

// Pool is a fixed-capacity particle pool with a static obstacle list.
// Slots are reused through a free list; after NewPool nothing on the
// Retire/Spawn/StepAll path allocates.
type Pool struct {
	particles []Particle
	active    []bool
	free      []int // LIFO stack of inactive slot indices
	count     int

	planes []Plane

	cfg           PoolConfig
	lifetimeTicks uint64 // Lifetime rounded up to whole ticks (0 = no limit)
	clock         *Clock
	launcher      Launcher
	observer      PoolObserver
}

// NewPool allocates capacity inert slots. All slots start inactive and the
// obstacle list starts empty.
func NewPool(clock *Clock, cfg PoolConfig, launcher Launcher) *Pool {
	if cfg.Capacity < 1 {
		cfg.Capacity = DefaultCapacity
	}
	if launcher == nil {
		launcher = FixedLauncher{}
	}

	p := &Pool{
		particles:     make([]Particle, cfg.Capacity),
		active:        make([]bool, cfg.Capacity),
		free:          make([]int, 0, cfg.Capacity),
		cfg:           cfg,
		lifetimeTicks: lifetimeTicks(cfg.Lifetime, clock.DT()),
		clock:         clock,
		launcher:      launcher,
		observer:      NopObserver{},
	}
	p.resetFree()
	return p
}

// lifetimeTicks converts a lifetime in seconds to whole ticks, rounding up.
// The epsilon keeps an exact multiple of dt from gaining an extra tick.
func lifetimeTicks(lifetime, dt float64) uint64 {
	if lifetime <= 0 || dt <= 0 {
		return 0
	}
	return uint64(max(1, math.Ceil(lifetime/dt-1e-9)))
}

// SetObserver installs an event observer. nil restores the no-op observer.
func (p *Pool) SetObserver(o PoolObserver) {
	if o == nil {
		o = NopObserver{}
	}
	p.observer = o
}

// AddObstacle registers a triangular obstacle. Degenerate triangles are
// rejected with ErrDegenerateObstacle and leave the list unchanged.
func (p *Pool) AddObstacle(tri [3]r3.Vec) error {
	pl, err := NewPlane(tri[0], tri[1], tri[2])
	if err != nil {
		return fmt.Errorf("adding obstacle %d: %w", len(p.planes), err)
	}
	p.planes = append(p.planes, pl)
	return nil
}

// Spawn activates a free slot at origin using the launcher. Returns false,
// leaving every existing particle untouched, when the pool is full.
func (p *Pool) Spawn(origin r3.Vec) bool {
	if len(p.free) == 0 {
		p.observer.SpawnDeclined()
		return false
	}

	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	pos, vel := p.launcher.Launch(origin)
	p.particles[idx] = Particle{
		Position: pos,
		Velocity: vel,
		Born:     p.clock.Time(),
		BornTick: p.clock.Ticks(),
	}
	p.active[idx] = true
	p.count++
	p.observer.Spawned()
	return true
}

// Retire deactivates every active particle that meets the retirement policy
// and returns how many were retired. Inactive slots are skipped.
func (p *Pool) Retire() int {
	if p.count == 0 {
		return 0
	}

	now := p.clock.Ticks()
	retired := 0
	for i := range p.active {
		if !p.active[i] {
			continue
		}
		reason, ok := p.retireReason(&p.particles[i], now)
		if !ok {
			continue
		}
		p.despawn(i)
		p.observer.Retired(reason)
		retired++
	}
	return retired
}

func (p *Pool) retireReason(pt *Particle, now uint64) (RetireReason, bool) {
	switch {
	case pt.Escaped:
		return RetireEscaped, true
	case p.cfg.Physics.MaxBounces > 0 && pt.Bounces >= p.cfg.Physics.MaxBounces:
		return RetireBounces, true
	case p.lifetimeTicks > 0 && now-pt.BornTick >= p.lifetimeTicks:
		return RetireLifetime, true
	}
	return 0, false
}

func (p *Pool) despawn(i int) {
	p.active[i] = false
	p.particles[i] = Particle{}
	p.free = append(p.free, i)
	p.count--
}

// StepAll advances every active particle by dt against all obstacles.
func (p *Pool) StepAll(dt float64) {
	if dt <= 0 {
		return
	}
	for i := range p.active {
		if !p.active[i] {
			continue
		}
		pt := &p.particles[i]
		before := pt.Bounces
		pt.Step(dt, p.cfg.Gravity, p.planes, &p.cfg.Physics)
		if pt.Bounces != before {
			p.observer.Bounced()
		}
	}
}

// Tick runs one simulation tick: retire, then spawn at origin, then step.
// Retiring first lets a slot freed this tick take the new spawn.
func (p *Pool) Tick(origin r3.Vec, dt float64) {
	p.Retire()
	p.Spawn(origin)
	p.StepAll(dt)
}

// Reset makes every slot inert again. Obstacles are kept.
func (p *Pool) Reset() {
	for i := range p.active {
		p.active[i] = false
		p.particles[i] = Particle{}
	}
	p.count = 0
	p.resetFree()
}

// resetFree refills the free list so the lowest index is handed out first.
func (p *Pool) resetFree() {
	p.free = p.free[:0]
	for i := len(p.active) - 1; i >= 0; i-- {
		p.free = append(p.free, i)
	}
}

// SetRestitution changes the restitution used by later steps, clamped to
// [0, 1].
func (p *Pool) SetRestitution(e float64) {
	p.cfg.Physics.Restitution = math.Max(0, math.Min(1, e))
}

// Restitution returns the current restitution.
func (p *Pool) Restitution() float64 { return p.cfg.Physics.Restitution }

// Capacity returns the number of slots.
func (p *Pool) Capacity() int { return len(p.active) }

// ActiveCount returns the number of live particles.
func (p *Pool) ActiveCount() int { return p.count }

// IsActive reports whether slot i holds a live particle.
func (p *Pool) IsActive(i int) bool {
	p.checkSlot(i)
	return p.active[i]
}

// Particle returns a copy of slot i's state.
func (p *Pool) Particle(i int) Particle {
	p.checkSlot(i)
	return p.particles[i]
}

// DisplayPosition returns slot i's position in display coordinates and true,
// or the park position and false for an inactive slot.
func (p *Pool) DisplayPosition(i int) (r3.Vec, bool) {
	p.checkSlot(i)
	if !p.active[i] {
		return p.cfg.Park, false
	}
	return p.particles[i].DisplayPosition(p.cfg.Remap), true
}

// Remap returns the engine/display coordinate mapping used by the pool.
func (p *Pool) Remap() Remap { return p.cfg.Remap }

// Planes returns a copy of the registered obstacles.
func (p *Pool) Planes() []Plane {
	out := make([]Plane, len(p.planes))
	copy(out, p.planes)
	return out
}

// NumPlanes returns the number of registered obstacles.
func (p *Pool) NumPlanes() int { return len(p.planes) }

func (p *Pool) checkSlot(i int) {
	if i < 0 || i >= len(p.active) {
		panic(fmt.Sprintf("systems: slot %d out of range [0, %d)", i, len(p.active)))
	}
}
