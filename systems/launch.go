package systems

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spout/config"
)

// ErrUnknownLaunchMode is returned by NewLauncher for an unrecognized mode.
var ErrUnknownLaunchMode = errors.New("unknown launch mode")

// Launch modes accepted by NewLauncher.
const (
	LaunchFixed = "fixed"
	LaunchCone  = "cone"
	LaunchSwirl = "swirl"
)

// Launcher decides where a new particle appears relative to the emitter
// origin and how fast it leaves.
type Launcher interface {
	Launch(origin r3.Vec) (pos, vel r3.Vec)
}

// FixedLauncher spawns exactly at the origin with a constant velocity.
type FixedLauncher struct {
	Velocity r3.Vec
}

// Launch implements Launcher.
func (l FixedLauncher) Launch(origin r3.Vec) (r3.Vec, r3.Vec) {
	return origin, l.Velocity
}

// ConeLauncher draws directions uniformly from a spherical cap around Axis.
type ConeLauncher struct {
	Axis           r3.Vec  // Unit cone axis
	Speed          float64 // Mean launch speed
	SpeedJitter    float64 // Fractional speed spread
	Spread         float64 // Cone half-angle in radians
	PositionJitter float64 // Half-width of the spawn offset cube

	u, v r3.Vec // Basis perpendicular to Axis
	rng  *rand.Rand
}

// NewConeLauncher creates a seeded cone launcher.
func NewConeLauncher(axis r3.Vec, speed, speedJitter, spread, posJitter float64, seed int64) *ConeLauncher {
	a := unitOr(axis, r3.Vec{Z: 1})
	u, v := basis(a)
	return &ConeLauncher{
		Axis:           a,
		Speed:          speed,
		SpeedJitter:    speedJitter,
		Spread:         spread,
		PositionJitter: posJitter,
		u:              u,
		v:              v,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

// Launch implements Launcher.
func (l *ConeLauncher) Launch(origin r3.Vec) (r3.Vec, r3.Vec) {
	// Uniform on the cap: cos(theta) uniform in [cos(spread), 1]
	cosT := 1 - l.rng.Float64()*(1-math.Cos(l.Spread))
	sinT := math.Sqrt(math.Max(0, 1-cosT*cosT))
	phi := l.rng.Float64() * 2 * math.Pi

	dir := l.direction(cosT, sinT, phi)
	speed := l.Speed * (1 + l.SpeedJitter*(2*l.rng.Float64()-1))

	pos := origin
	if l.PositionJitter > 0 {
		j := l.PositionJitter
		pos = r3.Add(origin, r3.Vec{
			X: (2*l.rng.Float64() - 1) * j,
			Y: (2*l.rng.Float64() - 1) * j,
			Z: (2*l.rng.Float64() - 1) * j,
		})
	}
	return pos, r3.Scale(speed, dir)
}

func (l *ConeLauncher) direction(cosT, sinT, phi float64) r3.Vec {
	d := r3.Scale(cosT, l.Axis)
	d = r3.Add(d, r3.Scale(sinT*math.Cos(phi), l.u))
	return r3.Add(d, r3.Scale(sinT*math.Sin(phi), l.v))
}

// SwirlLauncher tilts the launch direction along a smooth noise path, so
// consecutive particles form a wandering jet instead of a random spray.
type SwirlLauncher struct {
	Axis   r3.Vec
	Speed  float64
	Rate   float64 // Noise phase advance per launch
	Amount float64 // Max tilt from Axis in radians

	u, v  r3.Vec
	noise opensimplex.Noise
	phase float64
}

// NewSwirlLauncher creates a swirl launcher driven by seeded simplex noise.
func NewSwirlLauncher(axis r3.Vec, speed, rate, amount float64, seed int64) *SwirlLauncher {
	a := unitOr(axis, r3.Vec{Z: 1})
	u, v := basis(a)
	return &SwirlLauncher{
		Axis:   a,
		Speed:  speed,
		Rate:   rate,
		Amount: amount,
		u:      u,
		v:      v,
		noise:  opensimplex.NewNormalized(seed),
	}
}

// Launch implements Launcher.
func (l *SwirlLauncher) Launch(origin r3.Vec) (r3.Vec, r3.Vec) {
	tilt := l.Amount * l.noise.Eval2(l.phase, 0)
	phi := 2 * math.Pi * l.noise.Eval2(l.phase, 97.5)
	l.phase += l.Rate

	sinT, cosT := math.Sincos(tilt)
	d := r3.Scale(cosT, l.Axis)
	d = r3.Add(d, r3.Scale(sinT*math.Cos(phi), l.u))
	d = r3.Add(d, r3.Scale(sinT*math.Sin(phi), l.v))
	return origin, r3.Scale(l.Speed, d)
}

// NewLauncher builds the launcher selected by cfg.Mode.
func NewLauncher(cfg config.LaunchConfig) (Launcher, error) {
	switch cfg.Mode {
	case LaunchFixed:
		return FixedLauncher{Velocity: cfg.Velocity.R3()}, nil
	case LaunchCone, "":
		return NewConeLauncher(cfg.Direction.R3(), cfg.Speed, cfg.SpeedJitter, cfg.Spread, cfg.PositionJitter, cfg.Seed), nil
	case LaunchSwirl:
		return NewSwirlLauncher(cfg.Direction.R3(), cfg.Speed, cfg.SwirlRate, cfg.SwirlAmount, cfg.Seed), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLaunchMode, cfg.Mode)
	}
}

// unitOr normalizes v, falling back to def for a zero vector.
func unitOr(v, def r3.Vec) r3.Vec {
	if r3.Norm(v) < 1e-12 {
		return def
	}
	return r3.Unit(v)
}

// basis returns two unit vectors perpendicular to a and to each other.
func basis(a r3.Vec) (u, v r3.Vec) {
	helper := r3.Vec{X: 1}
	if math.Abs(a.X) > 0.9 {
		helper = r3.Vec{Y: 1}
	}
	u = r3.Unit(r3.Cross(a, helper))
	v = r3.Cross(a, u)
	return u, v
}
