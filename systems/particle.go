// Package systems contains the particle simulation core: the clock, the
// per-particle physics and the fixed-capacity particle pool.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// PhysicsParams holds the integration, collision and bounds parameters
// shared by every particle.
type PhysicsParams struct {
	Restitution float64 // Fraction of normal speed kept after a bounce
	RestSpeed   float64 // Normal speed below which a contact is treated as resting
	Skin        float64 // Distance kept from a surface after a contact
	MaxBounces  int     // Bounces before retirement (0 = no limit)

	// Bounding volume; an empty box (min == max) disables the check
	BoundsMin r3.Vec
	BoundsMax r3.Vec
}

// Particle is the state of one pool slot.
type Particle struct {
	Position r3.Vec
	Velocity r3.Vec

	Born     float64 // Simulation time of spawn
	BornTick uint64  // Clock tick of spawn; lifetime is counted in ticks
	Bounces  int     // Reflections since spawn
	Resting  bool    // Last contact had near-zero normal speed
	Escaped  bool    // Left the bounding volume
}

// Step advances the particle by dt under gravity and resolves at most one
// collision against planes. Returns true when the particle has become a
// retirement candidate (escaped the bounds or used up its bounces).
// A non-positive dt leaves the particle untouched.
func (p *Particle) Step(dt float64, gravity r3.Vec, planes []Plane, params *PhysicsParams) bool {
	if dt <= 0 {
		return false
	}

	// Semi-implicit Euler
	vel := r3.Add(p.Velocity, r3.Scale(dt, gravity))
	from := p.Position
	to := r3.Add(from, r3.Scale(dt, vel))

	hit := -1
	bestT := math.Inf(1)
	var contact r3.Vec
	var fromSide float64
	for i := range planes {
		pl := &planes[i]
		d0 := pl.SignedDistance(from)
		d1 := pl.SignedDistance(to)
		side := d0
		if d0 == 0 {
			// Starting on the surface counts as arriving from the side
			// opposite the motion.
			side = -d1
		}
		if !crosses(side, d1) {
			continue
		}
		t := d0 / (d0 - d1)
		if t >= bestT {
			continue
		}
		c := r3.Add(from, r3.Scale(t, r3.Sub(to, from)))
		if !pl.Contains(c) {
			continue
		}
		hit, bestT, contact, fromSide = i, t, c, side
	}

	if hit >= 0 {
		n := planes[hit].Normal
		vn := r3.Dot(vel, n)
		if math.Abs(vn) < params.RestSpeed {
			// Resting contact: drop the normal component instead of bouncing,
			// otherwise gravity and reflection oscillate around the surface.
			vel = r3.Sub(vel, r3.Scale(vn, n))
			p.Resting = true
		} else {
			vel = r3.Sub(vel, r3.Scale((1+params.Restitution)*vn, n))
			p.Bounces++
			p.Resting = false
		}
		to = r3.Add(contact, r3.Scale(math.Copysign(params.Skin, fromSide), n))
	} else {
		p.Resting = false
	}

	p.Position = to
	p.Velocity = vel

	if params.BoundsMin != params.BoundsMax && outside(to, params.BoundsMin, params.BoundsMax) {
		p.Escaped = true
	}

	return p.Escaped || (params.MaxBounces > 0 && p.Bounces >= params.MaxBounces)
}

// DisplayPosition returns the particle's position in display coordinates.
func (p *Particle) DisplayPosition(m Remap) r3.Vec {
	return m.ToDisplay(p.Position)
}

// crosses reports whether a segment with endpoint distances d0 and d1 passes
// through the plane. A zero d0 is not a crossing on its own.
func crosses(d0, d1 float64) bool {
	return (d0 > 0 && d1 <= 0) || (d0 < 0 && d1 >= 0)
}

func outside(p, lo, hi r3.Vec) bool {
	return p.X < lo.X || p.Y < lo.Y || p.Z < lo.Z ||
		p.X > hi.X || p.Y > hi.Y || p.Z > hi.Z
}
