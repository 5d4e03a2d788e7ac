package systems

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

// floorPlane is a large horizontal triangle at z=0 with its normal pointing up.
func floorPlane(t *testing.T) Plane {
	t.Helper()
	pl, err := NewPlane(r3.Vec{X: -10, Y: -10}, r3.Vec{X: 10, Y: -10}, r3.Vec{Y: 10})
	if err != nil {
		t.Fatalf("NewPlane: %v", err)
	}
	return pl
}

func testParams() *PhysicsParams {
	return &PhysicsParams{
		Restitution: 0.8,
		RestSpeed:   0.1,
		Skin:        1e-4,
		BoundsMin:   r3.Vec{X: -20, Y: -20, Z: -20},
		BoundsMax:   r3.Vec{X: 20, Y: 20, Z: 20},
	}
}

func vecNear(a, b r3.Vec, eps float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, eps) &&
		scalar.EqualWithinAbs(a.Y, b.Y, eps) &&
		scalar.EqualWithinAbs(a.Z, b.Z, eps)
}

func TestNewPlaneNormalAndDistance(t *testing.T) {
	pl := floorPlane(t)

	if !vecNear(pl.Normal, r3.Vec{Z: 1}, tol) {
		t.Errorf("normal = %v, want (0,0,1)", pl.Normal)
	}
	if d := pl.SignedDistance(r3.Vec{X: 3, Y: 2, Z: 1.5}); !scalar.EqualWithinAbs(d, 1.5, tol) {
		t.Errorf("SignedDistance above = %v, want 1.5", d)
	}
	if d := pl.SignedDistance(r3.Vec{Z: -0.25}); !scalar.EqualWithinAbs(d, -0.25, tol) {
		t.Errorf("SignedDistance below = %v, want -0.25", d)
	}
	if a := pl.Area(); !scalar.EqualWithinAbs(a, 200, tol) {
		t.Errorf("Area() = %v, want 200", a)
	}
}

func TestNewPlaneDegenerate(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c r3.Vec
	}{
		{"coincident", r3.Vec{X: 1}, r3.Vec{X: 1}, r3.Vec{X: 1}},
		{"collinear", r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 2, Y: 2, Z: 2}},
		{"sliver", r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 0.5, Y: 1e-12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlane(tt.a, tt.b, tt.c)
			if !errors.Is(err, ErrDegenerateObstacle) {
				t.Errorf("expected ErrDegenerateObstacle, got %v", err)
			}
		})
	}
}

func TestPlaneContains(t *testing.T) {
	pl := floorPlane(t)

	tests := []struct {
		name string
		p    r3.Vec
		want bool
	}{
		{"centroid", r3.Vec{X: 0, Y: -3}, true},
		{"vertex", r3.Vec{X: -10, Y: -10}, true},
		{"edge midpoint", r3.Vec{X: 0, Y: -10}, true},
		{"outside below edge", r3.Vec{X: 0, Y: -10.5}, false},
		{"outside beside apex", r3.Vec{X: 5, Y: 9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pl.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestStepReflectsNormalComponent(t *testing.T) {
	planes := []Plane{floorPlane(t)}
	params := testParams()

	p := Particle{
		Position: r3.Vec{Z: 0.01},
		Velocity: r3.Vec{X: 0.5, Z: -2},
	}
	p.Step(0.01, r3.Vec{}, planes, params)

	// Normal component flipped and scaled, tangential untouched
	if !scalar.EqualWithinAbs(p.Velocity.Z, 2*params.Restitution, tol) {
		t.Errorf("normal velocity = %v, want %v", p.Velocity.Z, 2*params.Restitution)
	}
	if !scalar.EqualWithinAbs(p.Velocity.X, 0.5, tol) || !scalar.EqualWithinAbs(p.Velocity.Y, 0, tol) {
		t.Errorf("tangential velocity changed: %v", p.Velocity)
	}
	if p.Position.Z < 0 {
		t.Errorf("particle tunneled through the plane: z=%v", p.Position.Z)
	}
	if p.Bounces != 1 {
		t.Errorf("Bounces = %d, want 1", p.Bounces)
	}
}

func TestStepStraightIntoPlane(t *testing.T) {
	planes := []Plane{floorPlane(t)}
	params := testParams()

	p := Particle{
		Position: r3.Vec{X: 1, Y: -2, Z: 0.5},
		Velocity: r3.Vec{Z: -3},
	}
	// One step covers 1.5 units, far past the plane
	p.Step(0.5, r3.Vec{}, planes, params)

	want := r3.Vec{Z: 3 * params.Restitution}
	if !vecNear(p.Velocity, want, tol) {
		t.Errorf("velocity = %v, want %v", p.Velocity, want)
	}
	if !scalar.EqualWithinAbs(p.Position.Z, params.Skin, tol) {
		t.Errorf("position z = %v, want contact point + skin %v", p.Position.Z, params.Skin)
	}
	if !scalar.EqualWithinAbs(p.Position.X, 1, tol) || !scalar.EqualWithinAbs(p.Position.Y, -2, tol) {
		t.Errorf("contact point moved laterally: %v", p.Position)
	}
}

func TestStepFromBelowStaysBelow(t *testing.T) {
	planes := []Plane{floorPlane(t)}
	params := testParams()

	p := Particle{
		Position: r3.Vec{Z: -0.1},
		Velocity: r3.Vec{Z: 5},
	}
	p.Step(0.1, r3.Vec{}, planes, params)

	if p.Position.Z >= 0 {
		t.Errorf("particle crossed from below: z=%v", p.Position.Z)
	}
	if p.Velocity.Z >= 0 {
		t.Errorf("velocity not reflected downward: %v", p.Velocity)
	}
}

func TestStepStartingOnPlane(t *testing.T) {
	planes := []Plane{floorPlane(t)}
	params := testParams()

	tests := []struct {
		name  string
		vz    float64
		wantZ float64 // Sign of the side the particle must stay on
	}{
		{"moving down", -1, 1},
		{"moving up", 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Particle{Velocity: r3.Vec{Z: tt.vz}}
			p.Step(0.01, r3.Vec{}, planes, params)

			if p.Bounces != 1 {
				t.Errorf("Bounces = %d, want 1", p.Bounces)
			}
			if p.Position.Z*tt.wantZ <= 0 {
				t.Errorf("z = %v, want on the side opposite the motion", p.Position.Z)
			}
			if !scalar.EqualWithinAbs(p.Velocity.Z, -tt.vz*params.Restitution, tol) {
				t.Errorf("vz = %v, want %v", p.Velocity.Z, -tt.vz*params.Restitution)
			}
		})
	}
}

func TestStepMissesOutsideTriangle(t *testing.T) {
	small, err := NewPlane(r3.Vec{X: -1, Y: -1}, r3.Vec{X: 1, Y: -1}, r3.Vec{Y: 1})
	if err != nil {
		t.Fatal(err)
	}
	params := testParams()

	p := Particle{
		Position: r3.Vec{X: 5, Z: 0.1},
		Velocity: r3.Vec{Z: -1},
	}
	p.Step(0.5, r3.Vec{}, []Plane{small}, params)

	if p.Bounces != 0 {
		t.Errorf("bounced off a plane it never touched")
	}
	if !scalar.EqualWithinAbs(p.Position.Z, -0.4, tol) {
		t.Errorf("z = %v, want free flight to -0.4", p.Position.Z)
	}
	if !scalar.EqualWithinAbs(p.Velocity.Z, -1, tol) {
		t.Errorf("velocity changed without a collision: %v", p.Velocity)
	}
}

func TestStepRestingDoesNotOscillate(t *testing.T) {
	planes := []Plane{floorPlane(t)}
	params := testParams()
	gravity := r3.Vec{Z: -9.81}

	p := Particle{Position: r3.Vec{Z: params.Skin}}
	sawRest := false
	for i := 0; i < 2000; i++ {
		p.Step(0.001, gravity, planes, params)
		if p.Position.Z < 0 {
			t.Fatalf("step %d: fell through the surface, z=%v", i, p.Position.Z)
		}
		if p.Resting {
			sawRest = true
		}
	}

	if p.Bounces != 0 {
		t.Errorf("resting particle bounced %d times", p.Bounces)
	}
	if !sawRest {
		t.Error("particle never reported a resting contact")
	}
	if p.Velocity.Z > params.RestSpeed || p.Velocity.Z < -params.RestSpeed {
		t.Errorf("resting particle has normal speed %v", p.Velocity.Z)
	}
}

func TestStepEarliestPlaneWins(t *testing.T) {
	upper, err := NewPlane(r3.Vec{X: -10, Y: -10, Z: 1}, r3.Vec{X: 10, Y: -10, Z: 1}, r3.Vec{Y: 10, Z: 1})
	if err != nil {
		t.Fatal(err)
	}
	// Lower plane listed first; the upper one is hit earlier along the path
	planes := []Plane{floorPlane(t), upper}
	params := testParams()

	p := Particle{
		Position: r3.Vec{Z: 2},
		Velocity: r3.Vec{Z: -4},
	}
	p.Step(1, r3.Vec{}, planes, params)

	if p.Position.Z < 1 {
		t.Errorf("expected stop at upper plane, got z=%v", p.Position.Z)
	}
}

func TestStepNonPositiveDtIsNoop(t *testing.T) {
	planes := []Plane{floorPlane(t)}
	params := testParams()

	for _, dt := range []float64{0, -0.01} {
		p := Particle{
			Position: r3.Vec{X: 1, Y: 2, Z: 3},
			Velocity: r3.Vec{X: -1, Y: 0.5, Z: -2},
			Born:     1.5,
		}
		before := p
		if p.Step(dt, r3.Vec{Z: -9.81}, planes, params) {
			t.Errorf("dt=%v: reported retirement candidate", dt)
		}
		if p != before {
			t.Errorf("dt=%v: state changed from %+v to %+v", dt, before, p)
		}
	}
}

func TestStepEscapedAndBounceLimit(t *testing.T) {
	planes := []Plane{floorPlane(t)}

	t.Run("escaped", func(t *testing.T) {
		params := testParams()
		p := Particle{Position: r3.Vec{X: 19.9}, Velocity: r3.Vec{X: 10}}
		if !p.Step(0.1, r3.Vec{}, planes, params) {
			t.Error("expected retirement candidate after leaving bounds")
		}
		if !p.Escaped {
			t.Error("Escaped not set")
		}
	})

	t.Run("bounce limit", func(t *testing.T) {
		params := testParams()
		params.MaxBounces = 1
		p := Particle{Position: r3.Vec{Z: 0.01}, Velocity: r3.Vec{Z: -2}}
		if !p.Step(0.01, r3.Vec{}, planes, params) {
			t.Error("expected retirement candidate after reaching bounce limit")
		}
	})

	t.Run("empty bounds disables check", func(t *testing.T) {
		params := testParams()
		params.BoundsMin = r3.Vec{}
		params.BoundsMax = r3.Vec{}
		p := Particle{Position: r3.Vec{X: 100, Z: 5}, Velocity: r3.Vec{X: 1}}
		if p.Step(0.1, r3.Vec{}, planes, params) || p.Escaped {
			t.Error("particle escaped with bounds disabled")
		}
	})
}
