// Package camera holds the viewer input state: an orbit camera circling the
// scene origin and the emitter position it steers. Positions are in display
// coordinates (Y-up).
package camera

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spout/config"
)

// Action is one discrete input applied per frame while its key is held.
type Action uint8

const (
	OrbitLeft Action = iota
	OrbitRight
	OrbitUp
	OrbitDown
	EmitterLeft
	EmitterRight
	EmitterForward
	EmitterBack
)

var actionNames = [...]string{
	OrbitLeft:      "orbit_left",
	OrbitRight:     "orbit_right",
	OrbitUp:        "orbit_up",
	OrbitDown:      "orbit_down",
	EmitterLeft:    "emitter_left",
	EmitterRight:   "emitter_right",
	EmitterForward: "emitter_forward",
	EmitterBack:    "emitter_back",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// Orbit is a camera on a sphere around the origin. Angles are in degrees.
type Orbit struct {
	Theta  float64 // Azimuth, wrapped to [0, 360)
	Phi    float64 // Elevation, kept inside (-90, 90)
	Radius float64
	Speed  float64 // Degrees per action
}

// InputState is everything the viewer's input can change.
type InputState struct {
	Orbit     Orbit
	Emitter   r3.Vec // Display coordinates
	MoveSpeed float64

	// Initial values for Reset
	home        Orbit
	homeEmitter r3.Vec
}

// New creates the input state from the camera and emitter config.
func New(cam config.CameraConfig, em config.EmitterConfig) *InputState {
	o := Orbit{
		Theta:  wrapDegrees(cam.Theta),
		Phi:    clampPhi(cam.Phi),
		Radius: cam.Radius,
		Speed:  cam.Speed,
	}
	if o.Radius <= 0 {
		o.Radius = 5
	}
	s := &InputState{
		Orbit:       o,
		Emitter:     em.Origin.R3(),
		MoveSpeed:   em.MoveSpeed,
		home:        o,
		homeEmitter: em.Origin.R3(),
	}
	return s
}

// Apply mutates the state for one action.
func (s *InputState) Apply(a Action) {
	o := &s.Orbit
	switch a {
	case OrbitLeft:
		o.Theta = wrapDegrees(o.Theta - o.Speed)
	case OrbitRight:
		o.Theta = wrapDegrees(o.Theta + o.Speed)
	case OrbitUp:
		if o.Phi+o.Speed < 90 {
			o.Phi += o.Speed
		}
	case OrbitDown:
		if o.Phi-o.Speed > -90 {
			o.Phi -= o.Speed
		}
	// Emitter moves over the horizontal plane, relative to the theta=0 view
	case EmitterLeft:
		s.Emitter.Z += s.MoveSpeed
	case EmitterRight:
		s.Emitter.Z -= s.MoveSpeed
	case EmitterForward:
		s.Emitter.X -= s.MoveSpeed
	case EmitterBack:
		s.Emitter.X += s.MoveSpeed
	}
}

// Reset restores the initial camera and emitter.
func (s *InputState) Reset() {
	s.Orbit = s.home
	s.Emitter = s.homeEmitter
}

// Eye returns the camera position in display coordinates.
func (s *InputState) Eye() r3.Vec {
	theta := s.Orbit.Theta * math.Pi / 180
	phi := s.Orbit.Phi * math.Pi / 180
	r := s.Orbit.Radius
	return r3.Vec{
		X: r * math.Cos(phi) * math.Cos(theta),
		Y: r * math.Sin(phi),
		Z: -r * math.Cos(phi) * math.Sin(theta),
	}
}

// View returns the look-at matrix toward the origin.
func (s *InputState) View() mgl32.Mat4 {
	return mgl32.LookAtV(Vec3(s.Eye()), mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
}

// ViewProjection returns projection * view for the given aspect ratio.
func (s *InputState) ViewProjection(fovyDeg, aspect float32) mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(fovyDeg), aspect, 0.1, 100)
	return proj.Mul4(s.View())
}

// Project maps a display-space point to pixel coordinates on a w x h
// surface. ok is false when the point is behind the camera or off screen.
func Project(vp mgl32.Mat4, p r3.Vec, w, h int) (x, y float32, ok bool) {
	v := Vec3(p)
	clip := vp.Mul4x1(v.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	x = (ndc.X() + 1) / 2 * float32(w)
	y = (1 - ndc.Y()) / 2 * float32(h)
	ok = ndc.X() >= -1 && ndc.X() <= 1 && ndc.Y() >= -1 && ndc.Y() <= 1 && ndc.Z() <= 1
	return x, y, ok
}

// Vec3 converts a gonum vector to mgl32.
func Vec3(v r3.Vec) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// wrapDegrees maps an angle to [0, 360).
func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// clampPhi keeps elevation strictly inside (-90, 90) so the look-at up
// vector stays valid.
func clampPhi(p float64) float64 {
	const limit = 89.999
	return math.Max(-limit, math.Min(limit, p))
}
