package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/spout/camera"
)

// KeyBinding maps a held key to an input action.
type KeyBinding struct {
	Key    int32
	Action camera.Action
}

// DefaultBindings orbit the camera with J/L/I/K and move the emitter with
// A/D/W/S.
var DefaultBindings = []KeyBinding{
	{rl.KeyJ, camera.OrbitLeft},
	{rl.KeyL, camera.OrbitRight},
	{rl.KeyI, camera.OrbitUp},
	{rl.KeyK, camera.OrbitDown},
	{rl.KeyA, camera.EmitterLeft},
	{rl.KeyD, camera.EmitterRight},
	{rl.KeyW, camera.EmitterForward},
	{rl.KeyS, camera.EmitterBack},
}

// ControlsLegend describes DefaultBindings and the toggle keys for the HUD.
const ControlsLegend = "JLIK: orbit | WASD: emitter | Space: pause | N: step | R: reset | Home: camera | Tab: panel | P: perf"

// ApplyHeldKeys applies the action of every binding whose key is down.
func ApplyHeldKeys(input *camera.InputState, bindings []KeyBinding) {
	for _, b := range bindings {
		if rl.IsKeyDown(b.Key) {
			input.Apply(b.Action)
		}
	}
}
