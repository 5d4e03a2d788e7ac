// Package renderer draws the obstacle scene and the particle instances with
// raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/spout/camera"
	"github.com/pthm-cable/spout/components"
	"github.com/pthm-cable/spout/scene"
)

// FovY is the vertical field of view in degrees.
const FovY = 45

var (
	particleColor = rl.Color{R: 120, G: 200, B: 255, A: 255}
	emitterColor  = rl.Color{R: 255, G: 230, B: 90, A: 255}
	rejectedColor = rl.Color{R: 200, G: 60, B: 60, A: 255}
)

// SceneRenderer draws obstacles, particles and the emitter marker.
type SceneRenderer struct {
	cam rl.Camera3D

	// Sphere tessellation; kept low since every slot is drawn each frame.
	rings, slices int32
}

// NewSceneRenderer creates a scene renderer.
func NewSceneRenderer() *SceneRenderer {
	return &SceneRenderer{
		cam: rl.Camera3D{
			Up:         rl.NewVector3(0, 1, 0),
			Fovy:       FovY,
			Projection: rl.CameraPerspective,
		},
		rings:  4,
		slices: 6,
	}
}

// Camera returns the camera used for the last Draw.
func (r *SceneRenderer) Camera() rl.Camera3D { return r.cam }

// Draw renders the scene from the orbit camera.
func (r *SceneRenderer) Draw(input *camera.InputState, sc *scene.Scene, inst *scene.InstanceBuffer) {
	eye := input.Eye()
	r.cam.Position = rl.NewVector3(float32(eye.X), float32(eye.Y), float32(eye.Z))
	r.cam.Target = rl.NewVector3(0, 0, 0)

	rl.BeginMode3D(r.cam)
	defer rl.EndMode3D()

	rl.DrawGrid(20, 0.5)

	sc.EachObstacle(func(tri *components.Triangle, tint *components.Tint, ob *components.Obstacle) {
		a, b, c := vec(tri.A), vec(tri.B), vec(tri.C)
		if !ob.Accepted {
			drawTriangleWires(a, b, c, rejectedColor)
			return
		}
		col := rl.Color{R: tint.R, G: tint.G, B: tint.B, A: 255}
		// Both windings so the surface is visible from either side
		rl.DrawTriangle3D(a, b, c, col)
		rl.DrawTriangle3D(a, c, b, col)
		drawTriangleWires(a, b, c, rl.Fade(rl.Black, 0.4))
	})

	radius := inst.Radius()
	for i := 0; i < inst.Len(); i++ {
		if !inst.Active[i] {
			continue
		}
		rl.DrawSphereEx(fromMgl(inst.Position(i)), radius, r.rings, r.slices, particleColor)
	}

	em := vec(sc.EmitterPosition())
	rl.DrawCubeWires(em, 0.08, 0.08, 0.08, emitterColor)
	rl.DrawLine3D(em, rl.NewVector3(em.X, 0, em.Z), rl.Fade(emitterColor, 0.4))
}

func drawTriangleWires(a, b, c rl.Vector3, col rl.Color) {
	rl.DrawLine3D(a, b, col)
	rl.DrawLine3D(b, c, col)
	rl.DrawLine3D(c, a, col)
}

func vec(p components.Position) rl.Vector3 {
	return rl.NewVector3(p.X, p.Y, p.Z)
}

func fromMgl(v mgl32.Vec3) rl.Vector3 {
	return rl.NewVector3(v.X(), v.Y(), v.Z())
}
