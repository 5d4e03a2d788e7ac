// Package scene holds what the viewers draw besides the particles: the
// obstacle triangles and the emitter marker, stored as ECS entities, plus
// the per-slot instance transforms refreshed from the pool.
package scene

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spout/components"
	"github.com/pthm-cable/spout/systems"
)

// Scene is the static part of the rendered world.
type Scene struct {
	world *ecs.World
	remap systems.Remap

	obstacleMapper *ecs.Map3[components.Triangle, components.Tint, components.Obstacle]
	obstacleFilter *ecs.Filter3[components.Triangle, components.Tint, components.Obstacle]
	emitterMapper  *ecs.Map2[components.Position, components.Emitter]
	posMap         *ecs.Map1[components.Position]

	emitter      ecs.Entity
	numObstacles int
	numAccepted  int
}

// New creates an empty scene with an emitter at the given display position.
func New(remap systems.Remap, emitter r3.Vec, moveSpeed float64) *Scene {
	world := ecs.NewWorld()

	s := &Scene{
		world:          world,
		remap:          remap,
		obstacleMapper: ecs.NewMap3[components.Triangle, components.Tint, components.Obstacle](world),
		obstacleFilter: ecs.NewFilter3[components.Triangle, components.Tint, components.Obstacle](world),
		emitterMapper:  ecs.NewMap2[components.Position, components.Emitter](world),
		posMap:         ecs.NewMap1[components.Position](world),
	}

	pos := toPosition(emitter)
	em := components.Emitter{MoveSpeed: float32(moveSpeed)}
	s.emitter = s.emitterMapper.NewEntity(&pos, &em)
	return s
}

// AddObstacle records an obstacle given in engine coordinates. A rejected
// obstacle is kept so viewers can flag it, but has no normal.
func (s *Scene) AddObstacle(name string, tri [3]r3.Vec, tint components.Tint, plane *systems.Plane) {
	t := components.Triangle{
		A: toPosition(s.remap.ToDisplay(tri[0])),
		B: toPosition(s.remap.ToDisplay(tri[1])),
		C: toPosition(s.remap.ToDisplay(tri[2])),
	}
	ob := components.Obstacle{
		Index: s.numObstacles,
		Name:  name,
	}
	if plane != nil {
		// Normals are directions, so the offset does not apply
		n := systems.Remap{}.ToDisplay(plane.Normal)
		t.Normal = toPosition(n)
		ob.Area = float32(plane.Area())
		ob.Accepted = true
		s.numAccepted++
	}

	s.obstacleMapper.NewEntity(&t, &tint, &ob)
	s.numObstacles++
}

// EachObstacle calls fn for every obstacle entity.
func (s *Scene) EachObstacle(fn func(tri *components.Triangle, tint *components.Tint, ob *components.Obstacle)) {
	query := s.obstacleFilter.Query()
	for query.Next() {
		tri, tint, ob := query.Get()
		fn(tri, tint, ob)
	}
}

// NumObstacles returns the number of recorded obstacles, accepted or not.
func (s *Scene) NumObstacles() int { return s.numObstacles }

// NumAccepted returns the number of obstacles the pool accepted.
func (s *Scene) NumAccepted() int { return s.numAccepted }

// EmitterPosition returns the emitter marker's display position.
func (s *Scene) EmitterPosition() components.Position {
	return *s.posMap.Get(s.emitter)
}

// SetEmitter moves the emitter marker.
func (s *Scene) SetEmitter(p r3.Vec) {
	*s.posMap.Get(s.emitter) = toPosition(p)
}

func toPosition(v r3.Vec) components.Position {
	return components.Position{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
