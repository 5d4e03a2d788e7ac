package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spout/systems"
)

// InstanceBuffer holds one model transform per pool slot, in display
// coordinates. Inactive slots are parked so a fixed-size draw call can
// render every slot.
type InstanceBuffer struct {
	Transforms []mgl32.Mat4
	Active     []bool

	scale  mgl32.Mat4
	active int
}

// NewInstanceBuffer allocates capacity transforms for particles drawn with
// the given radius.
func NewInstanceBuffer(capacity int, radius float64) *InstanceBuffer {
	if radius <= 0 {
		radius = 0.025
	}
	r := float32(radius)
	return &InstanceBuffer{
		Transforms: make([]mgl32.Mat4, capacity),
		Active:     make([]bool, capacity),
		scale:      mgl32.Scale3D(r, r, r),
	}
}

// Refresh copies every slot's display position out of the pool and returns
// the number of active slots.
func (b *InstanceBuffer) Refresh(pool *systems.Pool) int {
	n := min(len(b.Transforms), pool.Capacity())
	b.active = 0
	for i := 0; i < n; i++ {
		pos, ok := pool.DisplayPosition(i)
		b.Transforms[i] = translate(pos).Mul4(b.scale)
		b.Active[i] = ok
		if ok {
			b.active++
		}
	}
	return b.active
}

// Position returns slot i's translation.
func (b *InstanceBuffer) Position(i int) mgl32.Vec3 {
	return b.Transforms[i].Col(3).Vec3()
}

// Radius returns the drawn particle radius.
func (b *InstanceBuffer) Radius() float32 {
	return b.scale.At(0, 0)
}

// Len returns the number of slots.
func (b *InstanceBuffer) Len() int { return len(b.Transforms) }

// ActiveCount returns the active slots seen by the last Refresh.
func (b *InstanceBuffer) ActiveCount() int { return b.active }

func translate(p r3.Vec) mgl32.Mat4 {
	return mgl32.Translate3D(float32(p.X), float32(p.Y), float32(p.Z))
}
