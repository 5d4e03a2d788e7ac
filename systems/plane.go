package systems

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateObstacle is returned for triangles with (near) zero area.
var ErrDegenerateObstacle = errors.New("degenerate obstacle triangle")

// minTriangleArea is the smallest area accepted for an obstacle.
const minTriangleArea = 1e-9

// insideTolerance widens the point-in-triangle test so contacts exactly on an
// edge still count.
const insideTolerance = 1e-9

// Plane is a static triangular obstacle. It is immutable once built.
type Plane struct {
	A, B, C r3.Vec
	Normal  r3.Vec  // Unit normal, (B-A)x(C-A) orientation
	Offset  float64 // Normal . A

	// Precomputed for the barycentric test
	e0, e1        r3.Vec
	d00, d01, d11 float64
	invDenom      float64
}

// NewPlane builds a plane from three vertices. Returns ErrDegenerateObstacle
// when the vertices are (nearly) collinear or coincident.
func NewPlane(a, b, c r3.Vec) (Plane, error) {
	e0 := r3.Sub(b, a)
	e1 := r3.Sub(c, a)
	n := r3.Cross(e0, e1)
	area := r3.Norm(n) / 2
	if area < minTriangleArea || math.IsNaN(area) {
		return Plane{}, fmt.Errorf("%w: area %g for vertices %v %v %v", ErrDegenerateObstacle, area, a, b, c)
	}

	unit := r3.Unit(n)
	p := Plane{
		A: a, B: b, C: c,
		Normal: unit,
		Offset: r3.Dot(unit, a),
		e0:     e0,
		e1:     e1,
		d00:    r3.Dot(e0, e0),
		d01:    r3.Dot(e0, e1),
		d11:    r3.Dot(e1, e1),
	}
	p.invDenom = 1 / (p.d00*p.d11 - p.d01*p.d01)
	return p, nil
}

// SignedDistance returns the distance of p from the plane, positive on the
// side the normal points to.
func (pl *Plane) SignedDistance(p r3.Vec) float64 {
	return r3.Dot(pl.Normal, p) - pl.Offset
}

// Contains reports whether p, assumed to lie in the plane, falls inside the
// triangle.
func (pl *Plane) Contains(p r3.Vec) bool {
	u, v := pl.barycentric(p)
	return u >= -insideTolerance && v >= -insideTolerance && u+v <= 1+insideTolerance
}

// barycentric returns the weights of B and C for p in the triangle basis.
func (pl *Plane) barycentric(p r3.Vec) (u, v float64) {
	d := r3.Sub(p, pl.A)
	d20 := r3.Dot(d, pl.e0)
	d21 := r3.Dot(d, pl.e1)
	u = (pl.d11*d20 - pl.d01*d21) * pl.invDenom
	v = (pl.d00*d21 - pl.d01*d20) * pl.invDenom
	return u, v
}

// Area returns the triangle's area.
func (pl *Plane) Area() float64 {
	return r3.Norm(r3.Cross(pl.e0, pl.e1)) / 2
}
