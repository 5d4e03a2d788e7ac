package systems

import "gonum.org/v1/gonum/spatial/r3"

// Remap converts between the engine frame (Z-up, gravity along -Z) and the
// display frame (Y-up). The mapping is a rotation about X plus an offset, so
// it is exactly invertible.
type Remap struct {
	Offset r3.Vec
}

// ToDisplay maps an engine position to display coordinates.
func (m Remap) ToDisplay(p r3.Vec) r3.Vec {
	return r3.Add(r3.Vec{X: p.X, Y: p.Z, Z: -p.Y}, m.Offset)
}

// FromDisplay maps a display position back to engine coordinates.
func (m Remap) FromDisplay(q r3.Vec) r3.Vec {
	r := r3.Sub(q, m.Offset)
	return r3.Vec{X: r.X, Y: -r.Z, Z: r.Y}
}
