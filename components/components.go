// Package components defines ECS components for the static scene.
package components

// Position is an entity's position in display coordinates.
type Position struct {
	X, Y, Z float32
}

// Triangle holds an obstacle's vertices in display coordinates and its
// surface normal.
type Triangle struct {
	A, B, C Position
	Normal  Position
}

// Tint is an 8-bit RGB display color.
type Tint struct {
	R, G, B uint8
}

// Obstacle carries bookkeeping for a configured obstacle. Accepted is false
// when the pool rejected it as degenerate.
type Obstacle struct {
	Index    int
	Name     string
	Area     float32
	Accepted bool
}

// Emitter marks the particle source.
type Emitter struct {
	MoveSpeed float32
}
