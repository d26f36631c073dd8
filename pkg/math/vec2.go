// Package math provides the small vector and matrix types used by the
// animation and rendering code.
package math

import gomath "math"

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(gomath.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Normalize returns a unit vector, or the zero vector for zero input.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Distance returns the distance to another point.
func (v Vec2) Distance(other Vec2) float32 {
	return v.Sub(other).Length()
}

// Rotate returns v rotated counter-clockwise by rad radians.
func (v Vec2) Rotate(rad float32) Vec2 {
	c := float32(gomath.Cos(float64(rad)))
	s := float32(gomath.Sin(float64(rad)))
	return Vec2{
		X: c*v.X - s*v.Y,
		Y: s*v.X + c*v.Y,
	}
}

// DirectionToRadian returns the signed angle from direction `from` to
// direction `to`, wrapped into (-pi, pi].
func DirectionToRadian(from, to Vec2) float32 {
	r := gomath.Atan2(float64(to.Y), float64(to.X)) - gomath.Atan2(float64(from.Y), float64(from.X))
	for r < -gomath.Pi {
		r += 2 * gomath.Pi
	}
	for r > gomath.Pi {
		r -= 2 * gomath.Pi
	}
	return float32(r)
}

// DegreesToRadian converts degrees to radians.
func DegreesToRadian(deg float32) float32 {
	return deg * gomath.Pi / 180
}
