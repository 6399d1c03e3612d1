package dynamo

import (
	"fmt"
	"math"
)

// Vec2 is a 2D vector. Methods never modify the receiver except SetTo and SetToZero.
type Vec2 struct {
	X, Y float64
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

func (v Vec2) MagnitudeSquared() float64 { return v.X*v.X + v.Y*v.Y }

func (v Vec2) Magnitude() float64 { return math.Sqrt(v.MagnitudeSquared()) }

// Unit returns v scaled to length 1. A zero vector has no direction, so the
// zero vector is returned; callers treat that as "no correction".
func (v Vec2) Unit() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return Vec2{}
	}
	return Vec2{v.X / m, v.Y / m}
}

func (v Vec2) DistanceFromSquared(o Vec2) float64 {
	dx, dy := o.X-v.X, o.Y-v.Y
	return dx*dx + dy*dy
}

func (v Vec2) DistanceFrom(o Vec2) float64 { return math.Sqrt(v.DistanceFromSquared(o)) }

// RotateAbout rotates v by angle radians (counter-clockwise) around pivot.
func (v Vec2) RotateAbout(pivot Vec2, angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	dx, dy := v.X-pivot.X, v.Y-pivot.Y
	return Vec2{
		X: pivot.X + dx*cos - dy*sin,
		Y: pivot.Y + dx*sin + dy*cos,
	}
}

// IsValid reports whether both components are finite.
func (v Vec2) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func (v *Vec2) SetTo(o Vec2) { v.X, v.Y = o.X, o.Y }

func (v *Vec2) SetToZero() { v.X, v.Y = 0, 0 }

func (v Vec2) String() string { return fmt.Sprintf("(%.4f, %.4f)", v.X, v.Y) }
