// Package geometry provides the 2D vector type used for positions and forces
// on the simulation plane.
package geometry

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance for float comparisons and for treating a length as zero.
const Epsilon = 1e-9

// Vector2D is a value type; every operation returns a new vector.
type Vector2D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func NewVector(x, y float64) Vector2D { return Vector2D{X: x, Y: y} }

// NewVectorPolar builds a vector of length r at angle theta (radians).
// Components within Epsilon of zero are snapped to zero.
func NewVectorPolar(r, theta float64) Vector2D {
	sin, cos := math.Sincos(theta)
	return Vector2D{X: snap(r * cos), Y: snap(r * sin)}
}

func snap(f float64) float64 {
	if math.Abs(f) < Epsilon {
		return 0
	}
	return f
}

func (v Vector2D) String() string { return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y) }

func (v Vector2D) Add(w Vector2D) Vector2D { return Vector2D{X: v.X + w.X, Y: v.Y + w.Y} }
func (v Vector2D) Sub(w Vector2D) Vector2D { return Vector2D{X: v.X - w.X, Y: v.Y - w.Y} }
func (v Vector2D) Mul(k float64) Vector2D  { return Vector2D{X: v.X * k, Y: v.Y * k} }

// LenSqr is the squared length; cheaper than Len for comparisons.
func (v Vector2D) LenSqr() float64 { return v.X*v.X + v.Y*v.Y }

func (v Vector2D) Len() float64 { return math.Hypot(v.X, v.Y) }

// Normalize returns the unit vector with v's direction, or the zero vector
// when v is shorter than Epsilon.
func (v Vector2D) Normalize() Vector2D {
	l := v.Len()
	if l < Epsilon {
		return Vector2D{}
	}
	return Vector2D{X: v.X / l, Y: v.Y / l}
}

func (v Vector2D) DistanceTo(w Vector2D) float64 { return math.Hypot(v.X-w.X, v.Y-w.Y) }

// Clamp bounds each component independently into [lo, hi].
func (v Vector2D) Clamp(lo, hi float64) Vector2D {
	return Vector2D{X: math.Max(lo, math.Min(hi, v.X)), Y: math.Max(lo, math.Min(hi, v.Y))}
}

// IsFinite reports whether neither component is NaN or infinite.
func (v Vector2D) IsFinite() bool {
	return !math.IsNaN(v.X+v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Eq compares component-wise within Epsilon.
func (v Vector2D) Eq(w Vector2D) bool {
	return math.Abs(v.X-w.X) <= Epsilon && math.Abs(v.Y-w.Y) <= Epsilon
}
