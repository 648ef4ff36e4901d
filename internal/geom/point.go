// Package geom provides the 2D point math used by the orbit integrator and
// ship steering, plus the swept-circle arrival test.
package geom

import "math"

// Tau is a full turn in radians.
const Tau = 2 * math.Pi

// Point is a position or displacement in the orbital plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Origin is the sun's fixed position.
var Origin = Point{}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Polar returns the point at distance r and angle theta from the origin.
func Polar(r, theta float64) Point {
	return Point{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale multiplies both components by k.
func (p Point) Scale(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Len2 returns the squared length of p.
func (p Point) Len2() float64 { return p.Dot(p) }

// Len returns the length of p.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float64 { return q.Sub(p).Len() }

// Dist2 returns the squared distance between p and q.
// Cheaper than Dist when only ordering matters.
func (p Point) Dist2(q Point) float64 { return q.Sub(p).Len2() }

// Angle returns the direction of p in radians, in (-π, π].
func (p Point) Angle() float64 { return math.Atan2(p.Y, p.X) }

// WrapAngle folds a into [0, 2π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, Tau)
	if a < 0 {
		a += Tau
	}
	// Adding Tau to a tiny negative value can round up to exactly Tau.
	if a >= Tau {
		a = 0
	}
	return a
}
