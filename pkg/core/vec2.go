package core

import "math"

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Subtract returns v - o
func (v Vec2) Subtract(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Multiply scales the vector by s
func (v Vec2) Multiply(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dot returns the dot product
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// LengthSquared returns the squared length
func (v Vec2) LengthSquared() float64 { return v.X*v.X + v.Y*v.Y }

// Length returns the length
func (v Vec2) Length() float64 { return math.Sqrt(v.LengthSquared()) }

// Normalize returns the unit vector in the same direction
func (v Vec2) Normalize() Vec2 { return v.Multiply(1 / v.Length()) }

// Permute reorders the components
func (v Vec2) Permute(x, y int) Vec2 {
	c := [2]float64{v.X, v.Y}
	return Vec2{c[x], c[y]}
}

// MaxDimension returns the index of the larger component
func (v Vec2) MaxDimension() int {
	if v.X > v.Y {
		return 0
	}
	return 1
}

// Point2 is a position in 2D, also used for (u,v) surface parameters
type Point2 struct {
	X, Y float64
}

// NewPoint2 creates a new Point2
func NewPoint2(x, y float64) Point2 {
	return Point2{X: x, Y: y}
}

// Add offsets the point by v
func (p Point2) Add(v Vec2) Point2 { return Point2{p.X + v.X, p.Y + v.Y} }

// Subtract returns the vector from o to p
func (p Point2) Subtract(o Point2) Vec2 { return Vec2{p.X - o.X, p.Y - o.Y} }

// Multiply scales both coordinates by s
func (p Point2) Multiply(s float64) Point2 { return Point2{p.X * s, p.Y * s} }

// AddPoint sums two points; only meaningful inside weighted combinations
func (p Point2) AddPoint(o Point2) Point2 { return Point2{p.X + o.X, p.Y + o.Y} }

// Component returns X for i == 0 and Y otherwise
func (p Point2) Component(i int) float64 {
	if i == 0 {
		return p.X
	}
	return p.Y
}

// LerpPoint2 linearly interpolates between p0 and p1
func LerpPoint2(t float64, p0, p1 Point2) Point2 {
	return p0.Multiply(1 - t).AddPoint(p1.Multiply(t))
}

// Point2i is an integer 2D point, used for pixel coordinates
type Point2i struct {
	X, Y int
}
