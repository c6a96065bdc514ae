package core

import "math"

// Bounds3 represents an axis-aligned bounding box
type Bounds3 struct {
	Min Point3 // Minimum corner
	Max Point3 // Maximum corner
}

// EmptyBounds3 returns the empty box (Min=+Inf, Max=-Inf), the identity for Union
func EmptyBounds3() Bounds3 {
	inf := math.Inf(1)
	return Bounds3{
		Min: Point3{inf, inf, inf},
		Max: Point3{-inf, -inf, -inf},
	}
}

// NewBounds3 creates a box spanning two corner points in any order
func NewBounds3(p1, p2 Point3) Bounds3 {
	return Bounds3{Min: MinPoint3(p1, p2), Max: MaxPoint3(p1, p2)}
}

// NewBounds3FromPoints creates a box that bounds all given points
func NewBounds3FromPoints(points ...Point3) Bounds3 {
	b := EmptyBounds3()
	for _, p := range points {
		b = b.UnionPoint(p)
	}
	return b
}

// IsEmpty reports whether Min exceeds Max on any axis
func (b Bounds3) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Corner returns one of the eight corners: bit 0 selects x, bit 1 y, bit 2 z
func (b Bounds3) Corner(i int) Point3 {
	pick := func(bit int, lo, hi float64) float64 {
		if i&bit != 0 {
			return hi
		}
		return lo
	}
	return Point3{
		X: pick(1, b.Min.X, b.Max.X),
		Y: pick(2, b.Min.Y, b.Max.Y),
		Z: pick(4, b.Min.Z, b.Max.Z),
	}
}

// UnionPoint returns the smallest box containing b and p
func (b Bounds3) UnionPoint(p Point3) Bounds3 {
	return Bounds3{Min: MinPoint3(b.Min, p), Max: MaxPoint3(b.Max, p)}
}

// Union returns the smallest box containing both boxes
func (b Bounds3) Union(other Bounds3) Bounds3 {
	return Bounds3{Min: MinPoint3(b.Min, other.Min), Max: MaxPoint3(b.Max, other.Max)}
}

// Intersect returns the overlap of two boxes, which may be empty
func (b Bounds3) Intersect(other Bounds3) Bounds3 {
	return Bounds3{Min: MaxPoint3(b.Min, other.Min), Max: MinPoint3(b.Max, other.Max)}
}

// Overlaps reports whether the boxes share any point; touching boxes overlap
func (b Bounds3) Overlaps(other Bounds3) bool {
	return b.Max.X >= other.Min.X && b.Min.X <= other.Max.X &&
		b.Max.Y >= other.Min.Y && b.Min.Y <= other.Max.Y &&
		b.Max.Z >= other.Min.Z && b.Min.Z <= other.Max.Z
}

// Inside reports whether p lies in the closed box
func (b Bounds3) Inside(p Point3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// InsideExclusive reports whether p lies in the box, excluding the upper faces
func (b Bounds3) InsideExclusive(p Point3) bool {
	return p.X >= b.Min.X && p.X < b.Max.X &&
		p.Y >= b.Min.Y && p.Y < b.Max.Y &&
		p.Z >= b.Min.Z && p.Z < b.Max.Z
}

// Expand grows the box by delta on every side
func (b Bounds3) Expand(delta float64) Bounds3 {
	d := Vec3{delta, delta, delta}
	return Bounds3{Min: b.Min.SubtractVec(d), Max: b.Max.Add(d)}
}

// Diagonal returns the vector from Min to Max
func (b Bounds3) Diagonal() Vec3 {
	return b.Max.Subtract(b.Min)
}

// Center returns the midpoint of the box
func (b Bounds3) Center() Point3 {
	return LerpPoint3(0.5, b.Min, b.Max)
}

// SurfaceArea returns the total area of the six faces
func (b Bounds3) SurfaceArea() float64 {
	d := b.Diagonal()
	return 2 * (d.X*d.Y + d.X*d.Z + d.Y*d.Z)
}

// Volume returns the enclosed volume
func (b Bounds3) Volume() float64 {
	d := b.Diagonal()
	return d.X * d.Y * d.Z
}

// MaximumExtent returns the axis of the longest side, preferring x then y on ties
func (b Bounds3) MaximumExtent() int {
	d := b.Diagonal()
	if d.X >= d.Y && d.X >= d.Z {
		return 0
	}
	if d.Y >= d.Z {
		return 1
	}
	return 2
}

// Lerp interpolates between the corners per axis
func (b Bounds3) Lerp(t Point3) Point3 {
	return Point3{
		X: Lerp(t.X, b.Min.X, b.Max.X),
		Y: Lerp(t.Y, b.Min.Y, b.Max.Y),
		Z: Lerp(t.Z, b.Min.Z, b.Max.Z),
	}
}

// Offset returns the position of p relative to the box, (0,0,0) at Min and (1,1,1) at Max.
// Axes where the box is flat are left as the raw offset from Min.
func (b Bounds3) Offset(p Point3) Vec3 {
	o := p.Subtract(b.Min)
	if b.Max.X > b.Min.X {
		o.X /= b.Max.X - b.Min.X
	}
	if b.Max.Y > b.Min.Y {
		o.Y /= b.Max.Y - b.Min.Y
	}
	if b.Max.Z > b.Min.Z {
		o.Z /= b.Max.Z - b.Min.Z
	}
	return o
}

// BoundingSphere returns a sphere that encloses the box
func (b Bounds3) BoundingSphere() (Point3, float64) {
	center := b.Center()
	if !b.Inside(center) {
		return center, 0
	}
	return center, Distance(center, b.Max)
}

// IntersectP tests the ray against the box using the slab method and returns the
// parametric range inside the box. The far slab distance is widened by gamma(3)
// so rounding cannot report a miss for a ray that grazes the box.
func (b Bounds3) IntersectP(ray Ray) (float64, float64, bool) {
	t0, t1 := 0.0, ray.TMax
	for axis := 0; axis < 3; axis++ {
		invD := 1 / ray.D.Component(axis)
		tNear := (b.Min.Component(axis) - ray.O.Component(axis)) * invD
		tFar := (b.Max.Component(axis) - ray.O.Component(axis)) * invD
		if tNear > tFar {
			tNear, tFar = tFar, tNear
		}
		tFar *= 1 + 2*Gamma(3)

		if tNear > t0 {
			t0 = tNear
		}
		if tFar < t1 {
			t1 = tFar
		}
		if t0 > t1 {
			return 0, 0, false
		}
	}
	return t0, t1, true
}

// Bounds2 is a 2D axis-aligned box
type Bounds2 struct {
	Min Point2
	Max Point2
}

// NewBounds2 creates a box spanning two corner points in any order
func NewBounds2(p1, p2 Point2) Bounds2 {
	return Bounds2{
		Min: Point2{math.Min(p1.X, p2.X), math.Min(p1.Y, p2.Y)},
		Max: Point2{math.Max(p1.X, p2.X), math.Max(p1.Y, p2.Y)},
	}
}

// Diagonal returns the vector from Min to Max
func (b Bounds2) Diagonal() Vec2 {
	return b.Max.Subtract(b.Min)
}

// Area returns the enclosed area
func (b Bounds2) Area() float64 {
	d := b.Diagonal()
	return d.X * d.Y
}

// Inside reports whether p lies in the closed box
func (b Bounds2) Inside(p Point2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Lerp interpolates between the corners per axis
func (b Bounds2) Lerp(t Point2) Point2 {
	return Point2{Lerp(t.X, b.Min.X, b.Max.X), Lerp(t.Y, b.Min.Y, b.Max.Y)}
}

// EmptyBounds2 returns the empty box, the identity for Union
func EmptyBounds2() Bounds2 {
	inf := math.Inf(1)
	return Bounds2{Min: Point2{inf, inf}, Max: Point2{-inf, -inf}}
}

// IsEmpty reports whether Min exceeds Max on either axis
func (b Bounds2) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y
}

// UnionPoint returns the smallest box containing b and p
func (b Bounds2) UnionPoint(p Point2) Bounds2 {
	return Bounds2{
		Min: Point2{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y)},
		Max: Point2{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y)},
	}
}

// Union returns the smallest box containing both boxes
func (b Bounds2) Union(other Bounds2) Bounds2 {
	return Bounds2{
		Min: Point2{math.Min(b.Min.X, other.Min.X), math.Min(b.Min.Y, other.Min.Y)},
		Max: Point2{math.Max(b.Max.X, other.Max.X), math.Max(b.Max.Y, other.Max.Y)},
	}
}

// Intersect returns the overlap of two boxes, which may be empty
func (b Bounds2) Intersect(other Bounds2) Bounds2 {
	return Bounds2{
		Min: Point2{math.Max(b.Min.X, other.Min.X), math.Max(b.Min.Y, other.Min.Y)},
		Max: Point2{math.Min(b.Max.X, other.Max.X), math.Min(b.Max.Y, other.Max.Y)},
	}
}

// Overlaps reports whether the boxes share any point; touching boxes overlap
func (b Bounds2) Overlaps(other Bounds2) bool {
	return b.Max.X >= other.Min.X && b.Min.X <= other.Max.X &&
		b.Max.Y >= other.Min.Y && b.Min.Y <= other.Max.Y
}

// InsideExclusive reports whether p lies in the box, excluding the upper edges
func (b Bounds2) InsideExclusive(p Point2) bool {
	return p.X >= b.Min.X && p.X < b.Max.X && p.Y >= b.Min.Y && p.Y < b.Max.Y
}

// Expand grows the box by delta on every side
func (b Bounds2) Expand(delta float64) Bounds2 {
	d := Vec2{delta, delta}
	return Bounds2{Min: b.Min.Add(d.Multiply(-1)), Max: b.Max.Add(d)}
}

// Center returns the midpoint of the box
func (b Bounds2) Center() Point2 {
	return LerpPoint2(0.5, b.Min, b.Max)
}

// MaximumExtent returns the axis of the longer side, 0 for x on a tie
func (b Bounds2) MaximumExtent() int {
	d := b.Diagonal()
	if d.X >= d.Y {
		return 0
	}
	return 1
}

// Offset returns the position of p relative to the box, (0,0) at Min and (1,1) at Max.
// Axes where the box is flat are left as the raw offset from Min.
func (b Bounds2) Offset(p Point2) Vec2 {
	o := p.Subtract(b.Min)
	if b.Max.X > b.Min.X {
		o.X /= b.Max.X - b.Min.X
	}
	if b.Max.Y > b.Min.Y {
		o.Y /= b.Max.Y - b.Min.Y
	}
	return o
}

// BoundingSphere returns a circle that encloses the box
func (b Bounds2) BoundingSphere() (Point2, float64) {
	center := b.Center()
	if !b.Inside(center) {
		return center, 0
	}
	return center, b.Max.Subtract(center).Length()
}

// Bounds2i is an integer box, used for pixel ranges
type Bounds2i struct {
	Min Point2i
	Max Point2i
}

// InsideExclusive reports whether p lies in the box, excluding the upper edges
func (b Bounds2i) InsideExclusive(p Point2i) bool {
	return p.X >= b.Min.X && p.X < b.Max.X && p.Y >= b.Min.Y && p.Y < b.Max.Y
}

// Inside reports whether p lies in the closed box
func (b Bounds2i) Inside(p Point2i) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Union returns the smallest box containing both boxes
func (b Bounds2i) Union(other Bounds2i) Bounds2i {
	return Bounds2i{
		Min: Point2i{min(b.Min.X, other.Min.X), min(b.Min.Y, other.Min.Y)},
		Max: Point2i{max(b.Max.X, other.Max.X), max(b.Max.Y, other.Max.Y)},
	}
}

// Intersect returns the overlap of two boxes, which may be empty
func (b Bounds2i) Intersect(other Bounds2i) Bounds2i {
	return Bounds2i{
		Min: Point2i{max(b.Min.X, other.Min.X), max(b.Min.Y, other.Min.Y)},
		Max: Point2i{min(b.Max.X, other.Max.X), min(b.Max.Y, other.Max.Y)},
	}
}

// Overlaps reports whether the boxes share any point; touching boxes overlap
func (b Bounds2i) Overlaps(other Bounds2i) bool {
	return b.Max.X >= other.Min.X && b.Min.X <= other.Max.X &&
		b.Max.Y >= other.Min.Y && b.Min.Y <= other.Max.Y
}

// Area returns the number of pixels in the box
func (b Bounds2i) Area() int {
	if b.Max.X <= b.Min.X || b.Max.Y <= b.Min.Y {
		return 0
	}
	return (b.Max.X - b.Min.X) * (b.Max.Y - b.Min.Y)
}

// Points lists the pixels in the box in row-major order. Pixels on the upper
// edges belong to the neighbouring box.
func (b Bounds2i) Points() []Point2i {
	pts := make([]Point2i, 0, b.Area())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			pts = append(pts, Point2i{x, y})
		}
	}
	return pts
}
