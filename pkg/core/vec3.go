package core

import (
	"fmt"
	"math"
)

// Vec3 represents a free 3D vector (direction or offset, no position)
type Vec3 struct {
	X, Y, Z float64
}

// NewVec3 creates a new Vec3
func NewVec3(x, y, z float64) Vec3 {
	v := Vec3{X: x, Y: y, Z: z}
	if DebugChecks && v.HasNaNs() {
		panic(fmt.Sprintf("core: NaN in Vec3 %v", v))
	}
	return v
}

// Add returns the sum of two vectors
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Subtract returns the difference of two vectors
func (v Vec3) Subtract(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Multiply returns the vector scaled by a scalar
func (v Vec3) Multiply(scalar float64) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Divide returns the vector divided by a scalar
func (v Vec3) Divide(scalar float64) Vec3 {
	inv := 1 / scalar
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}

// Negate returns the negative of the vector
func (v Vec3) Negate() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Length returns the magnitude of the vector
func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// LengthSquared returns the squared magnitude of the vector
func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Dot returns the dot product of two vectors
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// AbsDot returns the absolute value of the dot product
func (v Vec3) AbsDot(other Vec3) float64 {
	return math.Abs(v.Dot(other))
}

// Cross returns the cross product of two vectors.
// The products are fused so each component is rounded once.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: differenceOfProducts(v.Y, other.Z, v.Z, other.Y),
		Y: differenceOfProducts(v.Z, other.X, v.X, other.Z),
		Z: differenceOfProducts(v.X, other.Y, v.Y, other.X),
	}
}

// Normalize returns a unit vector in the same direction.
// A zero-length vector yields NaN components.
func (v Vec3) Normalize() Vec3 {
	return v.Divide(v.Length())
}

// Abs returns the componentwise absolute value
func (v Vec3) Abs() Vec3 {
	return Vec3{math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)}
}

// MultiplyVec returns component-wise multiplication of two vectors
func (v Vec3) MultiplyVec(other Vec3) Vec3 {
	return Vec3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

// Component returns the i-th component (0=X, 1=Y, 2=Z)
func (v Vec3) Component(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Permute returns a vector with components reordered by the given axis indices
func (v Vec3) Permute(x, y, z int) Vec3 {
	return Vec3{v.Component(x), v.Component(y), v.Component(z)}
}

// MinComponent returns the smallest component
func (v Vec3) MinComponent() float64 {
	return math.Min(v.X, math.Min(v.Y, v.Z))
}

// MaxComponent returns the largest component
func (v Vec3) MaxComponent() float64 {
	return math.Max(v.X, math.Max(v.Y, v.Z))
}

// MaxDimension returns the index of the largest component
func (v Vec3) MaxDimension() int {
	if v.X > v.Y {
		if v.X > v.Z {
			return 0
		}
		return 2
	}
	if v.Y > v.Z {
		return 1
	}
	return 2
}

// HasNaNs reports whether any component is NaN
func (v Vec3) HasNaNs() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

// ToNormal reinterprets the vector as a surface normal
func (v Vec3) ToNormal() Normal3 {
	return Normal3{v.X, v.Y, v.Z}
}

// ToPoint reinterprets the vector as an offset from the origin
func (v Vec3) ToPoint() Point3 {
	return Point3{v.X, v.Y, v.Z}
}

// MinVec3 returns the componentwise minimum
func MinVec3(a, b Vec3) Vec3 {
	return Vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

// MaxVec3 returns the componentwise maximum
func MaxVec3(a, b Vec3) Vec3 {
	return Vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)}
}

// CoordinateSystem builds two vectors that form an orthogonal basis with v1.
// v1 must be normalized.
func CoordinateSystem(v1 Vec3) (Vec3, Vec3) {
	var v2 Vec3
	if math.Abs(v1.X) > math.Abs(v1.Y) {
		v2 = Vec3{-v1.Z, 0, v1.X}.Divide(math.Sqrt(v1.X*v1.X + v1.Z*v1.Z))
	} else {
		v2 = Vec3{0, v1.Z, -v1.Y}.Divide(math.Sqrt(v1.Y*v1.Y + v1.Z*v1.Z))
	}
	return v2, v1.Cross(v2)
}

// Point3 represents a position in 3D space
type Point3 struct {
	X, Y, Z float64
}

// NewPoint3 creates a new Point3
func NewPoint3(x, y, z float64) Point3 {
	p := Point3{X: x, Y: y, Z: z}
	if DebugChecks && p.HasNaNs() {
		panic(fmt.Sprintf("core: NaN in Point3 %v", p))
	}
	return p
}

// Add offsets the point by a vector
func (p Point3) Add(v Vec3) Point3 {
	return Point3{p.X + v.X, p.Y + v.Y, p.Z + v.Z}
}

// AddPoint sums two points; only meaningful inside weighted combinations
func (p Point3) AddPoint(o Point3) Point3 {
	return Point3{p.X + o.X, p.Y + o.Y, p.Z + o.Z}
}

// Subtract returns the vector from o to p
func (p Point3) Subtract(o Point3) Vec3 {
	return Vec3{p.X - o.X, p.Y - o.Y, p.Z - o.Z}
}

// SubtractVec offsets the point by the negated vector
func (p Point3) SubtractVec(v Vec3) Point3 {
	return Point3{p.X - v.X, p.Y - v.Y, p.Z - v.Z}
}

// Multiply scales the point's coordinates
func (p Point3) Multiply(s float64) Point3 {
	return Point3{p.X * s, p.Y * s, p.Z * s}
}

// Divide divides the point's coordinates by s
func (p Point3) Divide(s float64) Point3 {
	inv := 1 / s
	return Point3{p.X * inv, p.Y * inv, p.Z * inv}
}

// Component returns the i-th coordinate
func (p Point3) Component(i int) float64 {
	switch i {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// Permute reorders the coordinates
func (p Point3) Permute(x, y, z int) Point3 {
	return Point3{p.Component(x), p.Component(y), p.Component(z)}
}

// Abs returns the componentwise absolute value
func (p Point3) Abs() Point3 {
	return Point3{math.Abs(p.X), math.Abs(p.Y), math.Abs(p.Z)}
}

// Floor rounds each coordinate down
func (p Point3) Floor() Point3 {
	return Point3{math.Floor(p.X), math.Floor(p.Y), math.Floor(p.Z)}
}

// Ceil rounds each coordinate up
func (p Point3) Ceil() Point3 {
	return Point3{math.Ceil(p.X), math.Ceil(p.Y), math.Ceil(p.Z)}
}

// ToVec returns the vector from the origin to p
func (p Point3) ToVec() Vec3 {
	return Vec3{p.X, p.Y, p.Z}
}

// HasNaNs reports whether any coordinate is NaN
func (p Point3) HasNaNs() bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z)
}

// Distance returns the distance between two points
func Distance(a, b Point3) float64 {
	return a.Subtract(b).Length()
}

// DistanceSquared returns the squared distance between two points
func DistanceSquared(a, b Point3) float64 {
	return a.Subtract(b).LengthSquared()
}

// LerpPoint3 linearly interpolates between p0 and p1
func LerpPoint3(t float64, p0, p1 Point3) Point3 {
	return p0.Multiply(1 - t).AddPoint(p1.Multiply(t))
}

// MinPoint3 returns the componentwise minimum
func MinPoint3(a, b Point3) Point3 {
	return Point3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

// MaxPoint3 returns the componentwise maximum
func MaxPoint3(a, b Point3) Point3 {
	return Point3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)}
}

// Normal3 is a surface normal. Normals transform by the inverse transpose,
// so they are kept apart from Vec3.
type Normal3 struct {
	X, Y, Z float64
}

// NewNormal3 creates a new Normal3
func NewNormal3(x, y, z float64) Normal3 {
	n := Normal3{X: x, Y: y, Z: z}
	if DebugChecks && n.HasNaNs() {
		panic(fmt.Sprintf("core: NaN in Normal3 %v", n))
	}
	return n
}

// Add returns the componentwise sum
func (n Normal3) Add(o Normal3) Normal3 {
	return Normal3{n.X + o.X, n.Y + o.Y, n.Z + o.Z}
}

// Subtract returns the componentwise difference
func (n Normal3) Subtract(o Normal3) Normal3 {
	return Normal3{n.X - o.X, n.Y - o.Y, n.Z - o.Z}
}

// Multiply scales the normal by s
func (n Normal3) Multiply(s float64) Normal3 {
	return Normal3{n.X * s, n.Y * s, n.Z * s}
}

// Negate flips the normal
func (n Normal3) Negate() Normal3 {
	return Normal3{-n.X, -n.Y, -n.Z}
}

// Dot returns the dot product with a vector
func (n Normal3) Dot(v Vec3) float64 {
	return n.X*v.X + n.Y*v.Y + n.Z*v.Z
}

// DotNormal returns the dot product with another normal
func (n Normal3) DotNormal(o Normal3) float64 {
	return n.X*o.X + n.Y*o.Y + n.Z*o.Z
}

// LengthSquared returns the squared length
func (n Normal3) LengthSquared() float64 {
	return n.X*n.X + n.Y*n.Y + n.Z*n.Z
}

// Length returns the length
func (n Normal3) Length() float64 {
	return math.Sqrt(n.LengthSquared())
}

// Normalize returns a unit normal; zero length yields NaN
func (n Normal3) Normalize() Normal3 {
	return n.Multiply(1 / n.Length())
}

// Abs returns the componentwise absolute value
func (n Normal3) Abs() Normal3 {
	return Normal3{math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)}
}

// IsZero reports whether every component is exactly zero
func (n Normal3) IsZero() bool {
	return n.X == 0 && n.Y == 0 && n.Z == 0
}

// HasNaNs reports whether any component is NaN
func (n Normal3) HasNaNs() bool {
	return math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsNaN(n.Z)
}

// ToVec reinterprets the normal as a vector
func (n Normal3) ToVec() Vec3 {
	return Vec3{n.X, n.Y, n.Z}
}

// FaceForward flips n into the hemisphere of v. An exactly zero dot product leaves n unchanged.
func (n Normal3) FaceForward(v Vec3) Normal3 {
	if n.Dot(v) < 0 {
		return n.Negate()
	}
	return n
}

// FaceForwardNormal flips n into the hemisphere of another normal
func (n Normal3) FaceForwardNormal(o Normal3) Normal3 {
	return n.FaceForward(o.ToVec())
}

// differenceOfProducts computes a*b - c*d with a single rounding of the c*d term
func differenceOfProducts(a, b, c, d float64) float64 {
	cd := c * d
	diff := math.FMA(a, b, -cd)
	err := math.FMA(-c, d, cd)
	return diff + err
}
