// Package transform maps geometry between coordinate spaces and tracks the
// floating point error those mappings introduce.
package transform

import (
	"math"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Transform is an invertible map stored together with its inverse.
// The inverse is fixed at construction and never recomputed.
type Transform struct {
	m, mInv Matrix4x4
}

// New creates a transform from m, computing its inverse
func New(m Matrix4x4) (Transform, error) {
	mInv, err := m.Inverse()
	if err != nil {
		return Transform{}, errors.Wrap(err, "new transform")
	}
	return Transform{m: m, mInv: mInv}, nil
}

// MustNew is like New but panics if m is singular
func MustNew(m Matrix4x4) Transform {
	t, err := New(m)
	if err != nil {
		panic(err)
	}
	return t
}

// NewWithInverse creates a transform from a matrix and its known inverse
func NewWithInverse(m, mInv Matrix4x4) Transform {
	return Transform{m: m, mInv: mInv}
}

// IdentityTransform returns the transform that leaves everything in place
func IdentityTransform() Transform {
	return Transform{m: Identity(), mInv: Identity()}
}

// Matrix returns the forward matrix
func (t Transform) Matrix() Matrix4x4 { return t.m }

// InverseMatrix returns the inverse matrix
func (t Transform) InverseMatrix() Matrix4x4 { return t.mInv }

// Inverse returns the inverse transform
func (t Transform) Inverse() Transform {
	return Transform{m: t.mInv, mInv: t.m}
}

// Transpose returns the transform with both matrices transposed
func (t Transform) Transpose() Transform {
	return Transform{m: t.m.Transpose(), mInv: t.mInv.Transpose()}
}

// Compose returns t * o, the transform applying o first and then t
func (t Transform) Compose(o Transform) Transform {
	return Transform{m: t.m.Mul(o.m), mInv: o.mInv.Mul(t.mInv)}
}

// IsIdentity reports whether t is exactly the identity
func (t Transform) IsIdentity() bool {
	return t.m.IsIdentity()
}

// Equal reports whether both matrices match within eps
func (t Transform) Equal(o Transform, eps float64) bool {
	return t.m.Equal(o.m, eps) && t.mInv.Equal(o.mInv, eps)
}

// HasScale reports whether t changes the length of any coordinate axis
func (t Transform) HasScale() bool {
	la2 := t.Vector(core.NewVec3(1, 0, 0)).LengthSquared()
	lb2 := t.Vector(core.NewVec3(0, 1, 0)).LengthSquared()
	lc2 := t.Vector(core.NewVec3(0, 0, 1)).LengthSquared()
	notOne := func(x float64) bool { return x < 0.999 || x > 1.001 }
	return notOne(la2) || notOne(lb2) || notOne(lc2)
}

// SwapsHandedness reports whether the linear part has a negative determinant
func (t Transform) SwapsHandedness() bool {
	m := t.m
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	return det < 0
}

func (t Transform) String() string {
	return "m=" + t.m.String() + ", mInv=" + t.mInv.String()
}

// Translate returns a translation by delta
func Translate(delta core.Vec3) Transform {
	m := NewMatrix4x4(
		1, 0, 0, delta.X,
		0, 1, 0, delta.Y,
		0, 0, 1, delta.Z,
		0, 0, 0, 1)
	mInv := NewMatrix4x4(
		1, 0, 0, -delta.X,
		0, 1, 0, -delta.Y,
		0, 0, 1, -delta.Z,
		0, 0, 0, 1)
	return Transform{m: m, mInv: mInv}
}

// Scale returns a scale by (x, y, z). A zero factor has no inverse.
func Scale(x, y, z float64) (Transform, error) {
	if x == 0 || y == 0 || z == 0 {
		zap.L().Error("zero scale factor", zap.Float64s("scale", []float64{x, y, z}))
		return Transform{}, errors.Wrapf(ErrSingularMatrix, "scale (%g, %g, %g)", x, y, z)
	}
	m := NewMatrix4x4(
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1)
	mInv := NewMatrix4x4(
		1/x, 0, 0, 0,
		0, 1/y, 0, 0,
		0, 0, 1/z, 0,
		0, 0, 0, 1)
	return Transform{m: m, mInv: mInv}, nil
}

// RotateX returns a rotation of theta degrees about the x axis
func RotateX(theta float64) Transform {
	sinT, cosT := math.Sincos(core.Radians(theta))
	m := NewMatrix4x4(
		1, 0, 0, 0,
		0, cosT, -sinT, 0,
		0, sinT, cosT, 0,
		0, 0, 0, 1)
	return Transform{m: m, mInv: m.Transpose()}
}

// RotateY returns a rotation of theta degrees about the y axis
func RotateY(theta float64) Transform {
	sinT, cosT := math.Sincos(core.Radians(theta))
	m := NewMatrix4x4(
		cosT, 0, sinT, 0,
		0, 1, 0, 0,
		-sinT, 0, cosT, 0,
		0, 0, 0, 1)
	return Transform{m: m, mInv: m.Transpose()}
}

// RotateZ returns a rotation of theta degrees about the z axis
func RotateZ(theta float64) Transform {
	sinT, cosT := math.Sincos(core.Radians(theta))
	m := NewMatrix4x4(
		cosT, -sinT, 0, 0,
		sinT, cosT, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1)
	return Transform{m: m, mInv: m.Transpose()}
}

// Rotate returns a rotation of theta degrees about an arbitrary axis,
// which must have nonzero length
func Rotate(theta float64, axis core.Vec3) (Transform, error) {
	if axis.LengthSquared() == 0 {
		zap.L().Error("zero length rotation axis", zap.Float64("theta", theta))
		return Transform{}, errors.Wrapf(ErrSingularMatrix, "rotate %g degrees about %v", theta, axis)
	}
	a := axis.Normalize()
	sinT, cosT := math.Sincos(core.Radians(theta))
	var m Matrix4x4
	m[0][0] = a.X*a.X + (1-a.X*a.X)*cosT
	m[0][1] = a.X*a.Y*(1-cosT) - a.Z*sinT
	m[0][2] = a.X*a.Z*(1-cosT) + a.Y*sinT
	m[1][0] = a.X*a.Y*(1-cosT) + a.Z*sinT
	m[1][1] = a.Y*a.Y + (1-a.Y*a.Y)*cosT
	m[1][2] = a.Y*a.Z*(1-cosT) - a.X*sinT
	m[2][0] = a.X*a.Z*(1-cosT) - a.Y*sinT
	m[2][1] = a.Y*a.Z*(1-cosT) + a.X*sinT
	m[2][2] = a.Z*a.Z + (1-a.Z*a.Z)*cosT
	m[3][3] = 1
	return Transform{m: m, mInv: m.Transpose()}, nil
}

// LookAt returns the camera-to-world transform for a camera at pos looking at look
func LookAt(pos, look core.Point3, up core.Vec3) (Transform, error) {
	dir := look.Subtract(pos)
	if dir.LengthSquared() == 0 {
		return Transform{}, errors.Errorf("look at: position and target coincide at %v", pos)
	}
	dir = dir.Normalize()
	right := up.Normalize().Cross(dir)
	if right.Length() == 0 {
		return Transform{}, errors.Errorf("look at: up vector %v and view direction %v are parallel", up, dir)
	}
	right = right.Normalize()
	newUp := dir.Cross(right)

	cameraToWorld := NewMatrix4x4(
		right.X, newUp.X, dir.X, pos.X,
		right.Y, newUp.Y, dir.Y, pos.Y,
		right.Z, newUp.Z, dir.Z, pos.Z,
		0, 0, 0, 1)
	worldToCamera, err := cameraToWorld.Inverse()
	if err != nil {
		return Transform{}, errors.Wrap(err, "look at")
	}
	return Transform{m: worldToCamera, mInv: cameraToWorld}, nil
}

// Perspective returns a perspective projection with a field of view of fov degrees
// and near and far planes at n and f
func Perspective(fov, n, f float64) (Transform, error) {
	if f <= n {
		return Transform{}, errors.Errorf("perspective: far plane %g not beyond near plane %g", f, n)
	}
	persp := NewMatrix4x4(
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, f/(f-n), -f*n/(f-n),
		0, 0, 1, 0)
	p, err := New(persp)
	if err != nil {
		return Transform{}, errors.Wrapf(err, "perspective near=%g far=%g", n, f)
	}
	invTanAng := 1 / math.Tan(core.Radians(fov)/2)
	s, err := Scale(invTanAng, invTanAng, 1)
	if err != nil {
		return Transform{}, errors.Wrapf(err, "perspective fov=%g", fov)
	}
	return s.Compose(p), nil
}
