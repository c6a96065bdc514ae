package transform

import (
	"math"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	maxPolarIterations = 100
	polarTolerance     = 1e-4

	// motion bound search
	zeroSearchDepth  = 8
	newtonIterations = 4
	derivativeStep   = 1e-5
)

// AnimatedTransform moves smoothly between two transforms over a time range.
// Each end is split into translation, rotation and scale; translation and
// scale are interpolated linearly and rotation with quaternion slerp.
type AnimatedTransform struct {
	start, end         *Transform
	startTime, endTime float64
	actuallyAnimated   bool
	hasRotation        bool

	t [2]core.Vec3
	r [2]mgl64.Quat
	s [2]Matrix4x4
}

// NewAnimatedTransform decomposes both keyframes. The transforms must outlive
// the returned value.
func NewAnimatedTransform(start *Transform, startTime float64, end *Transform, endTime float64) (*AnimatedTransform, error) {
	at := &AnimatedTransform{
		start:            start,
		end:              end,
		startTime:        startTime,
		endTime:          endTime,
		actuallyAnimated: !start.Equal(*end, 0),
	}
	if !at.actuallyAnimated {
		return at, nil
	}
	if endTime <= startTime {
		return nil, errors.Errorf("animated transform: end time %g not after start time %g", endTime, startTime)
	}

	var err error
	if at.t[0], at.r[0], at.s[0], err = Decompose(start.m); err != nil {
		return nil, errors.Wrap(err, "decompose start transform")
	}
	if at.t[1], at.r[1], at.s[1], err = Decompose(end.m); err != nil {
		return nil, errors.Wrap(err, "decompose end transform")
	}

	// take the shorter path between the two rotations
	if at.r[0].Dot(at.r[1]) < 0 {
		at.r[1] = at.r[1].Scale(-1)
	}
	at.hasRotation = at.r[0].Dot(at.r[1]) < 0.9995
	return at, nil
}

// Decompose splits an affine matrix m into translation T, rotation R and
// remaining scale S such that m = T * R * S. R is found by polar decomposition.
func Decompose(m Matrix4x4) (core.Vec3, mgl64.Quat, Matrix4x4, error) {
	t := core.Vec3{X: m[0][3], Y: m[1][3], Z: m[2][3]}

	linear := m
	for i := 0; i < 3; i++ {
		linear[i][3] = 0
		linear[3][i] = 0
	}
	linear[3][3] = 1

	r := linear
	for count := 0; count < maxPolarIterations; count++ {
		rit, err := r.Transpose().Inverse()
		if err != nil {
			return core.Vec3{}, mgl64.Quat{}, Matrix4x4{}, err
		}
		var next Matrix4x4
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				next[i][j] = 0.5 * (r[i][j] + rit[i][j])
			}
		}

		norm := 0.0
		for i := 0; i < 3; i++ {
			n := math.Abs(r[i][0]-next[i][0]) + math.Abs(r[i][1]-next[i][1]) + math.Abs(r[i][2]-next[i][2])
			norm = math.Max(norm, n)
		}
		r = next
		if norm <= polarTolerance {
			break
		}
	}

	rInv, err := r.Inverse()
	if err != nil {
		return core.Vec3{}, mgl64.Quat{}, Matrix4x4{}, err
	}
	return t, mgl64.Mat4ToQuat(toMat4(r)).Normalize(), rInv.Mul(linear), nil
}

func toMat4(m Matrix4x4) mgl64.Mat4 {
	row := func(i int) mgl64.Vec4 { return mgl64.Vec4{m[i][0], m[i][1], m[i][2], m[i][3]} }
	return mgl64.Mat4FromRows(row(0), row(1), row(2), row(3))
}

func fromMat4(m mgl64.Mat4) Matrix4x4 {
	var r Matrix4x4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = m.At(i, j)
		}
	}
	return r
}

// rotation returns the pure rotation transform of a unit quaternion
func rotation(q mgl64.Quat) Transform {
	m := fromMat4(q.Mat4())
	return Transform{m: m, mInv: m.Transpose()}
}

// IsAnimated reports whether the two keyframes differ
func (a *AnimatedTransform) IsAnimated() bool { return a.actuallyAnimated }

// HasRotation reports whether the keyframes differ by a noticeable rotation
func (a *AnimatedTransform) HasRotation() bool { return a.hasRotation }

// Interpolate returns the transform at the given time, clamped to the keyframe range
func (a *AnimatedTransform) Interpolate(time float64) Transform {
	if !a.actuallyAnimated || time <= a.startTime {
		return *a.start
	}
	if time >= a.endTime {
		return *a.end
	}
	return a.at((time - a.startTime) / (a.endTime - a.startTime))
}

// at interpolates at normalized time dt without clamping
func (a *AnimatedTransform) at(dt float64) Transform {
	trans := a.t[0].Multiply(1 - dt).Add(a.t[1].Multiply(dt))
	rotate := mgl64.QuatSlerp(a.r[0], a.r[1], dt)

	var scale Matrix4x4
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			scale[i][j] = core.Lerp(dt, a.s[0][i][j], a.s[1][i][j])
		}
	}
	scale[3][3] = 1

	st, err := New(scale)
	if err != nil {
		zap.L().Warn("interpolated scale is singular, holding start keyframe", zap.Float64("dt", dt))
		return *a.start
	}
	return Translate(trans).Compose(rotation(rotate)).Compose(st)
}

// Point transforms p at the given time
func (a *AnimatedTransform) Point(time float64, p core.Point3) core.Point3 {
	return a.Interpolate(time).Point(p)
}

// Vector transforms v at the given time
func (a *AnimatedTransform) Vector(time float64, v core.Vec3) core.Vec3 {
	return a.Interpolate(time).Vector(v)
}

// Ray transforms r at r.Time
func (a *AnimatedTransform) Ray(r core.Ray) core.Ray {
	return a.Interpolate(r.Time).Ray(r)
}

// MotionBounds returns a box enclosing b under every transform in the time range
func (a *AnimatedTransform) MotionBounds(b core.Bounds3) core.Bounds3 {
	if !a.actuallyAnimated {
		return a.start.Bounds(b)
	}
	if !a.hasRotation {
		return a.start.Bounds(b).Union(a.end.Bounds(b))
	}
	bounds := core.EmptyBounds3()
	for corner := 0; corner < 8; corner++ {
		bounds = bounds.Union(a.BoundPointMotion(b.Corner(corner)))
	}
	return bounds
}

// BoundPointMotion returns a box enclosing the path p follows over the time range.
// Besides the endpoints it adds every point where the path turns around along an axis.
func (a *AnimatedTransform) BoundPointMotion(p core.Point3) core.Bounds3 {
	if !a.actuallyAnimated {
		return core.NewBounds3(a.start.Point(p), a.start.Point(p))
	}
	bounds := core.NewBounds3(a.start.Point(p), a.end.Point(p))
	for axis := 0; axis < 3; axis++ {
		for _, dt := range a.findZeros(p, axis, 0, 1, zeroSearchDepth) {
			pz := a.at(dt)
			bounds = bounds.UnionPoint(pz.Point(p))
		}
	}
	return bounds
}

// velocity is the derivative of p's coordinate along axis at normalized time dt
func (a *AnimatedTransform) velocity(p core.Point3, axis int, dt float64) float64 {
	hi := a.at(dt + derivativeStep)
	lo := a.at(dt - derivativeStep)
	return (hi.Point(p).Component(axis) - lo.Point(p).Component(axis)) / (2 * derivativeStep)
}

// findZeros bisects [t0,t1] down to depth levels and refines each leaf where
// the velocity changes sign with Newton's method
func (a *AnimatedTransform) findZeros(p core.Point3, axis int, t0, t1 float64, depth int) []float64 {
	if depth > 0 {
		mid := 0.5 * (t0 + t1)
		return append(a.findZeros(p, axis, t0, mid, depth-1), a.findZeros(p, axis, mid, t1, depth-1)...)
	}

	v0, v1 := a.velocity(p, axis, t0), a.velocity(p, axis, t1)
	if (v0 > 0 && v1 > 0) || (v0 < 0 && v1 < 0) {
		return nil
	}

	tNewton := 0.5 * (t0 + t1)
	for i := 0; i < newtonIterations; i++ {
		v := a.velocity(p, axis, tNewton)
		accel := (a.velocity(p, axis, tNewton+derivativeStep) - a.velocity(p, axis, tNewton-derivativeStep)) /
			(2 * derivativeStep)
		if v == 0 || accel == 0 {
			break
		}
		tNewton -= v / accel
	}
	return []float64{core.Clamp(tNewton, t0, t1)}
}
