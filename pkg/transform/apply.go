package transform

import (
	"math"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/interaction"
)

// Point applies the full homogeneous transform to p, dividing by w when w != 1
func (t Transform) Point(p core.Point3) core.Point3 {
	m := t.m
	xp := m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3]
	yp := m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3]
	zp := m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3]
	wp := m[3][0]*p.X + m[3][1]*p.Y + m[3][2]*p.Z + m[3][3]
	if wp == 1 {
		return core.Point3{X: xp, Y: yp, Z: zp}
	}
	return core.Point3{X: xp, Y: yp, Z: zp}.Divide(wp)
}

// PointWithError transforms p and returns a bound on the rounding error of the result.
// The bound assumes an affine transform.
func (t Transform) PointWithError(p core.Point3) (core.Point3, core.Vec3) {
	m := t.m
	xAbs := math.Abs(m[0][0]*p.X) + math.Abs(m[0][1]*p.Y) + math.Abs(m[0][2]*p.Z) + math.Abs(m[0][3])
	yAbs := math.Abs(m[1][0]*p.X) + math.Abs(m[1][1]*p.Y) + math.Abs(m[1][2]*p.Z) + math.Abs(m[1][3])
	zAbs := math.Abs(m[2][0]*p.X) + math.Abs(m[2][1]*p.Y) + math.Abs(m[2][2]*p.Z) + math.Abs(m[2][3])
	return t.Point(p), core.Vec3{X: xAbs, Y: yAbs, Z: zAbs}.Multiply(core.Gamma(3))
}

// PointWithAbsError transforms p, which already carries error pErr, and returns
// the combined error of the result
func (t Transform) PointWithAbsError(p core.Point3, pErr core.Vec3) (core.Point3, core.Vec3) {
	m := t.m
	g3 := core.Gamma(3)
	row := func(i int) float64 {
		carried := (g3 + 1) * (math.Abs(m[i][0])*pErr.X + math.Abs(m[i][1])*pErr.Y + math.Abs(m[i][2])*pErr.Z)
		fresh := g3 * (math.Abs(m[i][0]*p.X) + math.Abs(m[i][1]*p.Y) + math.Abs(m[i][2]*p.Z) + math.Abs(m[i][3]))
		return carried + fresh
	}
	return t.Point(p), core.Vec3{X: row(0), Y: row(1), Z: row(2)}
}

// Vector applies the linear part of the transform to v
func (t Transform) Vector(v core.Vec3) core.Vec3 {
	m := t.m
	return core.Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// VectorWithError transforms v and returns a bound on the rounding error of the result
func (t Transform) VectorWithError(v core.Vec3) (core.Vec3, core.Vec3) {
	m := t.m
	g3 := core.Gamma(3)
	err := core.Vec3{
		X: g3 * (math.Abs(m[0][0]*v.X) + math.Abs(m[0][1]*v.Y) + math.Abs(m[0][2]*v.Z)),
		Y: g3 * (math.Abs(m[1][0]*v.X) + math.Abs(m[1][1]*v.Y) + math.Abs(m[1][2]*v.Z)),
		Z: g3 * (math.Abs(m[2][0]*v.X) + math.Abs(m[2][1]*v.Y) + math.Abs(m[2][2]*v.Z)),
	}
	return t.Vector(v), err
}

// VectorWithAbsError transforms v, which already carries error vErr, and returns
// the combined error of the result
func (t Transform) VectorWithAbsError(v, vErr core.Vec3) (core.Vec3, core.Vec3) {
	m := t.m
	g3 := core.Gamma(3)
	row := func(i int) float64 {
		carried := (g3 + 1) * (math.Abs(m[i][0])*vErr.X + math.Abs(m[i][1])*vErr.Y + math.Abs(m[i][2])*vErr.Z)
		fresh := g3 * (math.Abs(m[i][0]*v.X) + math.Abs(m[i][1]*v.Y) + math.Abs(m[i][2]*v.Z))
		return carried + fresh
	}
	return t.Vector(v), core.Vec3{X: row(0), Y: row(1), Z: row(2)}
}

// Normal transforms n by the transpose of the inverse matrix
func (t Transform) Normal(n core.Normal3) core.Normal3 {
	mi := t.mInv
	return core.Normal3{
		X: mi[0][0]*n.X + mi[1][0]*n.Y + mi[2][0]*n.Z,
		Y: mi[0][1]*n.X + mi[1][1]*n.Y + mi[2][1]*n.Z,
		Z: mi[0][2]*n.X + mi[1][2]*n.Y + mi[2][2]*n.Z,
	}
}

// Ray transforms r. The new origin is moved forward along the direction until
// it clears its own error bound, and TMax shrinks by the same amount.
func (t Transform) Ray(r core.Ray) core.Ray {
	o, oErr := t.PointWithError(r.O)
	d := t.Vector(r.D)
	dt := OriginShift(d, oErr)
	o = o.Add(d.Multiply(dt))
	tMax := r.TMax - dt
	return core.Ray{O: o, D: d, TMax: tMax, Time: r.Time, Medium: r.Medium}
}

// RayWithError transforms r and returns the error bounds of the new origin and
// direction. The origin is offset as in Ray but TMax is left as given so no
// hit near the far end can be lost. A parameter t on the returned ray is
// t + OriginShift(d, oErr) on r.
func (t Transform) RayWithError(r core.Ray) (core.Ray, core.Vec3, core.Vec3) {
	o, oErr := t.PointWithError(r.O)
	d, dErr := t.VectorWithError(r.D)
	o = o.Add(d.Multiply(OriginShift(d, oErr)))
	return core.Ray{O: o, D: d, TMax: r.TMax, Time: r.Time, Medium: r.Medium}, oErr, dErr
}

// OriginShift is how far along d a transformed origin with error oErr is
// moved to clear its own error box
func OriginShift(d, oErr core.Vec3) float64 {
	l2 := d.LengthSquared()
	if l2 == 0 {
		return 0
	}
	return d.Abs().Dot(oErr) / l2
}

// RayDifferential transforms the main ray and both offset rays
func (t Transform) RayDifferential(r core.RayDifferential) core.RayDifferential {
	out := core.RayDifferential{
		Ray:              t.Ray(r.Ray),
		HasDifferentials: r.HasDifferentials,
		RxOrigin:         t.Point(r.RxOrigin),
		RyOrigin:         t.Point(r.RyOrigin),
		RxDirection:      t.Vector(r.RxDirection),
		RyDirection:      t.Vector(r.RyDirection),
	}
	return out
}

// Bounds returns a box enclosing the transformed corners of b
func (t Transform) Bounds(b core.Bounds3) core.Bounds3 {
	if b.IsEmpty() {
		return b
	}
	out := core.EmptyBounds3()
	for i := 0; i < 8; i++ {
		out = out.UnionPoint(t.Point(b.Corner(i)))
	}
	return out
}

// SurfaceInteraction maps every field of si through t. Normals are
// renormalized and the shading normal is turned toward the geometric one.
func (t Transform) SurfaceInteraction(si *interaction.SurfaceInteraction) *interaction.SurfaceInteraction {
	p, pErr := t.PointWithAbsError(si.P, si.PError)

	ret := &interaction.SurfaceInteraction{
		Interaction: interaction.Interaction{
			P:               p,
			PError:          pErr,
			Time:            si.Time,
			N:               t.Normal(si.N).Normalize(),
			Wo:              t.Vector(si.Wo).Normalize(),
			MediumInterface: si.MediumInterface,
		},
		UV:        si.UV,
		Dpdu:      t.Vector(si.Dpdu),
		Dpdv:      t.Vector(si.Dpdv),
		Dndu:      t.Normal(si.Dndu),
		Dndv:      t.Normal(si.Dndv),
		Shape:     si.Shape,
		FaceIndex: si.FaceIndex,
		Shading: interaction.Shading{
			N:    t.Normal(si.Shading.N).Normalize(),
			Dpdu: t.Vector(si.Shading.Dpdu),
			Dpdv: t.Vector(si.Shading.Dpdv),
			Dndu: t.Normal(si.Shading.Dndu),
			Dndv: t.Normal(si.Shading.Dndv),
		},
	}
	ret.Shading.N = ret.Shading.N.FaceForwardNormal(ret.N)
	return ret
}
