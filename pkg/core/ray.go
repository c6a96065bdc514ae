package core

import "math"

// Medium is the participating medium a ray travels through.
// Rays only carry it; nothing in this package inspects it.
type Medium interface{}

// Ray represents a ray o + t*d valid for t in (0, TMax]
type Ray struct {
	O      Point3  // Origin
	D      Vec3    // Direction, not necessarily normalized
	TMax   float64 // Upper bound on valid hits
	Time   float64
	Medium Medium
}

// NewRay creates a ray with an unbounded TMax
func NewRay(o Point3, d Vec3) Ray {
	return Ray{O: o, D: d, TMax: math.Inf(1)}
}

// At returns the point along the ray at parameter t
func (r Ray) At(t float64) Point3 {
	return r.O.Add(r.D.Multiply(t))
}

// HasNaNs reports whether the origin, direction or TMax is NaN
func (r Ray) HasNaNs() bool {
	return r.O.HasNaNs() || r.D.HasNaNs() || math.IsNaN(r.TMax)
}

// RayDifferential carries two offset rays beside the main ray for texture filtering
type RayDifferential struct {
	Ray
	HasDifferentials bool
	RxOrigin         Point3
	RyOrigin         Point3
	RxDirection      Vec3
	RyDirection      Vec3
}

// NewRayDifferential wraps a ray with no differentials
func NewRayDifferential(r Ray) RayDifferential {
	return RayDifferential{Ray: r}
}

// ScaleDifferentials moves the offset rays toward or away from the main ray by factor s
func (rd *RayDifferential) ScaleDifferentials(s float64) {
	rd.RxOrigin = rd.O.Add(rd.RxOrigin.Subtract(rd.O).Multiply(s))
	rd.RyOrigin = rd.O.Add(rd.RyOrigin.Subtract(rd.O).Multiply(s))
	rd.RxDirection = rd.D.Add(rd.RxDirection.Subtract(rd.D).Multiply(s))
	rd.RyDirection = rd.D.Add(rd.RyDirection.Subtract(rd.D).Multiply(s))
}

// OffsetRayOrigin pushes p along n just far enough that it leaves the
// box pError around it, on the side of n that w points to.
func OffsetRayOrigin(p Point3, pError Vec3, n Normal3, w Vec3) Point3 {
	d := n.Abs().Dot(pError)
	offset := n.ToVec().Multiply(d)
	if w.Dot(n.ToVec()) < 0 {
		offset = offset.Negate()
	}
	po := p.Add(offset)
	round := func(v, off float64) float64 {
		if off > 0 {
			return NextFloatUp(v)
		}
		if off < 0 {
			return NextFloatDown(v)
		}
		return v
	}
	po.X = round(po.X, offset.X)
	po.Y = round(po.Y, offset.Y)
	po.Z = round(po.Z, offset.Z)
	return po
}
