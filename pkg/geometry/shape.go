// Package geometry implements the shapes rays can hit.
package geometry

import (
	"math"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/interaction"
	"github.com/df07/go-raykernel/pkg/transform"
)

// Shape is a surface that can be intersected by rays.
//
// Shapes hold no per-call state, so one shape may be intersected from many
// goroutines at once. Intersect never modifies the ray: a caller that accepts
// a hit shrinks its own ray.TMax to the returned distance.
type Shape interface {
	// ObjectBound returns the bounds in the shape's own coordinate system
	ObjectBound() core.Bounds3
	// WorldBound returns the bounds in world space
	WorldBound() core.Bounds3
	// Intersect returns the parametric distance along ray of the first hit in
	// (0, ray.TMax] and the world space interaction there
	Intersect(ray core.Ray, testAlphaTexture bool) (float64, *interaction.SurfaceInteraction, bool)
	// IntersectP reports whether the ray hits the shape in (0, ray.TMax]
	IntersectP(ray core.Ray, testAlphaTexture bool) bool
	// Area returns the surface area in object space
	Area() float64

	ReverseOrientation() bool
	TransformSwapsHandedness() bool
}

// shapeBase holds what every shape shares. The transforms are borrowed:
// whoever builds the shape keeps them alive for as long as the shape.
type shapeBase struct {
	objectToWorld            *transform.Transform
	worldToObject            *transform.Transform
	reverseOrientation       bool
	transformSwapsHandedness bool
}

func newShapeBase(objectToWorld, worldToObject *transform.Transform, reverseOrientation bool) shapeBase {
	return shapeBase{
		objectToWorld:            objectToWorld,
		worldToObject:            worldToObject,
		reverseOrientation:       reverseOrientation,
		transformSwapsHandedness: objectToWorld.SwapsHandedness(),
	}
}

// ReverseOrientation reports whether the surface normal is flipped
func (s *shapeBase) ReverseOrientation() bool { return s.reverseOrientation }

// TransformSwapsHandedness reports whether the object-to-world transform mirrors space
func (s *shapeBase) TransformSwapsHandedness() bool { return s.transformSwapsHandedness }

// objectRay carries a ray in object space with error-tracked components.
// Its origin sits dt further along the ray than the caller's origin and its
// TMax is shortened to match, so t + dt is the caller's parameter.
type objectRay struct {
	core.Ray
	ox, oy, oz core.EFloat
	dx, dy, dz core.EFloat
	dt         float64
}

func (s *shapeBase) toObject(r core.Ray) objectRay {
	ray, oErr, dErr := s.worldToObject.RayWithError(r)
	dt := transform.OriginShift(ray.D, oErr)
	ray.TMax -= dt
	return objectRay{
		Ray: ray,
		dt:  dt,
		ox:  core.NewEFloat(ray.O.X, oErr.X),
		oy:  core.NewEFloat(ray.O.Y, oErr.Y),
		oz:  core.NewEFloat(ray.O.Z, oErr.Z),
		dx:  core.NewEFloat(ray.D.X, dErr.X),
		dy:  core.NewEFloat(ray.D.Y, dErr.Y),
		dz:  core.NewEFloat(ray.D.Z, dErr.Z),
	}
}

// pointAt evaluates the ray at t and returns the error bound of each coordinate
func (r objectRay) pointAt(t core.EFloat) (core.Point3, core.Vec3) {
	px := r.ox.Add(t.Mul(r.dx))
	py := r.oy.Add(t.Mul(r.dy))
	pz := r.oz.Add(t.Mul(r.dz))
	return core.Point3{X: px.Value(), Y: py.Value(), Z: pz.Value()},
		core.Vec3{X: px.AbsoluteError(), Y: py.AbsoluteError(), Z: pz.AbsoluteError()}
}

// candidateRoots returns the quadric roots worth testing against the clipping
// parameters, nearest first
func candidateRoots(t0, t1 core.EFloat, tMax float64) []core.EFloat {
	if t0.UpperBound() > tMax || t1.LowerBound() <= 0 {
		return nil
	}
	if t0.LowerBound() <= 0 {
		if t1.UpperBound() > tMax {
			return nil
		}
		return []core.EFloat{t1}
	}
	if t1.UpperBound() > tMax {
		return []core.EFloat{t0}
	}
	return []core.EFloat{t0, t1}
}

// azimuth returns atan2(y, x) mapped to [0, 2pi)
func azimuth(y, x float64) float64 {
	phi := math.Atan2(y, x)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return phi
}

// weingarten derives dn/du and dn/dv from the first and second
// fundamental forms of the surface
func weingarten(dpdu, dpdv, d2Pduu, d2Pduv, d2Pdvv core.Vec3) (core.Normal3, core.Normal3) {
	E := dpdu.Dot(dpdu)
	F := dpdu.Dot(dpdv)
	G := dpdv.Dot(dpdv)
	N := dpdu.Cross(dpdv).Normalize()
	e := N.Dot(d2Pduu)
	f := N.Dot(d2Pduv)
	g := N.Dot(d2Pdvv)

	invEGF2 := 1 / (E*G - F*F)
	dndu := dpdu.Multiply((f*F - e*G) * invEGF2).Add(dpdv.Multiply((e*F - f*E) * invEGF2))
	dndv := dpdu.Multiply((g*F - f*G) * invEGF2).Add(dpdv.Multiply((f*F - g*E) * invEGF2))
	return dndu.ToNormal(), dndv.ToNormal()
}

// sweep converts a sweep angle in degrees to radians in [0, 2pi].
// Zero selects the full sweep.
func sweep(phiMaxDegrees float64) float64 {
	if phiMaxDegrees == 0 {
		phiMaxDegrees = 360
	}
	return core.Radians(core.Clamp(phiMaxDegrees, 0, 360))
}
