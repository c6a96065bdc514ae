package geometry

import (
	"math"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/interaction"
	"github.com/df07/go-raykernel/pkg/stats"
	"github.com/df07/go-raykernel/pkg/transform"
)

var paraboloidStats = stats.ForShape("paraboloid")

// ParaboloidParams describes the paraboloid z = ZMax (x² + y²) / Radius²
// clipped to [ZMin, ZMax]. Radius is the radius at ZMax.
type ParaboloidParams struct {
	Radius     float64
	ZMin, ZMax float64
	PhiMax     float64 // degrees, zero for a full revolution
}

// Paraboloid is a section of a paraboloid of revolution
type Paraboloid struct {
	shapeBase
	radius     float64
	zMin, zMax float64
	phiMax     float64
}

// NewParaboloid creates a paraboloid placed in the world by objectToWorld
func NewParaboloid(objectToWorld, worldToObject *transform.Transform, reverseOrientation bool, p ParaboloidParams) *Paraboloid {
	return &Paraboloid{
		shapeBase: newShapeBase(objectToWorld, worldToObject, reverseOrientation),
		radius:    p.Radius,
		zMin:      math.Min(p.ZMin, p.ZMax),
		zMax:      math.Max(p.ZMin, p.ZMax),
		phiMax:    sweep(p.PhiMax),
	}
}

// ObjectBound returns the box around the paraboloid
func (pb *Paraboloid) ObjectBound() core.Bounds3 {
	return core.NewBounds3(
		core.NewPoint3(-pb.radius, -pb.radius, pb.zMin),
		core.NewPoint3(pb.radius, pb.radius, pb.zMax))
}

// WorldBound returns the object bound transformed to world space
func (pb *Paraboloid) WorldBound() core.Bounds3 {
	return pb.objectToWorld.Bounds(pb.ObjectBound())
}

// Area integrates the surface of revolution between zMin and zMax
func (pb *Paraboloid) Area() float64 {
	r2 := pb.radius * pb.radius
	k := 4 * pb.zMax / r2
	return (r2 * r2 * pb.phiMax / (12 * pb.zMax * pb.zMax)) *
		(math.Pow(k*pb.zMax+1, 1.5) - math.Pow(k*pb.zMin+1, 1.5))
}

func (pb *Paraboloid) hit(r core.Ray) (objectRay, core.EFloat, core.Point3, core.Vec3, float64, bool) {
	ray := pb.toObject(r)

	// k (x² + y²) - z = 0, k = zMax / r²
	k := core.Exact(pb.zMax).Div(core.Exact(pb.radius).Mul(core.Exact(pb.radius)))
	a := k.Mul(ray.dx.Mul(ray.dx).Add(ray.dy.Mul(ray.dy)))
	b := k.Mul(ray.dx.Mul(ray.ox).Add(ray.dy.Mul(ray.oy))).Scale(2).Sub(ray.dz)
	c := k.Mul(ray.ox.Mul(ray.ox).Add(ray.oy.Mul(ray.oy))).Sub(ray.oz)

	t0, t1, ok := core.Quadratic(a, b, c)
	if !ok {
		return ray, core.EFloat{}, core.Point3{}, core.Vec3{}, 0, false
	}

	for _, tShapeHit := range candidateRoots(t0, t1, ray.TMax) {
		pHit, pError := ray.pointAt(tShapeHit)
		phi := azimuth(pHit.Y, pHit.X)

		if pHit.Z < pb.zMin || pHit.Z > pb.zMax || phi > pb.phiMax {
			continue
		}
		return ray, tShapeHit, pHit, pError, phi, true
	}
	return ray, core.EFloat{}, core.Point3{}, core.Vec3{}, 0, false
}

// Intersect returns the nearest hit and its world space interaction
func (pb *Paraboloid) Intersect(r core.Ray, testAlphaTexture bool) (float64, *interaction.SurfaceInteraction, bool) {
	ray, tShapeHit, pHit, pError, phi, ok := pb.hit(r)
	paraboloidStats.Record(ok)
	if !ok {
		return 0, nil, false
	}

	u := phi / pb.phiMax
	zRange := pb.zMax - pb.zMin
	v := (pHit.Z - pb.zMin) / zRange

	dpdu := core.NewVec3(-pb.phiMax*pHit.Y, pb.phiMax*pHit.X, 0)
	dpdv := core.NewVec3(pHit.X/(2*pHit.Z), pHit.Y/(2*pHit.Z), 1).Multiply(zRange)

	d2Pduu := core.NewVec3(pHit.X, pHit.Y, 0).Multiply(-pb.phiMax * pb.phiMax)
	d2Pduv := core.NewVec3(-pHit.Y/(2*pHit.Z), pHit.X/(2*pHit.Z), 0).Multiply(zRange * pb.phiMax)
	d2Pdvv := core.NewVec3(pHit.X/(4*pHit.Z*pHit.Z), pHit.Y/(4*pHit.Z*pHit.Z), 0).Multiply(-zRange * zRange)
	dndu, dndv := weingarten(dpdu, dpdv, d2Pduu, d2Pduv, d2Pdvv)

	si := interaction.NewSurfaceInteraction(pHit, pError, core.NewPoint2(u, v), ray.D.Negate(),
		dpdu, dpdv, dndu, dndv, ray.Time, pb)
	return tShapeHit.Value() + ray.dt, pb.objectToWorld.SurfaceInteraction(si), true
}

// IntersectP reports whether the ray hits the paraboloid
func (pb *Paraboloid) IntersectP(r core.Ray, testAlphaTexture bool) bool {
	_, _, _, _, _, ok := pb.hit(r)
	paraboloidStats.Record(ok)
	return ok
}
