package geometry

import (
	"math"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/interaction"
	"github.com/df07/go-raykernel/pkg/stats"
	"github.com/df07/go-raykernel/pkg/transform"
)

var cylinderStats = stats.ForShape("cylinder")

// CylinderParams describes an open cylinder around the z axis
type CylinderParams struct {
	Radius     float64
	ZMin, ZMax float64
	PhiMax     float64 // degrees, zero for a full revolution
}

// Cylinder is an open cylinder with no end caps
type Cylinder struct {
	shapeBase
	radius     float64
	zMin, zMax float64
	phiMax     float64
}

// NewCylinder creates a cylinder placed in the world by objectToWorld
func NewCylinder(objectToWorld, worldToObject *transform.Transform, reverseOrientation bool, p CylinderParams) *Cylinder {
	return &Cylinder{
		shapeBase: newShapeBase(objectToWorld, worldToObject, reverseOrientation),
		radius:    p.Radius,
		zMin:      math.Min(p.ZMin, p.ZMax),
		zMax:      math.Max(p.ZMin, p.ZMax),
		phiMax:    sweep(p.PhiMax),
	}
}

// ObjectBound returns the box around the cylinder
func (c *Cylinder) ObjectBound() core.Bounds3 {
	return core.NewBounds3(
		core.NewPoint3(-c.radius, -c.radius, c.zMin),
		core.NewPoint3(c.radius, c.radius, c.zMax))
}

// WorldBound returns the object bound transformed to world space
func (c *Cylinder) WorldBound() core.Bounds3 {
	return c.objectToWorld.Bounds(c.ObjectBound())
}

// Area returns (zMax - zMin) * r * phiMax
func (c *Cylinder) Area() float64 {
	return (c.zMax - c.zMin) * c.radius * c.phiMax
}

func (c *Cylinder) hit(r core.Ray) (objectRay, core.EFloat, core.Point3, float64, bool) {
	ray := c.toObject(r)

	// The z component plays no part in the implicit equation x² + y² = r²
	a := ray.dx.Mul(ray.dx).Add(ray.dy.Mul(ray.dy))
	b := ray.dx.Mul(ray.ox).Add(ray.dy.Mul(ray.oy)).Scale(2)
	radius := core.Exact(c.radius)
	cc := ray.ox.Mul(ray.ox).Add(ray.oy.Mul(ray.oy)).Sub(radius.Mul(radius))

	t0, t1, ok := core.Quadratic(a, b, cc)
	if !ok {
		return ray, core.EFloat{}, core.Point3{}, 0, false
	}

	for _, tShapeHit := range candidateRoots(t0, t1, ray.TMax) {
		pHit := ray.At(tShapeHit.Value())
		hitRad := math.Sqrt(pHit.X*pHit.X + pHit.Y*pHit.Y)
		pHit.X *= c.radius / hitRad
		pHit.Y *= c.radius / hitRad
		phi := azimuth(pHit.Y, pHit.X)

		if pHit.Z < c.zMin || pHit.Z > c.zMax || phi > c.phiMax {
			continue
		}
		return ray, tShapeHit, pHit, phi, true
	}
	return ray, core.EFloat{}, core.Point3{}, 0, false
}

// Intersect returns the nearest hit and its world space interaction
func (c *Cylinder) Intersect(r core.Ray, testAlphaTexture bool) (float64, *interaction.SurfaceInteraction, bool) {
	ray, tShapeHit, pHit, phi, ok := c.hit(r)
	cylinderStats.Record(ok)
	if !ok {
		return 0, nil, false
	}

	u := phi / c.phiMax
	v := (pHit.Z - c.zMin) / (c.zMax - c.zMin)

	dpdu := core.NewVec3(-c.phiMax*pHit.Y, c.phiMax*pHit.X, 0)
	dpdv := core.NewVec3(0, 0, c.zMax-c.zMin)

	d2Pduu := core.NewVec3(pHit.X, pHit.Y, 0).Multiply(-c.phiMax * c.phiMax)
	dndu, dndv := weingarten(dpdu, dpdv, d2Pduu, core.Vec3{}, core.Vec3{})

	pError := core.NewVec3(pHit.X, pHit.Y, 0).Abs().Multiply(core.Gamma(3))

	si := interaction.NewSurfaceInteraction(pHit, pError, core.NewPoint2(u, v), ray.D.Negate(),
		dpdu, dpdv, dndu, dndv, ray.Time, c)
	return tShapeHit.Value() + ray.dt, c.objectToWorld.SurfaceInteraction(si), true
}

// IntersectP reports whether the ray hits the cylinder
func (c *Cylinder) IntersectP(r core.Ray, testAlphaTexture bool) bool {
	_, _, _, _, ok := c.hit(r)
	cylinderStats.Record(ok)
	return ok
}
