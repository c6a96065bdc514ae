package geometry

import (
	"math"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/interaction"
	"github.com/df07/go-raykernel/pkg/stats"
	"github.com/df07/go-raykernel/pkg/transform"
)

var coneStats = stats.ForShape("cone")

// ConeParams describes a cone with its base on z=0 and apex at z=Height
type ConeParams struct {
	Height float64
	Radius float64
	PhiMax float64 // degrees, zero for a full revolution
}

// Cone is an open cone without a base cap
type Cone struct {
	shapeBase
	height, radius float64
	phiMax         float64
}

// NewCone creates a cone placed in the world by objectToWorld
func NewCone(objectToWorld, worldToObject *transform.Transform, reverseOrientation bool, p ConeParams) *Cone {
	return &Cone{
		shapeBase: newShapeBase(objectToWorld, worldToObject, reverseOrientation),
		height:    p.Height,
		radius:    p.Radius,
		phiMax:    sweep(p.PhiMax),
	}
}

// ObjectBound returns the box around the cone
func (c *Cone) ObjectBound() core.Bounds3 {
	return core.NewBounds3(
		core.NewPoint3(-c.radius, -c.radius, 0),
		core.NewPoint3(c.radius, c.radius, c.height))
}

// WorldBound returns the object bound transformed to world space
func (c *Cone) WorldBound() core.Bounds3 {
	return c.objectToWorld.Bounds(c.ObjectBound())
}

// Area returns r * sqrt(h² + r²) * phiMax / 2
func (c *Cone) Area() float64 {
	return c.radius * math.Sqrt(c.height*c.height+c.radius*c.radius) * c.phiMax / 2
}

func (c *Cone) hit(r core.Ray) (objectRay, core.EFloat, core.Point3, core.Vec3, float64, bool) {
	ray := c.toObject(r)

	// x² + y² = k (z - h)², k = (r/h)²
	k := core.Exact(c.radius).Div(core.Exact(c.height))
	k = k.Mul(k)
	h := core.Exact(c.height)
	ozh := ray.oz.Sub(h)

	a := ray.dx.Mul(ray.dx).Add(ray.dy.Mul(ray.dy)).Sub(k.Mul(ray.dz).Mul(ray.dz))
	b := ray.dx.Mul(ray.ox).Add(ray.dy.Mul(ray.oy)).Sub(k.Mul(ray.dz).Mul(ozh)).Scale(2)
	cc := ray.ox.Mul(ray.ox).Add(ray.oy.Mul(ray.oy)).Sub(k.Mul(ozh).Mul(ozh))

	t0, t1, ok := core.Quadratic(a, b, cc)
	if !ok {
		return ray, core.EFloat{}, core.Point3{}, core.Vec3{}, 0, false
	}

	for _, tShapeHit := range candidateRoots(t0, t1, ray.TMax) {
		pHit, pError := ray.pointAt(tShapeHit)
		phi := azimuth(pHit.Y, pHit.X)

		if pHit.Z < 0 || pHit.Z > c.height || phi > c.phiMax {
			continue
		}
		return ray, tShapeHit, pHit, pError, phi, true
	}
	return ray, core.EFloat{}, core.Point3{}, core.Vec3{}, 0, false
}

// Intersect returns the nearest hit and its world space interaction
func (c *Cone) Intersect(r core.Ray, testAlphaTexture bool) (float64, *interaction.SurfaceInteraction, bool) {
	ray, tShapeHit, pHit, pError, phi, ok := c.hit(r)
	coneStats.Record(ok)
	if !ok {
		return 0, nil, false
	}

	u := phi / c.phiMax
	v := pHit.Z / c.height

	dpdu := core.NewVec3(-c.phiMax*pHit.Y, c.phiMax*pHit.X, 0)
	dpdv := core.NewVec3(-pHit.X/(1-v), -pHit.Y/(1-v), c.height)

	d2Pduu := core.NewVec3(pHit.X, pHit.Y, 0).Multiply(-c.phiMax * c.phiMax)
	d2Pduv := core.NewVec3(pHit.Y, -pHit.X, 0).Multiply(c.phiMax / (1 - v))
	dndu, dndv := weingarten(dpdu, dpdv, d2Pduu, d2Pduv, core.Vec3{})

	si := interaction.NewSurfaceInteraction(pHit, pError, core.NewPoint2(u, v), ray.D.Negate(),
		dpdu, dpdv, dndu, dndv, ray.Time, c)
	return tShapeHit.Value() + ray.dt, c.objectToWorld.SurfaceInteraction(si), true
}

// IntersectP reports whether the ray hits the cone
func (c *Cone) IntersectP(r core.Ray, testAlphaTexture bool) bool {
	_, _, _, _, _, ok := c.hit(r)
	coneStats.Record(ok)
	return ok
}
