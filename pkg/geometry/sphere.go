package geometry

import (
	"math"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/interaction"
	"github.com/df07/go-raykernel/pkg/stats"
	"github.com/df07/go-raykernel/pkg/transform"
)

var sphereStats = stats.ForShape("sphere")

// SphereParams describes a sphere centered at the object space origin.
// ZMin and ZMax clip the sphere along z; equal values keep the whole sphere.
// PhiMax is the sweep in degrees, zero meaning a full revolution.
type SphereParams struct {
	Radius     float64
	ZMin, ZMax float64
	PhiMax     float64
}

// Sphere is a possibly partial sphere
type Sphere struct {
	shapeBase
	radius             float64
	zMin, zMax         float64
	thetaMin, thetaMax float64
	phiMax             float64
}

// NewSphere creates a sphere placed in the world by objectToWorld
func NewSphere(objectToWorld, worldToObject *transform.Transform, reverseOrientation bool, p SphereParams) *Sphere {
	r := p.Radius
	zMin, zMax := -r, r
	if p.ZMin != p.ZMax {
		zMin = core.Clamp(math.Min(p.ZMin, p.ZMax), -r, r)
		zMax = core.Clamp(math.Max(p.ZMin, p.ZMax), -r, r)
	}
	return &Sphere{
		shapeBase: newShapeBase(objectToWorld, worldToObject, reverseOrientation),
		radius:    r,
		zMin:      zMin,
		zMax:      zMax,
		thetaMin:  math.Acos(core.Clamp(zMin/r, -1, 1)),
		thetaMax:  math.Acos(core.Clamp(zMax/r, -1, 1)),
		phiMax:    sweep(p.PhiMax),
	}
}

// ObjectBound returns the box around the full sphere's z range
func (s *Sphere) ObjectBound() core.Bounds3 {
	return core.NewBounds3(
		core.NewPoint3(-s.radius, -s.radius, s.zMin),
		core.NewPoint3(s.radius, s.radius, s.zMax))
}

// WorldBound returns the object bound transformed to world space
func (s *Sphere) WorldBound() core.Bounds3 {
	return s.objectToWorld.Bounds(s.ObjectBound())
}

// Area returns phiMax * r * (zMax - zMin)
func (s *Sphere) Area() float64 {
	return s.phiMax * s.radius * (s.zMax - s.zMin)
}

// hit finds the first root that survives clipping
func (s *Sphere) hit(r core.Ray) (objectRay, core.EFloat, core.Point3, float64, bool) {
	ray := s.toObject(r)

	// Quadratic coefficients: at² + bt + c = 0
	a := ray.dx.Mul(ray.dx).Add(ray.dy.Mul(ray.dy)).Add(ray.dz.Mul(ray.dz))
	b := ray.dx.Mul(ray.ox).Add(ray.dy.Mul(ray.oy)).Add(ray.dz.Mul(ray.oz)).Scale(2)
	radius := core.Exact(s.radius)
	c := ray.ox.Mul(ray.ox).Add(ray.oy.Mul(ray.oy)).Add(ray.oz.Mul(ray.oz)).Sub(radius.Mul(radius))

	t0, t1, ok := core.Quadratic(a, b, c)
	if !ok {
		return ray, core.EFloat{}, core.Point3{}, 0, false
	}

	for _, tShapeHit := range candidateRoots(t0, t1, ray.TMax) {
		pHit := ray.At(tShapeHit.Value())
		// Project back onto the surface to remove error from the ray evaluation
		pHit = pHit.Multiply(s.radius / core.Distance(pHit, core.Point3{}))
		if pHit.X == 0 && pHit.Y == 0 {
			pHit.X = 1e-5 * s.radius
		}
		phi := azimuth(pHit.Y, pHit.X)

		if (s.zMin > -s.radius && pHit.Z < s.zMin) || (s.zMax < s.radius && pHit.Z > s.zMax) || phi > s.phiMax {
			continue
		}
		return ray, tShapeHit, pHit, phi, true
	}
	return ray, core.EFloat{}, core.Point3{}, 0, false
}

// Intersect returns the nearest hit and its world space interaction
func (s *Sphere) Intersect(r core.Ray, testAlphaTexture bool) (float64, *interaction.SurfaceInteraction, bool) {
	ray, tShapeHit, pHit, phi, ok := s.hit(r)
	sphereStats.Record(ok)
	if !ok {
		return 0, nil, false
	}

	u := phi / s.phiMax
	cosTheta := core.Clamp(pHit.Z/s.radius, -1, 1)
	theta := math.Acos(cosTheta)
	v := (theta - s.thetaMin) / (s.thetaMax - s.thetaMin)

	zRadius := math.Sqrt(pHit.X*pHit.X + pHit.Y*pHit.Y)
	invZRadius := 1 / zRadius
	cosPhi := pHit.X * invZRadius
	sinPhi := pHit.Y * invZRadius
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	thetaRange := s.thetaMax - s.thetaMin

	dpdu := core.NewVec3(-s.phiMax*pHit.Y, s.phiMax*pHit.X, 0)
	dpdv := core.NewVec3(pHit.Z*cosPhi, pHit.Z*sinPhi, -s.radius*sinTheta).Multiply(thetaRange)

	d2Pduu := core.NewVec3(pHit.X, pHit.Y, 0).Multiply(-s.phiMax * s.phiMax)
	d2Pduv := core.NewVec3(-sinPhi, cosPhi, 0).Multiply(thetaRange * pHit.Z * s.phiMax)
	d2Pdvv := pHit.ToVec().Multiply(-thetaRange * thetaRange)
	dndu, dndv := weingarten(dpdu, dpdv, d2Pduu, d2Pduv, d2Pdvv)

	pError := pHit.Abs().ToVec().Multiply(core.Gamma(5))

	si := interaction.NewSurfaceInteraction(pHit, pError, core.NewPoint2(u, v), ray.D.Negate(),
		dpdu, dpdv, dndu, dndv, ray.Time, s)
	return tShapeHit.Value() + ray.dt, s.objectToWorld.SurfaceInteraction(si), true
}

// IntersectP reports whether the ray hits the sphere
func (s *Sphere) IntersectP(r core.Ray, testAlphaTexture bool) bool {
	_, _, _, _, ok := s.hit(r)
	sphereStats.Record(ok)
	return ok
}
