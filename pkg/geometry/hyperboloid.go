package geometry

import (
	"math"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/interaction"
	"github.com/df07/go-raykernel/pkg/stats"
	"github.com/df07/go-raykernel/pkg/transform"
	"github.com/pkg/errors"
)

var hyperboloidStats = stats.ForShape("hyperboloid")

// HyperboloidParams describes the surface swept by revolving the segment
// P1-P2 around the z axis
type HyperboloidParams struct {
	P1, P2 core.Point3
	PhiMax float64 // degrees, zero for a full revolution
}

// Hyperboloid is a surface of revolution of a line segment: a hyperboloid of
// one sheet, or a cylinder or cone in the degenerate cases.
// Its implicit form is x² + y² = kzz z² + kz z + k0.
type Hyperboloid struct {
	shapeBase
	p1, p2      core.Point3
	zMin, zMax  float64
	phiMax      float64
	rMax        float64
	kzz, kz, k0 float64
}

// NewHyperboloid creates a hyperboloid placed in the world by objectToWorld.
// A segment with both ends at the same height sweeps an annulus; use a Disk for that.
func NewHyperboloid(objectToWorld, worldToObject *transform.Transform, reverseOrientation bool, p HyperboloidParams) (*Hyperboloid, error) {
	p1, p2 := p.P1, p.P2
	d := p2.Subtract(p1)
	if d.Z == 0 {
		return nil, errors.Errorf("hyperboloid: segment %v-%v is perpendicular to the z axis", p1, p2)
	}

	// Squared distance from the axis along the segment, as a function of z
	rr := p1.X*p1.X + p1.Y*p1.Y
	rd := p1.X*d.X + p1.Y*d.Y
	dd := d.X*d.X + d.Y*d.Y
	invDz := 1 / d.Z

	return &Hyperboloid{
		shapeBase: newShapeBase(objectToWorld, worldToObject, reverseOrientation),
		p1:        p1,
		p2:        p2,
		zMin:      math.Min(p1.Z, p2.Z),
		zMax:      math.Max(p1.Z, p2.Z),
		phiMax:    sweep(p.PhiMax),
		rMax:      math.Max(math.Hypot(p1.X, p1.Y), math.Hypot(p2.X, p2.Y)),
		kzz:       dd * invDz * invDz,
		kz:        2*rd*invDz - 2*dd*p1.Z*invDz*invDz,
		k0:        rr - 2*rd*p1.Z*invDz + dd*p1.Z*p1.Z*invDz*invDz,
	}, nil
}

// ObjectBound returns the box around the hyperboloid
func (h *Hyperboloid) ObjectBound() core.Bounds3 {
	return core.NewBounds3(
		core.NewPoint3(-h.rMax, -h.rMax, h.zMin),
		core.NewPoint3(h.rMax, h.rMax, h.zMax))
}

// WorldBound returns the object bound transformed to world space
func (h *Hyperboloid) WorldBound() core.Bounds3 {
	return h.objectToWorld.Bounds(h.ObjectBound())
}

// Area integrates |dpdu x dpdv| over the parametric domain in closed form.
// The integrand is independent of u and is the square root of a quadratic in v.
func (h *Hyperboloid) Area() float64 {
	d := h.p2.Subtract(h.p1)
	a0 := core.NewVec3(-h.p1.Y, h.p1.X, 0).Cross(d)
	a1 := core.NewVec3(-d.Y, d.X, 0).Cross(d)

	// |a0 + v a1|² = qa v² + qb v + qc
	qa := a1.Dot(a1)
	qb := 2 * a0.Dot(a1)
	qc := a0.Dot(a0)
	if qa == 0 {
		return h.phiMax * math.Sqrt(qc)
	}

	disc := 4*qa*qc - qb*qb
	antiderivative := func(v float64) float64 {
		q := math.Sqrt(math.Max(0, qa*v*v+qb*v+qc))
		f := (2*qa*v + qb) * q / (4 * qa)
		if disc > 1e-12*math.Max(1, qb*qb) {
			f += disc / (8 * qa * math.Sqrt(qa)) * math.Log(math.Abs(2*math.Sqrt(qa)*q+2*qa*v+qb))
		}
		return f
	}
	return h.phiMax * (antiderivative(1) - antiderivative(0))
}

func (h *Hyperboloid) hit(r core.Ray) (objectRay, core.EFloat, core.Point3, core.Vec3, float64, float64, bool) {
	ray := h.toObject(r)

	kzz, kz, k0 := core.Exact(h.kzz), core.Exact(h.kz), core.Exact(h.k0)
	a := ray.dx.Mul(ray.dx).Add(ray.dy.Mul(ray.dy)).Sub(kzz.Mul(ray.dz.Mul(ray.dz)))
	b := ray.dx.Mul(ray.ox).Add(ray.dy.Mul(ray.oy)).Sub(kzz.Mul(ray.dz.Mul(ray.oz))).Scale(2).
		Sub(kz.Mul(ray.dz))
	c := ray.ox.Mul(ray.ox).Add(ray.oy.Mul(ray.oy)).Sub(kzz.Mul(ray.oz.Mul(ray.oz))).
		Sub(kz.Mul(ray.oz)).Sub(k0)

	t0, t1, ok := core.Quadratic(a, b, c)
	if !ok {
		return ray, core.EFloat{}, core.Point3{}, core.Vec3{}, 0, 0, false
	}

	for _, tShapeHit := range candidateRoots(t0, t1, ray.TMax) {
		pHit, pError := ray.pointAt(tShapeHit)
		v := (pHit.Z - h.p1.Z) / (h.p2.Z - h.p1.Z)
		pr := core.LerpPoint3(v, h.p1, h.p2)
		phi := azimuth(pr.X*pHit.Y-pHit.X*pr.Y, pHit.X*pr.X+pHit.Y*pr.Y)

		if pHit.Z < h.zMin || pHit.Z > h.zMax || phi > h.phiMax {
			continue
		}
		return ray, tShapeHit, pHit, pError, phi, v, true
	}
	return ray, core.EFloat{}, core.Point3{}, core.Vec3{}, 0, 0, false
}

// Intersect returns the nearest hit and its world space interaction
func (h *Hyperboloid) Intersect(r core.Ray, testAlphaTexture bool) (float64, *interaction.SurfaceInteraction, bool) {
	ray, tShapeHit, pHit, pError, phi, v, ok := h.hit(r)
	hyperboloidStats.Record(ok)
	if !ok {
		return 0, nil, false
	}

	u := phi / h.phiMax
	sinPhi, cosPhi := math.Sincos(phi)
	d := h.p2.Subtract(h.p1)

	dpdu := core.NewVec3(-h.phiMax*pHit.Y, h.phiMax*pHit.X, 0)
	dpdv := core.NewVec3(d.X*cosPhi-d.Y*sinPhi, d.X*sinPhi+d.Y*cosPhi, d.Z)

	d2Pduu := core.NewVec3(pHit.X, pHit.Y, 0).Multiply(-h.phiMax * h.phiMax)
	d2Pduv := core.NewVec3(-dpdv.Y, dpdv.X, 0).Multiply(h.phiMax)
	dndu, dndv := weingarten(dpdu, dpdv, d2Pduu, d2Pduv, core.Vec3{})

	si := interaction.NewSurfaceInteraction(pHit, pError, core.NewPoint2(u, v), ray.D.Negate(),
		dpdu, dpdv, dndu, dndv, ray.Time, h)
	return tShapeHit.Value() + ray.dt, h.objectToWorld.SurfaceInteraction(si), true
}

// IntersectP reports whether the ray hits the hyperboloid
func (h *Hyperboloid) IntersectP(r core.Ray, testAlphaTexture bool) bool {
	_, _, _, _, _, _, ok := h.hit(r)
	hyperboloidStats.Record(ok)
	return ok
}
