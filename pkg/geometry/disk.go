package geometry

import (
	"math"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/interaction"
	"github.com/df07/go-raykernel/pkg/stats"
	"github.com/df07/go-raykernel/pkg/transform"
)

var diskStats = stats.ForShape("disk")

// DiskParams describes a disk or annulus in the plane z = Height
type DiskParams struct {
	Height      float64
	Radius      float64
	InnerRadius float64
	PhiMax      float64 // degrees, zero for a full revolution
}

// Disk is a flat disk, optionally with a hole in the middle
type Disk struct {
	shapeBase
	height              float64
	radius, innerRadius float64
	phiMax              float64
}

// NewDisk creates a disk placed in the world by objectToWorld
func NewDisk(objectToWorld, worldToObject *transform.Transform, reverseOrientation bool, p DiskParams) *Disk {
	return &Disk{
		shapeBase:   newShapeBase(objectToWorld, worldToObject, reverseOrientation),
		height:      p.Height,
		radius:      p.Radius,
		innerRadius: p.InnerRadius,
		phiMax:      sweep(p.PhiMax),
	}
}

// ObjectBound returns the flat box around the disk
func (d *Disk) ObjectBound() core.Bounds3 {
	return core.NewBounds3(
		core.NewPoint3(-d.radius, -d.radius, d.height),
		core.NewPoint3(d.radius, d.radius, d.height))
}

// WorldBound returns the object bound transformed to world space
func (d *Disk) WorldBound() core.Bounds3 {
	return d.objectToWorld.Bounds(d.ObjectBound())
}

// Area returns phiMax / 2 * (r² - ri²)
func (d *Disk) Area() float64 {
	return d.phiMax * 0.5 * (d.radius*d.radius - d.innerRadius*d.innerRadius)
}

func (d *Disk) hit(r core.Ray) (objectRay, float64, core.Point3, float64, float64, bool) {
	ray := d.toObject(r)

	// A ray parallel to the plane never reaches it
	if ray.D.Z == 0 {
		return ray, 0, core.Point3{}, 0, 0, false
	}
	tShapeHit := (d.height - ray.O.Z) / ray.D.Z
	if tShapeHit <= 0 || tShapeHit > ray.TMax {
		return ray, 0, core.Point3{}, 0, 0, false
	}

	pHit := ray.At(tShapeHit)
	dist2 := pHit.X*pHit.X + pHit.Y*pHit.Y
	if dist2 > d.radius*d.radius || dist2 < d.innerRadius*d.innerRadius {
		return ray, 0, core.Point3{}, 0, 0, false
	}

	phi := azimuth(pHit.Y, pHit.X)
	if phi > d.phiMax {
		return ray, 0, core.Point3{}, 0, 0, false
	}
	return ray, tShapeHit, pHit, phi, dist2, true
}

// Intersect returns the hit and its world space interaction
func (d *Disk) Intersect(r core.Ray, testAlphaTexture bool) (float64, *interaction.SurfaceInteraction, bool) {
	ray, tShapeHit, pHit, phi, dist2, ok := d.hit(r)
	diskStats.Record(ok)
	if !ok {
		return 0, nil, false
	}

	u := phi / d.phiMax
	rHit := math.Sqrt(dist2)
	v := 1 - (rHit-d.innerRadius)/(d.radius-d.innerRadius)

	dpdu := core.NewVec3(-d.phiMax*pHit.Y, d.phiMax*pHit.X, 0)
	dpdv := core.NewVec3(pHit.X, pHit.Y, 0).Multiply((d.innerRadius - d.radius) / rHit)

	// The hit lies exactly on the plane, so it carries no error
	pHit.Z = d.height

	si := interaction.NewSurfaceInteraction(pHit, core.Vec3{}, core.NewPoint2(u, v), ray.D.Negate(),
		dpdu, dpdv, core.Normal3{}, core.Normal3{}, ray.Time, d)
	return tShapeHit + ray.dt, d.objectToWorld.SurfaceInteraction(si), true
}

// IntersectP reports whether the ray hits the disk
func (d *Disk) IntersectP(r core.Ray, testAlphaTexture bool) bool {
	_, _, _, _, _, ok := d.hit(r)
	diskStats.Record(ok)
	return ok
}
