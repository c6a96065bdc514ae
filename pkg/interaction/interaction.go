// Package interaction records where a ray met a surface.
package interaction

import (
	"math"

	"github.com/df07/go-raykernel/pkg/core"
)

// Orienter is the part of a shape an interaction needs to orient its normals.
// The interaction holds it without owning the shape.
type Orienter interface {
	ReverseOrientation() bool
	TransformSwapsHandedness() bool
}

// MediumInterface names the media on either side of a surface
type MediumInterface struct {
	Inside  core.Medium
	Outside core.Medium
}

// Interaction is a point where light meets geometry
type Interaction struct {
	P               core.Point3
	Time            float64
	PError          core.Vec3 // conservative absolute error in P
	Wo              core.Vec3 // outgoing direction, normalized
	N               core.Normal3
	MediumInterface *MediumInterface
}

// IsSurfaceInteraction reports whether the interaction lies on a surface
func (i *Interaction) IsSurfaceInteraction() bool {
	return !i.N.IsZero()
}

// SpawnRay starts a ray at the interaction heading in direction d.
// The origin is offset so the ray cannot re-hit the surface it leaves.
func (i *Interaction) SpawnRay(d core.Vec3) core.Ray {
	o := core.OffsetRayOrigin(i.P, i.PError, i.N, d)
	return core.Ray{O: o, D: d, TMax: math.Inf(1), Time: i.Time, Medium: i.mediumToward(d)}
}

// SpawnRayTo starts a ray toward p that stops just short of it
func (i *Interaction) SpawnRayTo(p core.Point3) core.Ray {
	o := core.OffsetRayOrigin(i.P, i.PError, i.N, p.Subtract(i.P))
	d := p.Subtract(o)
	return core.Ray{O: o, D: d, TMax: 1 - core.ShadowEpsilon, Time: i.Time, Medium: i.mediumToward(d)}
}

func (i *Interaction) mediumToward(w core.Vec3) core.Medium {
	if i.MediumInterface == nil {
		return nil
	}
	if i.N.Dot(w) > 0 {
		return i.MediumInterface.Outside
	}
	return i.MediumInterface.Inside
}

// Shading is the possibly perturbed frame used for shading
type Shading struct {
	N          core.Normal3
	Dpdu, Dpdv core.Vec3
	Dndu, Dndv core.Normal3
}

// SurfaceInteraction is a ray hit on a shape's surface along with the
// local differential geometry at that point
type SurfaceInteraction struct {
	Interaction
	UV         core.Point2
	Dpdu, Dpdv core.Vec3
	Dndu, Dndv core.Normal3
	Shape      Orienter
	Shading    Shading
	FaceIndex  int
}

// NewSurfaceInteraction builds an interaction from the parametric derivatives at p.
// The normal is dpdu x dpdv, flipped when the shape is inside out or its
// transform changes handedness, but not both.
func NewSurfaceInteraction(p core.Point3, pError core.Vec3, uv core.Point2, wo core.Vec3,
	dpdu, dpdv core.Vec3, dndu, dndv core.Normal3, time float64, shape Orienter) *SurfaceInteraction {

	n := dpdu.Cross(dpdv).Normalize().ToNormal()
	si := &SurfaceInteraction{
		Interaction: Interaction{
			P:      p,
			Time:   time,
			PError: pError,
			Wo:     wo,
			N:      n,
		},
		UV:    uv,
		Dpdu:  dpdu,
		Dpdv:  dpdv,
		Dndu:  dndu,
		Dndv:  dndv,
		Shape: shape,
		Shading: Shading{
			N:    n,
			Dpdu: dpdu,
			Dpdv: dpdv,
			Dndu: dndu,
			Dndv: dndv,
		},
	}

	if flipsOrientation(shape) {
		si.N = si.N.Negate()
		si.Shading.N = si.Shading.N.Negate()
	}
	return si
}

// SetShadingGeometry installs a shading frame. When orientationIsAuthoritative
// is set the geometric normal is turned toward the new shading normal,
// otherwise the shading normal is turned toward the geometric one.
func (si *SurfaceInteraction) SetShadingGeometry(dpdus, dpdvs core.Vec3, dndus, dndvs core.Normal3,
	orientationIsAuthoritative bool) {

	si.Shading.N = dpdus.Cross(dpdvs).Normalize().ToNormal()
	if flipsOrientation(si.Shape) {
		si.Shading.N = si.Shading.N.Negate()
	}
	if orientationIsAuthoritative {
		si.N = si.N.FaceForwardNormal(si.Shading.N)
	} else {
		si.Shading.N = si.Shading.N.FaceForwardNormal(si.N)
	}

	si.Shading.Dpdu = dpdus
	si.Shading.Dpdv = dpdvs
	si.Shading.Dndu = dndus
	si.Shading.Dndv = dndvs
}

func flipsOrientation(shape Orienter) bool {
	if shape == nil {
		return false
	}
	return shape.ReverseOrientation() != shape.TransformSwapsHandedness()
}
