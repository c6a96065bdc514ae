package geometry

import (
	"math"
	"math/big"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/interaction"
	"github.com/df07/go-raykernel/pkg/stats"
)

var triangleStats = stats.ForShape("triangle")

// Triangle is one face of a TriangleMesh
type Triangle struct {
	shapeBase
	mesh  *TriangleMesh
	index int
}

func (t *Triangle) vertices() (int, int, int) {
	v := t.mesh.vertexIndices[3*t.index:]
	return v[0], v[1], v[2]
}

func (t *Triangle) positions() (core.Point3, core.Point3, core.Point3) {
	i0, i1, i2 := t.vertices()
	return t.mesh.p[i0], t.mesh.p[i1], t.mesh.p[i2]
}

// uvs returns the vertex parameterization, (0,0), (1,0), (1,1) when the mesh has none
func (t *Triangle) uvs() [3]core.Point2 {
	if t.mesh.uv == nil {
		return [3]core.Point2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	}
	i0, i1, i2 := t.vertices()
	return [3]core.Point2{t.mesh.uv[i0], t.mesh.uv[i1], t.mesh.uv[i2]}
}

// ObjectBound returns the bounds of the vertices mapped back to object space
func (t *Triangle) ObjectBound() core.Bounds3 {
	p0, p1, p2 := t.positions()
	return core.NewBounds3FromPoints(
		t.worldToObject.Point(p0),
		t.worldToObject.Point(p1),
		t.worldToObject.Point(p2))
}

// WorldBound returns the bounds of the world space vertices
func (t *Triangle) WorldBound() core.Bounds3 {
	p0, p1, p2 := t.positions()
	return core.NewBounds3FromPoints(p0, p1, p2)
}

// Area returns the world space area of the triangle
func (t *Triangle) Area() float64 {
	p0, p1, p2 := t.positions()
	return 0.5 * p1.Subtract(p0).Cross(p2.Subtract(p0)).Length()
}

// triangleHit is a ray-triangle hit in barycentric form
type triangleHit struct {
	b0, b1, b2 float64
	t          float64
}

// hit runs the watertight ray-triangle test. The ray is mapped to +z by a
// permutation and shear so the edge tests never miss a point on a shared edge.
func (t *Triangle) hit(ray core.Ray) (triangleHit, bool) {
	p0, p1, p2 := t.positions()

	// Translate vertices based on ray origin
	p0t := p0.Subtract(ray.O)
	p1t := p1.Subtract(ray.O)
	p2t := p2.Subtract(ray.O)

	// Permute components so the largest direction component is z
	kz := ray.D.Abs().MaxDimension()
	kx := kz + 1
	if kx == 3 {
		kx = 0
	}
	ky := kx + 1
	if ky == 3 {
		ky = 0
	}
	d := ray.D.Permute(kx, ky, kz)
	p0t = p0t.Permute(kx, ky, kz)
	p1t = p1t.Permute(kx, ky, kz)
	p2t = p2t.Permute(kx, ky, kz)

	// Shear so the ray direction becomes +z; z is scaled only after the edge tests
	sx := -d.X / d.Z
	sy := -d.Y / d.Z
	sz := 1 / d.Z
	p0t.X += sx * p0t.Z
	p0t.Y += sy * p0t.Z
	p1t.X += sx * p1t.Z
	p1t.Y += sy * p1t.Z
	p2t.X += sx * p2t.Z
	p2t.Y += sy * p2t.Z

	// Edge function coefficients
	e0 := p1t.X*p2t.Y - p1t.Y*p2t.X
	e1 := p2t.X*p0t.Y - p2t.Y*p0t.X
	e2 := p0t.X*p1t.Y - p0t.Y*p1t.X

	// A zero edge value may be rounding; settle it exactly
	if e0 == 0 || e1 == 0 || e2 == 0 {
		e0 = exactEdge(p1t.X, p2t.Y, p1t.Y, p2t.X)
		e1 = exactEdge(p2t.X, p0t.Y, p2t.Y, p0t.X)
		e2 = exactEdge(p0t.X, p1t.Y, p0t.Y, p1t.X)
	}

	if (e0 < 0 || e1 < 0 || e2 < 0) && (e0 > 0 || e1 > 0 || e2 > 0) {
		return triangleHit{}, false
	}
	det := e0 + e1 + e2
	if det == 0 {
		return triangleHit{}, false
	}

	// Scaled hit distance, range checked against tMax before dividing
	p0t.Z *= sz
	p1t.Z *= sz
	p2t.Z *= sz
	tScaled := e0*p0t.Z + e1*p1t.Z + e2*p2t.Z
	if det < 0 && (tScaled >= 0 || tScaled < ray.TMax*det) {
		return triangleHit{}, false
	}
	if det > 0 && (tScaled <= 0 || tScaled > ray.TMax*det) {
		return triangleHit{}, false
	}

	invDet := 1 / det
	h := triangleHit{b0: e0 * invDet, b1: e1 * invDet, b2: e2 * invDet, t: tScaled * invDet}

	// Make sure t is conservatively greater than zero
	maxZt := core.NewVec3(p0t.Z, p1t.Z, p2t.Z).Abs().MaxComponent()
	deltaZ := core.Gamma(3) * maxZt

	maxXt := core.NewVec3(p0t.X, p1t.X, p2t.X).Abs().MaxComponent()
	maxYt := core.NewVec3(p0t.Y, p1t.Y, p2t.Y).Abs().MaxComponent()
	deltaX := core.Gamma(5) * (maxXt + maxZt)
	deltaY := core.Gamma(5) * (maxYt + maxZt)

	deltaE := 2 * (core.Gamma(2)*maxXt*maxYt + deltaY*maxXt + deltaX*maxYt)
	maxE := core.NewVec3(e0, e1, e2).Abs().MaxComponent()

	deltaT := 3 * (core.Gamma(3)*maxE*maxZt + deltaE*maxZt + deltaZ*maxE) * math.Abs(invDet)
	if h.t <= deltaT {
		return triangleHit{}, false
	}
	return h, true
}

// exactEdge computes a*b - c*d exactly and rounds the result once
func exactEdge(a, b, c, d float64) float64 {
	ab := new(big.Rat).Mul(new(big.Rat).SetFloat64(a), new(big.Rat).SetFloat64(b))
	cd := new(big.Rat).Mul(new(big.Rat).SetFloat64(c), new(big.Rat).SetFloat64(d))
	f, _ := ab.Sub(ab, cd).Float64()
	return f
}

// surface builds the object-independent differential geometry at a hit
func (t *Triangle) surface(ray core.Ray, h triangleHit) *interaction.SurfaceInteraction {
	p0, p1, p2 := t.positions()
	uv := t.uvs()

	// Partial derivatives from the uv parameterization
	duv02 := uv[0].Subtract(uv[2])
	duv12 := uv[1].Subtract(uv[2])
	dp02 := p0.Subtract(p2)
	dp12 := p1.Subtract(p2)
	determinant := duv02.X*duv12.Y - duv02.Y*duv12.X
	degenerateUV := math.Abs(determinant) < 1e-8

	var dpdu, dpdv core.Vec3
	if !degenerateUV {
		invDet := 1 / determinant
		dpdu = dp02.Multiply(duv12.Y).Subtract(dp12.Multiply(duv02.Y)).Multiply(invDet)
		dpdv = dp12.Multiply(duv02.X).Subtract(dp02.Multiply(duv12.X)).Multiply(invDet)
	}
	if degenerateUV || dpdu.Cross(dpdv).LengthSquared() == 0 {
		// Any frame around the face normal will do
		ng := p2.Subtract(p0).Cross(p1.Subtract(p0))
		dpdu, dpdv = core.CoordinateSystem(ng.Normalize())
	}

	// Interpolate hit point, uv and the hit point's error bound
	pHit := p0.Multiply(h.b0).AddPoint(p1.Multiply(h.b1)).AddPoint(p2.Multiply(h.b2))
	uvHit := uv[0].Multiply(h.b0).AddPoint(uv[1].Multiply(h.b1)).AddPoint(uv[2].Multiply(h.b2))

	absSum := p0.Multiply(h.b0).Abs().AddPoint(p1.Multiply(h.b1).Abs()).AddPoint(p2.Multiply(h.b2).Abs())
	pError := absSum.ToVec().Multiply(core.Gamma(7))

	si := interaction.NewSurfaceInteraction(pHit, pError, uvHit, ray.D.Negate(), dpdu, dpdv,
		core.Normal3{}, core.Normal3{}, ray.Time, t)
	si.FaceIndex = t.index

	// The geometric normal follows the winding, whatever the uv parameterization
	ng := dp02.Cross(dp12).Normalize().ToNormal()
	si.N = ng
	si.Shading.N = ng
	return si
}

// shade installs the shading frame interpolated from per-vertex data
func (t *Triangle) shade(si *interaction.SurfaceInteraction, h triangleHit) {
	m := t.mesh
	if m.n == nil && m.s == nil {
		return
	}
	i0, i1, i2 := t.vertices()

	ns := si.N
	if m.n != nil {
		ns = m.n[i0].Multiply(h.b0).Add(m.n[i1].Multiply(h.b1)).Add(m.n[i2].Multiply(h.b2)).Normalize()
	}

	var ss core.Vec3
	if m.s != nil {
		ss = m.s[i0].Multiply(h.b0).Add(m.s[i1].Multiply(h.b1)).Add(m.s[i2].Multiply(h.b2)).Normalize()
	} else {
		ss = si.Dpdu.Normalize()
	}

	ts := ss.Cross(ns.ToVec())
	if ts.LengthSquared() > 0 {
		ts = ts.Normalize()
		ss = ts.Cross(ns.ToVec())
	} else {
		ss, ts = core.CoordinateSystem(ns.ToVec())
	}

	var dndu, dndv core.Normal3
	if m.n != nil {
		uv := t.uvs()
		duv02 := uv[0].Subtract(uv[2])
		duv12 := uv[1].Subtract(uv[2])
		dn1 := m.n[i0].Subtract(m.n[i2])
		dn2 := m.n[i1].Subtract(m.n[i2])
		determinant := duv02.X*duv12.Y - duv02.Y*duv12.X
		if math.Abs(determinant) >= 1e-8 {
			invDet := 1 / determinant
			dndu = dn1.Multiply(duv12.Y).Subtract(dn2.Multiply(duv02.Y)).Multiply(invDet)
			dndv = dn2.Multiply(duv02.X).Subtract(dn1.Multiply(duv12.X)).Multiply(invDet)
		}
	}
	si.SetShadingGeometry(ss, ts, dndu, dndv, true)
}

// Intersect returns the hit and its world space interaction
func (t *Triangle) Intersect(ray core.Ray, testAlphaTexture bool) (float64, *interaction.SurfaceInteraction, bool) {
	h, ok := t.hit(ray)
	if !ok {
		triangleStats.Record(false)
		return 0, nil, false
	}

	si := t.surface(ray, h)
	if testAlphaTexture && t.mesh.alphaMask != nil && t.mesh.alphaMask.Evaluate(si) == 0 {
		triangleStats.Record(false)
		return 0, nil, false
	}

	t.shade(si, h)

	// Orient the geometric normal
	if t.mesh.n != nil {
		si.N = si.N.FaceForwardNormal(si.Shading.N)
	} else if t.reverseOrientation != t.transformSwapsHandedness {
		si.N = si.N.Negate()
		si.Shading.N = si.N
	}

	triangleStats.Record(true)
	return h.t, si, true
}

// IntersectP reports whether the ray hits the triangle
func (t *Triangle) IntersectP(ray core.Ray, testAlphaTexture bool) bool {
	h, ok := t.hit(ray)
	if ok && testAlphaTexture && t.mesh.alphaMask != nil {
		ok = t.mesh.alphaMask.Evaluate(t.surface(ray, h)) != 0
	}
	triangleStats.Record(ok)
	return ok
}
