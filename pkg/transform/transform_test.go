package transform

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/interaction"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTransforms() map[string]Transform {
	return map[string]Transform{
		"identity":  IdentityTransform(),
		"translate": Translate(core.NewVec3(1, -2, 3)),
		"scale":     must(Scale(2, 0.5, -3)),
		"rotate x":  RotateX(30),
		"rotate":    must(Rotate(73, core.NewVec3(1, 1, -2))),
		"composed": Translate(core.NewVec3(-4, 0, 1)).
			Compose(must(Rotate(-120, core.NewVec3(0.3, 1, 0)))).
			Compose(must(Scale(1.5, 1.5, 0.25))),
	}
}

func must(t Transform, err error) Transform {
	if err != nil {
		panic(err)
	}
	return t
}

func assertPointNear(t *testing.T, expected, actual core.Point3, delta float64) {
	t.Helper()
	if core.Distance(expected, actual) > delta {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}

func TestMatrix_Inverse(t *testing.T) {
	m := NewMatrix4x4(
		2, 0, 1, 3,
		0, 0, 4, 1,
		1, 3, 0, 0,
		0, 0, 0, 1)
	inv, err := m.Inverse()
	require.NoError(t, err)
	assert.True(t, m.Mul(inv).Equal(Identity(), 1e-12))
	assert.True(t, inv.Mul(m).Equal(Identity(), 1e-12))
}

func TestMatrix_InverseSingular(t *testing.T) {
	m := NewMatrix4x4(
		1, 2, 3, 0,
		0, 0, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1)
	_, err := m.Inverse()
	require.Error(t, err)
	assert.Equal(t, ErrSingularMatrix, errors.Cause(err))

	_, err = New(Matrix4x4{})
	assert.Equal(t, ErrSingularMatrix, errors.Cause(err))
	assert.Panics(t, func() { MustNew(Matrix4x4{}) })
}

func TestTransform_RoundTrip(t *testing.T) {
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(7)))

	for name, tr := range testTransforms() {
		t.Run(name, func(t *testing.T) {
			inv := tr.Inverse()
			for i := 0; i < 100; i++ {
				p := core.NewPoint3(sampler.Get1D()*10-5, sampler.Get1D()*10-5, sampler.Get1D()*10-5)
				assertPointNear(t, p, inv.Point(tr.Point(p)), 1e-9)

				v := core.NewVec3(sampler.Get1D(), sampler.Get1D(), sampler.Get1D())
				back := inv.Vector(tr.Vector(v))
				assert.InDelta(t, 0, back.Subtract(v).Length(), 1e-9)
			}
			assert.True(t, tr.Compose(inv).Equal(IdentityTransform(), 1e-9))
		})
	}
}

func TestTransform_NormalStaysPerpendicular(t *testing.T) {
	// a non-uniform scale bends vectors and normals differently
	tr := must(Scale(1, 4, 1)).Compose(Translate(core.NewVec3(2, 0, 0)))
	tangent := core.NewVec3(1, -1, 0)
	n := core.NewNormal3(1, 1, 0)

	tTangent := tr.Vector(tangent)
	tNormal := tr.Normal(n)
	assert.InDelta(t, 0, tNormal.Dot(tTangent), 1e-12)

	// treating the normal as a vector breaks perpendicularity
	asVector := tr.Vector(n.ToVec())
	assert.Greater(t, math.Abs(asVector.Dot(tTangent)), 1e-3)
}

func TestTransform_Predicates(t *testing.T) {
	assert.True(t, IdentityTransform().IsIdentity())
	assert.False(t, Translate(core.NewVec3(1, 0, 0)).IsIdentity())
	assert.False(t, RotateY(90).HasScale())
	assert.True(t, must(Scale(1, 2, 1)).HasScale())
	assert.True(t, must(Scale(1, 1, -1)).SwapsHandedness())
	assert.False(t, must(Scale(-1, -1, 1)).SwapsHandedness())
	assert.False(t, must(Rotate(33, core.NewVec3(1, 2, 3))).SwapsHandedness())
}

func TestTransform_Rotations(t *testing.T) {
	tests := []struct {
		name     string
		tr       Transform
		p        core.Point3
		expected core.Point3
	}{
		{"rotate z", RotateZ(90), core.NewPoint3(1, 0, 0), core.NewPoint3(0, 1, 0)},
		{"rotate y", RotateY(90), core.NewPoint3(1, 0, 0), core.NewPoint3(0, 0, -1)},
		{"rotate x", RotateX(90), core.NewPoint3(0, 1, 0), core.NewPoint3(0, 0, 1)},
		{"rotate axis z", must(Rotate(90, core.NewVec3(0, 0, 1))), core.NewPoint3(1, 0, 0), core.NewPoint3(0, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertPointNear(t, tt.expected, tt.tr.Point(tt.p), 1e-12)
		})
	}
}

func TestLookAt(t *testing.T) {
	tr, err := LookAt(core.NewPoint3(0, 0, -5), core.NewPoint3(0, 0, 0), core.NewVec3(0, 1, 0))
	require.NoError(t, err)
	assertPointNear(t, core.NewPoint3(0, 0, 5), tr.Point(core.NewPoint3(0, 0, 0)), 1e-12)

	_, err = LookAt(core.NewPoint3(0, 0, 0), core.NewPoint3(0, 1, 0), core.NewVec3(0, 1, 0))
	assert.Error(t, err)
	_, err = LookAt(core.NewPoint3(1, 1, 1), core.NewPoint3(1, 1, 1), core.NewVec3(0, 1, 0))
	assert.Error(t, err)
}

func TestPerspective(t *testing.T) {
	tr, err := Perspective(90, 1, 100)
	require.NoError(t, err)
	near := tr.Point(core.NewPoint3(1, 1, 1))
	far := tr.Point(core.NewPoint3(0, 0, 100))
	assertPointNear(t, core.NewPoint3(1, 1, 0), near, 1e-9)
	assert.InDelta(t, 1, far.Z, 1e-9)

	_, err = Perspective(90, 1, 1)
	assert.Error(t, err)
}

func TestTransform_PointErrorBoundsActualError(t *testing.T) {
	tr := must(Rotate(37, core.NewVec3(1, 2, 3))).Compose(Translate(core.NewVec3(1e3, -2e3, 0.5)))
	p := core.NewPoint3(0.1, 0.7, -1.3)

	pt, pErr := tr.PointWithError(p)
	back, backErr := tr.Inverse().PointWithAbsError(pt, pErr)

	assert.Greater(t, pErr.MinComponent(), 0.0)
	assert.InDelta(t, p.X, back.X, backErr.X+1e-12)
	assert.InDelta(t, p.Y, back.Y, backErr.Y+1e-12)
	assert.InDelta(t, p.Z, back.Z, backErr.Z+1e-12)
}

func TestTransform_RayOffsetsOrigin(t *testing.T) {
	tr := Translate(core.NewVec3(1e5, 0, 0))
	r := core.Ray{O: core.NewPoint3(0.5, 0, 0), D: core.NewVec3(1, 0, 0), TMax: 10}

	moved := tr.Ray(r)
	assert.Greater(t, moved.O.X, 1e5+0.5)
	assert.Less(t, moved.TMax, 10.0)
	assert.InDelta(t, 1e5+10.5, moved.At(moved.TMax).X, 1e-9)

	withErr, oErr, dErr := tr.RayWithError(r)
	assert.Equal(t, 10.0, withErr.TMax)
	assert.Greater(t, oErr.X, 0.0)
	assert.Greater(t, dErr.X, 0.0)
	assert.Equal(t, 0.0, dErr.Y)

	// Both rays share the offset origin; stepping back by the shift recovers the original
	assert.Equal(t, moved.O, withErr.O)
	dt := OriginShift(withErr.D, oErr)
	assert.Greater(t, dt, 0.0)
	assert.InDelta(t, 10-dt, moved.TMax, 1e-12)
	assert.InDelta(t, 1e5+0.5, withErr.At(-dt).X, 1e-10)
	assert.Zero(t, OriginShift(core.Vec3{}, oErr))
}

func TestTransform_Bounds(t *testing.T) {
	b := core.NewBounds3(core.NewPoint3(-1, -1, -1), core.NewPoint3(1, 1, 1))
	tb := RotateZ(45).Bounds(b)
	s2 := math.Sqrt2
	assert.InDelta(t, -s2, tb.Min.X, 1e-12)
	assert.InDelta(t, s2, tb.Max.Y, 1e-12)
	assert.InDelta(t, 1, tb.Max.Z, 1e-12)

	assert.True(t, Translate(core.NewVec3(1, 1, 1)).Bounds(core.EmptyBounds3()).IsEmpty())
}

type orienter struct{}

func (orienter) ReverseOrientation() bool       { return false }
func (orienter) TransformSwapsHandedness() bool { return false }

func TestTransform_SurfaceInteractionRoundTrip(t *testing.T) {
	si := interaction.NewSurfaceInteraction(
		core.NewPoint3(0.3, -0.2, 0.9), core.NewVec3(1e-9, 1e-9, 1e-9), core.NewPoint2(0.25, 0.75),
		core.NewVec3(0, 0, 1), core.NewVec3(1, 0, 0.2), core.NewVec3(0, 1, -0.1),
		core.NewNormal3(0.1, 0, 0), core.NewNormal3(0, 0.1, 0), 0.5, orienter{})

	for name, tr := range testTransforms() {
		t.Run(name, func(t *testing.T) {
			world := tr.SurfaceInteraction(si)
			back := tr.Inverse().SurfaceInteraction(world)

			assert.InDelta(t, si.P.X, back.P.X, back.PError.X+1e-12)
			assert.InDelta(t, si.P.Y, back.P.Y, back.PError.Y+1e-12)
			assert.InDelta(t, si.P.Z, back.P.Z, back.PError.Z+1e-12)
			assert.InDelta(t, 1, world.N.Length(), 1e-12)
			assert.GreaterOrEqual(t, world.Shading.N.DotNormal(world.N), 0.0)
			assert.InDelta(t, 1, back.N.DotNormal(si.N), 1e-9)
			assert.Equal(t, si.UV, back.UV)
			assert.Equal(t, si.Time, back.Time)

			// the normal stays perpendicular to the surface tangents
			assert.InDelta(t, 0, world.N.Dot(world.Dpdu), 1e-9)
			assert.InDelta(t, 0, world.N.Dot(world.Dpdv), 1e-9)
		})
	}
}

func TestSingularConstructors(t *testing.T) {
	tests := []struct {
		name  string
		build func() (Transform, error)
	}{
		{"zero x scale", func() (Transform, error) { return Scale(0, 1, 1) }},
		{"zero z scale", func() (Transform, error) { return Scale(2, 3, 0) }},
		{"zero rotation axis", func() (Transform, error) { return Rotate(45, core.NewVec3(0, 0, 0)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			require.Error(t, err)
			assert.Equal(t, ErrSingularMatrix, errors.Cause(err))
		})
	}
}
