package tessellate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/geometry"
	"github.com/df07/go-raykernel/pkg/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aggregate(t *testing.T, mesh *geometry.TriangleMesh, place transform.Transform) *geometry.Aggregate {
	t.Helper()
	inv := place.Inverse()
	return geometry.NewAggregate(geometry.NewTriangles(&place, &inv, false, mesh))
}

func TestSphere_MatchesAnalyticHits(t *testing.T) {
	place := transform.IdentityTransform()
	mesh, err := Sphere(1, 40, &place)
	require.NoError(t, err)
	require.True(t, mesh.HasNormals())
	require.Greater(t, mesh.NumTriangles(), 100)
	// Welding shares most vertices between neighbouring triangles
	assert.Less(t, mesh.NumVertices(), 3*mesh.NumTriangles()/2)

	agg := aggregate(t, mesh, place)
	random := rand.New(rand.NewSource(1))
	hits := 0
	const rays = 200
	for i := 0; i < rays; i++ {
		origin := core.UniformSampleSphere(core.NewPoint2(random.Float64(), random.Float64())).Multiply(3).ToPoint()
		target := core.UniformSampleSphere(core.NewPoint2(random.Float64(), random.Float64())).Multiply(0.3).ToPoint()
		dir := target.Subtract(origin).Normalize()
		ray := core.NewRay(origin, dir)

		tHit, si, ok := agg.Intersect(ray, false)
		if !ok {
			continue
		}
		hits++

		// Distance to the analytic sphere along the same ray
		b := origin.ToVec().Dot(dir)
		c := origin.ToVec().LengthSquared() - 1
		expected := -b - math.Sqrt(b*b-c)
		assert.InDelta(t, expected, tHit, 0.05)

		radial := si.P.ToVec().Normalize()
		assert.Greater(t, math.Abs(si.Shading.N.Dot(radial)), 0.99)
		assert.Greater(t, math.Abs(si.N.Dot(radial)), 0.7)
	}
	assert.GreaterOrEqual(t, hits, rays*95/100)
}

func TestBox_FaceHit(t *testing.T) {
	place := transform.Translate(core.NewVec3(0, 0, 1))
	mesh, err := Box(core.NewVec3(2, 2, 2), 0, 32, &place)
	require.NoError(t, err)

	agg := aggregate(t, mesh, place)
	ray := core.NewRay(core.NewPoint3(0.1, 0.2, -5), core.NewVec3(0, 0, 1))
	tHit, si, ok := agg.Intersect(ray, false)
	require.True(t, ok)
	assert.InDelta(t, 5, tHit, 0.05)
	assert.InDelta(t, 1, math.Abs(si.Shading.N.Z), 1e-3)
}

func TestSphere_InvalidRadius(t *testing.T) {
	place := transform.IdentityTransform()
	_, err := Sphere(0, 16, &place)
	assert.Error(t, err)
}
