package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/interaction"
	"github.com/df07/go-raykernel/pkg/transform"
)

func unitTriangle(t *testing.T, indices []int, reverse bool, options *TriangleMeshOptions) Shape {
	t.Helper()
	o2w, w2o := identity()
	positions := []core.Point3{
		core.NewPoint3(0, 0, 0),
		core.NewPoint3(1, 0, 0),
		core.NewPoint3(0, 1, 0),
	}
	tris, err := CreateTriangleMesh(o2w, w2o, reverse, indices, positions, options)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return tris[0]
}

func downRay(x, y float64) core.Ray {
	return core.NewRay(core.NewPoint3(x, y, 1), core.NewVec3(0, 0, -1))
}

func TestTriangle_Hit(t *testing.T) {
	tri := unitTriangle(t, []int{0, 1, 2}, false, nil)

	tHit, si, ok := tri.Intersect(downRay(0.25, 0.25), false)
	if !ok {
		t.Fatal("Expected hit")
	}
	assertNear(t, "t", 1, tHit, 1e-12)
	assertPointNear(t, core.NewPoint3(0.25, 0.25, 0), si.P, 1e-12)
	// Counter-clockwise winding seen from +z faces +z
	assertNormalNear(t, core.NewNormal3(0, 0, 1), si.N, 1e-12)
	assertNormalNear(t, core.NewNormal3(0, 0, 1), si.Shading.N, 1e-12)
	// Default parameterization (0,0), (1,0), (1,1)
	assertNear(t, "u", 0.5, si.UV.X, 1e-12)
	assertNear(t, "v", 0.25, si.UV.Y, 1e-12)
	if si.FaceIndex != 0 {
		t.Errorf("Expected face 0, got %d", si.FaceIndex)
	}
}

func TestTriangle_Orientation(t *testing.T) {
	tests := []struct {
		name     string
		indices  []int
		reverse  bool
		expected core.Normal3
	}{
		{"counter-clockwise", []int{0, 1, 2}, false, core.NewNormal3(0, 0, 1)},
		{"clockwise", []int{0, 2, 1}, false, core.NewNormal3(0, 0, -1)},
		{"reversed", []int{0, 1, 2}, true, core.NewNormal3(0, 0, -1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tri := unitTriangle(t, tt.indices, tt.reverse, nil)
			_, si, ok := tri.Intersect(downRay(0.25, 0.25), false)
			if !ok {
				t.Fatal("Expected hit")
			}
			assertNormalNear(t, tt.expected, si.N, 1e-12)
			assertNormalNear(t, tt.expected, si.Shading.N, 1e-12)
		})
	}
}

func TestTriangle_Misses(t *testing.T) {
	tri := unitTriangle(t, []int{0, 1, 2}, false, nil)

	tests := []struct {
		name string
		ray  core.Ray
	}{
		{"outside hypotenuse", downRay(0.75, 0.75)},
		{"outside left edge", downRay(-0.1, 0.5)},
		{"parallel", core.NewRay(core.NewPoint3(-1, 0.25, 0), core.NewVec3(1, 0, 0))},
		{"behind origin", core.NewRay(core.NewPoint3(0.25, 0.25, -1), core.NewVec3(0, 0, -1))},
		{"short", core.Ray{O: core.NewPoint3(0.25, 0.25, 1), D: core.NewVec3(0, 0, -1), TMax: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := tri.Intersect(tt.ray, false); ok {
				t.Error("Expected miss")
			}
			if tri.IntersectP(tt.ray, false) {
				t.Error("Expected IntersectP miss")
			}
		})
	}
}

func TestTriangle_BackFaceHit(t *testing.T) {
	tri := unitTriangle(t, []int{0, 1, 2}, false, nil)
	ray := core.NewRay(core.NewPoint3(0.25, 0.25, -2), core.NewVec3(0, 0, 1))

	tHit, si, ok := tri.Intersect(ray, false)
	if !ok {
		t.Fatal("Expected a hit from behind")
	}
	assertNear(t, "t", 2, tHit, 1e-12)
	// The geometric normal follows the winding, not the ray
	assertNormalNear(t, core.NewNormal3(0, 0, 1), si.N, 1e-12)
}

func TestTriangle_SharedEdgeIsWatertight(t *testing.T) {
	o2w, w2o := identity()
	positions := []core.Point3{
		core.NewPoint3(0, 0, 0),
		core.NewPoint3(1, 0, 0),
		core.NewPoint3(1, 1, 0),
		core.NewPoint3(0, 1, 0),
	}
	tris, err := CreateTriangleMesh(o2w, w2o, false, []int{0, 1, 2, 0, 2, 3}, positions, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	random := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		// Aim exactly at the shared diagonal from a random origin
		s := random.Float64()
		target := core.NewPoint3(s, s, 0)
		o := core.NewPoint3(random.Float64()*4-2, random.Float64()*4-2, 1+random.Float64())
		ray := core.NewRay(o, target.Subtract(o))

		if !tris[0].IntersectP(ray, false) && !tris[1].IntersectP(ray, false) {
			t.Fatalf("Ray %+v slipped through the shared edge", ray)
		}
	}
}

func TestTriangle_IntersectAgreesWithIntersectP(t *testing.T) {
	o2w, w2o := placed(must(transform.Rotate(40, core.NewVec3(1, 1, 0))))
	positions := []core.Point3{
		core.NewPoint3(-1, -1, 0.2),
		core.NewPoint3(1.2, -0.8, -0.3),
		core.NewPoint3(0.1, 1.4, 0.5),
	}
	tris, err := CreateTriangleMesh(o2w, w2o, false, []int{0, 1, 2}, positions, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	tri := tris[0]

	random := rand.New(rand.NewSource(5))
	hits := 0
	for i := 0; i < 2000; i++ {
		ray := randomRay(random, 4)
		tHit, si, ok := tri.Intersect(ray, false)
		if okP := tri.IntersectP(ray, false); okP != ok {
			t.Fatalf("Intersect reported %v but IntersectP %v", ok, okP)
		}
		if !ok {
			continue
		}
		hits++
		if tHit <= 0 || tHit > ray.TMax {
			t.Fatalf("Hit t=%v outside (0, %v]", tHit, ray.TMax)
		}
		if core.Distance(ray.At(tHit), si.P) > si.PError.Length()+1e-9 {
			t.Errorf("Hit point %v too far from ray point %v", si.P, ray.At(tHit))
		}
	}
	if hits == 0 {
		t.Error("Expected some random rays to hit")
	}
}

func TestTriangle_Placement(t *testing.T) {
	o2w, w2o := placed(transform.Translate(core.NewVec3(0, 0, 5)))
	positions := []core.Point3{
		core.NewPoint3(0, 0, 0),
		core.NewPoint3(2, 0, 0),
		core.NewPoint3(0, 2, 0),
	}
	tris, err := CreateTriangleMesh(o2w, w2o, false, []int{0, 1, 2}, positions, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	tri := tris[0]

	tHit, si, ok := tri.Intersect(core.NewRay(core.NewPoint3(0.5, 0.5, 6), core.NewVec3(0, 0, -1)), false)
	if !ok {
		t.Fatal("Expected hit")
	}
	assertNear(t, "t", 1, tHit, 1e-12)
	assertPointNear(t, core.NewPoint3(0.5, 0.5, 5), si.P, 1e-12)

	assertNear(t, "area", 2, tri.Area(), 1e-12)
	world := tri.WorldBound()
	assertPointNear(t, core.NewPoint3(0, 0, 5), world.Min, 1e-12)
	assertPointNear(t, core.NewPoint3(2, 2, 5), world.Max, 1e-12)
	object := tri.ObjectBound()
	assertPointNear(t, core.NewPoint3(0, 0, 0), object.Min, 1e-12)
	assertPointNear(t, core.NewPoint3(2, 2, 0), object.Max, 1e-12)
}

func TestTriangle_ShadingNormals(t *testing.T) {
	tilted := core.NewNormal3(1, 0, 1).Normalize()
	tri := unitTriangle(t, []int{0, 1, 2}, false, &TriangleMeshOptions{
		Normals: []core.Normal3{
			core.NewNormal3(0, 0, 1),
			core.NewNormal3(0, 0, 1),
			tilted,
		},
	})

	_, si, ok := tri.Intersect(downRay(0.25, 0.25), false)
	if !ok {
		t.Fatal("Expected hit")
	}
	// Barycentrics are (0.5, 0.25, 0.25)
	expected := core.NewNormal3(0, 0, 0.75).Add(tilted.Multiply(0.25)).Normalize()
	assertNormalNear(t, expected, si.Shading.N, 1e-9)
	assertNormalNear(t, core.NewNormal3(0, 0, 1), si.N, 1e-12)

	if math.Abs(si.Shading.Dpdu.Dot(si.Shading.N.ToVec())) > 1e-9 {
		t.Errorf("Shading tangent %v not perpendicular to %v", si.Shading.Dpdu, si.Shading.N)
	}
	if si.Shading.Dndu.IsZero() && si.Shading.Dndv.IsZero() {
		t.Error("Expected the normal to vary across the triangle")
	}
}

func TestTriangle_ShadingNormalsDecideOrientation(t *testing.T) {
	down := core.NewNormal3(0, 0, -1)
	tri := unitTriangle(t, []int{0, 1, 2}, false, &TriangleMeshOptions{
		Normals: []core.Normal3{down, down, down},
	})

	_, si, ok := tri.Intersect(downRay(0.25, 0.25), false)
	if !ok {
		t.Fatal("Expected hit")
	}
	assertNormalNear(t, down, si.Shading.N, 1e-12)
	assertNormalNear(t, down, si.N, 1e-12)
}

func TestTriangle_DegenerateUVs(t *testing.T) {
	zero := core.NewPoint2(0, 0)
	tri := unitTriangle(t, []int{0, 1, 2}, false, &TriangleMeshOptions{
		UVs: []core.Point2{zero, zero, zero},
	})

	_, si, ok := tri.Intersect(downRay(0.25, 0.25), false)
	if !ok {
		t.Fatal("Expected hit")
	}
	assertNormalNear(t, core.NewNormal3(0, 0, 1), si.N, 1e-12)
	if math.Abs(si.Dpdu.Dot(si.N.ToVec())) > 1e-12 || math.Abs(si.Dpdv.Dot(si.N.ToVec())) > 1e-12 {
		t.Errorf("Fallback tangents %v, %v not in the triangle plane", si.Dpdu, si.Dpdv)
	}
}

// halfMask cuts away everything with x < 0.5
type halfMask struct{}

func (halfMask) Evaluate(si *interaction.SurfaceInteraction) float64 {
	if si.P.X < 0.5 {
		return 0
	}
	return 1
}

func TestTriangle_AlphaMask(t *testing.T) {
	tri := unitTriangle(t, []int{0, 1, 2}, false, &TriangleMeshOptions{AlphaMask: halfMask{}})

	tests := []struct {
		name      string
		ray       core.Ray
		testAlpha bool
		expected  bool
	}{
		{"masked", downRay(0.25, 0.25), true, false},
		{"mask ignored", downRay(0.25, 0.25), false, true},
		{"unmasked", downRay(0.6, 0.2), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := tri.Intersect(tt.ray, tt.testAlpha)
			if ok != tt.expected {
				t.Errorf("Intersect: expected %v, got %v", tt.expected, ok)
			}
			if okP := tri.IntersectP(tt.ray, tt.testAlpha); okP != tt.expected {
				t.Errorf("IntersectP: expected %v, got %v", tt.expected, okP)
			}
		})
	}
}

func TestTriangleMesh_Validation(t *testing.T) {
	tr := transform.IdentityTransform()
	positions := []core.Point3{
		core.NewPoint3(0, 0, 0),
		core.NewPoint3(1, 0, 0),
		core.NewPoint3(0, 1, 0),
	}

	tests := []struct {
		name    string
		indices []int
		options *TriangleMeshOptions
	}{
		{"ragged indices", []int{0, 1}, nil},
		{"index out of range", []int{0, 1, 3}, nil},
		{"negative index", []int{0, -1, 2}, nil},
		{"normal count", []int{0, 1, 2}, &TriangleMeshOptions{Normals: []core.Normal3{{X: 0, Y: 0, Z: 1}}}},
		{"tangent count", []int{0, 1, 2}, &TriangleMeshOptions{Tangents: make([]core.Vec3, 4)}},
		{"uv count", []int{0, 1, 2}, &TriangleMeshOptions{UVs: make([]core.Point2, 2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTriangleMesh(&tr, tt.indices, positions, tt.options); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestTriangleMesh_SharedStorage(t *testing.T) {
	tr := transform.Translate(core.NewVec3(1, 0, 0))
	positions := []core.Point3{
		core.NewPoint3(0, 0, 0),
		core.NewPoint3(1, 0, 0),
		core.NewPoint3(1, 1, 0),
		core.NewPoint3(0, 1, 0),
	}
	indices := []int{0, 1, 2, 0, 2, 3}
	mesh, err := NewTriangleMesh(&tr, indices, positions, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// Later edits to the caller's slices must not reach the mesh
	indices[0] = 3
	positions[0] = core.NewPoint3(9, 9, 9)

	if mesh.NumTriangles() != 2 || mesh.NumVertices() != 4 {
		t.Fatalf("Expected 2 triangles over 4 vertices, got %d over %d", mesh.NumTriangles(), mesh.NumVertices())
	}
	assertPointNear(t, core.NewPoint3(1, 0, 0), mesh.Vertex(0), 0)
	bounds := mesh.Bounds()
	assertPointNear(t, core.NewPoint3(1, 0, 0), bounds.Min, 0)
	assertPointNear(t, core.NewPoint3(2, 1, 0), bounds.Max, 0)

	inv := tr.Inverse()
	tris := NewTriangles(&tr, &inv, false, mesh)
	total := 0.0
	for _, s := range tris {
		total += s.Area()
	}
	assertNear(t, "area", 1, total, 1e-12)
}

func TestExactEdge(t *testing.T) {
	// 0.1*0.3 and 0.3*0.1 round identically, so the difference is exactly zero
	assertNear(t, "symmetric", 0, exactEdge(0.1, 0.3, 0.3, 0.1), 0)
	// The difference is below the rounding error of either product
	a := 1 + 0x1p-30
	if got := exactEdge(a, a, 1, 1+0x1p-29); got <= 0 {
		t.Errorf("Expected a positive exact difference, got %v", got)
	}
}
