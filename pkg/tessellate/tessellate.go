// Package tessellate turns signed distance solids into triangle meshes.
package tessellate

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/geometry"
	"github.com/df07/go-raykernel/pkg/transform"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DefaultCells is the marching cubes resolution along the longest axis
const DefaultCells = 64

// Mesh tessellates s with marching cubes. Vertices shared by neighbouring
// triangles are welded, and each vertex gets the solid's gradient as its
// shading normal.
func Mesh(s sdf.SDF3, cells int, objectToWorld *transform.Transform) (*geometry.TriangleMesh, error) {
	if cells <= 0 {
		cells = DefaultCells
	}
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
	if len(triangles) == 0 {
		return nil, errors.New("tessellation produced no triangles")
	}

	// Step for the gradient estimate, well below the cell size
	bb := s.BoundingBox()
	size := bb.Size()
	eps := lo.Max([]float64{size.X, size.Y, size.Z}) / float64(cells) * 1e-3

	index := map[v3.Vec]int{}
	var positions []core.Point3
	indices := make([]int, 0, 3*len(triangles))
	for _, tri := range triangles {
		for j := 0; j < 3; j++ {
			v := tri[j]
			i, ok := index[v]
			if !ok {
				i = len(positions)
				index[v] = i
				positions = append(positions, core.NewPoint3(v.X, v.Y, v.Z))
			}
			indices = append(indices, i)
		}
	}

	normals := lo.Map(positions, func(p core.Point3, _ int) core.Normal3 {
		return gradient(s, p, eps)
	})

	zap.L().Debug("tessellated solid",
		zap.Int("triangles", len(triangles)),
		zap.Int("vertices", len(positions)),
		zap.Int("cells", cells))

	mesh, err := geometry.NewTriangleMesh(objectToWorld, indices, positions, &geometry.TriangleMeshOptions{
		Normals: normals,
	})
	if err != nil {
		return nil, errors.Wrap(err, "build tessellated mesh")
	}
	return mesh, nil
}

// gradient estimates the outward surface normal by central differences
func gradient(s sdf.SDF3, p core.Point3, eps float64) core.Normal3 {
	at := func(dx, dy, dz float64) float64 {
		return s.Evaluate(v3.Vec{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz})
	}
	n := core.Normal3{
		X: at(eps, 0, 0) - at(-eps, 0, 0),
		Y: at(0, eps, 0) - at(0, -eps, 0),
		Z: at(0, 0, eps) - at(0, 0, -eps),
	}
	if n.IsZero() {
		return core.Normal3{X: 0, Y: 0, Z: 1}
	}
	return n.Normalize()
}

// Sphere tessellates a sphere of the given radius centered at the origin
func Sphere(radius float64, cells int, objectToWorld *transform.Transform) (*geometry.TriangleMesh, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, errors.Wrap(err, "sphere solid")
	}
	return Mesh(s, cells, objectToWorld)
}

// Box tessellates a box of the given size centered at the origin, with
// edges rounded by round
func Box(size core.Vec3, round float64, cells int, objectToWorld *transform.Transform) (*geometry.TriangleMesh, error) {
	s, err := sdf.Box3D(v3.Vec{X: size.X, Y: size.Y, Z: size.Z}, round)
	if err != nil {
		return nil, errors.Wrap(err, "box solid")
	}
	return Mesh(s, cells, objectToWorld)
}
