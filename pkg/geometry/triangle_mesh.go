package geometry

import (
	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/interaction"
	"github.com/df07/go-raykernel/pkg/transform"
	"github.com/pkg/errors"
)

// AlphaTexture decides per hit whether a cut-out surface is present.
// A zero value means the ray passes through.
type AlphaTexture interface {
	Evaluate(si *interaction.SurfaceInteraction) float64
}

// TriangleMeshOptions contains optional per-vertex data for a triangle mesh.
// Each non-nil slice must have one entry per vertex.
type TriangleMeshOptions struct {
	Normals   []core.Normal3 // shading normals
	Tangents  []core.Vec3    // shading tangents
	UVs       []core.Point2
	AlphaMask AlphaTexture
}

// TriangleMesh is vertex storage shared by the triangles that index into it.
// Positions, normals and tangents are stored in world space. The mesh is
// never modified after construction, so triangles may read it concurrently.
type TriangleMesh struct {
	vertexIndices []int
	p             []core.Point3
	n             []core.Normal3
	s             []core.Vec3
	uv            []core.Point2
	alphaMask     AlphaTexture
}

// NewTriangleMesh creates a mesh from object space vertices and face indices.
// indices: each group of 3 indices forms a triangle
// options: optional per-vertex data (can be nil for a bare mesh)
func NewTriangleMesh(objectToWorld *transform.Transform, indices []int, positions []core.Point3, options *TriangleMeshOptions) (*TriangleMesh, error) {
	if len(indices)%3 != 0 {
		return nil, errors.Errorf("triangle mesh: %d indices is not a multiple of 3", len(indices))
	}
	for i, idx := range indices {
		if idx < 0 || idx >= len(positions) {
			return nil, errors.Errorf("triangle mesh: index %d at position %d out of range [0,%d)", idx, i, len(positions))
		}
	}

	nVertices := len(positions)
	mesh := &TriangleMesh{
		vertexIndices: append([]int(nil), indices...),
		p:             make([]core.Point3, nVertices),
	}
	for i, p := range positions {
		mesh.p[i] = objectToWorld.Point(p)
	}

	if options == nil {
		return mesh, nil
	}
	mesh.alphaMask = options.AlphaMask

	if options.Normals != nil {
		if len(options.Normals) != nVertices {
			return nil, errors.Errorf("triangle mesh: %d normals for %d vertices", len(options.Normals), nVertices)
		}
		mesh.n = make([]core.Normal3, nVertices)
		for i, n := range options.Normals {
			mesh.n[i] = objectToWorld.Normal(n)
		}
	}
	if options.Tangents != nil {
		if len(options.Tangents) != nVertices {
			return nil, errors.Errorf("triangle mesh: %d tangents for %d vertices", len(options.Tangents), nVertices)
		}
		mesh.s = make([]core.Vec3, nVertices)
		for i, s := range options.Tangents {
			mesh.s[i] = objectToWorld.Vector(s)
		}
	}
	if options.UVs != nil {
		if len(options.UVs) != nVertices {
			return nil, errors.Errorf("triangle mesh: %d uvs for %d vertices", len(options.UVs), nVertices)
		}
		mesh.uv = append([]core.Point2(nil), options.UVs...)
	}
	return mesh, nil
}

// NumTriangles returns the number of triangles in the mesh
func (m *TriangleMesh) NumTriangles() int {
	return len(m.vertexIndices) / 3
}

// NumVertices returns the number of vertices in the mesh
func (m *TriangleMesh) NumVertices() int {
	return len(m.p)
}

// Vertex returns the world space position of vertex i
func (m *TriangleMesh) Vertex(i int) core.Point3 {
	return m.p[i]
}

// HasNormals reports whether the mesh carries shading normals
func (m *TriangleMesh) HasNormals() bool {
	return m.n != nil
}

// Bounds returns the world space bounds of all vertices
func (m *TriangleMesh) Bounds() core.Bounds3 {
	return core.NewBounds3FromPoints(m.p...)
}

// NewTriangles creates one shape per triangle of mesh. Every triangle
// shares the mesh rather than copying its vertices.
func NewTriangles(objectToWorld, worldToObject *transform.Transform, reverseOrientation bool, mesh *TriangleMesh) []Shape {
	base := newShapeBase(objectToWorld, worldToObject, reverseOrientation)
	tris := make([]Shape, mesh.NumTriangles())
	for i := range tris {
		tris[i] = &Triangle{shapeBase: base, mesh: mesh, index: i}
	}
	return tris
}

// CreateTriangleMesh builds a mesh and its triangles in one step
func CreateTriangleMesh(objectToWorld, worldToObject *transform.Transform, reverseOrientation bool,
	indices []int, positions []core.Point3, options *TriangleMeshOptions) ([]Shape, error) {
	mesh, err := NewTriangleMesh(objectToWorld, indices, positions, options)
	if err != nil {
		return nil, err
	}
	return NewTriangles(objectToWorld, worldToObject, reverseOrientation, mesh), nil
}
