// Package probe builds shape scenes from probe files and fires rays at them.
package probe

import (
	"path/filepath"
	"strings"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/geometry"
	"github.com/df07/go-raykernel/pkg/interaction"
	"github.com/df07/go-raykernel/pkg/loaders"
	"github.com/df07/go-raykernel/pkg/tessellate"
	"github.com/df07/go-raykernel/pkg/transform"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Scene is the set of shapes built from a probe file
type Scene struct {
	Shapes    []geometry.Shape
	Aggregate *geometry.Aggregate

	// Kinds holds the type of each shape entry, indexed like the probe file
	Kinds []string
	owner map[interaction.Orienter]int
}

// SpecIndex returns the probe file shape a hit belongs to, or -1
func (s *Scene) SpecIndex(si *interaction.SurfaceInteraction) int {
	if si == nil || si.Shape == nil {
		return -1
	}
	if i, ok := s.owner[si.Shape]; ok {
		return i
	}
	return -1
}

// Build creates every shape in file. Relative file paths resolve against baseDir.
func Build(file *loaders.ProbeFile, baseDir string) (*Scene, error) {
	scene := &Scene{owner: map[interaction.Orienter]int{}}
	for i, spec := range file.Shapes {
		shapes, err := buildShape(spec, baseDir)
		if err != nil {
			return nil, errors.Wrapf(err, "shape %d (%s)", i, spec.Type)
		}
		for _, s := range shapes {
			scene.owner[s] = i
		}
		scene.Shapes = append(scene.Shapes, shapes...)
		scene.Kinds = append(scene.Kinds, strings.ToLower(spec.Type))
	}
	scene.Aggregate = geometry.NewAggregate(scene.Shapes)

	zap.L().Debug("built probe scene",
		zap.Int("specs", len(file.Shapes)),
		zap.Int("shapes", len(scene.Shapes)))
	return scene, nil
}

// placement composes the transform steps left to right
func placement(steps []loaders.TransformStep) (*transform.Transform, *transform.Transform, error) {
	t := transform.IdentityTransform()
	for i, step := range steps {
		var next transform.Transform
		var err error
		switch {
		case step.Translate != nil:
			next = transform.Translate(step.Translate.Vec())
		case step.Scale != nil:
			s := step.Scale.Vec()
			next, err = transform.Scale(s.X, s.Y, s.Z)
		case step.Rotate != nil:
			next, err = transform.Rotate(step.Rotate.Angle, step.Rotate.Axis.Vec())
		default:
			continue
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "transform step %d", i)
		}
		t = t.Compose(next)
	}
	inv := t.Inverse()
	return &t, &inv, nil
}

func buildShape(spec loaders.ShapeSpec, baseDir string) ([]geometry.Shape, error) {
	o2w, w2o, err := placement(spec.Transform)
	if err != nil {
		return nil, err
	}
	rev := spec.Reverse

	switch strings.ToLower(spec.Type) {
	case "sphere":
		return one(geometry.NewSphere(o2w, w2o, rev, geometry.SphereParams{
			Radius: positive(spec.Radius, 1), ZMin: spec.ZMin, ZMax: spec.ZMax, PhiMax: spec.PhiMax,
		})), nil
	case "cylinder":
		zMin, zMax := spec.ZMin, spec.ZMax
		if zMin == zMax {
			zMin, zMax = -1, 1
		}
		return one(geometry.NewCylinder(o2w, w2o, rev, geometry.CylinderParams{
			Radius: positive(spec.Radius, 1), ZMin: zMin, ZMax: zMax, PhiMax: spec.PhiMax,
		})), nil
	case "cone":
		return one(geometry.NewCone(o2w, w2o, rev, geometry.ConeParams{
			Height: positive(spec.Height, 1), Radius: positive(spec.Radius, 1), PhiMax: spec.PhiMax,
		})), nil
	case "paraboloid":
		zMin, zMax := spec.ZMin, spec.ZMax
		if zMin == zMax {
			zMin, zMax = 0, 1
		}
		return one(geometry.NewParaboloid(o2w, w2o, rev, geometry.ParaboloidParams{
			Radius: positive(spec.Radius, 1), ZMin: zMin, ZMax: zMax, PhiMax: spec.PhiMax,
		})), nil
	case "hyperboloid":
		h, err := geometry.NewHyperboloid(o2w, w2o, rev, geometry.HyperboloidParams{
			P1: spec.P1.Point(), P2: spec.P2.Point(), PhiMax: spec.PhiMax,
		})
		if err != nil {
			return nil, err
		}
		return one(h), nil
	case "disk":
		return one(geometry.NewDisk(o2w, w2o, rev, geometry.DiskParams{
			Height: spec.Height, Radius: positive(spec.Radius, 1), InnerRadius: spec.InnerRadius, PhiMax: spec.PhiMax,
		})), nil
	case "trianglemesh":
		alpha, err := alphaMask(spec.AlphaMask, baseDir)
		if err != nil {
			return nil, err
		}
		options := &geometry.TriangleMeshOptions{AlphaMask: alpha}
		if len(spec.UVs) > 0 {
			options.UVs = lo.Map(spec.UVs, func(p loaders.Pair, _ int) core.Point2 { return p.Point2() })
		}
		positions := lo.Map(spec.Positions, func(p loaders.Triple, _ int) core.Point3 { return p.Point() })
		return geometry.CreateTriangleMesh(o2w, w2o, rev, spec.Indices, positions, options)
	case "ply":
		if spec.File == "" {
			return nil, errors.New("ply shape needs a file")
		}
		alpha, err := alphaMask(spec.AlphaMask, baseDir)
		if err != nil {
			return nil, err
		}
		data, err := loaders.LoadPLY(resolve(spec.File, baseDir), nil)
		if err != nil {
			return nil, err
		}
		mesh, err := data.Mesh(o2w, alpha)
		if err != nil {
			return nil, err
		}
		return geometry.NewTriangles(o2w, w2o, rev, mesh), nil
	case "sdf-sphere":
		mesh, err := tessellate.Sphere(positive(spec.Radius, 1), spec.Cells, o2w)
		if err != nil {
			return nil, err
		}
		return geometry.NewTriangles(o2w, w2o, rev, mesh), nil
	case "sdf-box":
		size := spec.Size.Vec()
		if size.LengthSquared() == 0 {
			size = core.NewVec3(1, 1, 1)
		}
		mesh, err := tessellate.Box(size, spec.Round, spec.Cells, o2w)
		if err != nil {
			return nil, err
		}
		return geometry.NewTriangles(o2w, w2o, rev, mesh), nil
	}
	return nil, errors.Errorf("unknown shape type %q", spec.Type)
}

func resolve(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// alphaMask loads the named mask, or returns nil when there is none
func alphaMask(path, baseDir string) (geometry.AlphaTexture, error) {
	if path == "" {
		return nil, nil
	}
	mask, err := loaders.LoadAlphaImage(resolve(path, baseDir))
	if err != nil {
		return nil, err
	}
	return mask, nil
}

func one(s geometry.Shape) []geometry.Shape {
	return []geometry.Shape{s}
}

func positive(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
