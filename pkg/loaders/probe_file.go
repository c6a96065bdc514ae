package loaders

import (
	"os"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"sigs.k8s.io/yaml"
)

// ProbeFile is a flat list of shapes and the rays to fire at them
type ProbeFile struct {
	Shapes []ShapeSpec `json:"shapes"`
	Rays   []RaySpec   `json:"rays"`
}

// ShapeSpec describes one shape. Which fields apply depends on Type.
type ShapeSpec struct {
	Type      string          `json:"type"`
	Transform []TransformStep `json:"transform,omitempty"`
	Reverse   bool            `json:"reverseOrientation,omitempty"`

	Radius      float64 `json:"radius,omitempty"`
	InnerRadius float64 `json:"innerRadius,omitempty"`
	Height      float64 `json:"height,omitempty"`
	ZMin        float64 `json:"zMin,omitempty"`
	ZMax        float64 `json:"zMax,omitempty"`
	PhiMax      float64 `json:"phiMax,omitempty"`
	P1          Triple  `json:"p1,omitempty"`
	P2          Triple  `json:"p2,omitempty"`

	// Triangle meshes, inline or from a PLY file relative to the probe file
	Positions []Triple `json:"positions,omitempty"`
	Indices   []int    `json:"indices,omitempty"`
	UVs       []Pair   `json:"uvs,omitempty"`
	File      string   `json:"file,omitempty"`
	// AlphaMask is an image whose alpha channel cuts the mesh out
	AlphaMask string `json:"alphaMask,omitempty"`

	// Tessellated solids
	Size  Triple  `json:"size,omitempty"`
	Round float64 `json:"round,omitempty"`
	Cells int     `json:"cells,omitempty"`
}

// TransformStep is one of translate, scale or rotate. Steps compose left to right,
// so the last step is applied to the shape first.
type TransformStep struct {
	Translate *Triple     `json:"translate,omitempty"`
	Scale     *Triple     `json:"scale,omitempty"`
	Rotate    *RotateStep `json:"rotate,omitempty"`
}

// RotateStep rotates by Angle degrees around Axis
type RotateStep struct {
	Angle float64 `json:"angle"`
	Axis  Triple  `json:"axis"`
}

// RaySpec is a ray; a zero TMax means unbounded
type RaySpec struct {
	Origin    Triple  `json:"origin"`
	Direction Triple  `json:"direction"`
	TMax      float64 `json:"tMax,omitempty"`
	Time      float64 `json:"time,omitempty"`
}

// Triple is an [x, y, z] list
type Triple []float64

// Pair is a [u, v] list
type Pair []float64

// Point2 returns the pair as a point
func (p Pair) Point2() core.Point2 {
	if len(p) != 2 {
		return core.Point2{}
	}
	return core.Point2{X: p[0], Y: p[1]}
}

// Vec returns the triple as a vector, zero when absent
func (t Triple) Vec() core.Vec3 {
	if len(t) != 3 {
		return core.Vec3{}
	}
	return core.Vec3{X: t[0], Y: t[1], Z: t[2]}
}

// Point returns the triple as a point, the origin when absent
func (t Triple) Point() core.Point3 {
	return t.Vec().ToPoint()
}

// Ray converts the entry to a ray
func (r RaySpec) Ray() core.Ray {
	ray := core.NewRay(r.Origin.Point(), r.Direction.Vec())
	if r.TMax > 0 {
		ray.TMax = r.TMax
	}
	ray.Time = r.Time
	return ray
}

// LoadProbeFile reads and validates a YAML probe file
func LoadProbeFile(path string) (*ProbeFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read probe file")
	}
	return ParseProbeFile(content)
}

// ParseProbeFile parses YAML (or JSON) probe data
func ParseProbeFile(content []byte) (*ProbeFile, error) {
	var file ProbeFile
	if err := yaml.UnmarshalStrict(content, &file); err != nil {
		return nil, errors.Wrap(err, "parse probe file")
	}
	if err := file.validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *ProbeFile) validate() error {
	for i, s := range f.Shapes {
		if s.Type == "" {
			return errors.Errorf("shape %d: missing type", i)
		}
		if _, bad := lo.Find(append([]Triple{s.P1, s.P2, s.Size}, s.Positions...), badTriple); bad {
			return errors.Errorf("shape %d: coordinates must have 3 components", i)
		}
		if _, bad := lo.Find(s.UVs, func(p Pair) bool { return len(p) != 2 }); bad {
			return errors.Errorf("shape %d: uvs must have 2 components", i)
		}
		if len(s.UVs) > 0 && len(s.UVs) != len(s.Positions) {
			return errors.Errorf("shape %d: %d uvs for %d positions", i, len(s.UVs), len(s.Positions))
		}
		for j, step := range s.Transform {
			set := lo.Compact([]bool{step.Translate != nil, step.Scale != nil, step.Rotate != nil})
			if len(set) != 1 {
				return errors.Errorf("shape %d transform step %d: need exactly one of translate, scale, rotate", i, j)
			}
		}
	}
	for i, r := range f.Rays {
		if len(r.Origin) != 3 || len(r.Direction) != 3 {
			return errors.Errorf("ray %d: origin and direction need 3 components", i)
		}
		if r.Direction.Vec().LengthSquared() == 0 {
			return errors.Errorf("ray %d: zero direction", i)
		}
	}
	return nil
}

func badTriple(t Triple) bool {
	return t != nil && len(t) != 3
}

// ToRays converts every ray entry
func (f *ProbeFile) ToRays() []core.Ray {
	return lo.Map(f.Rays, func(r RaySpec, _ int) core.Ray { return r.Ray() })
}
