package loaders

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const probeYAML = `
shapes:
  - type: sphere
    radius: 1
    transform:
      - translate: [0, 0, 5]
      - rotate: {angle: 90, axis: [0, 1, 0]}
  - type: disk
    radius: 2
    innerRadius: 0.5
    reverseOrientation: true
  - type: trianglemesh
    positions: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
    indices: [0, 1, 2]
    uvs: [[0, 0], [1, 0], [0, 1]]
    alphaMask: mask.png
rays:
  - origin: [0, 0, -1]
    direction: [0, 0, 1]
  - origin: [0.5, 0, 1]
    direction: [0, 0, -1]
    tMax: 0.5
    time: 0.25
`

func TestParseProbeFile(t *testing.T) {
	file, err := ParseProbeFile([]byte(probeYAML))
	require.NoError(t, err)
	require.Len(t, file.Shapes, 3)
	require.Len(t, file.Rays, 2)

	sphere := file.Shapes[0]
	assert.Equal(t, "sphere", sphere.Type)
	assert.Equal(t, 1.0, sphere.Radius)
	require.Len(t, sphere.Transform, 2)
	assert.Equal(t, core.NewVec3(0, 0, 5), sphere.Transform[0].Translate.Vec())
	assert.Equal(t, 90.0, sphere.Transform[1].Rotate.Angle)

	assert.True(t, file.Shapes[1].Reverse)
	assert.Equal(t, []int{0, 1, 2}, file.Shapes[2].Indices)
	assert.Equal(t, core.NewPoint3(1, 0, 0), file.Shapes[2].Positions[1].Point())
	assert.Equal(t, core.Point2{X: 0, Y: 1}, file.Shapes[2].UVs[2].Point2())
	assert.Equal(t, "mask.png", file.Shapes[2].AlphaMask)

	rays := file.ToRays()
	assert.True(t, math.IsInf(rays[0].TMax, 1))
	assert.Equal(t, 0.5, rays[1].TMax)
	assert.Equal(t, 0.25, rays[1].Time)
	assert.Equal(t, core.NewVec3(0, 0, -1), rays[1].D)
}

func TestParseProbeFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "shapes:\n  - type: sphere\n    radus: 1\n"},
		{"missing type", "shapes:\n  - radius: 1\n"},
		{"short triple", "shapes:\n  - type: hyperboloid\n    p1: [1, 0]\n"},
		{"two ops in a step", "shapes:\n  - type: sphere\n    transform:\n      - {translate: [1, 0, 0], scale: [1, 1, 1]}\n"},
		{"empty step", "shapes:\n  - type: sphere\n    transform:\n      - {}\n"},
		{"ray without direction", "rays:\n  - origin: [0, 0, 0]\n"},
		{"zero direction", "rays:\n  - origin: [0, 0, 0]\n    direction: [0, 0, 0]\n"},
		{"long uv", "shapes:\n  - type: trianglemesh\n    positions: [[0, 0, 0]]\n    uvs: [[0, 0, 1]]\n"},
		{"uv count", "shapes:\n  - type: trianglemesh\n    positions: [[0, 0, 0], [1, 0, 0]]\n    uvs: [[0, 0]]\n"},
		{"not yaml", "shapes: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProbeFile([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadProbeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(probeYAML), 0644))

	file, err := LoadProbeFile(path)
	require.NoError(t, err)
	assert.Len(t, file.Shapes, 3)

	_, err = LoadProbeFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
