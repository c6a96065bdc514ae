package loaders

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/df07/go-raykernel/pkg/interaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeMaskPNG writes a 2x2 image whose top row is opaque and bottom row clear
func writeMaskPNG(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{G: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 0})
	img.Set(1, 1, color.NRGBA{A: 128})

	path := filepath.Join(t.TempDir(), "mask.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func atUV(u, v float64) *interaction.SurfaceInteraction {
	return &interaction.SurfaceInteraction{UV: core.Point2{X: u, Y: v}}
}

func TestLoadAlphaImage(t *testing.T) {
	mask, err := LoadAlphaImage(writeMaskPNG(t))
	require.NoError(t, err)
	require.Equal(t, 2, mask.Width)
	require.Equal(t, 2, mask.Height)
	require.Len(t, mask.Alpha, 4)

	assert.Equal(t, 1.0, mask.Alpha[0])
	assert.Equal(t, 1.0, mask.Alpha[1])
	assert.Equal(t, 0.0, mask.Alpha[2])
	assert.InDelta(t, 128.0/255.0, mask.Alpha[3], 1e-3)
}

func TestAlphaImage_Evaluate(t *testing.T) {
	mask, err := LoadAlphaImage(writeMaskPNG(t))
	require.NoError(t, err)

	tests := []struct {
		name string
		u, v float64
		want float64
	}{
		{"top left", 0.25, 0.75, 1},
		{"bottom left", 0.25, 0.25, 0},
		{"wrapped", 1.25, -0.75, 0},
		{"whole numbers wrap to zero", 1.0, 1.0, 0},
		{"near the top right", 0.999, 0.999, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mask.Evaluate(atUV(tt.u, tt.v)))
		})
	}
}

func TestAlphaImage_Empty(t *testing.T) {
	assert.Equal(t, 1.0, (&AlphaImage{}).Evaluate(atUV(0.5, 0.5)))
}

func TestLoadAlphaImageNotFound(t *testing.T) {
	_, err := LoadAlphaImage("nonexistent.png")
	assert.Error(t, err)
}
