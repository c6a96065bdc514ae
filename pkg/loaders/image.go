package loaders

import (
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"math"
	"os"

	"github.com/df07/go-raykernel/pkg/interaction"
	"github.com/pkg/errors"
)

// AlphaImage is a cut-out mask read from the alpha channel of an image.
// It satisfies geometry.AlphaTexture.
type AlphaImage struct {
	Width  int
	Height int
	Alpha  []float64 // Row-major: Alpha[y*Width + x], in [0, 1]
}

// LoadAlphaImage loads a PNG or JPEG image and keeps its alpha channel
func LoadAlphaImage(filename string) (*AlphaImage, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open alpha image")
	}
	defer file.Close()

	// Decode image (auto-detects PNG/JPEG from file header)
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrap(err, "decode alpha image")
	}
	return NewAlphaImage(img), nil
}

// NewAlphaImage copies the alpha channel of img
func NewAlphaImage(img image.Image) *AlphaImage {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	alpha := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			_, _, _, a := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535]
			alpha[y*width+x] = float64(a) / 65535.0
		}
	}
	return &AlphaImage{Width: width, Height: height, Alpha: alpha}
}

// Evaluate returns the nearest texel's alpha at the hit's (u, v).
// UVs wrap; v = 0 is the bottom row of the image.
func (a *AlphaImage) Evaluate(si *interaction.SurfaceInteraction) float64 {
	if a.Width == 0 || a.Height == 0 {
		return 1
	}
	u := si.UV.X - math.Floor(si.UV.X)
	v := si.UV.Y - math.Floor(si.UV.Y)

	x := min(int(u*float64(a.Width)), a.Width-1)
	y := min(int((1-v)*float64(a.Height)), a.Height-1)
	return a.Alpha[max(y, 0)*a.Width+max(x, 0)]
}
