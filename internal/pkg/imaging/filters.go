package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// FilterParams mirrors the registry's filter tuple.
// Brightness/contrast/saturation are percentages (100 = identity),
// tint and hue are offsets (0 = identity), blur is a pixel radius.
type FilterParams struct {
	Brightness float64
	Contrast   float64
	Saturation float64
	Tint       float64
	Hue        float64
	Blur       float64
}

// ApplyFilter applies the color adjustments to an image. The identity
// tuple returns the input unchanged.
func ApplyFilter(img image.Image, f FilterParams) image.Image {
	out := img

	if f.Brightness != 100 {
		out = imaging.AdjustBrightness(out, f.Brightness-100)
	}
	if f.Contrast != 100 {
		out = imaging.AdjustContrast(out, f.Contrast-100)
	}
	if f.Saturation != 100 {
		out = imaging.AdjustSaturation(out, f.Saturation-100)
	}
	if f.Tint != 0 {
		out = applyTint(out, f.Tint)
	}
	if f.Hue != 0 {
		out = rotateHue(out, f.Hue)
	}
	if f.Blur > 0 {
		out = imaging.Blur(out, f.Blur)
	}

	return out
}

// applyTint shifts the image toward warm (positive) or cool (negative)
// tones by biasing the red and blue channels.
func applyTint(img image.Image, tint float64) image.Image {
	shift := tint / 100.0 * 40.0 // max +-40 per channel at tint 100
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: clampByte(float64(c.R) + shift),
			G: c.G,
			B: clampByte(float64(c.B) - shift),
			A: c.A,
		}
	})
}

// rotateHue rotates the hue of every pixel by the given degrees using the
// standard luminance-preserving rotation matrix.
func rotateHue(img image.Image, degrees float64) image.Image {
	rad := degrees * math.Pi / 180.0
	cosA := math.Cos(rad)
	sinA := math.Sin(rad)

	// Rotation matrix around the grey axis.
	m := [3][3]float64{
		{cosA + (1-cosA)/3, (1-cosA)/3 - sinA/math.Sqrt(3), (1-cosA)/3 + sinA/math.Sqrt(3)},
		{(1-cosA)/3 + sinA/math.Sqrt(3), cosA + (1-cosA)/3, (1-cosA)/3 - sinA/math.Sqrt(3)},
		{(1-cosA)/3 - sinA/math.Sqrt(3), (1-cosA)/3 + sinA/math.Sqrt(3), cosA + (1-cosA)/3},
	}

	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		r := float64(c.R)
		g := float64(c.G)
		b := float64(c.B)
		return color.NRGBA{
			R: clampByte(m[0][0]*r + m[0][1]*g + m[0][2]*b),
			G: clampByte(m[1][0]*r + m[1][1]*g + m[1][2]*b),
			B: clampByte(m[2][0]*r + m[2][1]*g + m[2][2]*b),
			A: c.A,
		}
	})
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
