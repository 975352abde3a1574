package jobs

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// FitDimensions scales srcW x srcH to fit the target size while keeping the
// aspect ratio. A missing dimension is unbounded. The derived side is rounded
// down using integer arithmetic. Images may be scaled up, and neither side
// drops below one pixel.
func FitDimensions(srcW, srcH int, size Size) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	tw, th := uint64(math.MaxUint32), uint64(math.MaxUint32)
	switch size.Kind {
	case SizeWidth:
		tw = uint64(size.Width)
	case SizeHeight:
		th = uint64(size.Height)
	default:
		tw, th = uint64(size.Width), uint64(size.Height)
	}
	w, h := uint64(srcW), uint64(srcH)

	var outW, outH uint64
	if tw*h <= w*th {
		outW, outH = tw, h*tw/w
	} else {
		outW, outH = w*th/h, th
	}
	return int(max(outW, 1)), int(max(outH, 1))
}

// brighten adds delta to every color channel.
func brighten(img image.Image, delta int) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: clamp8(float64(int(c.R) + delta)),
			G: clamp8(float64(int(c.G) + delta)),
			B: clamp8(float64(int(c.B) + delta)),
			A: c.A,
		}
	})
}

// hueRotate rotates hue by deg degrees using the luminance-preserving
// rotation matrix.
func hueRotate(img image.Image, deg int) *image.NRGBA {
	rad := float64(deg) * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	m := [9]float64{
		0.213 + cos*0.787 - sin*0.213,
		0.715 - cos*0.715 - sin*0.715,
		0.072 - cos*0.072 + sin*0.928,

		0.213 - cos*0.213 + sin*0.143,
		0.715 + cos*0.285 + sin*0.140,
		0.072 - cos*0.072 - sin*0.283,

		0.213 - cos*0.213 - sin*0.787,
		0.715 - cos*0.715 + sin*0.715,
		0.072 + cos*0.928 + sin*0.072,
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		r, g, b := float64(c.R), float64(c.G), float64(c.B)
		return color.NRGBA{
			R: clamp8(m[0]*r + m[1]*g + m[2]*b),
			G: clamp8(m[3]*r + m[4]*g + m[5]*b),
			B: clamp8(m[6]*r + m[7]*g + m[8]*b),
			A: c.A,
		}
	})
}

func clamp8(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
